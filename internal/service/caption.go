package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/deppfellow/sovyx-backend/internal/model"
)

const (
	// MaxCaptionRunes is Instagram's caption limit.
	MaxCaptionRunes = 2200
	maxHashtags     = 30
	captionBanner   = "💼 HIGH TICKET EDITION\n\n"
)

var baseHashtags = []string{
	"#HighTicket", "#BusinessGrowth", "#Entrepreneur",
	"#DigitalBusiness", "#PremiumService", "#SuccessMindset",
}

var businessHashtags = map[string][]string{
	"emprendedores": {"#Emprendimiento", "#Startup", "#NegociosDigitales"},
	"consultores":   {"#Consultoría", "#Asesoría", "#Expertise"},
	"coaches":       {"#Coaching", "#DesarrolloPersonal", "#Liderazgo"},
	"inversores":    {"#Inversiones", "#Finanzas", "#WealthBuilding"},
	"profesionales": {"#Profesional", "#Carrera", "#Excelencia"},
}

var hashtagPattern = regexp.MustCompile(`#[\p{L}\p{N}_]+`)

// Hashtags returns the base tags followed by those of each business type,
// capped at 30.
func Hashtags(businessTypes []string) []string {
	tags := append([]string(nil), baseHashtags...)
	for _, bt := range businessTypes {
		tags = append(tags, businessHashtags[bt]...)
	}
	if len(tags) > maxHashtags {
		tags = tags[:maxHashtags]
	}
	return tags
}

// OptimizeCaption adds the high ticket banner and hashtags to caption and
// trims it to Instagram's limit.
func OptimizeCaption(caption string, constraints model.Constraints) string {
	optimized := caption
	if !strings.Contains(optimized, "💼") && !strings.Contains(optimized, "🎯") {
		optimized = captionBanner + optimized
	}

	tags := Hashtags(constraints.BusinessType)
	if !strings.Contains(optimized, "#") {
		optimized += "\n\n" + strings.Join(tags, " ")
	} else {
		existing := make(map[string]struct{})
		for _, tag := range hashtagPattern.FindAllString(optimized, -1) {
			existing[strings.ToLower(tag)] = struct{}{}
		}

		var missing []string
		for _, tag := range tags {
			if _, ok := existing[strings.ToLower(tag)]; !ok {
				missing = append(missing, tag)
			}
		}
		if len(missing) > 0 {
			optimized += " " + strings.Join(missing, " ")
		}
	}

	return truncateCaption(optimized)
}

func truncateCaption(s string) string {
	if utf8.RuneCountInString(s) <= MaxCaptionRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxCaptionRunes-3]) + "..."
}
