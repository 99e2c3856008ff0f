package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/deppfellow/sovyx-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestOptimizeCaption_AddsBannerAndHashtags(t *testing.T) {
	got := OptimizeCaption("Launching the new mentoring program", model.Constraints{})

	assert.True(t, strings.HasPrefix(got, "💼 HIGH TICKET EDITION\n\nLaunching"))
	assert.True(t, strings.HasSuffix(got, "\n\n#HighTicket #BusinessGrowth #Entrepreneur #DigitalBusiness #PremiumService #SuccessMindset"))
}

func TestOptimizeCaption_KeepsExistingBanner(t *testing.T) {
	got := OptimizeCaption("🎯 Only for founders", model.Constraints{})
	assert.True(t, strings.HasPrefix(got, "🎯 Only for founders"))
}

func TestOptimizeCaption_AppendsOnlyMissingHashtags(t *testing.T) {
	got := OptimizeCaption("💼 Scale up #highticket #Consultoría", model.Constraints{
		BusinessType: []string{"consultores"},
	})

	assert.Equal(t, 1, strings.Count(strings.ToLower(got), "#highticket"))
	assert.Equal(t, 1, strings.Count(got, "#Consultoría"))
	assert.Contains(t, got, " #Asesoría #Expertise")
	assert.NotContains(t, got, "\n\n#")
}

func TestOptimizeCaption_Truncates(t *testing.T) {
	got := OptimizeCaption("💼 "+strings.Repeat("é", 3000), model.Constraints{})

	assert.Equal(t, MaxCaptionRunes, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestHashtags_Capped(t *testing.T) {
	types := []string{"emprendedores", "consultores", "coaches", "inversores", "profesionales",
		"emprendedores", "consultores", "coaches", "inversores"}

	tags := Hashtags(types)
	assert.Len(t, tags, 30)
	assert.Equal(t, "#HighTicket", tags[0])
}
