package email

import "github.com/deppfellow/sovyx-backend/internal/model"

// PreviewData holds sample data for rendering each template locally.
var PreviewData = map[Template]any{
	TemplatePublishReport: publishReportData{
		Client:    "client1",
		MediaType: model.MediaTypeCarousel,
		PostID:    "17895695668004550",
		Permalink: "https://www.instagram.com/p/C1a2b3c4d5e/",
		Caption:   "💼 HIGH TICKET EDITION\n\nNew program launch #HighTicket",
		Published: "Mon, 02 Jan 2026 15:04:05 UTC",
	},
	TemplateTokenRefreshFailed: tokenRefreshFailedData{
		Failures: []model.RefreshFailure{
			{Tenant: "client2", Error: "Error validating access token: Session has expired"},
		},
		RanAt: "Mon, 02 Jan 2026 03:00:00 UTC",
	},
}
