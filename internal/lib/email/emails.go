package email

import (
	"fmt"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/model"
)

type publishReportData struct {
	Client    string
	MediaType string
	PostID    string
	Permalink string
	Caption   string
	Published string
}

// SendPublishReport tells the operator a background publication finished.
func (c *Client) SendPublishReport(to string, pub *model.MediaPublication) error {
	data := publishReportData{
		Client:    pub.Client,
		MediaType: pub.MediaType,
		PostID:    pub.PostID,
		Permalink: pub.Permalink,
		Caption:   pub.Caption,
		Published: pub.Timestamp.UTC().Format(time.RFC1123),
	}

	return c.SendEmail(
		to,
		fmt.Sprintf("Instagram %s published for %s", pub.MediaType, pub.Client),
		TemplatePublishReport,
		data,
	)
}

type tokenRefreshFailedData struct {
	Failures []model.RefreshFailure
	RanAt    string
}

// SendTokenRefreshFailed lists the tenants whose scheduled refresh failed.
func (c *Client) SendTokenRefreshFailed(to string, failures []model.RefreshFailure, ranAt time.Time) error {
	return c.SendEmail(
		to,
		fmt.Sprintf("Instagram token refresh failed for %d tenant(s)", len(failures)),
		TemplateTokenRefreshFailed,
		tokenRefreshFailedData{Failures: failures, RanAt: ranAt.UTC().Format(time.RFC1123)},
	)
}
