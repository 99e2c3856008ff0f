package email

// Template names a file under templates/ without its extension.
type Template string

const (
	TemplatePublishReport      Template = "publish_report"
	TemplateTokenRefreshFailed Template = "token_refresh_failed"
)
