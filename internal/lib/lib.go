// Package lib groups integrations that do not belong to a single layer:
// the Graph API client, the upload cache, background jobs on Asynq,
// Resend email, and Prometheus metrics.
package lib
