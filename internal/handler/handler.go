// Package handler is the HTTP layer. Typed handlers receive a bound and
// validated request model, call a service, and return a result that the
// base pipeline writes as JSON, raw bytes or an empty body.
package handler
