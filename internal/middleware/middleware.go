// Package middleware holds the Echo middleware shared by every route:
// per-ip rate limiting, CORS, request ids, New Relic tracing, request-scoped
// logging, optional Clerk authentication and the global error handler.
package middleware
