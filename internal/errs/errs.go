// Package errs defines the error shapes returned to API clients.
//
// Every handler error ends up as an HTTPError rendered by the global error
// handler, so clients always receive {code, message, status, override,
// errors, action}.
package errs
