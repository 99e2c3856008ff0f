// Package validation binds and validates request payloads.
//
// Struct tags are enforced with go-playground/validator and failures are
// turned into field-level errors the client can render.
package validation
