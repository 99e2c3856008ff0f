// Package model holds the records this service produces and the request
// payloads its routes accept.
package model
