// Package service contains the business logic.
//
// It sits between the handler and repository layers. Handlers pass it
// validated requests; it resolves the tenant credentials, talks to the
// Graph API, and builds the segmentation, delivery, content and
// distribution records returned to clients.
package service
