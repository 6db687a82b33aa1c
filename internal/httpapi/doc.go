// Package httpapi exposes the member registry over REST. It is a thin
// translation layer: request DTOs are validated at the edge, every
// operation is delegated to the migration orchestrator, and store
// errors are mapped onto HTTP status codes. No storage or strategy
// logic lives here.
package httpapi
