// Package api defines the wire messages of the taghiane.v1 Connect services.
//
// Messages are plain structs encoded as JSON. Field names match the web
// client: receipt fields are camelCase, bill records are snake_case.
// The validate tags are enforced by the server before any handler logic runs.
package api
