package types

// Event represents a typed event emitted during state transitions. Attributes
// are flat string pairs so downstream indexers can consume them without a
// schema.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
