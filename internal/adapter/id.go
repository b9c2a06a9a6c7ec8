package adapter

import "github.com/google/uuid"

// IDGenerator defines an interface for event id generation to enable
// deterministic tests
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator implements IDGenerator using random UUIDs
type UUIDGenerator struct{}

// NewIDGenerator creates a new UUID-backed id generator
func NewIDGenerator() IDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}
