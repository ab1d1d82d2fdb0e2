package memory

import (
	"context"

	"dropcover/contexts/token-drops/drop-service/ports"

	"github.com/google/uuid"
)

// UUIDGenerator mints UUIDv4 identifiers for event envelopes.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.IDGenerator = UUIDGenerator{}
