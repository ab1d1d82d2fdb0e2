package postgresadapter

import (
	"time"

	"dropcover/contexts/insurance/policy-service/ports"
)

// SystemClock is the default runtime clock implementation.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

var _ ports.Clock = SystemClock{}
