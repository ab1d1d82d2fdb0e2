package payment

import (
	"context"
	"log/slog"
	"time"

	"dropcover/contexts/insurance/policy-service/ports"

	"github.com/google/uuid"
)

// AckProcessor acknowledges premium payments without moving value. Settlement
// is owned by an external collaborator; this adapter is the seam for it.
type AckProcessor struct {
	Logger *slog.Logger
}

func (p AckProcessor) ProcessPayment(_ context.Context, policyID string, ownerID string, amount float64) (ports.PaymentAck, error) {
	ack := ports.PaymentAck{
		Reference:   "pay_" + uuid.NewString(),
		PolicyID:    policyID,
		Amount:      amount,
		ProcessedAt: time.Now().UTC(),
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("payment forwarded to settlement",
		"event", "payment_forwarded",
		"module", "insurance/policy-service",
		"layer", "adapter",
		"policy_id", policyID,
		"owner_id", ownerID,
		"amount", amount,
		"reference", ack.Reference,
	)
	return ack, nil
}

var _ ports.PaymentProcessor = AckProcessor{}
