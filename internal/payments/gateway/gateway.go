package gateway

import (
	"context"
	"strings"

	"vizin/pkg/model"

	"github.com/shopspring/decimal"
)

type ChargeRequest struct {
	BookingID string
	PaymentID string
	Amount    decimal.Decimal
	Currency  string
	Method    model.PaymentMethod
	Token     string
}

// Gateway charges a payment instrument. A decline is reported through the
// returned status; errors mean the gateway could not be reached or refused
// the request outright.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (model.PaymentStatus, error)
}

type simulatedGateway struct {
	approvePrefix string
}

// NewSimulatedGateway approves every token that starts with approvePrefix.
func NewSimulatedGateway(approvePrefix string) Gateway {
	return &simulatedGateway{approvePrefix: approvePrefix}
}

func (g *simulatedGateway) Charge(ctx context.Context, req ChargeRequest) (model.PaymentStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if req.Token != "" && strings.HasPrefix(req.Token, g.approvePrefix) {
		return model.PaymentApproved, nil
	}
	return model.PaymentDeclined, nil
}
