package gateway

import (
	"context"
	"fmt"

	"vizin/pkg/logger"
	"vizin/pkg/model"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

const omiseSuccessful = "successful"

// ChargeCreator creates one Omise charge.
type ChargeCreator interface {
	CreateCharge(op *operations.CreateCharge) (*omise.Charge, error)
}

type omiseClient struct {
	client *omise.Client
}

func NewOmiseClient(publicKey, secretKey string) (ChargeCreator, error) {
	client, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create omise client: %w", err)
	}
	return &omiseClient{client: client}, nil
}

func (c *omiseClient) CreateCharge(op *operations.CreateCharge) (*omise.Charge, error) {
	charge := &omise.Charge{}
	if err := c.client.Do(charge, op); err != nil {
		return nil, err
	}
	return charge, nil
}

type omiseGateway struct {
	charges  ChargeCreator
	currency string
	log      *logger.Logger
}

// NewOmiseGateway charges card tokens through Omise. Only card methods are
// supported; other methods are declined.
func NewOmiseGateway(charges ChargeCreator, currency string, log *logger.Logger) Gateway {
	return &omiseGateway{
		charges:  charges,
		currency: currency,
		log:      log,
	}
}

type chargeOutcome struct {
	charge *omise.Charge
	err    error
}

func (g *omiseGateway) Charge(ctx context.Context, req ChargeRequest) (model.PaymentStatus, error) {
	if req.Method != model.MethodCreditCard && req.Method != model.MethodDebitCard {
		g.log.Warn("Omise declined unsupported payment method", "booking_id", req.BookingID, "method", req.Method)
		return model.PaymentDeclined, nil
	}
	if req.Token == "" {
		return model.PaymentDeclined, nil
	}

	op := &operations.CreateCharge{
		Amount:   req.Amount.Shift(2).Round(0).IntPart(),
		Currency: g.currency,
		Card:     req.Token,
		Metadata: map[string]interface{}{
			"booking_id": req.BookingID,
			"payment_id": req.PaymentID,
		},
	}

	// The omise client has no context support, so the call is raced
	// against ctx instead.
	done := make(chan chargeOutcome, 1)
	go func() {
		charge, err := g.charges.CreateCharge(op)
		done <- chargeOutcome{charge: charge, err: err}
	}()

	var outcome chargeOutcome
	select {
	case <-ctx.Done():
		go g.logAbandoned(req, done)
		return "", fmt.Errorf("omise charge: %w", ctx.Err())
	case outcome = <-done:
	}
	if outcome.err != nil {
		return "", fmt.Errorf("omise charge: %w", outcome.err)
	}

	status := string(outcome.charge.Status)
	if status == omiseSuccessful {
		g.log.Info("Omise charge approved", "booking_id", req.BookingID, "charge_id", outcome.charge.ID)
		return model.PaymentApproved, nil
	}

	var failureCode string
	if outcome.charge.FailureCode != nil {
		failureCode = *outcome.charge.FailureCode
	}
	g.log.Info("Omise charge not approved",
		"booking_id", req.BookingID,
		"charge_id", outcome.charge.ID,
		"status", status,
		"failure_code", failureCode,
	)
	return model.PaymentDeclined, nil
}

// logAbandoned reports the result of a charge whose caller stopped waiting, so
// the charge can be matched to its payment attempt by hand.
func (g *omiseGateway) logAbandoned(req ChargeRequest, done <-chan chargeOutcome) {
	outcome := <-done
	if outcome.err != nil {
		g.log.Warn("Omise charge failed after deadline",
			"booking_id", req.BookingID,
			"payment_id", req.PaymentID,
			"error", outcome.err,
		)
		return
	}
	g.log.Warn("Omise charge completed after deadline",
		"booking_id", req.BookingID,
		"payment_id", req.PaymentID,
		"charge_id", outcome.charge.ID,
		"status", string(outcome.charge.Status),
	)
}
