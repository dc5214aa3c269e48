package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"vizin/pkg/logger"
	"vizin/pkg/model"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
	"github.com/shopspring/decimal"
)

func TestSimulatedGateway(t *testing.T) {
	g := NewSimulatedGateway("44")

	tests := []struct {
		token string
		want  model.PaymentStatus
	}{
		{token: "4411111111111111", want: model.PaymentApproved},
		{token: "44", want: model.PaymentApproved},
		{token: "4111111111111111", want: model.PaymentDeclined},
		{token: "5544", want: model.PaymentDeclined},
		{token: "", want: model.PaymentDeclined},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := g.Charge(context.Background(), ChargeRequest{Token: tt.token, Amount: decimal.NewFromInt(10)})
			if err != nil {
				t.Fatalf("Charge() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Charge(%q) = %s, want %s", tt.token, got, tt.want)
			}
		})
	}
}

func TestSimulatedGateway_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewSimulatedGateway("44").Charge(ctx, ChargeRequest{Token: "44"}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

type fakeCharges struct {
	got    *operations.CreateCharge
	charge *omise.Charge
	err    error
	delay  time.Duration
}

func (f *fakeCharges) CreateCharge(op *operations.CreateCharge) (*omise.Charge, error) {
	f.got = op
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.charge, f.err
}

func TestOmiseGateway_Charge(t *testing.T) {
	failure := "insufficient_fund"

	tests := []struct {
		name    string
		method  model.PaymentMethod
		charges *fakeCharges
		want    model.PaymentStatus
		wantErr bool
	}{
		{
			name:    "successful",
			method:  model.MethodCreditCard,
			charges: &fakeCharges{charge: &omise.Charge{Status: "successful"}},
			want:    model.PaymentApproved,
		},
		{
			name:    "failed",
			method:  model.MethodDebitCard,
			charges: &fakeCharges{charge: &omise.Charge{Status: "failed", FailureCode: &failure}},
			want:    model.PaymentDeclined,
		},
		{
			name:    "pending is not approved",
			method:  model.MethodCreditCard,
			charges: &fakeCharges{charge: &omise.Charge{Status: "pending"}},
			want:    model.PaymentDeclined,
		},
		{
			name:    "unsupported method",
			method:  model.MethodPix,
			charges: &fakeCharges{},
			want:    model.PaymentDeclined,
		},
		{
			name:    "api error",
			method:  model.MethodCreditCard,
			charges: &fakeCharges{err: errors.New("authentication failure")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewOmiseGateway(tt.charges, "thb", logger.Discard())
			got, err := g.Charge(context.Background(), ChargeRequest{
				BookingID: "b-1",
				Amount:    decimal.RequireFromString("301.50"),
				Method:    tt.method,
				Token:     "tokn_test_1",
			})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Charge() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Charge() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOmiseGateway_SendsMinorUnits(t *testing.T) {
	charges := &fakeCharges{charge: &omise.Charge{Status: "successful"}}
	g := NewOmiseGateway(charges, "thb", logger.Discard())

	_, err := g.Charge(context.Background(), ChargeRequest{
		BookingID: "b-1",
		PaymentID: "p-1",
		Amount:    decimal.RequireFromString("301.50"),
		Method:    model.MethodCreditCard,
		Token:     "tokn_test_1",
	})
	if err != nil {
		t.Fatalf("Charge() error = %v", err)
	}
	if charges.got.Amount != 30150 {
		t.Errorf("Amount = %d, want 30150", charges.got.Amount)
	}
	if charges.got.Currency != "thb" || charges.got.Card != "tokn_test_1" {
		t.Errorf("unexpected operation: %+v", charges.got)
	}
	if charges.got.Metadata["booking_id"] != "b-1" || charges.got.Metadata["payment_id"] != "p-1" {
		t.Errorf("metadata = %v", charges.got.Metadata)
	}
}

func TestOmiseGateway_ContextDeadline(t *testing.T) {
	charges := &fakeCharges{charge: &omise.Charge{Status: "successful"}, delay: 200 * time.Millisecond}
	g := NewOmiseGateway(charges, "thb", logger.Discard())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := g.Charge(ctx, ChargeRequest{Amount: decimal.NewFromInt(1), Method: model.MethodCreditCard, Token: "tokn"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Charge() error = %v, want deadline exceeded", err)
	}
}
