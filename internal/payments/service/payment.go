package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "vizin/internal/bookings/errors"
	bookingsrepo "vizin/internal/bookings/repository"
	"vizin/internal/events"
	paymentserrors "vizin/internal/payments/errors"
	"vizin/internal/payments/gateway"
	"vizin/internal/payments/repository"
	"vizin/pkg/clock"
	"vizin/pkg/config"
	apperrors "vizin/pkg/errors"
	"vizin/pkg/model"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	messageApproved = "Payment approved"
	messageDeclined = "Payment declined"
)

var tracer = otel.Tracer("vizin/internal/payments")

type PaymentService interface {
	Process(ctx context.Context, bookingID, payerID string, req model.PaymentRequest) (*model.PaymentResult, error)
}

type paymentService struct {
	repo      repository.PaymentRepository
	bookings  bookingsrepo.BookingRepository
	gateway   gateway.Gateway
	publisher events.Publisher
	clock     clock.Clock
	cfg       *config.Config
}

func NewPaymentService(
	repo repository.PaymentRepository,
	bookings bookingsrepo.BookingRepository,
	gw gateway.Gateway,
	publisher events.Publisher,
	clk clock.Clock,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		repo:      repo,
		bookings:  bookings,
		gateway:   gw,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
	}
}

// Process settles a booking. A declined charge is recorded and returned as an
// unsuccessful result, not as an error.
func (s *paymentService) Process(ctx context.Context, bookingID, payerID string, req model.PaymentRequest) (*model.PaymentResult, error) {
	ctx, span := tracer.Start(ctx, "PaymentService.Process", trace.WithAttributes(
		attribute.String("booking.id", bookingID),
		attribute.String("payment.method", string(req.Method)),
	))
	defer span.End()

	result, err := s.process(ctx, bookingID, payerID, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("payment.status", result.Status))
	return result, nil
}

func (s *paymentService) process(ctx context.Context, bookingID, payerID string, req model.PaymentRequest) (*model.PaymentResult, error) {
	booking, err := s.payableBooking(ctx, bookingID, payerID)
	if err != nil {
		return nil, err
	}

	attempt, err := s.begin(ctx, booking, req)
	if err != nil {
		return nil, err
	}

	status, err := s.charge(ctx, booking, attempt, req)
	if err != nil {
		return nil, err
	}

	if err := s.settle(ctx, booking, attempt, status); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Payment processed",
		"booking_id", booking.ID,
		"payment_id", attempt.ID,
		"status", attempt.Status,
		"amount", attempt.Amount.String(),
	)
	s.publish(ctx, booking, attempt)

	result := &model.PaymentResult{
		PaymentID: attempt.ID,
		Success:   status == model.PaymentApproved,
		Amount:    attempt.Amount,
		Status:    status.String(),
		Message:   messageDeclined,
	}
	if result.Success {
		result.Message = messageApproved
	}
	return result, nil
}

func (s *paymentService) payableBooking(ctx context.Context, bookingID, payerID string) (*model.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("booking", bookingID)
		}
		s.cfg.Log.Error("Failed to load booking", "booking_id", bookingID, "error", err)
		return nil, apperrors.Internal("Failed to load booking", err)
	}

	if booking.GuestID != payerID {
		s.cfg.Log.Warn("Payment rejected: payer is not the guest", "booking_id", bookingID, "payer_id", payerID)
		return nil, apperrors.Forbidden("not authorized for this payment")
	}

	paid, err := s.repo.HasApproved(ctx, booking.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to check previous payments", "booking_id", bookingID, "error", err)
		return nil, apperrors.Internal("Failed to check previous payments", err)
	}
	if paid {
		return nil, apperrors.Conflict("already paid")
	}

	if _, err := booking.Status.Confirm(); err != nil {
		return nil, apperrors.InvalidState("booking can no longer be paid")
	}

	if !booking.TotalCost.IsPositive() {
		return nil, apperrors.InvalidState("invalid cost for payment")
	}

	if !clock.DateOf(booking.CheckIn).After(clock.Today(s.clock)) {
		return nil, apperrors.InvalidState("cannot pay for today or a past date")
	}

	return booking, nil
}

// begin records a Pending attempt before the gateway is called. Attempts left
// Pending longer than PendingPaymentTTL are expired first so an unknown
// outcome does not block the booking forever.
func (s *paymentService) begin(ctx context.Context, booking *model.Booking, req model.PaymentRequest) (*model.Payment, error) {
	now := s.clock.Now().UTC()
	attempt := &model.Payment{
		ID:        uuid.NewString(),
		BookingID: booking.ID,
		Amount:    booking.TotalCost,
		Method:    req.Method,
		Status:    model.PaymentPending,
		CreatedAt: now,
	}

	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.expireStale(txCtx, booking.ID, now); err != nil {
			return err
		}
		return s.repo.Create(txCtx, attempt)
	})
	if err == nil {
		return attempt, nil
	}
	if errors.Is(err, paymentserrors.ErrActivePayment) {
		return nil, s.activePaymentConflict(ctx, booking.ID)
	}
	if apperrors.IsAppError(err) {
		return nil, err
	}
	s.cfg.Log.Error("Failed to record payment attempt", "booking_id", booking.ID, "error", err)
	return nil, apperrors.Internal("Failed to record payment", err)
}

func (s *paymentService) expireStale(ctx context.Context, bookingID string, now time.Time) error {
	if s.cfg.PendingPaymentTTL <= 0 {
		return nil
	}
	payments, err := s.repo.FindByBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	for _, p := range payments {
		if p.Status != model.PaymentPending || now.Sub(p.CreatedAt) < s.cfg.PendingPaymentTTL {
			continue
		}
		if err := s.repo.Settle(ctx, p.ID, model.PaymentPending, model.PaymentExpired, now); err != nil {
			if errors.Is(err, paymentserrors.ErrStatusChanged) {
				continue
			}
			return err
		}
		s.cfg.Log.Warn("Expired payment attempt with unknown outcome",
			"booking_id", bookingID,
			"payment_id", p.ID,
			"created_at", p.CreatedAt,
		)
	}
	return nil
}

func (s *paymentService) activePaymentConflict(ctx context.Context, bookingID string) error {
	paid, err := s.repo.HasApproved(ctx, bookingID)
	if err != nil {
		s.cfg.Log.Error("Failed to check previous payments", "booking_id", bookingID, "error", err)
		return apperrors.Internal("Failed to check previous payments", err)
	}
	if paid {
		return apperrors.Conflict("already paid")
	}
	return apperrors.Conflict("payment already in progress")
}

type chargeResult struct {
	status model.PaymentStatus
	err    error
}

// charge waits up to GatewayTimeout for the gateway. The charge itself runs
// detached from the request, bounded by ChargeSettleTimeout; when the wait
// gives up first, the attempt is settled in the background once the gateway
// answers.
func (s *paymentService) charge(ctx context.Context, booking *model.Booking, attempt *model.Payment, req model.PaymentRequest) (model.PaymentStatus, error) {
	done := s.startCharge(ctx, booking, attempt, req)

	wait := ctx
	if s.cfg.GatewayTimeout > 0 {
		var cancel context.CancelFunc
		wait, cancel = context.WithTimeout(ctx, s.cfg.GatewayTimeout)
		defer cancel()
	}

	select {
	case res := <-done:
		if res.err != nil {
			s.outcomeUnknown(booking, attempt, res.err)
			return "", apperrors.Unavailable("payment gateway")
		}
		return res.status, nil
	case <-wait.Done():
		s.cfg.Log.Warn("Payment gateway did not answer in time, settling in background",
			"booking_id", booking.ID,
			"payment_id", attempt.ID,
			"timeout", s.cfg.GatewayTimeout,
		)
		go s.settleLate(context.WithoutCancel(ctx), booking, attempt, done)
		return "", apperrors.Unavailable("payment gateway")
	}
}

func (s *paymentService) startCharge(ctx context.Context, booking *model.Booking, attempt *model.Payment, req model.PaymentRequest) <-chan chargeResult {
	limit := s.cfg.ChargeSettleTimeout
	if limit < s.cfg.GatewayTimeout {
		limit = s.cfg.GatewayTimeout
	}

	var (
		chargeCtx context.Context
		cancel    context.CancelFunc
	)
	if limit > 0 {
		chargeCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), limit)
	} else {
		chargeCtx, cancel = context.WithCancel(context.WithoutCancel(ctx))
	}

	done := make(chan chargeResult, 1)
	go func() {
		defer cancel()
		status, err := s.gateway.Charge(chargeCtx, gateway.ChargeRequest{
			BookingID: booking.ID,
			PaymentID: attempt.ID,
			Amount:    booking.TotalCost,
			Currency:  s.cfg.OmiseCurrency,
			Method:    req.Method,
			Token:     req.CardNumber,
		})
		done <- chargeResult{status: status, err: err}
	}()
	return done
}

func (s *paymentService) settleLate(ctx context.Context, booking *model.Booking, attempt *model.Payment, done <-chan chargeResult) {
	res := <-done
	if res.err != nil {
		s.outcomeUnknown(booking, attempt, res.err)
		return
	}
	if err := s.settle(ctx, booking, attempt, res.status); err != nil {
		return
	}
	s.cfg.Log.Info("Payment settled after gateway deadline",
		"booking_id", booking.ID,
		"payment_id", attempt.ID,
		"status", attempt.Status,
		"amount", attempt.Amount.String(),
	)
	s.publish(ctx, booking, attempt)
}

// outcomeUnknown leaves the attempt Pending. Retries are refused until it
// expires, since the gateway may still have charged the card.
func (s *paymentService) outcomeUnknown(booking *model.Booking, attempt *model.Payment, err error) {
	s.cfg.Log.Error("Payment gateway failed, charge outcome unknown",
		"booking_id", booking.ID,
		"payment_id", attempt.ID,
		"pending_ttl", s.cfg.PendingPaymentTTL,
		"error", err,
	)
}

// settle moves the attempt out of Pending and, on approval, confirms the
// booking in the same transaction.
func (s *paymentService) settle(ctx context.Context, booking *model.Booking, attempt *model.Payment, status model.PaymentStatus) error {
	now := s.clock.Now().UTC()
	next := booking.Status

	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Settle(txCtx, attempt.ID, model.PaymentPending, status, now); err != nil {
			if errors.Is(err, paymentserrors.ErrStatusChanged) {
				return apperrors.Conflict("payment attempt already settled")
			}
			return apperrors.Internal("Failed to record payment", err)
		}

		if status != model.PaymentApproved {
			return nil
		}

		confirmed, err := booking.Status.Confirm()
		if err != nil {
			return apperrors.InvalidState("booking can no longer be paid")
		}
		if err := s.bookings.UpdateStatus(txCtx, booking.ID, booking.Status, confirmed, nil); err != nil {
			if errors.Is(err, bookingserrors.ErrStatusChanged) {
				return apperrors.InvalidState("booking can no longer be paid")
			}
			return apperrors.Internal("Failed to confirm booking", err)
		}
		next = confirmed
		return nil
	})
	if err == nil {
		booking.Status = next
		attempt.Status = status
		attempt.SettledAt = &now
		return nil
	}

	if status == model.PaymentApproved {
		s.cfg.Log.Error("Approved charge could not be recorded",
			"booking_id", booking.ID,
			"payment_id", attempt.ID,
			"amount", attempt.Amount.String(),
			"error", err,
		)
	}
	if apperrors.IsAppError(err) {
		return err
	}
	s.cfg.Log.Error("Failed to record payment", "booking_id", booking.ID, "error", err)
	return apperrors.Internal("Failed to record payment", err)
}

func (s *paymentService) publish(ctx context.Context, booking *model.Booking, payment *model.Payment) {
	eventType := events.PaymentDeclined
	if payment.Status == model.PaymentApproved {
		eventType = events.PaymentApproved
	}

	event := events.New(eventType, booking.ID, s.clock.Now())
	event.GuestID = booking.GuestID
	event.PropertyID = booking.PropertyID
	event.PaymentID = payment.ID
	event.CheckIn = booking.CheckIn.Format(model.DateLayout)
	event.CheckOut = booking.CheckOut.Format(model.DateLayout)
	event.Amount = payment.Amount
	event.Status = payment.Status.String()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to publish payment event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
