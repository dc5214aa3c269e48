// Package testutil holds in-memory stand-ins for the Mongo repositories.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	bookingserrors "vizin/internal/bookings/errors"
	bookingsrepo "vizin/internal/bookings/repository"
	paymentserrors "vizin/internal/payments/errors"
	paymentsrepo "vizin/internal/payments/repository"
	propertieserrors "vizin/internal/properties/errors"
	propertiesrepo "vizin/internal/properties/repository"
	mongotx "vizin/pkg/db/mongo"
	"vizin/pkg/model"
)

// Store keeps every collection in memory. Transactions are serialized and
// roll back all collections when the callback fails.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	bookings   map[string]model.Booking
	payments   map[string]model.Payment
	properties map[string]model.Property
	guards     map[string]int

	failures map[string]error
}

func NewStore() *Store {
	return &Store{
		bookings:   make(map[string]model.Booking),
		payments:   make(map[string]model.Payment),
		properties: make(map[string]model.Property),
		guards:     make(map[string]int),
		failures:   make(map[string]error),
	}
}

// FailOn makes the named operation (e.g. "bookings.Create") return err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) AddProperty(p model.Property) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.properties[p.ID] = p
}

func (s *Store) AddBooking(b model.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = b
}

func (s *Store) AddPayment(p model.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.ID] = p
}

func (s *Store) Booking(id string) (model.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	return b, ok
}

func (s *Store) BookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func (s *Store) PaymentsFor(bookingID string) []model.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Payment
	for _, p := range s.payments {
		if p.BookingID == bookingID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Store) GuardVersion(propertyID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guards[propertyID]
}

func (s *Store) BookingRepository() bookingsrepo.BookingRepository {
	return &bookingRepository{store: s}
}

func (s *Store) GuardRepository() bookingsrepo.PropertyGuardRepository {
	return &guardRepository{store: s}
}

func (s *Store) PaymentRepository() paymentsrepo.PaymentRepository {
	return &paymentRepository{store: s}
}

func (s *Store) PropertyRepository() propertiesrepo.PropertyRepository {
	return &propertyRepository{store: s}
}

func (s *Store) failure(op string) error {
	return s.failures[op]
}

func (s *Store) transaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	if err := s.failure("transaction"); err != nil {
		s.mu.Unlock()
		return err
	}
	bookings := cloneMap(s.bookings)
	payments := cloneMap(s.payments)
	guards := cloneMap(s.guards)
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.bookings, s.payments, s.guards = bookings, payments, guards
		s.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type bookingRepository struct {
	store *Store
}

func (r *bookingRepository) Create(_ context.Context, booking *model.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.failure("bookings.Create"); err != nil {
		return err
	}
	r.store.bookings[booking.ID] = *booking
	return nil
}

func (r *bookingRepository) FindByID(_ context.Context, id string) (*model.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.failure("bookings.FindByID"); err != nil {
		return nil, err
	}
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return &b, nil
}

func (r *bookingRepository) FindActiveOverlapping(_ context.Context, propertyID string, checkIn, checkOut time.Time) ([]*model.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.failure("bookings.FindActiveOverlapping"); err != nil {
		return nil, err
	}
	stay := model.Stay{CheckIn: checkIn, CheckOut: checkOut}
	var out []*model.Booking
	for _, b := range r.store.bookings {
		if b.PropertyID != propertyID || b.Status == model.BookingCanceled {
			continue
		}
		if b.Stay().Overlaps(stay) {
			b := b
			out = append(out, &b)
		}
	}
	return out, nil
}

func (r *bookingRepository) FindByGuest(_ context.Context, guestID string) ([]*model.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.failure("bookings.FindByGuest"); err != nil {
		return nil, err
	}
	return r.filter(func(b model.Booking) bool { return b.GuestID == guestID }), nil
}

func (r *bookingRepository) FindByProperties(_ context.Context, propertyIDs []string) ([]*model.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.failure("bookings.FindByProperties"); err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(propertyIDs))
	for _, id := range propertyIDs {
		ids[id] = struct{}{}
	}
	return r.filter(func(b model.Booking) bool {
		_, ok := ids[b.PropertyID]
		return ok
	}), nil
}

func (r *bookingRepository) UpdateStatus(_ context.Context, id string, from, to model.BookingStatus, canceledAt *time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.failure("bookings.UpdateStatus"); err != nil {
		return err
	}
	b, ok := r.store.bookings[id]
	if !ok || b.Status != from {
		return bookingserrors.ErrStatusChanged
	}
	b.Status = to
	if canceledAt != nil {
		at := *canceledAt
		b.CanceledAt = &at
	}
	r.store.bookings[id] = b
	return nil
}

func (r *bookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.store.transaction(ctx, fn)
}

// filter returns matches ordered by check-in descending, like the Mongo queries.
func (r *bookingRepository) filter(match func(model.Booking) bool) []*model.Booking {
	var out []*model.Booking
	for _, b := range r.store.bookings {
		if match(b) {
			b := b
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CheckIn.Equal(out[j].CheckIn) {
			return out[i].ID < out[j].ID
		}
		return out[i].CheckIn.After(out[j].CheckIn)
	})
	return out
}

type guardRepository struct {
	store *Store
}

func (r *guardRepository) Touch(_ context.Context, propertyID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.failure("guards.Touch"); err != nil {
		return err
	}
	r.store.guards[propertyID]++
	return nil
}

type paymentRepository struct {
	store *Store
}

func (r *paymentRepository) Create(_ context.Context, payment *model.Payment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.failure("payments.Create"); err != nil {
		return err
	}
	if err := r.store.uniquePayment(payment.ID, payment.BookingID, payment.Status); err != nil {
		return err
	}
	r.store.payments[payment.ID] = *payment
	return nil
}

func (r *paymentRepository) Settle(_ context.Context, id string, from, to model.PaymentStatus, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.failure("payments.Settle"); err != nil {
		return err
	}
	p, ok := r.store.payments[id]
	if !ok || p.Status != from {
		return paymentserrors.ErrStatusChanged
	}
	if err := r.store.uniquePayment(id, p.BookingID, to); err != nil {
		return err
	}
	p.Status = to
	p.SettledAt = &at
	r.store.payments[id] = p
	return nil
}

// uniquePayment mirrors the partial unique index over pending and approved
// payments.
func (s *Store) uniquePayment(id, bookingID string, status model.PaymentStatus) error {
	if !active(status) {
		return nil
	}
	for _, p := range s.payments {
		if p.ID != id && p.BookingID == bookingID && active(p.Status) {
			return paymentserrors.ErrActivePayment
		}
	}
	return nil
}

func active(status model.PaymentStatus) bool {
	return status == model.PaymentPending || status == model.PaymentApproved
}

func (r *paymentRepository) HasApproved(_ context.Context, bookingID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.failure("payments.HasApproved"); err != nil {
		return false, err
	}
	for _, p := range r.store.payments {
		if p.BookingID == bookingID && p.Status == model.PaymentApproved {
			return true, nil
		}
	}
	return false, nil
}

func (r *paymentRepository) FindByBooking(_ context.Context, bookingID string) ([]*model.Payment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.failure("payments.FindByBooking"); err != nil {
		return nil, err
	}
	var out []*model.Payment
	for _, p := range r.store.payments {
		if p.BookingID == bookingID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *paymentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.store.transaction(ctx, fn)
}

type propertyRepository struct {
	store *Store
}

func (r *propertyRepository) FindByID(_ context.Context, id string) (*model.Property, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.failure("properties.FindByID"); err != nil {
		return nil, err
	}
	p, ok := r.store.properties[id]
	if !ok {
		return nil, propertieserrors.ErrNotFound
	}
	return &p, nil
}

func (r *propertyRepository) FindByIDs(_ context.Context, ids []string) (map[string]*model.Property, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.failure("properties.FindByIDs"); err != nil {
		return nil, err
	}
	out := make(map[string]*model.Property, len(ids))
	for _, id := range ids {
		if p, ok := r.store.properties[id]; ok {
			p := p
			out[id] = &p
		}
	}
	return out, nil
}

func (r *propertyRepository) FindIDsByOwner(_ context.Context, ownerID string) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.failure("properties.FindIDsByOwner"); err != nil {
		return nil, err
	}
	var ids []string
	for _, p := range r.store.properties {
		if p.OwnerID == ownerID {
			ids = append(ids, p.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
