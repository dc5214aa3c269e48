package repository

import (
	"context"
	"fmt"
	"time"

	paymentserrors "vizin/internal/payments/errors"
	"vizin/pkg/config"
	mongotx "vizin/pkg/db/mongo"
	"vizin/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Payments"

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	Settle(ctx context.Context, id string, from, to model.PaymentStatus, at time.Time) error
	HasApproved(ctx context.Context, bookingID string) (bool, error)
	FindByBooking(ctx context.Context, bookingID string) ([]*model.Payment, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoPaymentRepository struct {
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
	timeout    time.Duration
}

func NewMongoPaymentRepository(cfg *config.Config) PaymentRepository {
	return &mongoPaymentRepository{
		collection: cfg.Database().Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
		timeout:    cfg.MongoQueryTimeout,
	}
}

// Create stores one payment attempt. A second pending or approved payment for
// the same booking violates the unique partial index and yields
// ErrActivePayment.
func (r *mongoPaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, payment); err != nil {
		if mongotx.IsDuplicateKey(err) {
			return paymentserrors.ErrActivePayment
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// Settle moves a payment from one status to another. It returns
// ErrStatusChanged when the payment is no longer in the from status.
func (r *mongoPaymentRepository) Settle(ctx context.Context, id string, from, to model.PaymentStatus, at time.Time) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "settled_at": at}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return paymentserrors.ErrActivePayment
		}
		return fmt.Errorf("failed to settle payment: %w", err)
	}
	if result.MatchedCount == 0 {
		return paymentserrors.ErrStatusChanged
	}
	return nil
}

func (r *mongoPaymentRepository) HasApproved(ctx context.Context, bookingID string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{"booking_id": bookingID, "status": model.PaymentApproved}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count approved payments: %w", err)
	}
	return count > 0, nil
}

func (r *mongoPaymentRepository) FindByBooking(ctx context.Context, bookingID string) ([]*model.Payment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find payments: %w", err)
	}
	defer cursor.Close(ctx)

	var payments []*model.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}
	return payments, nil
}

func (r *mongoPaymentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
