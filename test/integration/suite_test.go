//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	propertiesrepo "vizin/internal/properties/repository"
	"vizin/pkg/auth"
	"vizin/pkg/client"
	"vizin/pkg/config"
	"vizin/pkg/logger"
	"vizin/pkg/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// suite talks to a running bookings service and seeds properties straight
// into its database.
type suite struct {
	cfg     *config.Config
	baseURL string
	tokens  *auth.Tokens
}

func newSuite(t *testing.T) *suite {
	t.Helper()

	cfg, err := config.Parse(config.ServiceBookings)
	if err != nil {
		t.Fatalf("invalid configuration: %v", err)
	}
	cfg.Log = logger.Discard()
	cfg.Client = client.NewClient()
	cfg.SetMongo()
	t.Cleanup(func() { cfg.Client.GracefulShutdown(context.Background(), cfg.Log) })

	baseURL := os.Getenv("TEST_SERVER_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	s := &suite{cfg: cfg, baseURL: baseURL, tokens: auth.NewTokens(cfg.JWTSecret)}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := client.NewHttpClient(baseURL).WaitForHealthy(ctx, 30*time.Second); err != nil {
		t.Fatalf("bookings service not ready: %v", err)
	}
	return s
}

func (s *suite) clientFor(t *testing.T, userID string, role model.Role) *client.BookingClient {
	t.Helper()
	token, err := s.tokens.Issue(auth.Actor{ID: userID, Role: role}, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return client.NewBookingClient(s.baseURL, token)
}

func (s *suite) seedProperty(t *testing.T, ownerID string, capacity int, price string) *model.Property {
	t.Helper()
	p := &model.Property{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Title:        "Integration flat " + ownerID[:8],
		Capacity:     capacity,
		NightlyPrice: decimal.RequireFromString(price),
	}
	coll := s.cfg.Database().Collection(propertiesrepo.CollectionName)
	if _, err := coll.InsertOne(context.Background(), p); err != nil {
		t.Fatalf("seed property: %v", err)
	}
	t.Cleanup(func() { _, _ = coll.DeleteOne(context.Background(), map[string]string{"_id": p.ID}) })
	return p
}

func expectStatus(t *testing.T, resp *client.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status = %d, want %d (%s)", resp.StatusCode, want, client.GetErrorMessage(resp))
	}
}

func daysFromNow(n int) string {
	return time.Now().UTC().AddDate(0, 0, n).Format(model.DateLayout)
}
