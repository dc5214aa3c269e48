package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections_CoverRepositories(t *testing.T) {
	want := map[string]bool{"Properties": false, "Bookings": false, "Payments": false, "Booking_guards": false}
	for _, def := range Collections() {
		if _, ok := want[def.Name]; !ok {
			t.Errorf("unexpected collection %s", def.Name)
		}
		want[def.Name] = true
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("collection %s is not migrated", name)
		}
	}
}

func TestPaymentsIndexes_UniqueActivePayment(t *testing.T) {
	var found bool
	for _, idx := range PaymentsIndexes {
		if idx.Options == nil || idx.Options.Name == nil || *idx.Options.Name != ActivePaymentIndex {
			continue
		}
		found = true
		if idx.Options.Unique == nil || !*idx.Options.Unique {
			t.Error("active payment index must be unique")
		}
		filter, ok := idx.Options.PartialFilterExpression.(bson.M)
		if !ok {
			t.Fatalf("partial filter = %v", idx.Options.PartialFilterExpression)
		}
		status, _ := filter["status"].(bson.M)
		in, _ := status["$in"].(bson.A)
		if len(in) != 2 || in[0] != "Pending" || in[1] != "Approved" {
			t.Errorf("partial filter = %v, want status in [Pending Approved]", filter)
		}
	}
	if !found {
		t.Fatal("active payment index missing")
	}
}
