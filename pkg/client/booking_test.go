package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vizin/pkg/model"
)

func TestBookingClient_Pay(t *testing.T) {
	var gotPath, gotAuth, gotKey string
	var gotBody model.PaymentRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get(idempotencyHeader)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"payment_id":"p-1","success":true,"amount":"301.5","status":"Approved","message":"Payment approved"}}`))
	}))
	defer srv.Close()

	c := NewBookingClient(srv.URL, "tok")
	resp, err := c.Pay(context.Background(), "b-1", model.PaymentRequest{Method: model.MethodCreditCard, CardNumber: "4400"}, "key-1")
	if err != nil {
		t.Fatalf("Pay() error = %v", err)
	}

	if gotPath != "/api/v1/bookings/b-1/payments" {
		t.Errorf("path = %s", gotPath)
	}
	if gotAuth != "Bearer tok" || gotKey != "key-1" {
		t.Errorf("auth = %q key = %q", gotAuth, gotKey)
	}
	if gotBody.CardNumber != "4400" {
		t.Errorf("body = %+v", gotBody)
	}

	result, err := c.DecodePayment(resp)
	if err != nil {
		t.Fatalf("DecodePayment() error = %v", err)
	}
	if !result.Success || result.PaymentID != "p-1" {
		t.Errorf("result = %+v", result)
	}
}

func TestResponse_DecodeDataErrors(t *testing.T) {
	resp := &Response{Response: &http.Response{StatusCode: http.StatusConflict}, Body: []byte(`{"error":"already paid","code":"CONFLICT"}`)}

	var v model.BookingView
	if err := resp.DecodeData(&v); err == nil {
		t.Fatal("expected error for response without data")
	}
	if GetErrorMessage(resp) != "already paid" || GetErrorCode(resp) != "CONFLICT" {
		t.Errorf("message = %q code = %q", GetErrorMessage(resp), GetErrorCode(resp))
	}
}
