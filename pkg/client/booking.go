package client

import (
	"context"
	"net/url"

	"vizin/pkg/model"
)

const idempotencyHeader = "Idempotency-Key"

// BookingClient calls the bookings API on behalf of one authenticated user.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseURL, token string) *BookingClient {
	c := NewHttpClient(baseURL)
	c.Token = token
	return &BookingClient{httpClient: c}
}

func (c *BookingClient) Create(ctx context.Context, propertyID string, req model.CreateBookingRequest) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/properties/"+url.PathEscape(propertyID)+"/bookings", req)
}

func (c *BookingClient) CreateRaw(ctx context.Context, propertyID string, rawBody []byte) (*Response, error) {
	return c.httpClient.POSTRaw(ctx, "/api/v1/properties/"+url.PathEscape(propertyID)+"/bookings", rawBody)
}

func (c *BookingClient) Cancel(ctx context.Context, bookingID string) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/bookings/"+url.PathEscape(bookingID)+"/cancel", nil)
}

func (c *BookingClient) History(ctx context.Context) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/bookings/history")
}

// Pay sends a payment. A non-empty idempotencyKey makes retries replay the
// first response.
func (c *BookingClient) Pay(ctx context.Context, bookingID string, req model.PaymentRequest, idempotencyKey string) (*Response, error) {
	path := "/api/v1/bookings/" + url.PathEscape(bookingID) + "/payments"
	if idempotencyKey == "" {
		return c.httpClient.POST(ctx, path, req)
	}
	return c.httpClient.POSTWithHeaders(ctx, path, req, map[string]string{idempotencyHeader: idempotencyKey})
}

func (c *BookingClient) Report(ctx context.Context) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/reports/bookings")
}

func (c *BookingClient) DecodeBooking(resp *Response) (*model.BookingView, error) {
	var view model.BookingView
	if err := resp.DecodeData(&view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *BookingClient) DecodeHistory(resp *Response) (*model.BookingHistory, error) {
	var history model.BookingHistory
	if err := resp.DecodeData(&history); err != nil {
		return nil, err
	}
	return &history, nil
}

func (c *BookingClient) DecodePayment(resp *Response) (*model.PaymentResult, error) {
	var result model.PaymentResult
	if err := resp.DecodeData(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
