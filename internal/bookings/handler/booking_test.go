package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vizin/internal/bookings/service"
	"vizin/internal/bookings/validator"
	"vizin/internal/testutil"
	"vizin/pkg/auth"
	"vizin/pkg/clock"
	apperrors "vizin/pkg/errors"
	"vizin/pkg/logger"
	"vizin/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"
)

const bookingID = "3f2b8c1e-8d44-4c1a-9a57-0f6a2b4c9d10"

type fakeService struct {
	createInput model.CreateBookingInput
	createErr   error
	cancelArgs  [2]string
	cancelErr   error
	historyRole model.Role
	history     *model.BookingHistory
}

func (f *fakeService) Create(_ context.Context, input model.CreateBookingInput) (*model.BookingView, error) {
	f.createInput = input
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &model.BookingView{
		ID:          bookingID,
		PropertyID:  input.PropertyID,
		CheckIn:     input.CheckIn.Format(model.DateLayout),
		CheckOut:    input.CheckOut.Format(model.DateLayout),
		TotalNights: 3,
		TotalCost:   decimal.NewFromInt(300),
		Status:      "Created",
	}, nil
}

func (f *fakeService) Cancel(_ context.Context, id, requester string) error {
	f.cancelArgs = [2]string{id, requester}
	return f.cancelErr
}

func (f *fakeService) History(_ context.Context, _ string, role model.Role) (*model.BookingHistory, error) {
	f.historyRole = role
	if f.history == nil {
		return &model.BookingHistory{Ongoing: []model.BookingView{}, Past: []model.BookingView{}}, nil
	}
	return f.history, nil
}

func newRouter(svc *fakeService) *httprouter.Router {
	log := logger.Discard()
	h := NewBookingHandler(svc, validator.NewBookingValidator(log), log)
	router := httprouter.New()
	h.RegisterRoutes(router)
	return router
}

func do(router http.Handler, method, path, body string, actor *auth.Actor) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != nil {
		req = req.WithContext(auth.WithActor(req.Context(), *actor))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

var guest = &auth.Actor{ID: "guest-1", Role: model.RoleGuest}

func TestCreate(t *testing.T) {
	svc := &fakeService{}
	router := newRouter(svc)

	rec := do(router, http.MethodPost, "/api/v1/properties/prop-1/bookings",
		`{"check_in":"2030-01-12","check_out":"2030-01-15","guest_count":2}`, guest)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.createInput.GuestID != "guest-1" || svc.createInput.PropertyID != "prop-1" || svc.createInput.GuestCount != 2 {
		t.Errorf("unexpected input: %+v", svc.createInput)
	}
	if got := svc.createInput.CheckIn.Format(model.DateLayout); got != "2030-01-12" {
		t.Errorf("check-in = %s", got)
	}

	var resp struct {
		Data model.BookingView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.ID != bookingID || resp.Data.TotalNights != 3 {
		t.Errorf("unexpected body: %+v", resp.Data)
	}
}

func TestCreate_GuestCountAboveCapacity(t *testing.T) {
	store := testutil.NewStore()
	store.AddProperty(model.Property{
		ID:           "prop-1",
		OwnerID:      "host-1",
		Title:        "Cabin",
		Capacity:     4,
		NightlyPrice: decimal.NewFromInt(90),
	})
	svc := service.NewBookingService(
		store.BookingRepository(),
		store.GuardRepository(),
		store.PropertyRepository(),
		&testutil.RecordingPublisher{},
		clock.Fixed(time.Date(2030, 1, 10, 9, 30, 0, 0, time.UTC)),
		testutil.Config(),
	)
	log := logger.Discard()
	router := httprouter.New()
	NewBookingHandler(svc, validator.NewBookingValidator(log), log).RegisterRoutes(router)

	for _, count := range []int{5, 150, 100000} {
		body := fmt.Sprintf(`{"check_in":"2030-01-12","check_out":"2030-01-15","guest_count":%d}`, count)
		rec := do(router, http.MethodPost, "/api/v1/properties/prop-1/bookings", body, guest)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("guest_count=%d: status = %d, body = %s", count, rec.Code, rec.Body.String())
		}
		var resp struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Code != apperrors.CodeCapacityExceeded {
			t.Errorf("guest_count=%d: code = %s, want %s", count, resp.Code, apperrors.CodeCapacityExceeded)
		}
	}
	if store.BookingCount() != 0 {
		t.Errorf("bookings = %d, want 0", store.BookingCount())
	}
}

func TestCreate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		actor      *auth.Actor
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{name: "unauthenticated", body: `{}`, wantStatus: http.StatusUnauthorized, wantCode: apperrors.CodeUnauthorized},
		{name: "host", body: `{}`, actor: &auth.Actor{ID: "host-1", Role: model.RoleHost}, wantStatus: http.StatusForbidden, wantCode: apperrors.CodeForbidden},
		{name: "malformed json", body: `{"check_in":`, actor: guest, wantStatus: http.StatusBadRequest, wantCode: apperrors.CodeInvalidInput},
		{name: "unknown field", body: `{"check_in":"2030-01-12","check_out":"2030-01-15","guest_count":2,"price":1}`, actor: guest, wantStatus: http.StatusBadRequest, wantCode: apperrors.CodeInvalidInput},
		{name: "invalid date", body: `{"check_in":"12/01/2030","check_out":"2030-01-15","guest_count":2}`, actor: guest, wantStatus: http.StatusUnprocessableEntity, wantCode: apperrors.CodeValidation},
		{name: "conflict", body: `{"check_in":"2030-01-12","check_out":"2030-01-15","guest_count":2}`, actor: guest, serviceErr: apperrors.Conflict("already booked for this period"), wantStatus: http.StatusConflict, wantCode: apperrors.CodeConflict},
		{name: "capacity", body: `{"check_in":"2030-01-12","check_out":"2030-01-15","guest_count":9}`, actor: guest, serviceErr: apperrors.CapacityExceeded(9, 4), wantStatus: http.StatusUnprocessableEntity, wantCode: apperrors.CodeCapacityExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(&fakeService{createErr: tt.serviceErr})
			rec := do(router, http.MethodPost, "/api/v1/properties/prop-1/bookings", tt.body, tt.actor)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var resp struct {
				Code string `json:"code"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestCancel(t *testing.T) {
	svc := &fakeService{}
	router := newRouter(svc)

	rec := do(router, http.MethodPost, "/api/v1/bookings/"+bookingID+"/cancel", "", guest)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.cancelArgs != [2]string{bookingID, "guest-1"} {
		t.Errorf("cancel args = %v", svc.cancelArgs)
	}
	if !strings.Contains(rec.Body.String(), `"canceled":true`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestCancel_InvalidID(t *testing.T) {
	svc := &fakeService{}
	rec := do(newRouter(svc), http.MethodPost, "/api/v1/bookings/42/cancel", "", guest)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if svc.cancelArgs[0] != "" {
		t.Error("service should not be called")
	}
}

func TestCancel_Forbidden(t *testing.T) {
	svc := &fakeService{cancelErr: apperrors.Forbidden("not authorized to cancel this booking")}
	rec := do(newRouter(svc), http.MethodPost, "/api/v1/bookings/"+bookingID+"/cancel", "", guest)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestHistory_PassesActorRole(t *testing.T) {
	svc := &fakeService{}
	host := &auth.Actor{ID: "host-1", Role: model.RoleHost}

	rec := do(newRouter(svc), http.MethodGet, "/api/v1/bookings/history", "", host)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.historyRole != model.RoleHost {
		t.Errorf("role = %q, want host", svc.historyRole)
	}
	if !strings.Contains(rec.Body.String(), `"ongoing":[]`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}
