package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"vizin/internal/reports/service"
	"vizin/pkg/auth"
	apperrors "vizin/pkg/errors"
	httputil "vizin/pkg/http"
	"vizin/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

const reportFilename = "bookings.csv"

type ReportHandler struct {
	service service.ReportService
	log     *logger.Logger
}

func NewReportHandler(service service.ReportService, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		log:     log,
	}
}

func (h *ReportHandler) Bookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}
	if !actor.IsHost() {
		h.writeError(w, apperrors.Forbidden("only hosts can export booking reports"))
		return
	}

	rows, err := h.service.HostBookings(r.Context(), actor.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := service.WriteCSV(&buf, rows); err != nil {
		h.writeError(w, apperrors.Internal("Failed to render report", err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+reportFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.Error("failed to write report", "handler", "Bookings", "error", err)
	}
}

func (h *ReportHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/reports/bookings", h.Bookings)
}

func (h *ReportHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "Bookings", "operation", "WriteError", "error", writeErr)
	}
}
