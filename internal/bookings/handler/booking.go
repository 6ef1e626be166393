package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"roombook/internal/bookings/service"
	apperrors "roombook/pkg/errors"
	httputil "roombook/pkg/http"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// createBookingBody accepts times as "YYYY-MM-DD HH:MM" (local) or RFC3339.
type createBookingBody struct {
	RequesterID string `json:"requester_id"`
	ResourceID  string `json:"resource_id"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

type AvailabilityResponse struct {
	ResourceID string    `json:"resource_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Available  bool      `json:"available"`
}

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body createBookingBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	req, err := body.toRequest()
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	booking, err := h.service.Create(r.Context(), req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (b createBookingBody) toRequest() (*model.BookingRequest, error) {
	req := &model.BookingRequest{
		RequesterID: b.RequesterID,
		ResourceID:  b.ResourceID,
	}
	if b.Start == "" || b.End == "" {
		return nil, apperrors.InvalidInput("both 'start' and 'end' are required")
	}

	var err error
	if req.Start, err = httputil.ParseTimeParam("start", b.Start); err != nil {
		return nil, err
	}
	if req.End, err = httputil.ParseTimeParam("end", b.End); err != nil {
		return nil, err
	}
	return req, nil
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// Cancel removes a booking on behalf of the requester named in the
// X-Requester-ID header.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requesterID := httputil.ExtractRequesterID(r)
	if requesterID == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("missing "+httputil.RequesterIDHeader+" header")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	booking, err := h.service.CancelBooking(r.Context(), ps.ByName("id"), requesterID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) ListForRequester(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookings, err := h.service.BookingsFor(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListForRequester", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteList(w, bookings); err != nil {
		h.log.Error("failed to write list response", "handler", "ListForRequester", "operation", "WriteList", "error", err)
	}
}

func (h *BookingHandler) ListForResource(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookings, err := h.service.BookingsOn(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListForResource", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteList(w, bookings); err != nil {
		h.log.Error("failed to write list response", "handler", "ListForResource", "operation", "WriteList", "error", err)
	}
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	resourceID := ps.ByName("id")

	iv, err := httputil.ExtractInterval(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Availability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	available, err := h.service.CheckAvailability(r.Context(), resourceID, iv)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Availability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, AvailabilityResponse{
		ResourceID: resourceID,
		Start:      iv.Start,
		End:        iv.End,
		Available:  available,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.DELETE("/api/v1/bookings/id/:id", h.Cancel)
	router.GET("/api/v1/requesters/:id/bookings", h.ListForRequester)
	router.GET("/api/v1/resources/id/:id/bookings", h.ListForResource)
	router.GET("/api/v1/resources/id/:id/availability", h.Availability)
}
