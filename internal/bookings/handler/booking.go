package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"gleam/internal/bookings/service"
	apperrors "gleam/pkg/errors"
	httputil "gleam/pkg/http"
	"gleam/pkg/logger"
	"gleam/pkg/model"
)

type BookingHandler struct {
	service      service.BookingService
	log          *logger.Logger
	requireAdmin func(httprouter.Handle) httprouter.Handle
}

func NewBookingHandler(
	service service.BookingService,
	log *logger.Logger,
	requireAdmin func(httprouter.Handle) httprouter.Handle,
) *BookingHandler {
	return &BookingHandler{
		service:      service,
		log:          log,
		requireAdmin: requireAdmin,
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/bookings", h.Create)

	router.GET("/bookings", h.requireAdmin(h.GetUpcoming))
	router.PATCH("/bookings/:id", h.requireAdmin(h.Apply))
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	booking, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, map[string]string{"bookingId": booking.ID}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) GetUpcoming(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookings, err := h.service.GetUpcoming(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetUpcoming", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "GetUpcoming", "error", err)
	}
}

// Apply dispatches the admin PATCH body to the matching status transition.
func (h *BookingHandler) Apply(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var action model.BookingAction
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Apply", "error", writeErr)
		}
		return
	}

	var booking *model.Booking
	var err error
	switch action.Action {
	case model.ActionConfirm:
		booking, err = h.service.Confirm(r.Context(), id)
	case model.ActionCancel:
		booking, err = h.service.Cancel(r.Context(), id)
	default:
		err = apperrors.InvalidInput("Action must be \"confirm\" or \"cancel\"")
	}
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Apply", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Apply", "error", err)
	}
}
