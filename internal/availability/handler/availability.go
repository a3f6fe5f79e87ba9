package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"gleam/internal/availability/service"
	apperrors "gleam/pkg/errors"
	httputil "gleam/pkg/http"
	"gleam/pkg/logger"
	"gleam/pkg/model"
)

type AvailabilityHandler struct {
	service      service.AvailabilityService
	log          *logger.Logger
	requireAdmin func(httprouter.Handle) httprouter.Handle
}

func NewAvailabilityHandler(
	service service.AvailabilityService,
	log *logger.Logger,
	requireAdmin func(httprouter.Handle) httprouter.Handle,
) *AvailabilityHandler {
	return &AvailabilityHandler{
		service:      service,
		log:          log,
		requireAdmin: requireAdmin,
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/availability", h.GetAll)
	router.GET("/bookable-dates", h.GetBookableDates)
	router.GET("/bookable-slots", h.GetBookableSlots)

	router.POST("/availability", h.requireAdmin(h.Upsert))
	router.GET("/admin/availability", h.requireAdmin(h.GetAnnotated))
}

func (h *AvailabilityHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	days, err := h.service.GetAll(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, days); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "error", err)
	}
}

func (h *AvailabilityHandler) GetBookableDates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	days, err := h.service.GetBookableDates(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetBookableDates", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, days); err != nil {
		h.log.Error("failed to write success response", "handler", "GetBookableDates", "error", err)
	}
}

func (h *AvailabilityHandler) GetBookableSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date := r.URL.Query().Get("date")
	if date == "" {
		if err := httputil.WriteError(w, apperrors.InvalidInput("Date parameter is required")); err != nil {
			h.log.Error("failed to write error response", "handler", "GetBookableSlots", "error", err)
		}
		return
	}

	slots, err := h.service.GetBookableSlots(r.Context(), date)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetBookableSlots", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "GetBookableSlots", "error", err)
	}
}

func (h *AvailabilityHandler) Upsert(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var day model.DayAvailability
	if err := json.NewDecoder(r.Body).Decode(&day); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Upsert", "error", writeErr)
		}
		return
	}

	created, err := h.service.Upsert(r.Context(), &day)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Upsert", "error", writeErr)
		}
		return
	}

	if created {
		if err := httputil.WriteCreated(w, day); err != nil {
			h.log.Error("failed to write created response", "handler", "Upsert", "error", err)
		}
		return
	}
	if err := httputil.WriteSuccess(w, day); err != nil {
		h.log.Error("failed to write success response", "handler", "Upsert", "error", err)
	}
}

func (h *AvailabilityHandler) GetAnnotated(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	days, err := h.service.GetAnnotated(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAnnotated", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, days); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAnnotated", "error", err)
	}
}
