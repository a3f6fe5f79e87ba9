package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"gleam/internal/auth/service"
	apperrors "gleam/pkg/errors"
	httputil "gleam/pkg/http"
	"gleam/pkg/logger"
)

type AuthHandler struct {
	service service.AuthService
	log     *logger.Logger
}

func NewAuthHandler(service service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log,
	}
}

func (h *AuthHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/admin/login", h.Login)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Login", "error", writeErr)
		}
		return
	}
	if req.Username == "" || req.Password == "" {
		if err := httputil.WriteError(w, apperrors.InvalidInput("Username and password are required")); err != nil {
			h.log.Error("failed to write error response", "handler", "Login", "error", err)
		}
		return
	}

	token, expiresAt, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Login", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, loginResponse{Token: token, ExpiresAt: expiresAt}); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "error", err)
	}
}
