package middleware

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"gleam/internal/auth/service"
	apperrors "gleam/pkg/errors"
	httputil "gleam/pkg/http"
	"gleam/pkg/logger"
)

// RequireAdmin gates a route behind a valid admin session token. Every
// rejection is the same generic 401.
func RequireAdmin(auth service.AuthService, log *logger.Logger) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			token := bearerToken(r)
			if token == "" {
				reject(w, log)
				return
			}
			if _, err := auth.Verify(token); err != nil {
				reject(w, log)
				return
			}
			next(w, r, ps)
		}
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func reject(w http.ResponseWriter, log *logger.Logger) {
	if err := httputil.WriteError(w, apperrors.Unauthorized("Unauthorized")); err != nil {
		log.Error("failed to write unauthorized response", "error", err)
	}
}
