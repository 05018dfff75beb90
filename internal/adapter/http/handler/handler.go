// Package handler holds the JSON/HTTP transport of the estate service. It
// decodes requests, resolves the actor and maps domain errors to status codes.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/identity"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, log *logger.Logger, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("failed to encode response", zap.Error(err))
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrValidation, err)
	}
	return nil
}

// statusFor maps the domain error taxonomy to HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials), errors.Is(err, identity.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPrecondition):
		return http.StatusPreconditionFailed
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTransient):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusForbidden && !errors.Is(err, identity.ErrAccountNotApproved) &&
		middleware.ActorFromContext(r.Context()).Role == domain.RoleAnonymous {
		status = http.StatusUnauthorized
	}

	resp := errorResponse{Error: err.Error()}
	switch status {
	case http.StatusInternalServerError:
		log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		resp.Error = "internal error"
	case http.StatusServiceUnavailable:
		log.Warn("request hit store contention", zap.String("path", r.URL.Path), zap.Error(err))
		resp.Retryable = true
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(w, log, status, resp)
}
