package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/identity"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: bad", domain.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: no", domain.ErrAuthorization), http.StatusForbidden},
		{identity.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("%w: gone", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: image missing", domain.ErrPrecondition), http.StatusPreconditionFailed},
		{fmt.Errorf("%w: held", domain.ErrConflict), http.StatusConflict},
		{fmt.Errorf("%w: write conflict", domain.ErrTransient), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, statusFor(tt.err), tt.err.Error())
	}
}

func TestWriteError(t *testing.T) {
	log := logger.NewNop()
	staff := httptest.NewRequest(http.MethodPost, "/", nil)
	staff = staff.WithContext(middleware.WithActor(staff.Context(), domain.Actor{ID: "a1", Role: domain.RoleAgent}))
	anon := httptest.NewRequest(http.MethodPost, "/", nil)

	rec := httptest.NewRecorder()
	writeError(rec, staff, log, domain.ErrAuthorization)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	writeError(rec, anon, log, domain.ErrAuthorization)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	writeError(rec, anon, log, identity.ErrAccountNotApproved)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	writeError(rec, staff, log, fmt.Errorf("%w: lock busy", domain.ErrTransient))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"retryable":true`)

	rec = httptest.NewRecorder()
	writeError(rec, staff, log, errors.New("mongo exploded"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "mongo")
}
