package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
)

type stubParser map[string]domain.Actor

func (p stubParser) Authenticate(_ context.Context, token string) (domain.Actor, error) {
	actor, ok := p[token]
	if !ok {
		return domain.Actor{}, errors.New("bad token")
	}
	return actor, nil
}

func TestJWTAuth(t *testing.T) {
	parser := stubParser{"good": {ID: "a1", Role: domain.RoleAgent}}
	var seen domain.Actor
	h := JWTAuth(parser)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
		actor  domain.Actor
	}{
		{"no token is anonymous", "", http.StatusNoContent, domain.Anonymous()},
		{"valid token", "Bearer good", http.StatusNoContent, domain.Actor{ID: "a1", Role: domain.RoleAgent}},
		{"invalid token", "Bearer nope", http.StatusUnauthorized, domain.Actor{}},
		{"not bearer", "Basic Zm9vOmJhcg==", http.StatusUnauthorized, domain.Actor{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = domain.Actor{}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.actor, seen)
		})
	}
}

func TestLoggerPassesThrough(t *testing.T) {
	h := Logger(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
