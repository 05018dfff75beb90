package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
)

// TokenParser turns a bearer token into an actor.
type TokenParser interface {
	Authenticate(ctx context.Context, token string) (domain.Actor, error)
}

// JWTAuth resolves the Authorization header into the request actor. A request
// without a token proceeds as anonymous; a malformed or invalid token is
// rejected with 401.
func JWTAuth(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), domain.Anonymous())))
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				unauthorized(w, "authorization header must be a bearer token")
				return
			}
			actor, err := parser.Authenticate(r.Context(), strings.TrimSpace(token))
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
