package middleware

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
)

// ContextKey is the type of request context keys set by this package.
type ContextKey string

const ActorCtxKey = ContextKey("actor")

// ActorFromContext returns the authenticated actor or the anonymous one.
func ActorFromContext(ctx context.Context) domain.Actor {
	if actor, ok := ctx.Value(ActorCtxKey).(domain.Actor); ok {
		return actor
	}
	return domain.Anonymous()
}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, ActorCtxKey, actor)
}
