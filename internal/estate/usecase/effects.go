package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const notifyTimeout = 15 * time.Second

var tracer = otel.Tracer("estate-service/usecase")

// Effects runs the work that follows a committed transition: cache
// invalidation, events and seller mail. None of it changes the outcome of the
// operation. Every collaborator is optional.
type Effects struct {
	cache    domain.PropertyCache
	events   domain.EventPublisher
	notifier domain.SellerNotifier
	metrics  *metrics.MetricsManager
	log      *logger.Logger

	pending sync.WaitGroup
}

func NewEffects(cache domain.PropertyCache, events domain.EventPublisher, notifier domain.SellerNotifier, m *metrics.MetricsManager, log *logger.Logger) *Effects {
	return &Effects{
		cache:    cache,
		events:   events,
		notifier: notifier,
		metrics:  m,
		log:      log.Named("effects"),
	}
}

// IsRejection reports whether err is a domain outcome rather than an
// infrastructure failure.
func IsRejection(err error) bool {
	for _, target := range []error{
		domain.ErrValidation,
		domain.ErrAuthorization,
		domain.ErrNotFound,
		domain.ErrPrecondition,
		domain.ErrConflict,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// begin opens a span for an operation. The returned func closes it and
// records the outcome.
func (e *Effects) begin(ctx context.Context, operation string, actor domain.Actor) (context.Context, func(error)) {
	started := time.Now()
	ctx, span := tracer.Start(ctx, operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("actor.id", actor.ID),
			attribute.String("actor.role", string(actor.Role)),
		),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		e.metrics.Observe(operation, started, err, IsRejection)
	}
}

// committed invalidates the cached property and publishes the event.
func (e *Effects) committed(ctx context.Context, propertyID, subject string, event interface{}) {
	ctx = context.WithoutCancel(ctx)
	if e.cache != nil && propertyID != "" {
		if err := e.cache.DeleteProperty(ctx, propertyID); err != nil {
			e.metrics.SideEffectFailed("cache")
			e.log.Warn("failed to invalidate property cache", zap.String("property_id", propertyID), zap.Error(err))
		}
	}
	e.publish(ctx, subject, event)
}

func (e *Effects) publish(ctx context.Context, subject string, event interface{}) {
	if e.events == nil {
		return
	}
	if err := e.events.Publish(ctx, subject, event); err != nil {
		e.metrics.SideEffectFailed("event")
		e.log.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

// notifySeller mails the seller in the background.
func (e *Effects) notifySeller(ctx context.Context, sellerID, subject, body string) {
	if e.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		defer cancel()
		if err := e.notifier.NotifySeller(ctx, sellerID, subject, body); err != nil {
			e.metrics.SideEffectFailed("mail")
			e.log.Warn("failed to notify seller", zap.String("seller_id", sellerID), zap.String("subject", subject), zap.Error(err))
		}
	}()
}

// Wait blocks until background notifications finish.
func (e *Effects) Wait() {
	e.pending.Wait()
}
