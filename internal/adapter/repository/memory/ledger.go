// Package memory is an in-process implementation of the ledger. Scopes on one
// property are serialised by a per-property lock; writes are staged in the
// scope and applied on commit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Ledger struct {
	mu         sync.RWMutex
	properties map[string]*domain.Property
	bookings   map[string]*domain.Booking
	payments   map[string]*domain.Payment
	images     map[string][]*domain.Image

	locksMu sync.Mutex
	locks   map[string]chan struct{}

	txTimeout time.Duration
	log       *logger.Logger
}

func NewLedger(txTimeout time.Duration, log *logger.Logger) *Ledger {
	return &Ledger{
		properties: make(map[string]*domain.Property),
		bookings:   make(map[string]*domain.Booking),
		payments:   make(map[string]*domain.Payment),
		images:     make(map[string][]*domain.Image),
		locks:      make(map[string]chan struct{}),
		txTimeout:  txTimeout,
		log:        log.Named("memory_ledger"),
	}
}

func (l *Ledger) CreateProperty(ctx context.Context, p *domain.Property) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransient, err)
	}
	p.ID = uuid.NewString()
	p.Version = 1

	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *p
	l.properties[p.ID] = &cp
	return nil
}

func (l *Ledger) propertyLock(id string) chan struct{} {
	l.locksMu.Lock()
	defer l.locksMu.Unlock()
	ch, ok := l.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[id] = ch
	}
	return ch
}

func (l *Ledger) WithinProperty(ctx context.Context, propertyID string, fn func(ctx context.Context, tx domain.LedgerTx) error) error {
	if l.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.txTimeout)
		defer cancel()
	}

	l.mu.RLock()
	_, exists := l.properties[propertyID]
	l.mu.RUnlock()
	if !exists {
		return fmt.Errorf("%w: property %s", domain.ErrNotFound, propertyID)
	}

	lock := l.propertyLock(propertyID)
	select {
	case lock <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("%w: waiting for property %s: %v", domain.ErrTransient, propertyID, ctx.Err())
	}
	defer func() { <-lock }()

	tx := newTx(l, propertyID)
	defer func() {
		if r := recover(); r != nil {
			l.log.Debug("scope panicked, staged writes discarded", zap.String("property_id", propertyID))
			panic(r)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		l.log.Debug("scope rolled back", zap.String("property_id", propertyID), zap.Error(err))
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: commit of property %s: %v", domain.ErrTransient, propertyID, err)
	}
	tx.commit()
	return nil
}

func (l *Ledger) ReadBooking(ctx context.Context, id string) (*domain.Booking, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking %s", domain.ErrNotFound, id)
	}
	cp := *b
	return &cp, nil
}

func (l *Ledger) ReadPayment(ctx context.Context, id string) (*domain.Payment, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.payments[id]
	if !ok {
		return nil, fmt.Errorf("%w: payment %s", domain.ErrNotFound, id)
	}
	cp := *p
	return &cp, nil
}

func (l *Ledger) GetProperty(ctx context.Context, id string) (*domain.Property, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.properties[id]
	if !ok {
		return nil, fmt.Errorf("%w: property %s", domain.ErrNotFound, id)
	}
	cp := *p
	return &cp, nil
}

func (l *Ledger) ListProperties(ctx context.Context, filter domain.PropertyFilter) ([]*domain.Property, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*domain.Property, 0)
	for _, p := range l.properties {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		if filter.SellerID != "" && p.SellerID != filter.SellerID {
			continue
		}
		if filter.AgentID != "" && p.AgentID != filter.AgentID {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (l *Ledger) ListImages(ctx context.Context, propertyID string) ([]*domain.Image, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	imgs := l.images[propertyID]
	out := make([]*domain.Image, 0, len(imgs))
	for _, img := range imgs {
		cp := *img
		out = append(out, &cp)
	}
	return out, nil
}

func (l *Ledger) ListBookings(ctx context.Context, status domain.BookingStatus) ([]*domain.Booking, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*domain.Booking, 0)
	for _, b := range l.bookings {
		if status != "" && b.Status != status {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (l *Ledger) CountProperties(ctx context.Context, filter domain.PropertyFilter) (domain.PropertyCounts, error) {
	props, err := l.ListProperties(ctx, filter)
	if err != nil {
		return domain.PropertyCounts{}, err
	}
	var counts domain.PropertyCounts
	for _, p := range props {
		counts.Add(p.Status, 1)
	}
	return counts, nil
}

func (l *Ledger) CountPropertiesByAgent(ctx context.Context) (map[string]domain.PropertyCounts, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]domain.PropertyCounts)
	for _, p := range l.properties {
		if p.AgentID == "" {
			continue
		}
		counts := out[p.AgentID]
		counts.Add(p.Status, 1)
		out[p.AgentID] = counts
	}
	return out, nil
}
