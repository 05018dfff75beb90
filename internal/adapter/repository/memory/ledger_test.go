package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProperty(t *testing.T, l *Ledger) *domain.Property {
	t.Helper()
	p, err := domain.NewProperty("seller-1", domain.SubmitPropertyInput{
		Title:        "Flat",
		Type:         domain.TypeFlat,
		Purpose:      domain.PurposeSale,
		Location:     "Astana",
		Description:  "two rooms",
		MarketAmount: decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	require.NoError(t, l.CreateProperty(context.Background(), p))
	return p
}

func TestWithinPropertyCommits(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(time.Second, logger.NewNop())
	p := newProperty(t, l)

	err := l.WithinProperty(ctx, p.ID, func(ctx context.Context, tx domain.LedgerTx) error {
		cur, err := tx.ReadProperty(ctx, p.ID)
		if err != nil {
			return err
		}
		cur.Title = "Renamed"
		if err := tx.WritePropertyIfUnchanged(ctx, cur); err != nil {
			return err
		}
		return tx.InsertImage(ctx, &domain.Image{PropertyID: p.ID, UploadedBy: domain.UploadedBySeller})
	})
	require.NoError(t, err)

	got, err := l.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, int64(2), got.Version)

	imgs, err := l.ListImages(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, imgs, 1)
}

func TestWithinPropertyRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(time.Second, logger.NewNop())
	p := newProperty(t, l)
	boom := errors.New("boom")

	err := l.WithinProperty(ctx, p.ID, func(ctx context.Context, tx domain.LedgerTx) error {
		cur, _ := tx.ReadProperty(ctx, p.ID)
		cur.Status = domain.StatusLive
		require.NoError(t, tx.WritePropertyIfUnchanged(ctx, cur))
		b := &domain.Booking{PropertyID: p.ID, Status: domain.BookingStatusHold}
		require.NoError(t, tx.InsertBooking(ctx, b))

		staged, err := tx.ActiveBooking(ctx, p.ID)
		require.NoError(t, err, "staged booking visible inside the scope")
		assert.Equal(t, b.ID, staged.ID)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := l.GetProperty(ctx, p.ID)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, int64(1), got.Version)
	held, _ := l.ListBookings(ctx, domain.BookingStatusHold)
	assert.Empty(t, held)
}

func TestWithinPropertyRollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(time.Second, logger.NewNop())
	p := newProperty(t, l)

	assert.Panics(t, func() {
		_ = l.WithinProperty(ctx, p.ID, func(ctx context.Context, tx domain.LedgerTx) error {
			cur, _ := tx.ReadProperty(ctx, p.ID)
			cur.Title = "never"
			_ = tx.WritePropertyIfUnchanged(ctx, cur)
			panic("scope failure")
		})
	})

	got, _ := l.GetProperty(ctx, p.ID)
	assert.Equal(t, "Flat", got.Title)

	// The lock is released after the panic.
	err := l.WithinProperty(ctx, p.ID, func(ctx context.Context, tx domain.LedgerTx) error { return nil })
	assert.NoError(t, err)
}

func TestWriteIfUnchangedDetectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(time.Second, logger.NewNop())
	p := newProperty(t, l)

	err := l.WithinProperty(ctx, p.ID, func(ctx context.Context, tx domain.LedgerTx) error {
		stale := *p
		stale.Version = 7
		return tx.WritePropertyIfUnchanged(ctx, &stale)
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestWithinPropertyUnknownProperty(t *testing.T) {
	l := NewLedger(time.Second, logger.NewNop())
	err := l.WithinProperty(context.Background(), "missing", func(ctx context.Context, tx domain.LedgerTx) error { return nil })
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWithinPropertySerialisesSameProperty(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(time.Second, logger.NewNop())
	p := newProperty(t, l)

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.WithinProperty(ctx, p.ID, func(ctx context.Context, tx domain.LedgerTx) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}

func TestWithinPropertyTimesOutWaitingForLock(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(20*time.Millisecond, logger.NewNop())
	p := newProperty(t, l)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = l.WithinProperty(context.Background(), p.ID, func(ctx context.Context, tx domain.LedgerTx) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	err := l.WithinProperty(ctx, p.ID, func(ctx context.Context, tx domain.LedgerTx) error { return nil })
	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.True(t, domain.IsRetryable(err))
	close(release)
}

func TestDifferentPropertiesDoNotContend(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(time.Second, logger.NewNop())
	a := newProperty(t, l)
	b := newProperty(t, l)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = l.WithinProperty(ctx, a.ID, func(ctx context.Context, tx domain.LedgerTx) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	defer close(release)

	err := l.WithinProperty(ctx, b.ID, func(ctx context.Context, tx domain.LedgerTx) error { return nil })
	assert.NoError(t, err)
}

func TestScopeRejectsRecordsOfOtherProperties(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(time.Second, logger.NewNop())
	p := newProperty(t, l)
	other := newProperty(t, l)

	err := l.WithinProperty(ctx, p.ID, func(ctx context.Context, tx domain.LedgerTx) error {
		_, err := tx.ReadProperty(ctx, other.ID)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = l.WithinProperty(ctx, p.ID, func(ctx context.Context, tx domain.LedgerTx) error {
		return tx.InsertBooking(ctx, &domain.Booking{PropertyID: other.ID, Status: domain.BookingStatusHold})
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCountProperties(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(time.Second, logger.NewNop())
	pending := newProperty(t, l)
	live := newProperty(t, l)
	sold := newProperty(t, l)
	_ = pending

	assign := func(id, agentID string, status domain.PropertyStatus) {
		err := l.WithinProperty(ctx, id, func(ctx context.Context, tx domain.LedgerTx) error {
			cur, err := tx.ReadProperty(ctx, id)
			if err != nil {
				return err
			}
			cur.AgentID = agentID
			cur.Status = status
			return tx.WritePropertyIfUnchanged(ctx, cur)
		})
		require.NoError(t, err)
	}
	assign(live.ID, "agent-1", domain.StatusLive)
	assign(sold.ID, "agent-1", domain.StatusSold)

	counts, err := l.CountProperties(ctx, domain.PropertyFilter{SellerID: "seller-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.PropertyCounts{Total: 3, Pending: 1, Live: 1, Sold: 1}, counts)

	counts, err = l.CountProperties(ctx, domain.PropertyFilter{SellerID: "seller-2"})
	require.NoError(t, err)
	assert.Zero(t, counts.Total)

	byAgent, err := l.CountPropertiesByAgent(ctx)
	require.NoError(t, err)
	require.Len(t, byAgent, 1)
	assert.Equal(t, domain.PropertyCounts{Total: 2, Live: 1, Sold: 1}, byAgent["agent-1"])
}
