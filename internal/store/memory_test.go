package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/booking-hub/internal/model"
)

func seeded() *Memory {
	m := NewMemory()
	m.AddShowtime(model.Showtime{ID: 1, TotalSeats: 10, AvailableSeats: 10})
	m.AddShowtime(model.Showtime{ID: 2, TotalSeats: 10, AvailableSeats: 10})
	m.AddTicketTier(model.TicketTier{ID: 3, EventID: 9, QuantityAvailable: 5})
	return m
}

func TestMemoryRollbackUndoesEveryWrite(t *testing.T) {
	m := seeded()
	ctx := context.Background()
	boom := errors.New("boom")

	err := m.InTx(ctx, func(ctx context.Context, tx Tx) error {
		require.NoError(t, tx.AdjustAvailableSeats(ctx, 1, -4))
		require.NoError(t, tx.AdjustTicketsSold(ctx, 3, 2))
		require.NoError(t, tx.AdjustEventAttendees(ctx, 9, 2))
		require.NoError(t, tx.InsertBooking(ctx, &model.Booking{UserID: 1, Type: model.BookingMovie}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	st, err := m.Showtime(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, st.AvailableSeats)
	tier, err := m.TicketTier(ctx, 9, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, tier.QuantitySold)
	assert.Equal(t, 0, m.EventAttendees(9))
	_, total, err := m.ListBookings(ctx, model.BookingFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestMemoryRollbackOnPanic(t *testing.T) {
	m := seeded()
	ctx := context.Background()
	assert.Panics(t, func() {
		_ = m.InTx(ctx, func(ctx context.Context, tx Tx) error {
			_ = tx.AdjustAvailableSeats(ctx, 1, -1)
			panic("bad")
		})
	})
	st, _ := m.Showtime(ctx, 1)
	assert.Equal(t, 10, st.AvailableSeats)

	// the key must have been released
	require.NoError(t, m.InTx(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.LockShowtime(ctx, 1)
		return err
	}))
}

func TestMemoryAdjustGuardsRange(t *testing.T) {
	m := seeded()
	ctx := context.Background()
	err := m.InTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.AdjustAvailableSeats(ctx, 1, -11)
	})
	assert.ErrorIs(t, err, model.ErrInsufficientInventory)
	err = m.InTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.AdjustAvailableSeats(ctx, 1, 1)
	})
	assert.ErrorIs(t, err, model.ErrInsufficientInventory)
	err = m.InTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.AdjustTicketsSold(ctx, 3, 6)
	})
	assert.ErrorIs(t, err, model.ErrInsufficientInventory)
}

func TestMemoryUncommittedBookingIsHidden(t *testing.T) {
	m := seeded()
	ctx := context.Background()
	inserted := make(chan uint64)
	proceed := make(chan struct{})
	done := make(chan error)

	go func() {
		done <- m.InTx(ctx, func(ctx context.Context, tx Tx) error {
			b := &model.Booking{UserID: 1, Type: model.BookingMovie}
			if err := tx.InsertBooking(ctx, b); err != nil {
				return err
			}
			if _, err := tx.Booking(ctx, b.ID); err != nil {
				return err
			}
			inserted <- b.ID
			<-proceed
			return nil
		})
	}()

	id := <-inserted
	_, err := m.Booking(ctx, id)
	assert.ErrorIs(t, err, model.ErrNotFound)
	close(proceed)
	require.NoError(t, <-done)

	b, err := m.Booking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, b.ID)
}

func TestMemoryLocksArePerKey(t *testing.T) {
	m := seeded()
	ctx := context.Background()
	holding := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = m.InTx(ctx, func(ctx context.Context, tx Tx) error {
			if _, err := tx.LockShowtime(ctx, 1); err != nil {
				return err
			}
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	// a different showtime proceeds while showtime 1 is held
	err := m.InTx(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.LockShowtime(ctx, 2)
		return err
	})
	require.NoError(t, err)

	// the same showtime waits; give up via the context
	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err = m.InTx(waitCtx, func(ctx context.Context, tx Tx) error {
		_, err := tx.LockShowtime(ctx, 1)
		return err
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, model.ErrPersistence)

	close(release)
	wg.Wait()
}

func TestMemoryListBookings(t *testing.T) {
	m := NewMemory()
	base := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		m.AddBooking(model.Booking{
			UserID:      uint64(1 + i%2),
			Type:        model.BookingMovie,
			Status:      model.StatusPending,
			BookingDate: base.Add(time.Duration(5-i) * time.Hour),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
	}
	ctx := context.Background()

	items, total, err := m.ListBookings(ctx, model.BookingFilter{UserID: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, uint64(5), items[0].ID, "newest first")

	items, _, err = m.ListBookings(ctx, model.BookingFilter{Ascending: true})
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.Equal(t, uint64(5), items[0].ID, "earliest booking date first")

	items, total, err = m.ListBookings(ctx, model.BookingFilter{Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, items)

	items, total, err = m.ListBookings(ctx, model.BookingFilter{Limit: 10, Offset: -20})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, items)
}

func TestMemoryLoadSeed(t *testing.T) {
	m := NewMemory()
	err := m.LoadSeed(strings.NewReader(`{
		"showtimes": [{"id": 4, "total_seats": 50, "available_seats": 50}],
		"ticket_tiers": [{"id": 2, "event_id": 8, "quantity_available": 100}],
		"restaurants": [{"id": 6, "name": "Nara", "is_active": true}]
	}`))
	require.NoError(t, err)
	ctx := context.Background()
	_, err = m.Showtime(ctx, 4)
	assert.NoError(t, err)
	_, err = m.TicketTier(ctx, 8, 2)
	assert.NoError(t, err)
	_, err = m.TicketTier(ctx, 9, 2)
	assert.ErrorIs(t, err, model.ErrNotFound)
	r, err := m.Restaurant(ctx, 6)
	require.NoError(t, err)
	assert.True(t, r.IsActive)
}
