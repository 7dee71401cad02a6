// Package store declares the persistence contract of the booking core.
//
// Every counter mutation and every booking write happens inside InTx. A Tx
// serialises work per inventory key: a Lock* call blocks until no other
// transaction holds the same key and keeps it until commit or rollback.
// Different keys never block each other.
package store

import (
	"context"

	"github.com/iliyamo/booking-hub/internal/model"
)

// Queries are non-locking reads. Outside a transaction their results are
// advisory; inside one, reads after a Lock* call on the same key are
// current.
type Queries interface {
	Showtime(ctx context.Context, id uint64) (*model.Showtime, error)
	TicketTier(ctx context.Context, eventID, tierID uint64) (*model.TicketTier, error)
	Restaurant(ctx context.Context, id uint64) (*model.Restaurant, error)
	// CountConfirmedAtSlot counts confirmed restaurant bookings at the exact
	// restaurant/date/time tuple.
	CountConfirmedAtSlot(ctx context.Context, slot model.Slot) (int, error)
	Booking(ctx context.Context, id uint64) (*model.Booking, error)
	// ListBookings returns one page and the total number of matches.
	ListBookings(ctx context.Context, f model.BookingFilter) ([]model.Booking, int, error)
}

// Tx is a unit of work.
type Tx interface {
	Queries

	LockShowtime(ctx context.Context, id uint64) (*model.Showtime, error)
	LockTicketTier(ctx context.Context, eventID, tierID uint64) (*model.TicketTier, error)
	LockRestaurantSlot(ctx context.Context, slot model.Slot) error
	LockBooking(ctx context.Context, id uint64) (*model.Booking, error)

	// InsertBooking stores b and assigns b.ID.
	InsertBooking(ctx context.Context, b *model.Booking) error
	// UpdateBooking persists status, payment_status, special_requests and
	// updated_at.
	UpdateBooking(ctx context.Context, b *model.Booking) error
	DeleteBooking(ctx context.Context, id uint64) error

	// AdjustAvailableSeats adds delta to available_seats. It fails with
	// model.ErrInsufficientInventory when the result would leave
	// 0..total_seats.
	AdjustAvailableSeats(ctx context.Context, showtimeID uint64, delta int) error
	// AdjustTicketsSold adds delta to quantity_sold, failing with
	// model.ErrInsufficientInventory outside 0..quantity_available.
	AdjustTicketsSold(ctx context.Context, tierID uint64, delta int) error
	// AdjustEventAttendees adds delta to current_attendees, floored at 0.
	AdjustEventAttendees(ctx context.Context, eventID uint64, delta int) error
}

// Store is the entry point used by the booking service.
type Store interface {
	Queries
	// InTx runs fn atomically. If fn returns an error or panics, all writes
	// are rolled back and the error is returned unchanged.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
