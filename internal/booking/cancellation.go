package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/booking-hub/internal/model"
	"github.com/iliyamo/booking-hub/internal/store"
)

// Compensator releases the inventory held by a booking. It is the only
// path that moves a booking to cancelled or removes it, so each booking
// gives its inventory back exactly once.
type Compensator struct {
	now func() time.Time
}

func NewCompensator(now func() time.Time) *Compensator {
	if now == nil {
		now = time.Now
	}
	return &Compensator{now: now}
}

// Cancel marks the booking cancelled and restores its inventory in one
// unit of work.
func (c *Compensator) Cancel(ctx context.Context, st store.Store, who model.Identity, bookingID uint64) (*model.Booking, error) {
	var out *model.Booking
	err := st.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		b, err := tx.LockBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if !b.OwnedBy(who) {
			return fmt.Errorf("booking %d: %w", bookingID, model.ErrForbidden)
		}
		if err := c.cancelLocked(ctx, tx, b, false); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// cancelLocked cancels b, which the caller has locked in tx. force lets a
// completed booking be cancelled.
func (c *Compensator) cancelLocked(ctx context.Context, tx store.Tx, b *model.Booking, force bool) error {
	if b.Status == model.StatusCancelled {
		return fmt.Errorf("booking %d: %w", b.ID, model.ErrAlreadyCancelled)
	}
	if !force && !b.Status.CanTransitionTo(model.StatusCancelled) {
		return fmt.Errorf("booking %d is %s: %w", b.ID, b.Status, model.ErrInvalidTransition)
	}
	b.Status = model.StatusCancelled
	b.UpdatedAt = c.now()
	if err := tx.UpdateBooking(ctx, b); err != nil {
		return err
	}
	return c.RestoreAvailability(ctx, tx, b)
}

// Delete removes a booking. Only admins may delete. Inventory is restored
// unless the booking was already cancelled.
func (c *Compensator) Delete(ctx context.Context, st store.Store, who model.Identity, bookingID uint64) (*model.Booking, error) {
	if !who.IsAdmin() {
		return nil, fmt.Errorf("delete booking %d: %w", bookingID, model.ErrForbidden)
	}
	var out *model.Booking
	err := st.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		b, err := tx.LockBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.Status != model.StatusCancelled {
			if err := c.RestoreAvailability(ctx, tx, b); err != nil {
				return err
			}
		}
		if err := tx.DeleteBooking(ctx, b.ID); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RestoreAvailability gives back the inventory recorded in the booking's
// details snapshot. Restaurant bookings hold no counter. A counter that
// would leave its range means the stored inventory is inconsistent and is
// reported as a persistence failure.
func (c *Compensator) RestoreAvailability(ctx context.Context, tx store.Tx, b *model.Booking) error {
	err := c.restore(ctx, tx, b)
	if model.IsInsufficientInventory(err) {
		return fmt.Errorf("%w: restore booking %d: %v", model.ErrPersistence, b.ID, err)
	}
	return err
}

func (c *Compensator) restore(ctx context.Context, tx store.Tx, b *model.Booking) error {
	switch d := b.Details.(type) {
	case model.MovieDetails:
		n := len(d.Seats)
		if n == 0 {
			n = b.Quantity
		}
		return tx.AdjustAvailableSeats(ctx, d.ShowtimeID, n)
	case model.EventDetails:
		if err := tx.AdjustTicketsSold(ctx, d.TicketTypeID, -b.Quantity); err != nil {
			return err
		}
		return tx.AdjustEventAttendees(ctx, d.EventID, -b.Quantity)
	case model.RestaurantDetails:
		return nil
	}
	return fmt.Errorf("%w: booking %d has no details snapshot", model.ErrPersistence, b.ID)
}
