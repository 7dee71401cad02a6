package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/booking-hub/internal/model"
	"github.com/iliyamo/booking-hub/internal/store"
)

// Checker decides whether a request fits the inventory. The decision
// functions work on snapshots so the same rule runs for the advisory
// pre-check and on the locked rows inside a reservation.
type Checker struct {
	slotCapacity int
}

func NewChecker(slotCapacity int) *Checker {
	return &Checker{slotCapacity: slotCapacity}
}

func (c *Checker) seats(st *model.Showtime, n int) error {
	if st.AvailableSeats < n {
		return fmt.Errorf("showtime %d has %d seats left, %d requested: %w",
			st.ID, st.AvailableSeats, n, model.ErrInsufficientInventory)
	}
	return nil
}

func (c *Checker) tickets(t *model.TicketTier, n int) error {
	if t.Remaining() < n {
		return fmt.Errorf("ticket tier %d has %d tickets left, %d requested: %w",
			t.ID, t.Remaining(), n, model.ErrInsufficientInventory)
	}
	return nil
}

func (c *Checker) open(r *model.Restaurant) error {
	if !r.IsActive {
		return fmt.Errorf("restaurant %d is not accepting bookings: %w", r.ID, model.ErrNotFound)
	}
	return nil
}

func (c *Checker) slot(s model.Slot, confirmed int) error {
	if confirmed >= c.slotCapacity {
		return fmt.Errorf("slot %s is full: %w", s.Key(), model.ErrInsufficientInventory)
	}
	return nil
}

// CheckMovie reports whether seatCount seats remain for the showtime.
func (c *Checker) CheckMovie(ctx context.Context, q store.Queries, showtimeID uint64, seatCount int) (*model.Showtime, error) {
	st, err := q.Showtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	return st, c.seats(st, seatCount)
}

// CheckEvent reports whether quantity tickets remain in the tier.
func (c *Checker) CheckEvent(ctx context.Context, q store.Queries, eventID, tierID uint64, quantity int) (*model.TicketTier, error) {
	t, err := q.TicketTier(ctx, eventID, tierID)
	if err != nil {
		return nil, err
	}
	return t, c.tickets(t, quantity)
}

// CheckRestaurant reports whether the sitting still takes a booking.
// partySize does not influence the decision; a sitting holds a fixed
// number of bookings.
func (c *Checker) CheckRestaurant(ctx context.Context, q store.Queries, slot model.Slot, partySize int) (*model.Restaurant, int, error) {
	r, err := q.Restaurant(ctx, slot.RestaurantID)
	if err != nil {
		return nil, 0, err
	}
	if err := c.open(r); err != nil {
		return nil, 0, err
	}
	n, err := q.CountConfirmedAtSlot(ctx, slot)
	if err != nil {
		return nil, 0, err
	}
	return r, n, c.slot(slot, n)
}

// Availability summarises a pre-check.
type Availability struct {
	Type             model.BookingType `json:"booking_type"`
	Available        bool              `json:"available"`
	Requested        int               `json:"requested"`
	Remaining        int               `json:"remaining"`
	StartsAt         time.Time         `json:"starts_at"`
	TotalAmountCents int64             `json:"total_amount_cents"`
}

// check runs the read-only check for o. Insufficient inventory is
// reported in the result, not as an error.
func (c *Checker) check(ctx context.Context, q store.Queries, o order) (*Availability, error) {
	a := &Availability{Type: o.typ, Requested: o.qty}
	var err error
	switch o.typ {
	case model.BookingMovie:
		var st *model.Showtime
		st, err = c.CheckMovie(ctx, q, o.showtimeID, o.qty)
		if st != nil {
			a.Remaining, a.StartsAt = st.AvailableSeats, st.StartsAt
			a.TotalAmountCents = st.PriceCents * int64(o.qty)
		}
	case model.BookingEvent:
		var t *model.TicketTier
		t, err = c.CheckEvent(ctx, q, o.eventID, o.tierID, o.qty)
		if t != nil {
			a.Remaining, a.StartsAt = t.Remaining(), t.EventStartsAt
			a.TotalAmountCents = t.PriceCents * int64(o.qty)
		}
	case model.BookingRestaurant:
		var n int
		_, n, err = c.CheckRestaurant(ctx, q, o.slot, o.qty)
		a.Remaining = max(c.slotCapacity-n, 0)
		a.StartsAt = o.slot.At()
	}
	if err != nil && !model.IsInsufficientInventory(err) {
		return nil, err
	}
	a.Available = err == nil
	return a, nil
}
