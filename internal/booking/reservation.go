package booking

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/booking-hub/internal/model"
	"github.com/iliyamo/booking-hub/internal/store"
)

// newConfirmationCode returns 8 upper-case hex characters.
func newConfirmationCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
}

// reserve consumes inventory for o and records the booking. It runs inside
// tx: the inventory key is locked first, availability is decided on the
// locked snapshot, then the booking is inserted and the counter moved.
// Any error leaves tx to be rolled back by the caller.
func (s *Service) reserve(ctx context.Context, tx store.Tx, who model.Identity, o order) (*model.Booking, error) {
	now := s.now()
	b := &model.Booking{
		UserID:           who.UserID,
		Type:             o.typ,
		Quantity:         o.qty,
		SpecialRequests:  o.specialNotes,
		ConfirmationCode: newConfirmationCode(),
		Status:           model.StatusPending,
		PaymentStatus:    model.PaymentPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	switch o.typ {
	case model.BookingMovie:
		st, err := tx.LockShowtime(ctx, o.showtimeID)
		if err != nil {
			return nil, err
		}
		if err := s.checker.seats(st, o.qty); err != nil {
			return nil, err
		}
		b.ReferenceID = st.MovieID
		b.BookingDate = st.StartsAt
		b.TotalAmountCents = st.PriceCents * int64(o.qty)
		b.Details = model.MovieDetails{
			ShowtimeID:  st.ID,
			MovieTitle:  st.MovieTitle,
			TheaterName: st.TheaterName,
			Showtime:    st.StartsAt.UTC().Format(time.RFC3339),
			Seats:       o.seats,
			PosterURL:   st.PosterURL,
		}
		if err := tx.InsertBooking(ctx, b); err != nil {
			return nil, err
		}
		if err := tx.AdjustAvailableSeats(ctx, st.ID, -o.qty); err != nil {
			return nil, err
		}

	case model.BookingEvent:
		t, err := tx.LockTicketTier(ctx, o.eventID, o.tierID)
		if err != nil {
			return nil, err
		}
		if err := s.checker.tickets(t, o.qty); err != nil {
			return nil, err
		}
		b.ReferenceID = t.EventID
		b.BookingDate = t.EventStartsAt
		b.TotalAmountCents = t.PriceCents * int64(o.qty)
		b.Details = model.EventDetails{
			EventID:      t.EventID,
			TicketTypeID: t.ID,
			EventTitle:   t.EventTitle,
			EventDate:    t.EventStartsAt.UTC().Format(model.SlotDateLayout),
			EventTime:    t.EventStartsAt.UTC().Format(model.SlotTimeLayout),
			VenueName:    t.VenueName,
			Location:     t.Location,
			TicketType:   t.TicketType,
		}
		if err := tx.InsertBooking(ctx, b); err != nil {
			return nil, err
		}
		if err := tx.AdjustTicketsSold(ctx, t.ID, o.qty); err != nil {
			return nil, err
		}
		if err := tx.AdjustEventAttendees(ctx, t.EventID, o.qty); err != nil {
			return nil, err
		}

	case model.BookingRestaurant:
		r, err := tx.Restaurant(ctx, o.slot.RestaurantID)
		if err != nil {
			return nil, err
		}
		if err := s.checker.open(r); err != nil {
			return nil, err
		}
		if err := tx.LockRestaurantSlot(ctx, o.slot); err != nil {
			return nil, err
		}
		n, err := tx.CountConfirmedAtSlot(ctx, o.slot)
		if err != nil {
			return nil, err
		}
		if err := s.checker.slot(o.slot, n); err != nil {
			return nil, err
		}
		b.ReferenceID = r.ID
		b.BookingDate = o.slot.At()
		b.Status = model.StatusConfirmed
		b.PaymentStatus = model.PaymentNotRequired
		b.Details = model.RestaurantDetails{
			RestaurantID:      r.ID,
			RestaurantName:    r.Name,
			RestaurantAddress: r.Address,
			PartySize:         o.qty,
			BookingDate:       o.slot.Date,
			BookingTime:       o.slot.Time,
		}
		if err := tx.InsertBooking(ctx, b); err != nil {
			return nil, err
		}
	}
	return b, nil
}
