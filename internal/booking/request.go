package booking

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/iliyamo/booking-hub/internal/model"
)

// ReserveRequest asks for inventory. Which fields apply depends on Type:
// movie uses ShowtimeID and Seats; event uses EventID, TicketTierID and
// Quantity; restaurant uses RestaurantID, Date, Time and PartySize.
type ReserveRequest struct {
	Type model.BookingType

	ShowtimeID uint64
	Seats      []string

	EventID      uint64
	TicketTierID uint64
	Quantity     int

	RestaurantID uint64
	Date         string
	Time         string
	PartySize    int

	SpecialRequests *string
}

// order is a validated ReserveRequest.
type order struct {
	typ          model.BookingType
	showtimeID   uint64
	seats        []string
	eventID      uint64
	tierID       uint64
	slot         model.Slot
	qty          int
	specialNotes *string
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrInvalidRequest, fmt.Sprintf(format, args...))
}

func (r ReserveRequest) validate(cfg Config) (order, error) {
	o := order{typ: r.Type}
	if r.SpecialRequests != nil {
		if utf8.RuneCountInString(*r.SpecialRequests) > cfg.MaxSpecialRequestLen {
			return o, invalid("special_requests longer than %d characters", cfg.MaxSpecialRequestLen)
		}
		o.specialNotes = r.SpecialRequests
	}

	switch r.Type {
	case model.BookingMovie:
		if r.ShowtimeID == 0 {
			return o, invalid("showtime_id is required")
		}
		if len(r.Seats) == 0 {
			return o, invalid("at least one seat is required")
		}
		seen := make(map[string]bool, len(r.Seats))
		for _, s := range r.Seats {
			label := strings.ToUpper(strings.TrimSpace(s))
			if label == "" {
				return o, invalid("seat labels must not be blank")
			}
			if seen[label] {
				return o, invalid("seat %s requested twice", label)
			}
			seen[label] = true
			o.seats = append(o.seats, label)
		}
		o.showtimeID = r.ShowtimeID
		o.qty = len(o.seats)

	case model.BookingEvent:
		if r.EventID == 0 || r.TicketTierID == 0 {
			return o, invalid("event_id and ticket_type_id are required")
		}
		if r.Quantity <= 0 {
			return o, invalid("quantity must be positive")
		}
		o.eventID, o.tierID, o.qty = r.EventID, r.TicketTierID, r.Quantity

	case model.BookingRestaurant:
		if r.RestaurantID == 0 {
			return o, invalid("restaurant_id is required")
		}
		if r.PartySize < 1 || r.PartySize > cfg.MaxPartySize {
			return o, invalid("party_size must be between 1 and %d", cfg.MaxPartySize)
		}
		slot, err := model.ParseSlot(r.RestaurantID, r.Date, r.Time)
		if err != nil {
			return o, err
		}
		o.slot, o.qty = slot, r.PartySize

	default:
		return o, invalid("unknown booking_type %q", r.Type)
	}
	return o, nil
}
