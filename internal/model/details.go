package model

import (
	"encoding/json"
	"fmt"
)

// Details is the booking_details snapshot. Exactly one variant exists per
// BookingType; the set is closed by the unexported marker method.
type Details interface {
	BookingType() BookingType
	isDetails()
}

// MovieDetails is captured for movie bookings.
type MovieDetails struct {
	ShowtimeID  uint64   `json:"showtime_id"`
	MovieTitle  string   `json:"movie_title"`
	TheaterName string   `json:"theater_name"`
	Showtime    string   `json:"showtime"`
	Seats       []string `json:"seats"`
	PosterURL   string   `json:"poster_url,omitempty"`
}

// EventDetails is captured for event bookings.
type EventDetails struct {
	EventID      uint64 `json:"event_id"`
	TicketTypeID uint64 `json:"ticket_type_id"`
	EventTitle   string `json:"event_title"`
	EventDate    string `json:"event_date"`
	EventTime    string `json:"event_time"`
	VenueName    string `json:"venue_name"`
	Location     string `json:"location"`
	TicketType   string `json:"ticket_type"`
}

// RestaurantDetails is captured for restaurant bookings.
type RestaurantDetails struct {
	RestaurantID      uint64 `json:"restaurant_id"`
	RestaurantName    string `json:"restaurant_name"`
	RestaurantAddress string `json:"restaurant_address"`
	PartySize         int    `json:"party_size"`
	BookingDate       string `json:"booking_date"`
	BookingTime       string `json:"booking_time"`
}

func (MovieDetails) BookingType() BookingType      { return BookingMovie }
func (EventDetails) BookingType() BookingType      { return BookingEvent }
func (RestaurantDetails) BookingType() BookingType { return BookingRestaurant }

func (MovieDetails) isDetails()      {}
func (EventDetails) isDetails()      {}
func (RestaurantDetails) isDetails() {}

// DecodeDetails restores the variant stored for a booking of type t.
func DecodeDetails(t BookingType, raw []byte) (Details, error) {
	var (
		d   Details
		err error
	)
	switch t {
	case BookingMovie:
		var v MovieDetails
		err = json.Unmarshal(raw, &v)
		d = v
	case BookingEvent:
		var v EventDetails
		err = json.Unmarshal(raw, &v)
		d = v
	case BookingRestaurant:
		var v RestaurantDetails
		err = json.Unmarshal(raw, &v)
		d = v
	default:
		return nil, fmt.Errorf("%w: unknown booking type %q", ErrInvalidRequest, t)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s details: %w", t, err)
	}
	return d, nil
}

// UnmarshalJSON decodes booking_details into the variant named by
// booking_type.
func (b *Booking) UnmarshalJSON(data []byte) error {
	type plain Booking
	aux := struct {
		*plain
		Details json.RawMessage `json:"booking_details"`
	}{plain: (*plain)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.Details = nil
	if len(aux.Details) == 0 || string(aux.Details) == "null" {
		return nil
	}
	d, err := DecodeDetails(b.Type, aux.Details)
	if err != nil {
		return err
	}
	b.Details = d
	return nil
}
