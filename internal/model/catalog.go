package model

import (
	"fmt"
	"time"
)

// Showtime is a screening with a seat counter.
type Showtime struct {
	ID             uint64    `json:"id" db:"id"`
	MovieID        uint64    `json:"movie_id" db:"movie_id"`
	MovieTitle     string    `json:"movie_title" db:"movie_title"`
	PosterURL      string    `json:"poster_url" db:"poster_url"`
	TheaterName    string    `json:"theater_name" db:"theater_name"`
	StartsAt       time.Time `json:"starts_at" db:"starts_at"`
	PriceCents     int64     `json:"price_cents" db:"price_cents"`
	TotalSeats     int       `json:"total_seats" db:"total_seats"`
	AvailableSeats int       `json:"available_seats" db:"available_seats"`
}

// TicketTier is one ticket type of an event. Remaining stock is
// QuantityAvailable - QuantitySold.
type TicketTier struct {
	ID                uint64    `json:"id" db:"id"`
	EventID           uint64    `json:"event_id" db:"event_id"`
	EventTitle        string    `json:"event_title" db:"event_title"`
	VenueName         string    `json:"venue_name" db:"venue_name"`
	Location          string    `json:"location" db:"location"`
	EventStartsAt     time.Time `json:"event_starts_at" db:"event_starts_at"`
	TicketType        string    `json:"ticket_type" db:"ticket_type"`
	PriceCents        int64     `json:"price_cents" db:"price_cents"`
	QuantityAvailable int       `json:"quantity_available" db:"quantity_available"`
	QuantitySold      int       `json:"quantity_sold" db:"quantity_sold"`
}

// Remaining returns the unsold stock.
func (t *TicketTier) Remaining() int { return t.QuantityAvailable - t.QuantitySold }

// Restaurant is a venue whose capacity is derived from confirmed bookings.
type Restaurant struct {
	ID       uint64 `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Address  string `json:"address" db:"address"`
	IsActive bool   `json:"is_active" db:"is_active"`
}

const (
	SlotDateLayout = "2006-01-02"
	SlotTimeLayout = "15:04"
)

// Slot identifies a restaurant sitting: restaurant, calendar date and time
// of day. Date and Time are kept in their canonical layouts.
type Slot struct {
	RestaurantID uint64
	Date         string
	Time         string
}

// ParseSlot validates and canonicalises date ("2006-01-02") and time
// ("15:04" or "15:04:05").
func ParseSlot(restaurantID uint64, date, clock string) (Slot, error) {
	d, err := time.Parse(SlotDateLayout, date)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: booking_date must be YYYY-MM-DD", ErrInvalidRequest)
	}
	t, err := time.Parse(SlotTimeLayout, clock)
	if err != nil {
		if t, err = time.Parse("15:04:05", clock); err != nil {
			return Slot{}, fmt.Errorf("%w: booking_time must be HH:MM", ErrInvalidRequest)
		}
	}
	return Slot{
		RestaurantID: restaurantID,
		Date:         d.Format(SlotDateLayout),
		Time:         t.Format(SlotTimeLayout),
	}, nil
}

// At returns the slot start in UTC.
func (s Slot) At() time.Time {
	at, _ := time.ParseInLocation(SlotDateLayout+" "+SlotTimeLayout, s.Date+" "+s.Time, time.UTC)
	return at
}

// Key is the inventory lock key for the slot.
func (s Slot) Key() string {
	return fmt.Sprintf("slot:%d:%s:%s", s.RestaurantID, s.Date, s.Time)
}
