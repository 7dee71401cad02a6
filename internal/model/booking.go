package model

import "time"

// BookingType selects which inventory model a booking consumes.
type BookingType string

const (
	BookingMovie      BookingType = "movie"
	BookingEvent      BookingType = "event"
	BookingRestaurant BookingType = "restaurant"
)

// Valid reports whether t is one of the known booking types.
func (t BookingType) Valid() bool {
	switch t {
	case BookingMovie, BookingEvent, BookingRestaurant:
		return true
	}
	return false
}

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// CanTransitionTo implements the booking state machine:
//
//	pending   -> confirmed | cancelled
//	confirmed -> completed | cancelled
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	}
	return false
}

// PaymentStatus tracks payment state. Payment itself is processed elsewhere.
type PaymentStatus string

const (
	PaymentPending     PaymentStatus = "pending"
	PaymentPaid        PaymentStatus = "paid"
	PaymentRefunded    PaymentStatus = "refunded"
	PaymentNotRequired PaymentStatus = "not_required"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentRefunded, PaymentNotRequired:
		return true
	}
	return false
}

// Booking is a user's reservation against one inventory unit.
//
// Fields map to columns of the bookings table. Details carries the
// snapshot captured at reservation time; cancellation restores inventory
// from it rather than from the current catalog state.
type Booking struct {
	ID               uint64        `json:"id"`                 // bookings.id
	UserID           uint64        `json:"user_id"`            // bookings.user_id
	Type             BookingType   `json:"booking_type"`       // bookings.booking_type
	ReferenceID      uint64        `json:"reference_id"`       // movie, event or restaurant id
	Status           Status        `json:"status"`             // bookings.status
	PaymentStatus    PaymentStatus `json:"payment_status"`     // bookings.payment_status
	BookingDate      time.Time     `json:"booking_date"`       // showtime, event start or slot
	Quantity         int           `json:"quantity"`           // seats, tickets or party size
	TotalAmountCents int64         `json:"total_amount_cents"` // bookings.total_amount_cents
	SpecialRequests  *string       `json:"special_requests,omitempty"`
	ConfirmationCode string        `json:"confirmation_code"`
	Details          Details       `json:"booking_details"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// OwnedBy reports whether the identity may act on the booking.
func (b *Booking) OwnedBy(id Identity) bool {
	return id.IsAdmin() || b.UserID == id.UserID
}

// BookingFilter narrows a booking listing. A zero UserID lists all users.
type BookingFilter struct {
	UserID   uint64
	Statuses []Status
	Type     BookingType
	// From restricts to bookings whose booking_date is at or after it.
	From *time.Time
	// Ascending orders by booking_date ascending instead of newest first.
	Ascending bool
	Limit     int
	Offset    int
}
