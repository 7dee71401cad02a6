// Package queue carries booking lifecycle events over RabbitMQ.
package queue

import (
	"time"

	"github.com/iliyamo/booking-hub/internal/model"
)

// DefaultQueue is the durable queue booking events are routed to.
const DefaultQueue = "booking.events"

// EventKind names a booking lifecycle change.
type EventKind string

const (
	BookingReserved  EventKind = "booking.reserved"
	BookingCancelled EventKind = "booking.cancelled"
	BookingUpdated   EventKind = "booking.updated"
	BookingDeleted   EventKind = "booking.deleted"
)

// BookingEvent is published after a booking change commits. It carries
// enough for consumers to audit or notify without reading the database.
type BookingEvent struct {
	Kind             EventKind           `json:"kind"`
	BookingID        uint64              `json:"booking_id"`
	UserID           uint64              `json:"user_id"`
	BookingType      model.BookingType   `json:"booking_type"`
	ReferenceID      uint64              `json:"reference_id"`
	Status           model.Status        `json:"status"`
	PaymentStatus    model.PaymentStatus `json:"payment_status"`
	Quantity         int                 `json:"quantity"`
	TotalAmountCents int64               `json:"total_amount_cents"`
	ConfirmationCode string              `json:"confirmation_code"`
	BookingDate      string              `json:"booking_date"`
	OccurredAt       string              `json:"occurred_at"`
}

// NewBookingEvent snapshots b.
func NewBookingEvent(kind EventKind, b *model.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Kind:             kind,
		BookingID:        b.ID,
		UserID:           b.UserID,
		BookingType:      b.Type,
		ReferenceID:      b.ReferenceID,
		Status:           b.Status,
		PaymentStatus:    b.PaymentStatus,
		Quantity:         b.Quantity,
		TotalAmountCents: b.TotalAmountCents,
		ConfirmationCode: b.ConfirmationCode,
		BookingDate:      b.BookingDate.UTC().Format(time.RFC3339),
		OccurredAt:       at.UTC().Format(time.RFC3339),
	}
}
