package handler

import (
	"github.com/iliyamo/booking-hub/internal/booking"
	"github.com/iliyamo/booking-hub/internal/model"
)

// reserveBody is the JSON body of every create and validate endpoint.
// The typed endpoints fill Type from the route.
type reserveBody struct {
	Type string `json:"booking_type" validate:"required,oneof=movie event restaurant"`

	ShowtimeID uint64   `json:"showtime_id" validate:"required_if=Type movie"`
	Seats      []string `json:"seats" validate:"required_if=Type movie,max=50,dive,required,max=10"`

	EventID      uint64 `json:"event_id" validate:"required_if=Type event"`
	TicketTierID uint64 `json:"ticket_type_id" validate:"required_if=Type event"`
	Quantity     int    `json:"quantity" validate:"omitempty,min=1"`

	RestaurantID uint64 `json:"restaurant_id" validate:"required_if=Type restaurant"`
	Date         string `json:"booking_date" validate:"required_if=Type restaurant"`
	Time         string `json:"booking_time" validate:"required_if=Type restaurant"`
	PartySize    int    `json:"party_size" validate:"omitempty,min=1"`

	SpecialRequests *string `json:"special_requests"`
}

func (r reserveBody) toRequest() booking.ReserveRequest {
	return booking.ReserveRequest{
		Type:            model.BookingType(r.Type),
		ShowtimeID:      r.ShowtimeID,
		Seats:           r.Seats,
		EventID:         r.EventID,
		TicketTierID:    r.TicketTierID,
		Quantity:        r.Quantity,
		RestaurantID:    r.RestaurantID,
		Date:            r.Date,
		Time:            r.Time,
		PartySize:       r.PartySize,
		SpecialRequests: r.SpecialRequests,
	}
}

type updateBody struct {
	Status          *string `json:"status" validate:"omitempty,oneof=pending confirmed cancelled completed"`
	PaymentStatus   *string `json:"payment_status" validate:"omitempty,oneof=pending paid refunded not_required"`
	SpecialRequests *string `json:"special_requests"`
}

func (r updateBody) toRequest() booking.UpdateRequest {
	var out booking.UpdateRequest
	if r.Status != nil {
		st := model.Status(*r.Status)
		out.Status = &st
	}
	if r.PaymentStatus != nil {
		ps := model.PaymentStatus(*r.PaymentStatus)
		out.PaymentStatus = &ps
	}
	out.SpecialRequests = r.SpecialRequests
	return out
}

type listParams struct {
	Status string `query:"status" validate:"omitempty,oneof=pending confirmed cancelled completed"`
	Type   string `query:"booking_type" validate:"omitempty,oneof=movie event restaurant"`
	UserID uint64 `query:"user_id"`
	Page   int    `query:"page" validate:"omitempty,min=1,max=1000000"`
	Limit  int    `query:"limit" validate:"omitempty,min=1"`
}

func (p listParams) toQuery(v booking.View) booking.ListQuery {
	return booking.ListQuery{
		Status: model.Status(p.Status),
		Type:   model.BookingType(p.Type),
		View:   v,
		Page:   p.Page,
		Limit:  p.Limit,
	}
}
