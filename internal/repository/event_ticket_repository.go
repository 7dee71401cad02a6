package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/booking-hub/internal/model"
)

const ticketTierSelect = `SELECT t.id, t.event_id, e.title AS event_title, e.venue_name, e.location,
       TIMESTAMP(e.event_date, COALESCE(e.event_time, '00:00:00')) AS event_starts_at,
       t.ticket_type, t.price_cents, t.quantity_available, t.quantity_sold
  FROM event_tickets t
  JOIN events e ON e.id = t.event_id
 WHERE t.id = ? AND t.event_id = ?`

func (c conn) TicketTier(ctx context.Context, eventID, tierID uint64) (*model.TicketTier, error) {
	var tt model.TicketTier
	if err := sqlx.GetContext(ctx, c.q, &tt, ticketTierSelect, tierID, eventID); err != nil {
		return nil, mapErr(fmt.Sprintf("ticket tier %d of event %d", tierID, eventID), err)
	}
	return &tt, nil
}

func (t *txConn) LockTicketTier(ctx context.Context, eventID, tierID uint64) (*model.TicketTier, error) {
	var tt model.TicketTier
	if err := sqlx.GetContext(ctx, t.q, &tt, ticketTierSelect+` FOR UPDATE OF t`, tierID, eventID); err != nil {
		return nil, mapErr(fmt.Sprintf("lock ticket tier %d of event %d", tierID, eventID), err)
	}
	return &tt, nil
}

func (t *txConn) AdjustTicketsSold(ctx context.Context, tierID uint64, delta int) error {
	const q = `UPDATE event_tickets
                  SET quantity_sold = quantity_sold + ?
                WHERE id = ? AND quantity_sold + ? BETWEEN 0 AND quantity_available`
	return t.guardedAdjust(ctx, fmt.Sprintf("ticket tier %d", tierID), delta, q,
		`SELECT 1 FROM event_tickets WHERE id = ?`, tierID)
}

func (t *txConn) AdjustEventAttendees(ctx context.Context, eventID uint64, delta int) error {
	const q = `UPDATE events SET current_attendees = GREATEST(current_attendees + ?, 0) WHERE id = ?`
	if _, err := t.q.ExecContext(ctx, q, delta, eventID); err != nil {
		return mapErr(fmt.Sprintf("adjust attendees of event %d", eventID), err)
	}
	return nil
}
