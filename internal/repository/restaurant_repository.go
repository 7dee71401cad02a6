package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/booking-hub/internal/model"
)

func (c conn) Restaurant(ctx context.Context, id uint64) (*model.Restaurant, error) {
	const q = `SELECT id, name, address, is_active FROM restaurants WHERE id = ?`
	var r model.Restaurant
	if err := sqlx.GetContext(ctx, c.q, &r, q, id); err != nil {
		return nil, mapErr(fmt.Sprintf("restaurant %d", id), err)
	}
	return &r, nil
}

func (c conn) CountConfirmedAtSlot(ctx context.Context, slot model.Slot) (int, error) {
	const q = `SELECT COUNT(*) FROM bookings
                WHERE booking_type = 'restaurant' AND reference_id = ?
                  AND booking_date = ? AND status = 'confirmed'`
	var n int
	if err := sqlx.GetContext(ctx, c.q, &n, q, slot.RestaurantID, slot.At()); err != nil {
		return 0, mapErr("count slot "+slot.Key(), err)
	}
	return n, nil
}

// LockRestaurantSlot upserts the anchor row of the sitting and locks it.
// Two reservations for the same restaurant, date and time queue here;
// other sittings are unaffected.
func (t *txConn) LockRestaurantSlot(ctx context.Context, slot model.Slot) error {
	const upsert = `INSERT INTO restaurant_slot_locks (restaurant_id, slot_date, slot_time)
                    VALUES (?, ?, ?)
                    ON DUPLICATE KEY UPDATE slot_time = slot_time`
	const lock = `SELECT restaurant_id FROM restaurant_slot_locks
                   WHERE restaurant_id = ? AND slot_date = ? AND slot_time = ? FOR UPDATE`
	args := []any{slot.RestaurantID, slot.Date, slot.Time}
	if _, err := t.q.ExecContext(ctx, upsert, args...); err != nil {
		return mapErr("lock slot "+slot.Key(), err)
	}
	var id uint64
	if err := sqlx.GetContext(ctx, t.q, &id, lock, args...); err != nil {
		return mapErr("lock slot "+slot.Key(), err)
	}
	return nil
}
