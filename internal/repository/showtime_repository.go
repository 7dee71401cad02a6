package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/booking-hub/internal/model"
)

const showtimeSelect = `SELECT s.id, s.movie_id, m.title AS movie_title, m.poster_url,
       s.theater_name, s.starts_at, s.price_cents, s.total_seats, s.available_seats
  FROM showtimes s
  JOIN movies m ON m.id = s.movie_id
 WHERE s.id = ?`

func (c conn) Showtime(ctx context.Context, id uint64) (*model.Showtime, error) {
	var st model.Showtime
	if err := sqlx.GetContext(ctx, c.q, &st, showtimeSelect, id); err != nil {
		return nil, mapErr(fmt.Sprintf("showtime %d", id), err)
	}
	return &st, nil
}

// LockShowtime locks only the showtime row; the joined movie row stays
// shared so showtimes of the same movie do not contend.
func (t *txConn) LockShowtime(ctx context.Context, id uint64) (*model.Showtime, error) {
	var st model.Showtime
	if err := sqlx.GetContext(ctx, t.q, &st, showtimeSelect+` FOR UPDATE OF s`, id); err != nil {
		return nil, mapErr(fmt.Sprintf("lock showtime %d", id), err)
	}
	return &st, nil
}

func (t *txConn) AdjustAvailableSeats(ctx context.Context, showtimeID uint64, delta int) error {
	const q = `UPDATE showtimes
                  SET available_seats = available_seats + ?
                WHERE id = ? AND available_seats + ? BETWEEN 0 AND total_seats`
	return t.guardedAdjust(ctx, fmt.Sprintf("showtime %d", showtimeID), delta, q,
		`SELECT 1 FROM showtimes WHERE id = ?`, showtimeID)
}

// guardedAdjust runs a compare-and-adjust UPDATE. When no row changes it
// tells a missing row apart from a range violation.
func (t *txConn) guardedAdjust(ctx context.Context, op string, delta int, update, exists string, id uint64) error {
	if delta == 0 {
		return nil
	}
	res, err := t.q.ExecContext(ctx, update, delta, id, delta)
	if err != nil {
		return mapErr("adjust "+op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapErr("adjust "+op, err)
	}
	if n == 1 {
		return nil
	}
	var one int
	if err := sqlx.GetContext(ctx, t.q, &one, exists, id); err != nil {
		return mapErr(op, err)
	}
	return fmt.Errorf("%s: delta %d out of range: %w", op, delta, model.ErrInsufficientInventory)
}
