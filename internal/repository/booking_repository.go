package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/booking-hub/internal/model"
)

const bookingColumns = `id, user_id, booking_type, reference_id, status, payment_status,
       booking_date, quantity, total_amount_cents, special_requests,
       confirmation_code, booking_details, created_at, updated_at`

// bookingRow mirrors the bookings table.
type bookingRow struct {
	ID               uint64         `db:"id"`
	UserID           uint64         `db:"user_id"`
	BookingType      string         `db:"booking_type"`
	ReferenceID      uint64         `db:"reference_id"`
	Status           string         `db:"status"`
	PaymentStatus    string         `db:"payment_status"`
	BookingDate      time.Time      `db:"booking_date"`
	Quantity         int            `db:"quantity"`
	TotalAmountCents int64          `db:"total_amount_cents"`
	SpecialRequests  sql.NullString `db:"special_requests"`
	ConfirmationCode string         `db:"confirmation_code"`
	Details          []byte         `db:"booking_details"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (r *bookingRow) toModel() (*model.Booking, error) {
	t := model.BookingType(r.BookingType)
	details, err := model.DecodeDetails(t, r.Details)
	if err != nil {
		return nil, model.Persistence(fmt.Sprintf("booking %d", r.ID), err)
	}
	b := &model.Booking{
		ID:               r.ID,
		UserID:           r.UserID,
		Type:             t,
		ReferenceID:      r.ReferenceID,
		Status:           model.Status(r.Status),
		PaymentStatus:    model.PaymentStatus(r.PaymentStatus),
		BookingDate:      r.BookingDate,
		Quantity:         r.Quantity,
		TotalAmountCents: r.TotalAmountCents,
		ConfirmationCode: r.ConfirmationCode,
		Details:          details,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.SpecialRequests.Valid {
		s := r.SpecialRequests.String
		b.SpecialRequests = &s
	}
	return b, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (c conn) Booking(ctx context.Context, id uint64) (*model.Booking, error) {
	return c.getBooking(ctx, id, "")
}

func (c conn) getBooking(ctx context.Context, id uint64, suffix string) (*model.Booking, error) {
	var row bookingRow
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?` + suffix
	if err := sqlx.GetContext(ctx, c.q, &row, q, id); err != nil {
		return nil, mapErr(fmt.Sprintf("booking %d", id), err)
	}
	return row.toModel()
}

// ListBookings pages through bookings matching f. Newest first unless
// f.Ascending, which orders by booking_date.
func (c conn) ListBookings(ctx context.Context, f model.BookingFilter) ([]model.Booking, int, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Type != "" {
		where = append(where, "booking_type = ?")
		args = append(args, string(f.Type))
	}
	if f.From != nil {
		where = append(where, "booking_date >= ?")
		args = append(args, *f.From)
	}
	if len(f.Statuses) > 0 {
		where = append(where, "status IN (?"+strings.Repeat(", ?", len(f.Statuses)-1)+")")
		for _, s := range f.Statuses {
			args = append(args, string(s))
		}
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := sqlx.GetContext(ctx, c.q, &total, `SELECT COUNT(*) FROM bookings`+cond, args...); err != nil {
		return nil, 0, mapErr("count bookings", err)
	}

	if f.Offset < 0 || (f.Limit > 0 && f.Offset >= total) {
		return []model.Booking{}, total, nil
	}

	q := `SELECT ` + bookingColumns + ` FROM bookings` + cond
	if f.Ascending {
		q += ` ORDER BY booking_date ASC, id ASC`
	} else {
		q += ` ORDER BY created_at DESC, id DESC`
	}
	if f.Limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	var rows []bookingRow
	if err := sqlx.SelectContext(ctx, c.q, &rows, q, args...); err != nil {
		return nil, 0, mapErr("list bookings", err)
	}
	items := make([]model.Booking, 0, len(rows))
	for i := range rows {
		b, err := rows[i].toModel()
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *b)
	}
	return items, total, nil
}

func (t *txConn) LockBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	return t.getBooking(ctx, id, ` FOR UPDATE`)
}

func (t *txConn) InsertBooking(ctx context.Context, b *model.Booking) error {
	details, err := json.Marshal(b.Details)
	if err != nil {
		return model.Persistence("encode booking details", err)
	}
	const q = `INSERT INTO bookings
        (user_id, booking_type, reference_id, status, payment_status, booking_date, quantity,
         total_amount_cents, special_requests, confirmation_code, booking_details, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := t.q.ExecContext(ctx, q,
		b.UserID, string(b.Type), b.ReferenceID, string(b.Status), string(b.PaymentStatus),
		b.BookingDate, b.Quantity, b.TotalAmountCents, nullString(b.SpecialRequests),
		b.ConfirmationCode, details, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return mapErr("insert booking", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return mapErr("insert booking", err)
	}
	b.ID = uint64(id)
	return nil
}

func (t *txConn) UpdateBooking(ctx context.Context, b *model.Booking) error {
	const q = `UPDATE bookings
                  SET status = ?, payment_status = ?, special_requests = ?, updated_at = ?
                WHERE id = ?`
	if _, err := t.q.ExecContext(ctx, q, string(b.Status), string(b.PaymentStatus),
		nullString(b.SpecialRequests), b.UpdatedAt, b.ID); err != nil {
		return mapErr(fmt.Sprintf("update booking %d", b.ID), err)
	}
	return nil
}

func (t *txConn) DeleteBooking(ctx context.Context, id uint64) error {
	res, err := t.q.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return mapErr(fmt.Sprintf("delete booking %d", id), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapErr(fmt.Sprintf("delete booking %d", id), err)
	}
	if n == 0 {
		return fmt.Errorf("booking %d: %w", id, model.ErrNotFound)
	}
	return nil
}
