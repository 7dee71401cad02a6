package repository

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/booking-hub/internal/database"
	"github.com/iliyamo/booking-hub/internal/model"
	"github.com/iliyamo/booking-hub/internal/store"
)

// openTestDB connects to the database named by TEST_MYSQL_DSN, applies the
// schema and truncates the tables. The DSN must include parseTime=true.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set")
	}
	db, err := database.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../migrations/0001_booking_core.sql")
	require.NoError(t, err)
	for _, stmt := range strings.Split(string(schema), ";") {
		if strings.TrimSpace(stripComments(stmt)) == "" {
			continue
		}
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	db.MustExec(`SET FOREIGN_KEY_CHECKS = 0`)
	for _, tbl := range []string{"bookings", "restaurant_slot_locks", "restaurants",
		"event_tickets", "events", "showtimes", "movies"} {
		db.MustExec(`TRUNCATE TABLE ` + tbl)
	}
	db.MustExec(`SET FOREIGN_KEY_CHECKS = 1`)
	return db
}

func stripComments(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "--") {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func TestStoreMovieReserveAndRollback(t *testing.T) {
	db := openTestDB(t)
	db.MustExec(`INSERT INTO movies (id, title) VALUES (1, 'Heat')`)
	db.MustExec(`INSERT INTO showtimes (id, movie_id, theater_name, starts_at, price_cents, total_seats, available_seats)
                 VALUES (1, 1, 'Grand', '2030-01-01 20:00:00', 1200, 5, 5)`)
	s := NewStore(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	var id uint64
	err := s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		st, err := tx.LockShowtime(ctx, 1)
		if err != nil {
			return err
		}
		assert.Equal(t, "Heat", st.MovieTitle)
		b := &model.Booking{
			UserID: 9, Type: model.BookingMovie, ReferenceID: 1,
			Status: model.StatusPending, PaymentStatus: model.PaymentPending,
			BookingDate: st.StartsAt, Quantity: 2, TotalAmountCents: 2400,
			ConfirmationCode: "ABCD1234",
			Details:          model.MovieDetails{ShowtimeID: 1, Seats: []string{"A1", "A2"}},
			CreatedAt:        now, UpdatedAt: now,
		}
		if err := tx.InsertBooking(ctx, b); err != nil {
			return err
		}
		id = b.ID
		return tx.AdjustAvailableSeats(ctx, 1, -2)
	})
	require.NoError(t, err)

	b, err := s.Booking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, b.Details.(model.MovieDetails).Seats)
	st, err := s.Showtime(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, st.AvailableSeats)

	err = s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.AdjustAvailableSeats(ctx, 1, -3); err != nil {
			return err
		}
		return tx.AdjustAvailableSeats(ctx, 1, -1)
	})
	assert.ErrorIs(t, err, model.ErrInsufficientInventory)
	st, err = s.Showtime(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, st.AvailableSeats, "rolled back")

	err = s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.AdjustAvailableSeats(ctx, 42, -1)
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestStoreRestaurantSlotCount(t *testing.T) {
	db := openTestDB(t)
	db.MustExec(`INSERT INTO restaurants (id, name, address, is_active) VALUES (3, 'Nara', 'Main St', 1)`)
	s := NewStore(db)
	ctx := context.Background()
	slot, err := model.ParseSlot(3, "2030-05-01", "19:00")
	require.NoError(t, err)
	now := time.Now().UTC().Truncate(time.Second)

	for i, status := range []model.Status{model.StatusConfirmed, model.StatusConfirmed, model.StatusCancelled} {
		err := s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
			if err := tx.LockRestaurantSlot(ctx, slot); err != nil {
				return err
			}
			return tx.InsertBooking(ctx, &model.Booking{
				UserID: 1, Type: model.BookingRestaurant, ReferenceID: 3,
				Status: status, PaymentStatus: model.PaymentNotRequired,
				BookingDate: slot.At(), Quantity: 2,
				ConfirmationCode: []string{"AAAAAAAA", "BBBBBBBB", "CCCCCCCC"}[i],
				Details:          model.RestaurantDetails{RestaurantID: 3, PartySize: 2},
				CreatedAt:        now, UpdatedAt: now,
			})
		})
		require.NoError(t, err)
	}

	n, err := s.CountConfirmedAtSlot(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, total, err := s.ListBookings(ctx, model.BookingFilter{
		UserID: 1, Statuses: []model.Status{model.StatusCancelled}, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, model.StatusCancelled, items[0].Status)
}
