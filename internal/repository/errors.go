// Package repository implements the booking store on MySQL.
//
// Rows that the core serialises on are locked with SELECT ... FOR UPDATE:
// showtimes, event_tickets and bookings by primary key, and restaurant
// sittings through an anchor row in restaurant_slot_locks. Transactions
// run at READ COMMITTED so that plain reads issued after a lock observe
// the latest committed counters.
package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/booking-hub/internal/model"
)

// mapErr translates driver errors into model kinds. sql.ErrNoRows becomes
// model.ErrNotFound; anything unclassified becomes model.ErrPersistence.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}
	return model.Persistence(op, err)
}
