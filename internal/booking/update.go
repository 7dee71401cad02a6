package booking

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/iliyamo/booking-hub/internal/model"
	"github.com/iliyamo/booking-hub/internal/queue"
	"github.com/iliyamo/booking-hub/internal/store"
)

// UpdateRequest changes mutable booking fields. Nil fields are left as is.
// Customers may only change SpecialRequests.
type UpdateRequest struct {
	Status          *model.Status
	PaymentStatus   *model.PaymentStatus
	SpecialRequests *string
}

func (r UpdateRequest) validate(cfg Config, who model.Identity) error {
	if r.Status == nil && r.PaymentStatus == nil && r.SpecialRequests == nil {
		return invalid("nothing to update")
	}
	if !who.IsAdmin() && (r.Status != nil || r.PaymentStatus != nil) {
		return fmt.Errorf("only admins may change status: %w", model.ErrForbidden)
	}
	if r.Status != nil && !r.Status.Valid() {
		return invalid("unknown status %q", *r.Status)
	}
	if r.PaymentStatus != nil && !r.PaymentStatus.Valid() {
		return invalid("unknown payment_status %q", *r.PaymentStatus)
	}
	if r.SpecialRequests != nil && utf8.RuneCountInString(*r.SpecialRequests) > cfg.MaxSpecialRequestLen {
		return invalid("special_requests longer than %d characters", cfg.MaxSpecialRequestLen)
	}
	return nil
}

// Update applies r to a booking. A status change to cancelled goes through
// the compensator so inventory is released; leaving cancelled is refused
// because the inventory is already gone. Other status changes by an admin
// are applied as given.
func (s *Service) Update(ctx context.Context, who model.Identity, id uint64, r UpdateRequest) (b *model.Booking, err error) {
	ctx, span := s.startSpan(ctx, "booking.Update", attribute.Int64("booking.id", int64(id)))
	defer func() { endSpan(span, err) }()

	if err := r.validate(s.cfg, who); err != nil {
		return nil, err
	}

	var cancelled bool
	err = s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		cur, err := tx.LockBooking(ctx, id)
		if err != nil {
			return err
		}
		if !cur.OwnedBy(who) {
			return fmt.Errorf("booking %d: %w", id, model.ErrForbidden)
		}

		if r.Status != nil && *r.Status != cur.Status {
			switch {
			case *r.Status == model.StatusCancelled:
				if err := s.compensator.cancelLocked(ctx, tx, cur, true); err != nil {
					return err
				}
				cancelled = true
			case cur.Status == model.StatusCancelled:
				return fmt.Errorf("booking %d is cancelled: %w", id, model.ErrInvalidTransition)
			default:
				cur.Status = *r.Status
			}
		}
		if r.PaymentStatus != nil {
			cur.PaymentStatus = *r.PaymentStatus
		}
		if r.SpecialRequests != nil {
			cur.SpecialRequests = r.SpecialRequests
		}
		cur.UpdatedAt = s.now()
		if err := tx.UpdateBooking(ctx, cur); err != nil {
			return err
		}
		b = cur
		return nil
	})
	if err != nil {
		return nil, model.Persistence("update booking", err)
	}

	kind := queue.BookingUpdated
	if cancelled {
		kind = queue.BookingCancelled
	}
	s.log.Info("booking updated", zap.Uint64("booking_id", b.ID), zap.String("status", string(b.Status)),
		zap.Uint64("by_user", who.UserID))
	s.publish(ctx, kind, b)
	return b, nil
}
