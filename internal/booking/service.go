// Package booking is the reservation core: availability checks, the
// reservation transaction, cancellation with inventory compensation and
// the status state machine.
package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/iliyamo/booking-hub/internal/model"
	"github.com/iliyamo/booking-hub/internal/queue"
	"github.com/iliyamo/booking-hub/internal/store"
)

const publishTimeout = 10 * time.Second

// Publisher receives committed booking changes.
type Publisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, queue.BookingEvent) error { return nil }

// Service is the entry point of the booking core.
type Service struct {
	store       store.Store
	cfg         Config
	checker     *Checker
	compensator *Compensator
	pub         Publisher
	log         *zap.Logger
	tracer      trace.Tracer
	now         func() time.Time

	inflight sync.WaitGroup
}

type Option func(*Service)

func WithPublisher(p Publisher) Option { return func(s *Service) { s.pub = p } }

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(st store.Store, cfg Config, opts ...Option) *Service {
	s := &Service{
		store:  st,
		cfg:    cfg.withDefaults(),
		pub:    nopPublisher{},
		log:    zap.NewNop(),
		tracer: otel.Tracer("github.com/iliyamo/booking-hub/internal/booking"),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	utcNow := s.now
	s.now = func() time.Time { return utcNow().UTC().Truncate(time.Second) }
	s.checker = NewChecker(s.cfg.RestaurantSlotCapacity)
	s.compensator = NewCompensator(s.now)
	return s
}

// Compensator exposes the cancellation component.
func (s *Service) Compensator() *Compensator { return s.compensator }

// Wait blocks until queued event publications finish.
func (s *Service) Wait() { s.inflight.Wait() }

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// publish hands the event to the publisher in the background so a slow
// broker never delays or fails a committed booking.
func (s *Service) publish(ctx context.Context, kind queue.EventKind, b *model.Booking) {
	ev := queue.NewBookingEvent(kind, b, s.now())
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()
		if err := s.pub.Publish(ctx, ev); err != nil {
			s.log.Warn("booking event not published",
				zap.String("kind", string(kind)), zap.Uint64("booking_id", b.ID), zap.Error(err))
		}
	}()
}

// Validate runs the availability check without reserving anything.
func (s *Service) Validate(ctx context.Context, req ReserveRequest) (a *Availability, err error) {
	ctx, span := s.startSpan(ctx, "booking.Validate", attribute.String("booking.type", string(req.Type)))
	defer func() { endSpan(span, err) }()

	o, err := req.validate(s.cfg)
	if err != nil {
		return nil, err
	}
	a, err = s.checker.check(ctx, s.store, o)
	return a, model.Persistence("validate", err)
}

// Reserve books inventory for the caller. A cheap pre-check rejects
// requests for unknown, past or sold-out inventory; the transaction then
// re-checks under lock and is authoritative.
func (s *Service) Reserve(ctx context.Context, who model.Identity, req ReserveRequest) (b *model.Booking, err error) {
	ctx, span := s.startSpan(ctx, "booking.Reserve",
		attribute.String("booking.type", string(req.Type)), attribute.Int64("user.id", int64(who.UserID)))
	defer func() { endSpan(span, err) }()

	if who.UserID == 0 {
		return nil, fmt.Errorf("reserve: %w", model.ErrForbidden)
	}
	o, err := req.validate(s.cfg)
	if err != nil {
		return nil, err
	}
	a, err := s.checker.check(ctx, s.store, o)
	if err != nil {
		return nil, model.Persistence("reserve pre-check", err)
	}
	if !a.StartsAt.IsZero() && a.StartsAt.Before(s.now()) {
		return nil, invalid("%s has already started", o.typ)
	}
	if !a.Available {
		return nil, fmt.Errorf("reserve %s: %d requested, %d remaining: %w",
			o.typ, a.Requested, a.Remaining, model.ErrInsufficientInventory)
	}

	err = s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		b, err = s.reserve(ctx, tx, who, o)
		return err
	})
	if err != nil {
		err = model.Persistence("reserve", err)
		s.log.Info("reservation rejected",
			zap.String("booking_type", string(o.typ)), zap.Uint64("user_id", who.UserID),
			zap.Int("quantity", o.qty), zap.Error(err))
		return nil, err
	}

	span.SetAttributes(attribute.Int64("booking.id", int64(b.ID)))
	s.log.Info("booking reserved",
		zap.Uint64("booking_id", b.ID), zap.String("booking_type", string(b.Type)),
		zap.Uint64("reference_id", b.ReferenceID), zap.Int("quantity", b.Quantity))
	s.publish(ctx, queue.BookingReserved, b)
	return b, nil
}

// Get returns a booking visible to the caller.
func (s *Service) Get(ctx context.Context, who model.Identity, id uint64) (*model.Booking, error) {
	b, err := s.store.Booking(ctx, id)
	if err != nil {
		return nil, model.Persistence("get booking", err)
	}
	if !b.OwnedBy(who) {
		return nil, fmt.Errorf("booking %d: %w", id, model.ErrForbidden)
	}
	return b, nil
}

// Cancel cancels a booking on behalf of its owner or an admin. Customers
// cannot cancel within CancelWindow of the booking date.
func (s *Service) Cancel(ctx context.Context, who model.Identity, id uint64) (b *model.Booking, err error) {
	ctx, span := s.startSpan(ctx, "booking.Cancel", attribute.Int64("booking.id", int64(id)))
	defer func() { endSpan(span, err) }()

	if !who.IsAdmin() && s.cfg.CancelWindow > 0 {
		cur, err := s.Get(ctx, who, id)
		if err != nil {
			return nil, err
		}
		if cur.Status != model.StatusCancelled && cur.BookingDate.Sub(s.now()) < s.cfg.CancelWindow {
			return nil, fmt.Errorf("booking %d: %w", id, model.ErrCancellationClosed)
		}
	}

	b, err = s.compensator.Cancel(ctx, s.store, who, id)
	if err != nil {
		return nil, model.Persistence("cancel booking", err)
	}
	s.log.Info("booking cancelled", zap.Uint64("booking_id", b.ID), zap.Uint64("by_user", who.UserID))
	s.publish(ctx, queue.BookingCancelled, b)
	return b, nil
}

// Delete hard-deletes a booking (admin only), restoring its inventory.
func (s *Service) Delete(ctx context.Context, who model.Identity, id uint64) (err error) {
	ctx, span := s.startSpan(ctx, "booking.Delete", attribute.Int64("booking.id", int64(id)))
	defer func() { endSpan(span, err) }()

	b, err := s.compensator.Delete(ctx, s.store, who, id)
	if err != nil {
		return model.Persistence("delete booking", err)
	}
	s.log.Info("booking deleted", zap.Uint64("booking_id", b.ID), zap.Uint64("by_user", who.UserID))
	s.publish(ctx, queue.BookingDeleted, b)
	return nil
}
