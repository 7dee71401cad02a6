package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/booking-hub/internal/model"
	"github.com/iliyamo/booking-hub/internal/queue"
	"github.com/iliyamo/booking-hub/internal/store"
)

var (
	testNow  = time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
	customer = model.Identity{UserID: 11, Role: model.RoleCustomer}
	stranger = model.Identity{UserID: 12, Role: model.RoleCustomer}
	admin    = model.Identity{UserID: 1, Role: model.RoleAdmin}
)

const (
	showtimeID   = 1
	movieID      = 100
	eventID      = 70
	tierID       = 7
	restaurantID = 5
	closedID     = 6
)

func newFixture(t *testing.T, opts ...Option) (*Service, *store.Memory) {
	t.Helper()
	m := store.NewMemory()
	m.AddShowtime(model.Showtime{
		ID: showtimeID, MovieID: movieID, MovieTitle: "Heat", TheaterName: "Grand",
		StartsAt: time.Date(2024, 12, 20, 20, 0, 0, 0, time.UTC), PriceCents: 1000,
		TotalSeats: 2, AvailableSeats: 2,
	})
	m.AddTicketTier(model.TicketTier{
		ID: tierID, EventID: eventID, EventTitle: "Jazz Night", VenueName: "Blue Hall",
		EventStartsAt: time.Date(2024, 12, 25, 19, 30, 0, 0, time.UTC), TicketType: "VIP",
		PriceCents: 2500, QuantityAvailable: 50, QuantitySold: 48,
	})
	m.AddRestaurant(model.Restaurant{ID: restaurantID, Name: "Nara", Address: "1 Main St", IsActive: true})
	m.AddRestaurant(model.Restaurant{ID: closedID, Name: "Gone", IsActive: false})

	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewService(m, DefaultConfig(), opts...), m
}

func movieReq(seats ...string) ReserveRequest {
	return ReserveRequest{Type: model.BookingMovie, ShowtimeID: showtimeID, Seats: seats}
}

func eventReq(qty int) ReserveRequest {
	return ReserveRequest{Type: model.BookingEvent, EventID: eventID, TicketTierID: tierID, Quantity: qty}
}

func restaurantReq(date, clock string, party int) ReserveRequest {
	return ReserveRequest{Type: model.BookingRestaurant, RestaurantID: restaurantID, Date: date, Time: clock, PartySize: party}
}

func seats(t *testing.T, m *store.Memory) int {
	t.Helper()
	st, err := m.Showtime(context.Background(), showtimeID)
	if err != nil {
		t.Fatal(err)
	}
	return st.AvailableSeats
}

func sold(t *testing.T, m *store.Memory) int {
	t.Helper()
	tt, err := m.TicketTier(context.Background(), eventID, tierID)
	if err != nil {
		t.Fatal(err)
	}
	return tt.QuantitySold
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) kinds() []queue.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []queue.EventKind
	for _, ev := range p.events {
		out = append(out, ev.Kind)
	}
	return out
}

var errDiskFull = errors.New("disk full")

// faultyStore fails selected writes inside transactions.
type faultyStore struct {
	store.Store
	failSeats     bool
	failAttendees bool
}

func (f faultyStore) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return f.Store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return fn(ctx, faultyTx{Tx: tx, f: f})
	})
}

type faultyTx struct {
	store.Tx
	f faultyStore
}

func (t faultyTx) AdjustAvailableSeats(ctx context.Context, id uint64, delta int) error {
	if t.f.failSeats {
		return errDiskFull
	}
	return t.Tx.AdjustAvailableSeats(ctx, id, delta)
}

func (t faultyTx) AdjustEventAttendees(ctx context.Context, id uint64, delta int) error {
	if t.f.failAttendees {
		return errDiskFull
	}
	return t.Tx.AdjustEventAttendees(ctx, id, delta)
}
