package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/iliyamo/booking-hub/internal/model"
)

// Memory is an in-process Store. Writes are applied in place and journaled
// so a failed transaction can be undone. Bookings inserted by an open
// transaction stay invisible to everyone else until it commits.
type Memory struct {
	mu          sync.RWMutex
	showtimes   map[uint64]model.Showtime
	tiers       map[uint64]model.TicketTier
	attendees   map[uint64]int
	restaurants map[uint64]model.Restaurant
	bookings    map[uint64]model.Booking
	pending     map[uint64]*memTx
	nextID      uint64

	locks keyLocks
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		showtimes:   make(map[uint64]model.Showtime),
		tiers:       make(map[uint64]model.TicketTier),
		attendees:   make(map[uint64]int),
		restaurants: make(map[uint64]model.Restaurant),
		bookings:    make(map[uint64]model.Booking),
		pending:     make(map[uint64]*memTx),
	}
}

// Seed is the JSON document accepted by LoadSeed.
type Seed struct {
	Showtimes   []model.Showtime   `json:"showtimes"`
	TicketTiers []model.TicketTier `json:"ticket_tiers"`
	Restaurants []model.Restaurant `json:"restaurants"`
}

// LoadSeed adds the catalog found in r.
func (m *Memory) LoadSeed(r io.Reader) error {
	var s Seed
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return fmt.Errorf("decode seed: %w", err)
	}
	for _, st := range s.Showtimes {
		m.AddShowtime(st)
	}
	for _, t := range s.TicketTiers {
		m.AddTicketTier(t)
	}
	for _, r := range s.Restaurants {
		m.AddRestaurant(r)
	}
	return nil
}

func (m *Memory) AddShowtime(st model.Showtime) {
	m.mu.Lock()
	m.showtimes[st.ID] = st
	m.mu.Unlock()
}

func (m *Memory) AddTicketTier(t model.TicketTier) {
	m.mu.Lock()
	m.tiers[t.ID] = t
	m.mu.Unlock()
}

func (m *Memory) AddRestaurant(r model.Restaurant) {
	m.mu.Lock()
	m.restaurants[r.ID] = r
	m.mu.Unlock()
}

// AddBooking stores an already committed booking, assigning an id when
// b.ID is zero. Inventory counters are not touched.
func (m *Memory) AddBooking(b model.Booking) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == 0 {
		m.nextID++
		b.ID = m.nextID
	} else if b.ID > m.nextID {
		m.nextID = b.ID
	}
	m.bookings[b.ID] = b
	return b.ID
}

// EventAttendees returns the current_attendees counter of an event.
func (m *Memory) EventAttendees(eventID uint64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attendees[eventID]
}

func (m *Memory) Showtime(ctx context.Context, id uint64) (*model.Showtime, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.showtimes[id]
	if !ok {
		return nil, fmt.Errorf("showtime %d: %w", id, model.ErrNotFound)
	}
	return &st, nil
}

func (m *Memory) TicketTier(ctx context.Context, eventID, tierID uint64) (*model.TicketTier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tiers[tierID]
	if !ok || t.EventID != eventID {
		return nil, fmt.Errorf("ticket tier %d of event %d: %w", tierID, eventID, model.ErrNotFound)
	}
	return &t, nil
}

func (m *Memory) Restaurant(ctx context.Context, id uint64) (*model.Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.restaurants[id]
	if !ok {
		return nil, fmt.Errorf("restaurant %d: %w", id, model.ErrNotFound)
	}
	return &r, nil
}

func (m *Memory) CountConfirmedAtSlot(ctx context.Context, slot model.Slot) (int, error) {
	return m.countConfirmedAtSlot(slot, nil), nil
}

func (m *Memory) Booking(ctx context.Context, id uint64) (*model.Booking, error) {
	return m.booking(id, nil)
}

func (m *Memory) ListBookings(ctx context.Context, f model.BookingFilter) ([]model.Booking, int, error) {
	items, total := m.listBookings(f, nil)
	return items, total, nil
}

func (m *Memory) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx := &memTx{m: m, held: make(map[string]bool)}
	defer tx.releaseLocks()
	defer func() {
		if p := recover(); p != nil {
			tx.rollback()
			panic(p)
		}
	}()
	if err := fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	tx.commit()
	return nil
}

// visible reports whether booking id can be seen by tx (nil outside a
// transaction). Callers hold m.mu.
func (m *Memory) visible(id uint64, tx *memTx) bool {
	owner, ok := m.pending[id]
	return !ok || owner == tx
}

func (m *Memory) booking(id uint64, tx *memTx) (*model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	if !ok || !m.visible(id, tx) {
		return nil, fmt.Errorf("booking %d: %w", id, model.ErrNotFound)
	}
	return &b, nil
}

func (m *Memory) countConfirmedAtSlot(slot model.Slot, tx *memTx) int {
	at := slot.At()
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for id, b := range m.bookings {
		if b.Type == model.BookingRestaurant && b.ReferenceID == slot.RestaurantID &&
			b.Status == model.StatusConfirmed && b.BookingDate.Equal(at) && m.visible(id, tx) {
			n++
		}
	}
	return n
}

func (m *Memory) listBookings(f model.BookingFilter, tx *memTx) ([]model.Booking, int) {
	m.mu.RLock()
	var out []model.Booking
	for id, b := range m.bookings {
		if !m.visible(id, tx) || !matches(b, f) {
			continue
		}
		out = append(out, b)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if f.Ascending {
			if !out[i].BookingDate.Equal(out[j].BookingDate) {
				return out[i].BookingDate.Before(out[j].BookingDate)
			}
			return out[i].ID < out[j].ID
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	total := len(out)
	if f.Offset < 0 || f.Offset >= total {
		return []model.Booking{}, total
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total
}

func matches(b model.Booking, f model.BookingFilter) bool {
	if f.UserID != 0 && b.UserID != f.UserID {
		return false
	}
	if f.Type != "" && b.Type != f.Type {
		return false
	}
	if f.From != nil && b.BookingDate.Before(*f.From) {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if b.Status == s {
			return true
		}
	}
	return false
}

type memTx struct {
	m    *Memory
	keys []string
	held map[string]bool
	undo []func()
	ins  []uint64
}

func (tx *memTx) lock(ctx context.Context, key string) error {
	if tx.held[key] {
		return nil
	}
	if err := tx.m.locks.acquire(ctx, key); err != nil {
		return model.Persistence("lock "+key, err)
	}
	tx.held[key] = true
	tx.keys = append(tx.keys, key)
	return nil
}

func (tx *memTx) releaseLocks() {
	for i := len(tx.keys) - 1; i >= 0; i-- {
		tx.m.locks.release(tx.keys[i])
	}
	tx.keys = nil
}

func (tx *memTx) rollback() {
	tx.m.mu.Lock()
	defer tx.m.mu.Unlock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
	for _, id := range tx.ins {
		delete(tx.m.pending, id)
	}
}

func (tx *memTx) commit() {
	tx.m.mu.Lock()
	defer tx.m.mu.Unlock()
	for _, id := range tx.ins {
		delete(tx.m.pending, id)
	}
	tx.undo = nil
}

func showtimeKey(id uint64) string { return fmt.Sprintf("showtime:%d", id) }
func tierKey(id uint64) string     { return fmt.Sprintf("tier:%d", id) }
func bookingKey(id uint64) string  { return fmt.Sprintf("booking:%d", id) }

func (tx *memTx) Showtime(ctx context.Context, id uint64) (*model.Showtime, error) {
	return tx.m.Showtime(ctx, id)
}

func (tx *memTx) TicketTier(ctx context.Context, eventID, tierID uint64) (*model.TicketTier, error) {
	return tx.m.TicketTier(ctx, eventID, tierID)
}

func (tx *memTx) Restaurant(ctx context.Context, id uint64) (*model.Restaurant, error) {
	return tx.m.Restaurant(ctx, id)
}

func (tx *memTx) CountConfirmedAtSlot(ctx context.Context, slot model.Slot) (int, error) {
	return tx.m.countConfirmedAtSlot(slot, tx), nil
}

func (tx *memTx) Booking(ctx context.Context, id uint64) (*model.Booking, error) {
	return tx.m.booking(id, tx)
}

func (tx *memTx) ListBookings(ctx context.Context, f model.BookingFilter) ([]model.Booking, int, error) {
	items, total := tx.m.listBookings(f, tx)
	return items, total, nil
}

func (tx *memTx) LockShowtime(ctx context.Context, id uint64) (*model.Showtime, error) {
	if _, err := tx.m.Showtime(ctx, id); err != nil {
		return nil, err
	}
	if err := tx.lock(ctx, showtimeKey(id)); err != nil {
		return nil, err
	}
	return tx.m.Showtime(ctx, id)
}

func (tx *memTx) LockTicketTier(ctx context.Context, eventID, tierID uint64) (*model.TicketTier, error) {
	if _, err := tx.m.TicketTier(ctx, eventID, tierID); err != nil {
		return nil, err
	}
	if err := tx.lock(ctx, tierKey(tierID)); err != nil {
		return nil, err
	}
	return tx.m.TicketTier(ctx, eventID, tierID)
}

func (tx *memTx) LockRestaurantSlot(ctx context.Context, slot model.Slot) error {
	return tx.lock(ctx, slot.Key())
}

func (tx *memTx) LockBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	if _, err := tx.m.booking(id, tx); err != nil {
		return nil, err
	}
	if err := tx.lock(ctx, bookingKey(id)); err != nil {
		return nil, err
	}
	// the booking may have been deleted while we waited
	return tx.m.booking(id, tx)
}

func (tx *memTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	m := tx.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	b.ID = m.nextID
	m.bookings[b.ID] = *b
	m.pending[b.ID] = tx
	tx.ins = append(tx.ins, b.ID)
	id := b.ID
	tx.undo = append(tx.undo, func() { delete(m.bookings, id) })
	return nil
}

func (tx *memTx) UpdateBooking(ctx context.Context, b *model.Booking) error {
	if err := tx.lock(ctx, bookingKey(b.ID)); err != nil {
		return err
	}
	m := tx.m
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.bookings[b.ID]
	if !ok {
		return fmt.Errorf("booking %d: %w", b.ID, model.ErrNotFound)
	}
	next := prev
	next.Status = b.Status
	next.PaymentStatus = b.PaymentStatus
	next.SpecialRequests = b.SpecialRequests
	next.UpdatedAt = b.UpdatedAt
	m.bookings[b.ID] = next
	tx.undo = append(tx.undo, func() { m.bookings[prev.ID] = prev })
	return nil
}

func (tx *memTx) DeleteBooking(ctx context.Context, id uint64) error {
	if err := tx.lock(ctx, bookingKey(id)); err != nil {
		return err
	}
	m := tx.m
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.bookings[id]
	if !ok {
		return fmt.Errorf("booking %d: %w", id, model.ErrNotFound)
	}
	delete(m.bookings, id)
	tx.undo = append(tx.undo, func() { m.bookings[id] = prev })
	return nil
}

func (tx *memTx) AdjustAvailableSeats(ctx context.Context, showtimeID uint64, delta int) error {
	if err := tx.lock(ctx, showtimeKey(showtimeID)); err != nil {
		return err
	}
	m := tx.m
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.showtimes[showtimeID]
	if !ok {
		return fmt.Errorf("showtime %d: %w", showtimeID, model.ErrNotFound)
	}
	next := st.AvailableSeats + delta
	if next < 0 || next > st.TotalSeats {
		return fmt.Errorf("showtime %d: %d available, delta %d: %w",
			showtimeID, st.AvailableSeats, delta, model.ErrInsufficientInventory)
	}
	st.AvailableSeats = next
	m.showtimes[showtimeID] = st
	tx.undo = append(tx.undo, func() {
		st := m.showtimes[showtimeID]
		st.AvailableSeats -= delta
		m.showtimes[showtimeID] = st
	})
	return nil
}

func (tx *memTx) AdjustTicketsSold(ctx context.Context, tierID uint64, delta int) error {
	if err := tx.lock(ctx, tierKey(tierID)); err != nil {
		return err
	}
	m := tx.m
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tiers[tierID]
	if !ok {
		return fmt.Errorf("ticket tier %d: %w", tierID, model.ErrNotFound)
	}
	next := t.QuantitySold + delta
	if next < 0 || next > t.QuantityAvailable {
		return fmt.Errorf("ticket tier %d: %d sold of %d, delta %d: %w",
			tierID, t.QuantitySold, t.QuantityAvailable, delta, model.ErrInsufficientInventory)
	}
	t.QuantitySold = next
	m.tiers[tierID] = t
	tx.undo = append(tx.undo, func() {
		t := m.tiers[tierID]
		t.QuantitySold -= delta
		m.tiers[tierID] = t
	})
	return nil
}

func (tx *memTx) AdjustEventAttendees(ctx context.Context, eventID uint64, delta int) error {
	m := tx.m
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.attendees[eventID]
	next := prev + delta
	if next < 0 {
		next = 0
	}
	m.attendees[eventID] = next
	applied := next - prev
	tx.undo = append(tx.undo, func() { m.attendees[eventID] -= applied })
	return nil
}
