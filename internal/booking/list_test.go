package booking

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/booking-hub/internal/model"
)

func TestListForUserFiltersAndPaginates(t *testing.T) {
	svc, m := newFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 12, 10, 18, 0, 0, 0, time.UTC)
	add := func(user uint64, typ model.BookingType, status model.Status, at time.Time) {
		m.AddBooking(model.Booking{UserID: user, Type: typ, Status: status, BookingDate: at, CreatedAt: at, Quantity: 1})
	}
	for i := 0; i < 12; i++ {
		add(customer.UserID, model.BookingEvent, model.StatusPending, base.Add(time.Duration(i)*time.Hour))
	}
	add(customer.UserID, model.BookingMovie, model.StatusCompleted, base.Add(-30*24*time.Hour))
	add(customer.UserID, model.BookingRestaurant, model.StatusCancelled, base)
	add(stranger.UserID, model.BookingMovie, model.StatusPending, base)

	p, err := svc.ListForUser(ctx, customer.UserID, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, p.Items, 10)
	assert.Equal(t, Pagination{CurrentPage: 1, PerPage: 10, Total: 14, TotalPages: 2}, p.Pagination)

	p, err = svc.ListForUser(ctx, customer.UserID, ListQuery{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, p.Items, 4)

	p, err = svc.ListForUser(ctx, customer.UserID, ListQuery{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 50, p.Pagination.PerPage)

	p, err = svc.ListForUser(ctx, customer.UserID, ListQuery{Type: model.BookingEvent, Status: model.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, 12, p.Pagination.Total)

	p, err = svc.ListForUser(ctx, customer.UserID, ListQuery{View: ViewHistory})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Pagination.Total)

	p, err = svc.ListForUser(ctx, customer.UserID, ListQuery{View: ViewUpcoming, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 12, p.Pagination.Total)
	require.Len(t, p.Items, 3)
	assert.True(t, p.Items[0].BookingDate.Before(p.Items[1].BookingDate), "soonest first")

	_, err = svc.ListForUser(ctx, customer.UserID, ListQuery{Status: "lost"})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
	_, err = svc.ListForUser(ctx, customer.UserID, ListQuery{View: "soon"})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
}

func TestListRejectsPageBeyondAddressableOffset(t *testing.T) {
	svc, m := newFixture(t)
	ctx := context.Background()
	m.AddBooking(model.Booking{UserID: customer.UserID, Type: model.BookingMovie, Status: model.StatusPending})

	require.NotPanics(t, func() {
		_, err := svc.ListForUser(ctx, customer.UserID, ListQuery{Page: math.MaxInt/10 + 2, Limit: 10})
		assert.ErrorIs(t, err, model.ErrInvalidRequest)
	})

	p, err := svc.ListForUser(ctx, customer.UserID, ListQuery{Page: 1000, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, p.Items)
	assert.Equal(t, 1, p.Pagination.Total)
}

func TestListAllIsAdminOnly(t *testing.T) {
	svc, m := newFixture(t)
	ctx := context.Background()
	m.AddBooking(model.Booking{UserID: customer.UserID, Type: model.BookingMovie, Status: model.StatusPending})
	m.AddBooking(model.Booking{UserID: stranger.UserID, Type: model.BookingMovie, Status: model.StatusPending})

	_, err := svc.ListAll(ctx, customer, ListQuery{})
	assert.ErrorIs(t, err, model.ErrForbidden)

	p, err := svc.ListAll(ctx, admin, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Pagination.Total)

	p, err = svc.ListAll(ctx, admin, ListQuery{UserID: stranger.UserID})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Pagination.Total)
}
