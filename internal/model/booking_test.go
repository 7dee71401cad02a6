package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	allowed := map[Status][]Status{
		StatusPending:   {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusCompleted, StatusCancelled},
	}
	all := []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}
	for _, from := range all {
		for _, to := range all {
			want := false
			for _, s := range allowed[from] {
				if s == to {
					want = true
				}
			}
			assert.Equalf(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
}

func TestDecodeDetails(t *testing.T) {
	raw, err := json.Marshal(MovieDetails{ShowtimeID: 7, Seats: []string{"A1", "A2"}})
	require.NoError(t, err)

	d, err := DecodeDetails(BookingMovie, raw)
	require.NoError(t, err)
	md, ok := d.(MovieDetails)
	require.True(t, ok)
	assert.Equal(t, uint64(7), md.ShowtimeID)
	assert.Equal(t, BookingMovie, d.BookingType())

	_, err = DecodeDetails("spa", raw)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = DecodeDetails(BookingEvent, []byte("{"))
	assert.Error(t, err)
}

func TestParseSlot(t *testing.T) {
	s, err := ParseSlot(5, "2030-03-01", "19:30:00")
	require.NoError(t, err)
	assert.Equal(t, "19:30", s.Time)
	assert.Equal(t, "slot:5:2030-03-01:19:30", s.Key())
	assert.Equal(t, 19, s.At().Hour())

	_, err = ParseSlot(5, "03/01/2030", "19:30")
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = ParseSlot(5, "2030-03-01", "7pm")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestPersistenceKeepsKnownKinds(t *testing.T) {
	assert.Equal(t, ErrNotFound, Persistence("get", ErrNotFound))
	assert.Nil(t, Persistence("get", nil))

	err := Persistence("insert booking", assert.AnError)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, assert.AnError)
	assert.True(t, IsInvalidRequest(ErrInvalidTransition))
}

func TestBookingJSONKeepsDetailsVariant(t *testing.T) {
	in := Booking{
		ID: 4, Type: BookingEvent, Status: StatusConfirmed,
		Details: EventDetails{EventTitle: "Jazz Night", TicketType: "VIP"},
	}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out Booking
	require.NoError(t, json.Unmarshal(raw, &out))
	d, ok := out.Details.(EventDetails)
	require.True(t, ok, "got %T", out.Details)
	assert.Equal(t, "Jazz Night", d.EventTitle)
	assert.Equal(t, uint64(4), out.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id":5,"booking_type":"movie","booking_details":null}`), &out))
	assert.Nil(t, out.Details)
}

func TestBookingJSONAmountIsInCents(t *testing.T) {
	raw, err := json.Marshal(Booking{Type: BookingMovie, TotalAmountCents: 2400})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.EqualValues(t, 2400, fields["total_amount_cents"])
	assert.NotContains(t, fields, "total_amount")
}
