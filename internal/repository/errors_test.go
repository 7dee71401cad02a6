package repository

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/booking-hub/internal/model"
)

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr("op", nil))
	assert.ErrorIs(t, mapErr("booking 1", sql.ErrNoRows), model.ErrNotFound)

	err := mapErr("insert booking", sql.ErrConnDone)
	assert.ErrorIs(t, err, model.ErrPersistence)
	assert.ErrorIs(t, err, sql.ErrConnDone)

	inner := fmt.Errorf("x: %w", model.ErrInsufficientInventory)
	assert.Equal(t, inner, mapErr("adjust", inner))
}
