package booking

import "time"

// Config holds booking policy.
type Config struct {
	// RestaurantSlotCapacity is the number of confirmed bookings a
	// restaurant accepts per date and time. Party size is not considered.
	RestaurantSlotCapacity int
	MaxPartySize           int
	MaxSpecialRequestLen   int
	// CancelWindow is how long before booking_date a customer may still
	// cancel. Zero disables the check. Admins are exempt.
	CancelWindow    time.Duration
	DefaultPageSize int
	MaxPageSize     int
}

func DefaultConfig() Config {
	return Config{
		RestaurantSlotCapacity: 10,
		MaxPartySize:           20,
		MaxSpecialRequestLen:   1000,
		CancelWindow:           24 * time.Hour,
		DefaultPageSize:        10,
		MaxPageSize:            50,
	}
}

// withDefaults fills zero sizes from DefaultConfig. CancelWindow is kept
// as given since zero is meaningful.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RestaurantSlotCapacity <= 0 {
		c.RestaurantSlotCapacity = d.RestaurantSlotCapacity
	}
	if c.MaxPartySize <= 0 {
		c.MaxPartySize = d.MaxPartySize
	}
	if c.MaxSpecialRequestLen <= 0 {
		c.MaxSpecialRequestLen = d.MaxSpecialRequestLen
	}
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = d.DefaultPageSize
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = d.MaxPageSize
	}
	if c.DefaultPageSize > c.MaxPageSize {
		c.DefaultPageSize = c.MaxPageSize
	}
	return c
}
