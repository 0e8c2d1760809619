package marketv1

import (
	"context"
	"errors"
)

//go:generate mockgen -source=interface.go -destination=mock/interface_mock.go -package=mock

// ErrDayNotFound is returned by a Store when no data exists for the
// requested round/day combination.
var ErrDayNotFound = errors.New("no data for requested round/day")

// Store supplies parsed market data for a round/day combination.
type Store interface {
	// LoadDay returns the data of one round/day. Implementations return an
	// error wrapping ErrDayNotFound when the day has no usable data.
	LoadDay(ctx context.Context, round, day int) (*DayData, error)
}
