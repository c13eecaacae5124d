package repositories

import (
	"context"

	"github.com/wildcloud007/greenguard/domain/entities"
)

// BookingLog is the append-only record of scheduled site visits. The log is
// in-memory only and lost on teardown; that is deliberate, not a gap.
type BookingLog interface {
	// Append stores a new booking. Bookings are immutable once appended.
	Append(ctx context.Context, booking *entities.Booking) error

	// List returns a snapshot of all bookings in append order.
	List(ctx context.Context) ([]*entities.Booking, error)
}
