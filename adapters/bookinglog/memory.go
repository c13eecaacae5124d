package bookinglog

import (
	"context"
	"sync"

	"github.com/wildcloud007/greenguard/domain/entities"
)

// Memory is an append-only in-memory booking log. Bookings live for the
// process lifetime only; nothing is persisted.
type Memory struct {
	mu       sync.Mutex
	bookings []*entities.Booking
}

// NewMemory creates an empty booking log.
func NewMemory() *Memory {
	return &Memory{}
}

// Append validates and records one booking.
func (m *Memory) Append(ctx context.Context, booking *entities.Booking) error {
	if err := booking.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = append(m.bookings, booking)
	return nil
}

// List returns all bookings in append order.
func (m *Memory) List(ctx context.Context) ([]*entities.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entities.Booking, len(m.bookings))
	copy(out, m.bookings)
	return out, nil
}
