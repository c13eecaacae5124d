package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Booking represents a scheduled site visit requested through the
// book_site_visit tool. Bookings are append-only and immutable once created.
type Booking struct {
	ID            string    `json:"id"`
	CustomerName  string    `json:"customer_name"`
	Address       string    `json:"address"`
	PreferredTime string    `json:"preferred_time"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewBooking creates a booking record for a site visit
func NewBooking(customerName, address, preferredTime string) *Booking {
	return &Booking{
		ID:            uuid.NewString(),
		CustomerName:  customerName,
		Address:       address,
		PreferredTime: preferredTime,
		CreatedAt:     time.Now(),
	}
}

// Validate validates the booking data
func (b *Booking) Validate() error {
	if b.CustomerName == "" {
		return errors.New("customer name is required")
	}
	if b.Address == "" {
		return errors.New("address is required")
	}
	if b.PreferredTime == "" {
		return errors.New("preferred time is required")
	}
	return nil
}
