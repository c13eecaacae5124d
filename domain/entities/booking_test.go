package entities

import (
	"testing"
)

func TestNewBooking(t *testing.T) {
	booking := NewBooking("Maria Santos", "12 Jalan Kenanga", "Tuesday morning")

	if booking.ID == "" {
		t.Error("Expected booking ID to be assigned")
	}
	if booking.CustomerName != "Maria Santos" {
		t.Errorf("Expected customer name Maria Santos, got %s", booking.CustomerName)
	}
	if booking.Address != "12 Jalan Kenanga" {
		t.Errorf("Expected address 12 Jalan Kenanga, got %s", booking.Address)
	}
	if booking.PreferredTime != "Tuesday morning" {
		t.Errorf("Expected preferred time Tuesday morning, got %s", booking.PreferredTime)
	}
	if booking.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}

	other := NewBooking("Maria Santos", "12 Jalan Kenanga", "Tuesday morning")
	if other.ID == booking.ID {
		t.Error("Expected unique booking IDs")
	}
}

func TestBookingValidate(t *testing.T) {
	cases := []struct {
		name    string
		booking *Booking
		wantErr bool
	}{
		{"valid", NewBooking("Maria", "12 Jalan Kenanga", "Tuesday"), false},
		{"missing name", NewBooking("", "12 Jalan Kenanga", "Tuesday"), true},
		{"missing address", NewBooking("Maria", "", "Tuesday"), true},
		{"missing time", NewBooking("Maria", "12 Jalan Kenanga", ""), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.booking.Validate()
			if tc.wantErr && err == nil {
				t.Error("Expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}
