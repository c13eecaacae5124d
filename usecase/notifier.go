package usecase

import "github.com/wildcloud007/greenguard/domain/entities"

// Notifier receives observable session events for the presentation layer:
// the human-readable status string, speaking-state transitions and new
// bookings. Implementations must not block; they are invoked from the
// session's event-consumption context.
type Notifier interface {
	StateChanged(state entities.SessionState, status string)
	Speaking(speaking bool)
	BookingCreated(booking *entities.Booking)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) StateChanged(entities.SessionState, string) {}
func (NopNotifier) Speaking(bool)                              {}
func (NopNotifier) BookingCreated(*entities.Booking)           {}
