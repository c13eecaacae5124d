package monitor

import (
	"time"

	"github.com/wildcloud007/greenguard/domain/entities"
)

// MessageType defines the type of a monitor feed message.
type MessageType string

// Feed message types.
const (
	MessageTypeState    MessageType = "session_state"
	MessageTypeSpeaking MessageType = "speaking"
	MessageTypeBooking  MessageType = "booking"
)

// BaseMessage is the common envelope for all feed messages.
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp"`
}

// StateMessage announces a session lifecycle transition or status change.
type StateMessage struct {
	BaseMessage
	State  string `json:"state"`
	Status string `json:"status"`
}

// SpeakingMessage announces whether assistant audio is currently audible.
type SpeakingMessage struct {
	BaseMessage
	Speaking bool `json:"speaking"`
}

// BookingMessage announces a newly scheduled site visit.
type BookingMessage struct {
	BaseMessage
	BookingID     string `json:"booking_id"`
	CustomerName  string `json:"customer_name"`
	Address       string `json:"address"`
	PreferredTime string `json:"preferred_time"`
}

func newBase(t MessageType) BaseMessage {
	return BaseMessage{
		Type:      t,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// NewStateMessage builds a state feed message.
func NewStateMessage(state entities.SessionState, status string) *StateMessage {
	return &StateMessage{
		BaseMessage: newBase(MessageTypeState),
		State:       state.String(),
		Status:      status,
	}
}

// NewSpeakingMessage builds a speaking feed message.
func NewSpeakingMessage(speaking bool) *SpeakingMessage {
	return &SpeakingMessage{
		BaseMessage: newBase(MessageTypeSpeaking),
		Speaking:    speaking,
	}
}

// NewBookingMessage builds a booking feed message.
func NewBookingMessage(booking *entities.Booking) *BookingMessage {
	return &BookingMessage{
		BaseMessage:   newBase(MessageTypeBooking),
		BookingID:     booking.ID,
		CustomerName:  booking.CustomerName,
		Address:       booking.Address,
		PreferredTime: booking.PreferredTime,
	}
}
