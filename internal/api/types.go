package api

import "time"

// TokenRequest represents the request payload for operator authentication
type TokenRequest struct {
	OperatorID string `json:"operator_id" validate:"required"`
	Secret     string `json:"secret" validate:"required"`
}

// TokenResponse represents the response payload for operator authentication
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionResponse describes the current session lifecycle state
type SessionResponse struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
	Status    string `json:"status"`
}

// BookingResponse describes one scheduled site visit
type BookingResponse struct {
	ID            string    `json:"id"`
	CustomerName  string    `json:"customer_name"`
	Address       string    `json:"address"`
	PreferredTime string    `json:"preferred_time"`
	CreatedAt     time.Time `json:"created_at"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
