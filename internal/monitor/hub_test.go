package monitor

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/wildcloud007/greenguard/domain/entities"
)

func setupTestHub(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()
	logger := zap.NewNop()
	hub := NewHub(logger)
	go hub.Run()

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return HandleWebSocket(hub, c, logger)
	})
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// Registration races the dial; give the hub loop a moment to admit us.
	time.Sleep(20 * time.Millisecond)

	return hub, conn
}

func readFeedMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	var msg map[string]any
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("Invalid feed message %q: %v", payload, err)
	}
	return msg
}

func TestHubBroadcastsStateChanges(t *testing.T) {
	hub, conn := setupTestHub(t)

	hub.StateChanged(entities.SessionStateConnected, "Connected. Start talking!")

	msg := readFeedMessage(t, conn)
	if msg["type"] != string(MessageTypeState) {
		t.Errorf("Expected %s message, got %v", MessageTypeState, msg["type"])
	}
	if msg["state"] != "connected" {
		t.Errorf("Expected connected state, got %v", msg["state"])
	}
	if msg["status"] != "Connected. Start talking!" {
		t.Errorf("Unexpected status: %v", msg["status"])
	}
	if msg["timestamp"] == "" {
		t.Error("Expected a timestamp")
	}
}

func TestHubBroadcastsSpeaking(t *testing.T) {
	hub, conn := setupTestHub(t)

	hub.Speaking(true)

	msg := readFeedMessage(t, conn)
	if msg["type"] != string(MessageTypeSpeaking) {
		t.Errorf("Expected %s message, got %v", MessageTypeSpeaking, msg["type"])
	}
	if msg["speaking"] != true {
		t.Errorf("Expected speaking true, got %v", msg["speaking"])
	}
}

func TestHubBroadcastsBookings(t *testing.T) {
	hub, conn := setupTestHub(t)

	booking := entities.NewBooking("Maria Santos", "12 Jalan Kenanga", "Tuesday morning")
	hub.BookingCreated(booking)

	msg := readFeedMessage(t, conn)
	if msg["type"] != string(MessageTypeBooking) {
		t.Errorf("Expected %s message, got %v", MessageTypeBooking, msg["type"])
	}
	if msg["booking_id"] != booking.ID {
		t.Errorf("Expected booking ID %s, got %v", booking.ID, msg["booking_id"])
	}
	if msg["customer_name"] != "Maria Santos" {
		t.Errorf("Unexpected customer name: %v", msg["customer_name"])
	}
}

func TestHubSurvivesDisconnectedClients(t *testing.T) {
	hub, conn := setupTestHub(t)
	conn.Close()

	// Give the hub a moment to unregister, then broadcast into the void.
	time.Sleep(50 * time.Millisecond)
	hub.StateChanged(entities.SessionStateDisconnected, "Disconnected")
	hub.Speaking(false)
}
