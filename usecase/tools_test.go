package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/wildcloud007/greenguard/adapters/bookinglog"
	"github.com/wildcloud007/greenguard/domain/entities"
	"github.com/wildcloud007/greenguard/domain/repositories"
)

// responseRecorder records tool responses sent back over the channel.
type responseRecorder struct {
	mu        sync.Mutex
	responses []recordedResponse
}

type recordedResponse struct {
	id      string
	name    string
	payload map[string]any
}

func (r *responseRecorder) respond(id, name string, payload map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, recordedResponse{id: id, name: name, payload: payload})
	return nil
}

func (r *responseRecorder) snapshot() []recordedResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedResponse(nil), r.responses...)
}

// bookingRecorder records bookings announced through the notifier.
type bookingRecorder struct {
	NopNotifier
	mu       sync.Mutex
	bookings []*entities.Booking
}

func (r *bookingRecorder) BookingCreated(booking *entities.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings = append(r.bookings, booking)
}

func (r *bookingRecorder) snapshot() []*entities.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entities.Booking(nil), r.bookings...)
}

func setupDispatcher(t *testing.T) (*ToolDispatcher, *responseRecorder, *bookinglog.Memory, *bookingRecorder) {
	t.Helper()
	recorder := &responseRecorder{}
	log := bookinglog.NewMemory()
	notifier := &bookingRecorder{}
	d := NewToolDispatcher(recorder.respond, zap.NewNop())
	decl, handler := BookSiteVisitTool(log, notifier, zap.NewNop())
	d.Register(decl, handler)
	return d, recorder, log, notifier
}

func TestDispatchBookSiteVisit(t *testing.T) {
	d, recorder, log, notifier := setupDispatcher(t)

	d.Dispatch(context.Background(), repositories.ToolCallEvent{
		ID:   "call-1",
		Name: ToolBookSiteVisit,
		Args: map[string]any{
			"customerName":  "  Maria Santos ",
			"address":       "12 Jalan Kenanga",
			"preferredTime": "Tuesday morning",
		},
	})

	responses := recorder.snapshot()
	if len(responses) != 1 {
		t.Fatalf("Expected exactly 1 response, got %d", len(responses))
	}
	if responses[0].id != "call-1" || responses[0].name != ToolBookSiteVisit {
		t.Errorf("Response not correlated: id=%q name=%q", responses[0].id, responses[0].name)
	}
	if got := responses[0].payload["result"]; got != BookingConfirmation {
		t.Errorf("Expected result %q, got %v", BookingConfirmation, got)
	}

	bookings, err := log.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(bookings) != 1 {
		t.Fatalf("Expected 1 booking, got %d", len(bookings))
	}
	if bookings[0].CustomerName != "Maria Santos" {
		t.Errorf("Expected trimmed customer name, got %q", bookings[0].CustomerName)
	}
	if bookings[0].ID == "" {
		t.Error("Expected booking ID to be assigned")
	}

	if announced := notifier.snapshot(); len(announced) != 1 {
		t.Errorf("Expected 1 booking announcement, got %d", len(announced))
	}
}

func TestDispatchRejectsMalformedArgs(t *testing.T) {
	cases := []struct {
		name string
		args map[string]any
		want string
	}{
		{
			name: "missing field",
			args: map[string]any{
				"customerName":  "Maria Santos",
				"preferredTime": "Tuesday morning",
			},
			want: "address",
		},
		{
			name: "blank field",
			args: map[string]any{
				"customerName":  "   ",
				"address":       "12 Jalan Kenanga",
				"preferredTime": "Tuesday morning",
			},
			want: "customerName",
		},
		{
			name: "non-string field",
			args: map[string]any{
				"customerName":  "Maria Santos",
				"address":       42,
				"preferredTime": "Tuesday morning",
			},
			want: "address",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, recorder, log, _ := setupDispatcher(t)

			d.Dispatch(context.Background(), repositories.ToolCallEvent{
				ID:   "call-1",
				Name: ToolBookSiteVisit,
				Args: tc.args,
			})

			responses := recorder.snapshot()
			if len(responses) != 1 {
				t.Fatalf("Expected exactly 1 response, got %d", len(responses))
			}
			errText, ok := responses[0].payload["error"].(string)
			if !ok {
				t.Fatalf("Expected error payload, got %v", responses[0].payload)
			}
			if !strings.Contains(errText, tc.want) {
				t.Errorf("Expected error to mention %q, got %q", tc.want, errText)
			}

			bookings, _ := log.List(context.Background())
			if len(bookings) != 0 {
				t.Errorf("Expected no booking recorded, got %d", len(bookings))
			}
		})
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	d, recorder, _, _ := setupDispatcher(t)

	d.Dispatch(context.Background(), repositories.ToolCallEvent{
		ID:   "call-9",
		Name: "cancel_visit",
		Args: map[string]any{},
	})

	responses := recorder.snapshot()
	if len(responses) != 1 {
		t.Fatalf("Expected exactly 1 response, got %d", len(responses))
	}
	if responses[0].id != "call-9" {
		t.Errorf("Response not correlated to call, got id %q", responses[0].id)
	}
	errText, _ := responses[0].payload["error"].(string)
	if !strings.Contains(errText, "cancel_visit") {
		t.Errorf("Expected error to name the unknown tool, got %q", errText)
	}
}

func TestDeclarationsCoverRegisteredTools(t *testing.T) {
	d, _, _, _ := setupDispatcher(t)

	decls := d.Declarations()
	if len(decls) != 1 {
		t.Fatalf("Expected 1 declaration, got %d", len(decls))
	}
	if decls[0].Name != ToolBookSiteVisit {
		t.Errorf("Expected %q declaration, got %q", ToolBookSiteVisit, decls[0].Name)
	}
	if len(decls[0].Required) != 3 {
		t.Errorf("Expected 3 required parameters, got %d", len(decls[0].Required))
	}
}
