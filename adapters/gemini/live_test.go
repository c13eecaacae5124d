package gemini

import (
	"testing"

	"google.golang.org/genai"

	"github.com/wildcloud007/greenguard/domain/repositories"
)

func TestToGenaiTools(t *testing.T) {
	decls := []repositories.ToolDeclaration{{
		Name:        "book_site_visit",
		Description: "Schedule an on-site visit.",
		Parameters: map[string]string{
			"customerName":  "Full name of the customer.",
			"address":       "Street address for the visit.",
			"preferredTime": "Preferred day and time.",
		},
		Required: []string{"customerName", "address", "preferredTime"},
	}}

	tools := toGenaiTools(decls)
	if len(tools) != 1 {
		t.Fatalf("Expected 1 tool, got %d", len(tools))
	}
	fns := tools[0].FunctionDeclarations
	if len(fns) != 1 {
		t.Fatalf("Expected 1 function declaration, got %d", len(fns))
	}

	fn := fns[0]
	if fn.Name != "book_site_visit" {
		t.Errorf("Unexpected function name %q", fn.Name)
	}
	if fn.Parameters.Type != genai.TypeObject {
		t.Errorf("Expected object schema, got %v", fn.Parameters.Type)
	}
	if len(fn.Parameters.Properties) != 3 {
		t.Errorf("Expected 3 properties, got %d", len(fn.Parameters.Properties))
	}
	for name, schema := range fn.Parameters.Properties {
		if schema.Type != genai.TypeString {
			t.Errorf("Property %s: expected string schema, got %v", name, schema.Type)
		}
		if schema.Description == "" {
			t.Errorf("Property %s: expected a description", name)
		}
	}
	if len(fn.Parameters.Required) != 3 {
		t.Errorf("Expected 3 required parameters, got %d", len(fn.Parameters.Required))
	}
}

func TestMockChannelRejectsAfterClose(t *testing.T) {
	channel := NewMockChannel()
	if err := channel.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := channel.SendAudioFrame(repositories.AudioFrame{Data: []byte{0, 0}}); err == nil {
		t.Error("Expected frame rejected after close")
	}
	if err := channel.SendToolResponse("id", "name", nil); err == nil {
		t.Error("Expected tool response rejected after close")
	}
	if err := channel.Close(); err != nil {
		t.Errorf("Expected repeated close to be a no-op, got %v", err)
	}
}
