package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wildcloud007/greenguard/domain/entities"
	"github.com/wildcloud007/greenguard/domain/repositories"
)

// ToolHandler executes a tool's side effect and returns the success payload.
type ToolHandler func(ctx context.Context, args map[string]any) (map[string]any, error)

// ToolResponder sends the correlated response for a tool call back over the
// channel.
type ToolResponder func(id, name string, payload map[string]any) error

type registeredTool struct {
	decl    repositories.ToolDeclaration
	handler ToolHandler
}

// ToolDispatcher validates and executes tool calls against a fixed registry.
// Every dispatched call produces exactly one response, success or failure;
// the remote's conversational turn-taking blocks until one arrives.
type ToolDispatcher struct {
	logger  *zap.Logger
	respond ToolResponder
	tools   map[string]registeredTool
}

// NewToolDispatcher creates an empty tool dispatcher.
func NewToolDispatcher(respond ToolResponder, logger *zap.Logger) *ToolDispatcher {
	return &ToolDispatcher{
		logger:  logger,
		respond: respond,
		tools:   make(map[string]registeredTool),
	}
}

// Register adds a tool to the registry. Registration happens before the
// channel opens; the registry is fixed afterwards.
func (d *ToolDispatcher) Register(decl repositories.ToolDeclaration, handler ToolHandler) {
	d.tools[decl.Name] = registeredTool{decl: decl, handler: handler}
}

// Declarations returns the registered tool declarations for the channel
// config.
func (d *ToolDispatcher) Declarations() []repositories.ToolDeclaration {
	decls := make([]repositories.ToolDeclaration, 0, len(d.tools))
	for _, tool := range d.tools {
		decls = append(decls, tool.decl)
	}
	return decls
}

// Dispatch validates and executes one tool call and sends its response.
func (d *ToolDispatcher) Dispatch(ctx context.Context, call repositories.ToolCallEvent) {
	tool, ok := d.tools[call.Name]
	if !ok {
		d.logger.Warn("Rejected unknown tool call",
			zap.String("id", call.ID),
			zap.String("name", call.Name))
		d.sendResponse(call, map[string]any{
			"error": fmt.Sprintf("unknown tool %q", call.Name),
		})
		return
	}

	if err := validateArgs(tool.decl, call.Args); err != nil {
		d.logger.Warn("Rejected malformed tool call",
			zap.String("id", call.ID),
			zap.String("name", call.Name),
			zap.Error(err))
		d.sendResponse(call, map[string]any{"error": err.Error()})
		return
	}

	payload, err := tool.handler(ctx, call.Args)
	if err != nil {
		d.logger.Error("Tool execution failed",
			zap.String("id", call.ID),
			zap.String("name", call.Name),
			zap.Error(err))
		d.sendResponse(call, map[string]any{"error": err.Error()})
		return
	}

	d.logger.Info("Tool call completed",
		zap.String("id", call.ID),
		zap.String("name", call.Name))
	d.sendResponse(call, payload)
}

func (d *ToolDispatcher) sendResponse(call repositories.ToolCallEvent, payload map[string]any) {
	if err := d.respond(call.ID, call.Name, payload); err != nil {
		d.logger.Error("Failed to send tool response",
			zap.String("id", call.ID),
			zap.Error(err))
	}
}

// validateArgs checks that every required parameter is a non-blank string.
func validateArgs(decl repositories.ToolDeclaration, args map[string]any) error {
	for _, name := range decl.Required {
		raw, ok := args[name]
		if !ok {
			return &entities.ValidationError{Field: name, Reason: "missing required field"}
		}
		value, ok := raw.(string)
		if !ok {
			return &entities.ValidationError{Field: name, Reason: "must be a string"}
		}
		if strings.TrimSpace(value) == "" {
			return &entities.ValidationError{Field: name, Reason: "must not be blank"}
		}
	}
	return nil
}
