// Package tools provides MCP tool implementations for sda-engine.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/bls-living/sda-engine/pkg/apperrors"
	"github.com/bls-living/sda-engine/pkg/services"
	assistanttools "github.com/bls-living/sda-engine/pkg/tools"
)

// pendingActionResult is what an action tool returns over MCP: the action is
// prepared, never executed. The caller must present the description to the
// user and call confirm_action with the token once they agree.
type pendingActionResult struct {
	PendingConfirmation bool   `json:"pending_confirmation"`
	Token               string `json:"token"`
	Description         string `json:"description"`
	ExpiresAt           string `json:"expires_at"`
	Instructions        string `json:"instructions"`
}

// RegisterAssistantTools registers the assistant tool catalogue on the MCP
// server. Read tools execute directly; action tools prepare a pending action
// and return its token, keeping the confirmation gate intact on this surface.
func RegisterAssistantTools(s *server.MCPServer, dispatcher *services.Dispatcher, logger *zap.Logger) {
	for _, def := range dispatcher.Registry().All() {
		schema, err := json.Marshal(def.Parameters)
		if err != nil {
			logger.Error("Failed to marshal tool schema", zap.String("tool", def.Name), zap.Error(err))
			continue
		}

		tool := mcp.NewToolWithRawSchema(def.Name, def.Description, schema)
		name := def.Name

		if assistanttools.IsActionTool(name) {
			s.AddTool(tool, actionHandler(dispatcher, name, logger))
		} else {
			s.AddTool(tool, readHandler(dispatcher, name))
		}
	}

	registerConfirmTool(s, dispatcher)
	registerCancelTool(s, dispatcher)
}

func readHandler(dispatcher *services.Dispatcher, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := dispatcher.ExecuteReadTool(ctx, name, req.GetArguments())
		if err != nil {
			if result := asActionableResult(err); result != nil {
				return result, nil
			}
			return nil, err
		}
		return mcp.NewToolResultText(result), nil
	}
}

func actionHandler(dispatcher *services.Dispatcher, name string, logger *zap.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		action, err := dispatcher.PrepareAction(ctx, name, req.GetArguments())
		if err != nil {
			if result := asActionableResult(err); result != nil {
				return result, nil
			}
			return nil, err
		}

		logger.Info("prepared action over MCP",
			zap.String("tool", name),
			zap.String("token", action.Token.String()))

		payload, err := json.Marshal(pendingActionResult{
			PendingConfirmation: true,
			Token:               action.Token.String(),
			Description:         action.Description,
			ExpiresAt:           action.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
			Instructions:        "Show the description to the user. If they agree, call confirm_action with this token; otherwise call cancel_action.",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal pending action: %w", err)
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}

func registerConfirmTool(s *server.MCPServer, dispatcher *services.Dispatcher) {
	tool := mcp.NewTool(
		"confirm_action",
		mcp.WithDescription("Executes a previously prepared action. Only call this after the user has explicitly agreed to the action's description."),
		mcp.WithString("token", mcp.Required(), mcp.Description("Token returned when the action was prepared")),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		token, err := requireToken(req)
		if err != nil {
			return NewErrorResult("invalid_token", err.Error()), nil
		}

		result, err := dispatcher.ConfirmAction(ctx, token)
		if err != nil {
			if result := asActionableResult(err); result != nil {
				return result, nil
			}
			return nil, err
		}
		return mcp.NewToolResultText(result), nil
	})
}

func registerCancelTool(s *server.MCPServer, dispatcher *services.Dispatcher) {
	tool := mcp.NewTool(
		"cancel_action",
		mcp.WithDescription("Discards a previously prepared action without executing it."),
		mcp.WithString("token", mcp.Required(), mcp.Description("Token returned when the action was prepared")),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		token, err := requireToken(req)
		if err != nil {
			return NewErrorResult("invalid_token", err.Error()), nil
		}

		dispatcher.CancelAction(token)
		return mcp.NewToolResultText(`{"cancelled": true}`), nil
	})
}

func requireToken(req mcp.CallToolRequest) (uuid.UUID, error) {
	raw, err := req.RequireString("token")
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(raw)
}

// asActionableResult converts errors the model can react to into structured
// error results. System failures return nil and stay Go errors.
func asActionableResult(err error) *mcp.CallToolResult {
	var verr *assistanttools.ValidationError
	switch {
	case errors.As(err, &verr):
		return NewErrorResult("validation_error", err.Error())
	case errors.Is(err, apperrors.ErrStaleAction):
		return NewErrorResult("stale_action", err.Error())
	case errors.Is(err, apperrors.ErrDwellingAtCapacity):
		return NewErrorResult("dwelling_at_capacity", err.Error())
	case errors.Is(err, apperrors.ErrNoCurrentPlan):
		return NewErrorResult("no_current_plan", err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		return NewErrorResult("not_found", err.Error())
	case errors.Is(err, apperrors.ErrToolNotFound):
		return NewErrorResult("tool_not_found", err.Error())
	}
	return nil
}

// RegisterHealthTool adds a health check tool to the MCP server.
func RegisterHealthTool(s *server.MCPServer, version string) {
	tool := mcp.NewTool(
		"health",
		mcp.WithDescription("Returns server health status and version"),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := json.Marshal(map[string]string{"status": "ok", "version": version})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal health result: %w", err)
		}
		return mcp.NewToolResultText(string(result)), nil
	})
}
