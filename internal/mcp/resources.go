package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

var resActiveSession = mcp.NewResource(
	"liftlog://active_session",
	"Active Session",
	mcp.WithResourceDescription("The in-progress workout session, if one exists (raw persisted state)"),
	mcp.WithMIMEType("application/json"),
)

var resRecentHistory = mcp.NewResource(
	"liftlog://recent_history",
	"Recent History",
	mcp.WithResourceDescription("Completed workout sessions from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) activeSession(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	blob, err := h.ds.LoadActiveSession(ctx)
	if err != nil {
		return nil, err
	}
	text := "null"
	if blob != nil {
		text = string(blob)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     text,
		},
	}, nil
}

func (h *handlers) recentHistory(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -14)

	sessions, err := h.ds.QueryWorkoutSessions(ctx, start, end)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
