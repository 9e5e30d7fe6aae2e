// CLAUDE:SUMMARY Registers the resolver MCP tools — moorage_resolve and moorage_history.
package resolve

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mooragehq/moorage/kit"
)

// RegisterMCP registers the service tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerResolveTool(srv)
	s.registerHistoryTool(srv)
}

func (s *Service) registerResolveTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "moorage_resolve",
		Description: "Resolve a stable selector for a UI element from a selector hint and the anchor store.",
		InputSchema: kit.InputSchema(map[string]any{
			"url":             map[string]any{"type": "string", "description": "Page URL the selector will be applied to"},
			"initialSelector": map[string]any{"type": "string", "description": "Caller's current best-guess selector"},
			"anchorsPath":     map[string]any{"type": "string", "description": "Path to the anchor store JSON file"},
			"writeBack":       map[string]any{"type": "boolean", "description": "Persist the winning selector into the store"},
		}, []string{"initialSelector"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.doResolve(ctx, *req.(*resolveRequest)), nil
	}

	decode := func(args json.RawMessage) (any, error) {
		var r resolveRequest
		if err := json.Unmarshal(args, &r); err != nil {
			return nil, err
		}
		return &r, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

type historyRequest struct {
	AnchorID string `json:"anchorId,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

func (s *Service) registerHistoryTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "moorage_history",
		Description: "List recent selector resolutions, optionally filtered by anchor id.",
		InputSchema: kit.InputSchema(map[string]any{
			"anchorId": map[string]any{"type": "string", "description": "Filter by anchor id"},
			"limit":    map[string]any{"type": "integer", "description": "Max entries (default 20)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*historyRequest)
		if s.hist == nil {
			return []any{}, nil
		}
		if r.AnchorID != "" {
			return s.hist.ByAnchor(ctx, r.AnchorID, r.Limit)
		}
		return s.hist.Recent(ctx, r.Limit)
	}

	decode := func(args json.RawMessage) (any, error) {
		var r historyRequest
		if len(args) > 0 {
			if err := json.Unmarshal(args, &r); err != nil {
				return nil, err
			}
		}
		return &r, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
