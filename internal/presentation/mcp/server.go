// Package mcpserver exposes the editor to AI agents over the Model Context
// Protocol: documents can be opened, edited with commands, generated from a
// prompt and exported.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/AtRiskMedia/flexibuilder-go/internal/application/services"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/widgets"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
)

// Server is the MCP server for the page builder.
type Server struct {
	mcp     *server.MCPServer
	editor  *services.EditorService
	layouts *services.LayoutService
	exports *services.ExportService
	catalog *widgets.Catalog
	logger  *logging.ChanneledLogger
}

// Deps holds the services the MCP tools call into.
type Deps struct {
	Editor  *services.EditorService
	Layouts *services.LayoutService
	Exports *services.ExportService
	Logger  *logging.ChanneledLogger
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps, version string) *Server {
	s := &Server{
		editor:  deps.Editor,
		layouts: deps.Layouts,
		exports: deps.Exports,
		catalog: deps.Editor.Catalog(),
		logger:  deps.Logger,
	}

	s.mcp = server.NewMCPServer(
		"flexibuilder",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerDocumentTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.MCP().Info("Starting MCP stdio server")
	return server.ServeStdio(s.mcp)
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func requireString(args map[string]any, key string) (string, error) {
	v := stringArg(args, key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

// open makes sure the document has a session before a tool touches it.
func (s *Server) open(ctx context.Context, documentID string) error {
	_, err := s.editor.Open(ctx, documentID)
	return err
}
