package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("design_landing_page",
		mcp.WithPromptDescription("Guide through building a landing page with sections, columns and widgets"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("What the page is about"),
			mcp.RequiredArgument(),
		),
	), s.handleLandingPagePrompt)
}

func (s *Server) handleLandingPagePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Build a landing page for: %s", topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Build a landing page about "%s".

1. Call create_document to get a document id.
2. Call generate_layout with a one-sentence description to get a starting structure.
3. Call get_document and refine copy with apply_command using update_property on heading, text and button nodes.
4. Add anything missing with insert_section / insert_widget. Use list_widgets to see the available types and props.
5. Call export_document with format "markdown" to review, then save_document.`, topic),
				},
			},
		},
	}, nil
}
