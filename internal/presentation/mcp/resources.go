package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const documentURIPrefix = "flexibuilder://document/"

func (s *Server) registerResources() {
	s.mcp.AddResource(mcp.NewResource(
		"flexibuilder://catalog",
		"Widget Catalog",
		mcp.WithMIMEType("application/json"),
	), s.handleCatalogResource)

	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			documentURIPrefix+"{documentId}",
			"Document as Markdown",
		),
		s.handleDocumentResource,
	)
}

func (s *Server) handleCatalogResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(s.catalog.Palette(), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "flexibuilder://catalog",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleDocumentResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id := strings.TrimPrefix(req.Params.URI, documentURIPrefix)
	if id == "" || id == req.Params.URI {
		return nil, fmt.Errorf("invalid document URI %q", req.Params.URI)
	}
	if err := s.open(ctx, id); err != nil {
		return nil, err
	}
	out, err := s.exports.Export(ctx, id, "markdown")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     out.Body,
		},
	}, nil
}
