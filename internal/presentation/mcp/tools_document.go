package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AtRiskMedia/flexibuilder-go/internal/application/services"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
)

// toolState is EditorState without the canvas markup, which agents rarely need.
type toolState struct {
	DocumentID string           `json:"documentId"`
	Title      string           `json:"title"`
	Revision   int              `json:"revision"`
	SelectedID string           `json:"selectedId,omitempty"`
	Device     document.Device  `json:"device"`
	CanUndo    bool             `json:"canUndo"`
	CanRedo    bool             `json:"canRedo"`
	Unsaved    bool             `json:"unsaved"`
	Result     *document.Result `json:"result,omitempty"`
	Sections   []*document.Node `json:"sections"`
}

func summarize(state *services.EditorState) toolState {
	return toolState{
		DocumentID: state.DocumentID,
		Title:      state.Title,
		Revision:   state.Revision,
		SelectedID: state.SelectedID,
		Device:     state.Device,
		CanUndo:    state.CanUndo,
		CanRedo:    state.CanRedo,
		Unsaved:    state.Unsaved,
		Result:     state.Result,
		Sections:   state.Sections,
	}
}

func (s *Server) registerDocumentTools() {
	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List stored and open page documents"),
	), s.handleListDocuments)

	s.mcp.AddTool(mcp.NewTool("get_document",
		mcp.WithDescription("Open a document and return its section tree, selection and history state"),
		mcp.WithString("documentId", mcp.Description("Document ID"), mcp.Required()),
	), s.handleGetDocument)

	s.mcp.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create a new empty document"),
		mcp.WithString("title", mcp.Description("Document title (optional)")),
	), s.handleCreateDocument)

	s.mcp.AddTool(mcp.NewTool("apply_command",
		mcp.WithDescription("Apply one editor command. Ops: insert_section, insert_column, insert_widget, delete, update_property, move, select, deselect, set_device, undo, redo, commit."),
		mcp.WithString("documentId", mcp.Description("Document ID"), mcp.Required()),
		mcp.WithString("command",
			mcp.Description(`JSON command, e.g. {"op":"insert_widget","parentId":"col-...","type":"heading"} or {"op":"update_property","nodeId":"...","key":"text","value":"Hi"}`),
			mcp.Required(),
		),
	), s.handleApplyCommand)

	s.mcp.AddTool(mcp.NewTool("generate_layout",
		mcp.WithDescription("Replace the document content with a layout generated from a description. Undoable in one step."),
		mcp.WithString("documentId", mcp.Description("Document ID"), mcp.Required()),
		mcp.WithString("prompt", mcp.Description("What the page is about"), mcp.Required()),
	), s.handleGenerateLayout)

	s.mcp.AddTool(mcp.NewTool("export_document",
		mcp.WithDescription("Render a document as html, page, markdown or json"),
		mcp.WithString("documentId", mcp.Description("Document ID"), mcp.Required()),
		mcp.WithString("format", mcp.Description("html, page, markdown or json (default markdown)")),
	), s.handleExportDocument)

	s.mcp.AddTool(mcp.NewTool("save_document",
		mcp.WithDescription("Persist a document"),
		mcp.WithString("documentId", mcp.Description("Document ID"), mcp.Required()),
	), s.handleSaveDocument)

	s.mcp.AddTool(mcp.NewTool("list_widgets",
		mcp.WithDescription("List widget types with their editable properties"),
	), s.handleListWidgets)
}

func (s *Server) handleListDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.editor.List(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResult(docs)
}

func (s *Server) handleGetDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "documentId")
	if err != nil {
		return nil, err
	}
	state, err := s.editor.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	return jsonResult(summarize(state))
}

func (s *Server) handleCreateDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := s.editor.Create(ctx, stringArg(req.GetArguments(), "title"))
	if err != nil {
		return nil, err
	}
	return jsonResult(summarize(state))
}

func (s *Server) handleApplyCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "documentId")
	if err != nil {
		return nil, err
	}
	raw, err := requireString(args, "command")
	if err != nil {
		return nil, err
	}
	var cmd document.Command
	if err := json.Unmarshal([]byte(raw), &cmd); err != nil {
		return nil, fmt.Errorf("invalid command JSON: %w", err)
	}
	if err := s.open(ctx, id); err != nil {
		return nil, err
	}
	state, err := s.editor.Apply(ctx, id, cmd)
	if err != nil {
		return nil, err
	}
	s.logger.MCP().Debug("Command applied via MCP", "documentId", id, "op", cmd.Op)
	return jsonResult(summarize(state))
}

func (s *Server) handleGenerateLayout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "documentId")
	if err != nil {
		return nil, err
	}
	prompt, err := requireString(args, "prompt")
	if err != nil {
		return nil, err
	}
	if err := s.open(ctx, id); err != nil {
		return nil, err
	}
	res, err := s.layouts.Generate(ctx, id, prompt)
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{
		"provider": res.Provider,
		"stats":    res.Stats,
		"state":    summarize(res.State),
	})
}

func (s *Server) handleExportDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "documentId")
	if err != nil {
		return nil, err
	}
	format := stringArg(args, "format")
	if format == "" {
		format = services.FormatMarkdown
	}
	if err := s.open(ctx, id); err != nil {
		return nil, err
	}
	out, err := s.exports.Export(ctx, id, format)
	if err != nil {
		return nil, err
	}
	return textResult(out.Body), nil
}

func (s *Server) handleSaveDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "documentId")
	if err != nil {
		return nil, err
	}
	if err := s.editor.Save(ctx, id); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Saved %s", id)), nil
}

func (s *Server) handleListWidgets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type widgetInfo struct {
		Type   string   `json:"type"`
		Label  string   `json:"label"`
		Parent string   `json:"parent"`
		Props  []string `json:"props"`
	}
	var out []widgetInfo
	for _, typ := range s.catalog.Types() {
		def, _ := s.catalog.Get(typ)
		info := widgetInfo{Type: def.Type, Label: def.Label, Parent: def.Parent}
		for _, f := range def.Fields {
			info.Props = append(info.Props, f.Key)
		}
		out = append(out, info)
	}
	return jsonResult(out)
}
