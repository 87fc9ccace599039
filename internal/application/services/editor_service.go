// Package services provides application-level services that orchestrate
// editor sessions, persistence and the surrounding infrastructure.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/rendering"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/widgets"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/repositories"
	domainservices "github.com/AtRiskMedia/flexibuilder-go/internal/domain/services"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/caching/types"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/flexibuilder-go/internal/presentation/templates"
)

var (
	// ErrSessionNotFound is returned for documents that are not open.
	ErrSessionNotFound = errors.New("editor session not found")
	// ErrGenerationInProgress is returned when a document already has a
	// layout generation running.
	ErrGenerationInProgress = errors.New("layout generation already in progress")
)

// EditorState is what a client needs after every command: the canvas
// markup, the panel for the selection and the history affordances.
type EditorState struct {
	DocumentID  string                `json:"documentId"`
	Title       string                `json:"title"`
	Revision    int                   `json:"revision"`
	SelectedID  string                `json:"selectedId"`
	Device      document.Device       `json:"device"`
	CanUndo     bool                  `json:"canUndo"`
	CanRedo     bool                  `json:"canRedo"`
	Unsaved     bool                  `json:"unsaved"`
	Uncommitted bool                  `json:"uncommitted"`
	HTML        string                `json:"html"`
	Panel       *domainservices.Panel `json:"panel,omitempty"`
	Result      *document.Result      `json:"result,omitempty"`
	Sections    []*document.Node      `json:"sections,omitempty"`
}

// SessionInfo describes an open session.
type SessionInfo struct {
	DocumentID string    `json:"documentId"`
	Title      string    `json:"title"`
	Unsaved    bool      `json:"unsaved"`
	Generating bool      `json:"generating"`
	Opened     time.Time `json:"opened"`
	LastAccess time.Time `json:"lastAccess"`
	SavedAt    time.Time `json:"savedAt,omitempty"`
}

// EditorService owns the open documents. Every operation on a session runs
// under that session's mutex.
type EditorService struct {
	store           *stores.SessionsStore
	docRepo         repositories.DocumentRepository
	catalog         *widgets.Catalog
	panels          *domainservices.PropertyPanelService
	integrity       *domainservices.DocumentIntegrityService
	broadcaster     messaging.Broadcaster
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
	historyCapacity int
}

// NewEditorService creates the editor service. docRepo and broadcaster may
// be nil for in-memory use.
func NewEditorService(
	store *stores.SessionsStore,
	docRepo repositories.DocumentRepository,
	catalog *widgets.Catalog,
	broadcaster messaging.Broadcaster,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
	historyCapacity int,
) *EditorService {
	if catalog == nil {
		catalog = widgets.Default()
	}
	if historyCapacity <= 0 {
		historyCapacity = document.DefaultHistoryCapacity
	}
	return &EditorService{
		store:           store,
		docRepo:         docRepo,
		catalog:         catalog,
		panels:          domainservices.NewPropertyPanelService(catalog),
		integrity:       domainservices.NewDocumentIntegrityService(catalog),
		broadcaster:     broadcaster,
		logger:          logger,
		perfTracker:     perfTracker,
		historyCapacity: historyCapacity,
	}
}

// Catalog returns the widget catalog documents are validated against.
func (e *EditorService) Catalog() *widgets.Catalog { return e.catalog }

// Open returns the session for documentID, loading it on first use. Missing
// documents start empty; corrupt ones are logged and start empty.
func (e *EditorService) Open(ctx context.Context, documentID string) (*EditorState, error) {
	s, err := e.open(ctx, documentID)
	if err != nil {
		return nil, err
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return e.stateLocked(s, nil), nil
}

func (e *EditorService) open(ctx context.Context, documentID string) (*types.EditorSession, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, fmt.Errorf("document ID cannot be empty")
	}
	if s, ok := e.store.Get(documentID); ok {
		return s, nil
	}

	start := time.Now()
	doc, repaired, err := e.load(ctx, documentID)
	if err != nil {
		return nil, err
	}
	session := types.NewEditorSession(doc)
	session.Dirty = repaired
	s, err := e.store.Add(documentID, session)
	if err != nil {
		return nil, err
	}
	e.logger.Editor().Info("Editor session opened", "documentId", documentID, "sections", len(doc.Sections), "duration", time.Since(start))
	return s, nil
}

func (e *EditorService) load(ctx context.Context, documentID string) (*document.Document, bool, error) {
	opts := []document.Option{document.WithCatalog(e.catalog), document.WithHistoryCapacity(e.historyCapacity)}
	if e.docRepo == nil {
		return document.New(documentID, opts...), false, nil
	}

	payload, err := e.docRepo.FindByID(ctx, documentID)
	switch {
	case errors.Is(err, repositories.ErrDocumentNotFound):
		e.logger.Editor().Debug("Document not stored yet, starting empty", "documentId", documentID)
		return document.New(documentID, opts...), false, nil
	case errors.Is(err, repositories.ErrCorruptDocument):
		e.logger.Storage().Error("Stored document is corrupt, starting empty", "documentId", documentID, "error", err.Error())
		return document.New(documentID, opts...), false, nil
	case err != nil:
		return nil, false, fmt.Errorf("failed to load document %s: %w", documentID, err)
	}

	repaired := false
	if report := e.integrity.Analyze(payload.Sections, ""); report.RepairRequired {
		e.logger.Storage().Warn("Stored document failed integrity checks, repairing",
			"documentId", documentID,
			"duplicateIds", len(report.DuplicateIDs),
			"unknownTypes", len(report.UnknownTypes),
			"misplaced", len(report.Misplaced))
		payload.Sections = e.integrity.Repair(payload.Sections, security.GenerateNodeID)
		repaired = true
	}
	return document.FromPayload(payload, opts...), repaired, nil
}

// Create starts a new, unsaved document with a generated id.
func (e *EditorService) Create(ctx context.Context, title string) (*EditorState, error) {
	id := strings.ToLower(security.GenerateULID())
	doc := document.New(id,
		document.WithTitle(strings.TrimSpace(title)),
		document.WithCatalog(e.catalog),
		document.WithHistoryCapacity(e.historyCapacity))
	session := types.NewEditorSession(doc)
	session.Dirty = true
	s, err := e.store.Add(id, session)
	if err != nil {
		return nil, err
	}
	e.logger.Editor().Info("Document created", "documentId", id)
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return e.stateLocked(s, nil), nil
}

func (e *EditorService) session(documentID string) (*types.EditorSession, error) {
	s, ok := e.store.Get(documentID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, documentID)
	}
	return s, nil
}

// Apply runs one command through the document reducer, re-renders and
// pushes the result to preview subscribers.
func (e *EditorService) Apply(ctx context.Context, documentID string, cmd document.Command) (*EditorState, error) {
	marker := e.perfTracker.StartOperation("editor:command", documentID)
	defer e.perfTracker.CompleteOperation(marker)
	marker.AddMetadata("op", string(cmd.Op))

	s, err := e.session(documentID)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.Deleted {
		err := fmt.Errorf("%w: %s", ErrSessionNotFound, documentID)
		marker.SetError(err)
		return nil, err
	}

	res, err := s.Document.Apply(cmd)
	if err != nil {
		marker.SetError(err)
		e.logger.Editor().Warn("Rejected command", "documentId", documentID, "op", cmd.Op, "error", err.Error())
		return nil, err
	}
	if res.Changed && cmd.Op != document.OpSelect && cmd.Op != document.OpDeselect {
		s.Dirty = true
	}
	if res.Recorded {
		h := s.Document.History()
		e.logger.History().Debug("Snapshot recorded", "documentId", documentID, "op", cmd.Op, "index", h.Index(), "entries", h.Len())
	}
	e.logger.Editor().Debug("Command applied", "documentId", documentID, "op", cmd.Op, "changed", res.Changed, "nodeId", res.NodeID)

	state := e.stateLocked(s, &res)
	e.broadcast(state)
	return state, nil
}

// State returns the current editor state without changing anything.
func (e *EditorService) State(ctx context.Context, documentID string) (*EditorState, error) {
	s, err := e.session(documentID)
	if err != nil {
		return nil, err
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return e.stateLocked(s, nil), nil
}

// Panel generates the property panel for nodeID, or for the selection when
// nodeID is empty. It returns nil when the node does not exist.
func (e *EditorService) Panel(ctx context.Context, documentID, nodeID string) (*domainservices.Panel, error) {
	s, err := e.session(documentID)
	if err != nil {
		return nil, err
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if nodeID == "" {
		nodeID = s.Document.SelectedID
	}
	node, ok := s.Document.Find(nodeID)
	if !ok {
		return nil, nil
	}
	return e.panels.GeneratePanel(node), nil
}

// Render returns the markup of the live document in the given mode.
func (e *EditorService) Render(ctx context.Context, documentID string, mode rendering.Mode) (string, error) {
	s, err := e.session(documentID)
	if err != nil {
		return "", err
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return e.renderLocked(s.Document, mode), nil
}

// Payload returns a detached copy of the live document.
func (e *EditorService) Payload(ctx context.Context, documentID string) (*document.Payload, error) {
	s, err := e.session(documentID)
	if err != nil {
		return nil, err
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.Document.Payload(), nil
}

// SaveAndPayload saves a session and returns the payload that was written,
// both under one hold of the session lock.
func (e *EditorService) SaveAndPayload(ctx context.Context, documentID string) (*document.Payload, error) {
	s, err := e.session(documentID)
	if err != nil {
		return nil, err
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if err := e.saveLocked(ctx, s); err != nil {
		return nil, err
	}
	return s.Document.Payload(), nil
}

// Rename changes the document title.
func (e *EditorService) Rename(ctx context.Context, documentID, title string) (*EditorState, error) {
	s, err := e.session(documentID)
	if err != nil {
		return nil, err
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	title = strings.TrimSpace(title)
	if title != s.Document.Title {
		s.Document.Title = title
		s.Document.Changed = time.Now().UTC()
		s.Dirty = true
	}
	state := e.stateLocked(s, nil)
	e.broadcast(state)
	return state, nil
}

// BeginGeneration claims the generation slot of a session. The returned
// func releases it.
func (e *EditorService) BeginGeneration(documentID string) (func(), error) {
	s, err := e.session(documentID)
	if err != nil {
		return nil, err
	}
	if !s.BeginGeneration() {
		return nil, ErrGenerationInProgress
	}
	return s.EndGeneration, nil
}

// Save writes one session to the repository.
func (e *EditorService) Save(ctx context.Context, documentID string) error {
	s, err := e.session(documentID)
	if err != nil {
		return err
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return e.saveLocked(ctx, s)
}

func (e *EditorService) saveLocked(ctx context.Context, s *types.EditorSession) error {
	if e.docRepo == nil || s.Deleted {
		return nil
	}
	marker := e.perfTracker.StartOperation("storage:save", s.Document.ID)
	defer e.perfTracker.CompleteOperation(marker)

	if err := e.docRepo.Store(ctx, s.Document.Payload()); err != nil {
		marker.SetError(err)
		return fmt.Errorf("failed to save document %s: %w", s.Document.ID, err)
	}
	s.Dirty = false
	s.SavedAt = time.Now().UTC()
	if e.broadcaster != nil {
		e.broadcaster.Broadcast(s.Document.ID, &messaging.PreviewMessage{
			Type:       messaging.MessageSaved,
			DocumentID: s.Document.ID,
			Revision:   s.Document.Revisions(),
		})
	}
	return nil
}

// SaveDirty saves every session with unsaved changes. It keeps going past
// individual failures and returns them joined.
func (e *EditorService) SaveDirty(ctx context.Context) (int, error) {
	var (
		saved int
		errs  []error
	)
	for _, id := range e.store.IDs() {
		s, ok := e.store.Get(id)
		if !ok {
			continue
		}
		s.Mu.Lock()
		if s.Dirty {
			if err := e.saveLocked(ctx, s); err != nil {
				errs = append(errs, err)
			} else {
				saved++
			}
		}
		s.Mu.Unlock()
	}
	return saved, errors.Join(errs...)
}

// Close saves a session if needed and drops it from memory.
func (e *EditorService) Close(ctx context.Context, documentID string) error {
	s, err := e.session(documentID)
	if err != nil {
		return err
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.Dirty {
		if err := e.saveLocked(ctx, s); err != nil {
			return err
		}
	}
	e.store.Remove(documentID)
	e.logger.Editor().Info("Editor session closed", "documentId", documentID)
	return nil
}

// EvictIdle closes sessions idle for at least ttl. Sessions that fail to
// save or are generating stay open.
func (e *EditorService) EvictIdle(ctx context.Context, ttl time.Duration) int {
	closed := 0
	for _, id := range e.store.Idle(ttl) {
		s, ok := e.store.Get(id)
		if !ok || s.Generating() {
			continue
		}
		s.Mu.Lock()
		if s.Dirty {
			if err := e.saveLocked(ctx, s); err != nil {
				e.logger.Storage().Error("Failed to save idle session", "documentId", id, "error", err.Error())
				s.Mu.Unlock()
				continue
			}
		}
		e.store.Remove(id)
		s.Mu.Unlock()
		closed++
	}
	return closed
}

// Delete removes a document from memory and storage. The session lock is
// held until the row is gone so a save already waiting on it cannot
// write the document back.
func (e *EditorService) Delete(ctx context.Context, documentID string) error {
	if s, ok := e.store.Get(documentID); ok {
		s.Mu.Lock()
		defer s.Mu.Unlock()
		s.Deleted = true
		s.Dirty = false
		e.store.Remove(documentID)
	}
	if e.docRepo == nil {
		return nil
	}
	if err := e.docRepo.Delete(ctx, documentID); err != nil {
		return err
	}
	e.logger.Editor().Info("Document deleted", "documentId", documentID)
	return nil
}

// List returns stored documents, followed by open documents never saved.
func (e *EditorService) List(ctx context.Context) ([]*repositories.DocumentSummary, error) {
	var out []*repositories.DocumentSummary
	seen := make(map[string]bool)
	if e.docRepo != nil {
		stored, err := e.docRepo.FindAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list documents: %w", err)
		}
		for _, d := range stored {
			seen[d.ID] = true
		}
		out = append(out, stored...)
	}
	for _, info := range e.Sessions() {
		if !seen[info.DocumentID] {
			out = append(out, &repositories.DocumentSummary{ID: info.DocumentID, Title: info.Title, Created: info.Opened, Changed: info.LastAccess})
		}
	}
	return out, nil
}

// Sessions describes every open session.
func (e *EditorService) Sessions() []SessionInfo {
	var out []SessionInfo
	for _, id := range e.store.IDs() {
		s, ok := e.store.Get(id)
		if !ok {
			continue
		}
		s.Mu.Lock()
		out = append(out, SessionInfo{
			DocumentID: id,
			Title:      s.Document.Title,
			Unsaved:    s.Dirty,
			Generating: s.Generating(),
			Opened:     s.Opened,
			LastAccess: s.LastAccess(),
			SavedAt:    s.SavedAt,
		})
		s.Mu.Unlock()
	}
	return out
}

// PreviewSnapshot returns the current render as a preview message, for
// clients that just subscribed.
func (e *EditorService) PreviewSnapshot(ctx context.Context, documentID string) (*messaging.PreviewMessage, error) {
	state, err := e.State(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return previewMessage(state), nil
}

func (e *EditorService) stateLocked(s *types.EditorSession, res *document.Result) *EditorState {
	doc := s.Document
	h := doc.History()
	state := &EditorState{
		DocumentID:  doc.ID,
		Title:       doc.Title,
		Revision:    doc.Revisions(),
		SelectedID:  doc.SelectedID,
		Device:      doc.Device,
		CanUndo:     h.CanUndo(),
		CanRedo:     h.CanRedo(),
		Unsaved:     s.Dirty,
		Uncommitted: doc.Dirty(),
		HTML:        e.renderLocked(doc, rendering.ModeEditor),
		Result:      res,
		Sections:    doc.Snapshot(),
	}
	if node, ok := doc.Selected(); ok {
		state.Panel = e.panels.GeneratePanel(node)
	}
	return state
}

func (e *EditorService) renderLocked(doc *document.Document, mode rendering.Mode) string {
	marker := e.perfTracker.StartOperation("render:canvas", doc.ID)
	defer e.perfTracker.CompleteOperation(marker)
	ctx := rendering.FromDocument(doc, mode)
	if mode == rendering.ModePublish {
		return templates.RenderPage(ctx)
	}
	return templates.Render(ctx)
}

func (e *EditorService) broadcast(state *EditorState) {
	if e.broadcaster == nil {
		return
	}
	e.broadcaster.Broadcast(state.DocumentID, previewMessage(state))
}

func previewMessage(state *EditorState) *messaging.PreviewMessage {
	return &messaging.PreviewMessage{
		Type:       messaging.MessageRender,
		DocumentID: state.DocumentID,
		Revision:   state.Revision,
		HTML:       state.HTML,
		SelectedID: state.SelectedID,
		Device:     string(state.Device),
		CanUndo:    state.CanUndo,
		CanRedo:    state.CanRedo,
		Dirty:      state.Unsaved,
	}
}
