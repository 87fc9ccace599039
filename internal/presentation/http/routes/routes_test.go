package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/AtRiskMedia/flexibuilder-go/internal/application/container"
	"github.com/AtRiskMedia/flexibuilder-go/internal/application/services"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/security"
)

func newTestRouter(t *testing.T) (*gin.Engine, *container.Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, err := container.NewContainer(container.Options{InMemory: true, Logger: logging.NewDiscardLogger()})
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go c.Broadcaster.Run(ctx)
	return SetupRoutes(c), c
}

func do(t *testing.T, r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) services.EditorState {
	t.Helper()
	var state services.EditorState
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode state: %v\n%s", err, w.Body.String())
	}
	return state
}

func TestEditingFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/documents", map[string]string{"title": "Launch"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	id := decodeState(t, w).DocumentID
	base := "/api/v1/documents/" + id

	w = do(t, r, http.MethodPost, base+"/commands", map[string]any{"op": "insert_section"})
	if w.Code != http.StatusOK {
		t.Fatalf("insert_section: %d %s", w.Code, w.Body.String())
	}
	state := decodeState(t, w)
	column := state.Sections[0].Children[0].ID

	w = do(t, r, http.MethodPost, base+"/commands/batch", map[string]any{"commands": []map[string]any{
		{"op": "insert_widget", "parentId": column, "type": "button"},
		{"op": "set_device", "device": "mobile"},
	}})
	if w.Code != http.StatusOK {
		t.Fatalf("batch: %d %s", w.Code, w.Body.String())
	}
	state = decodeState(t, w)
	if state.Device != "mobile" || state.Panel == nil {
		t.Fatalf("unexpected state after batch: device=%s panel=%v", state.Device, state.Panel)
	}

	w = do(t, r, http.MethodGet, base+"/panel?nodeId="+column, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("panel: %d %s", w.Code, w.Body.String())
	}
	if w = do(t, r, http.MethodGet, base+"/panel?nodeId=nope", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing node panel: %d", w.Code)
	}

	w = do(t, r, http.MethodGet, base+"/render?mode=publish", nil)
	if w.Code != http.StatusOK || strings.Contains(w.Body.String(), "data-id=") {
		t.Fatalf("publish render: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, base+"/export?format=markdown&download=1", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Disposition"), id+".md") {
		t.Fatalf("export: %d %v", w.Code, w.Header())
	}

	w = do(t, r, http.MethodPost, base+"/commands", map[string]any{"op": "undo"})
	if got := decodeState(t, w); len(got.Sections[0].Children[0].Children) != 0 {
		t.Fatal("undo did not remove the button")
	}
}

func TestErrorStatuses(t *testing.T) {
	r, _ := newTestRouter(t)
	do(t, r, http.MethodGet, "/api/v1/documents/page", nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown op", http.MethodPost, "/api/v1/documents/page/commands", map[string]any{"op": "explode"}, http.StatusBadRequest},
		{"closed session", http.MethodPost, "/api/v1/documents/other/commands", map[string]any{"op": "undo"}, http.StatusNotFound},
		{"bad format", http.MethodGet, "/api/v1/documents/page/export?format=pdf", nil, http.StatusBadRequest},
		{"missing prompt", http.MethodPost, "/api/v1/documents/page/generate", map[string]any{}, http.StatusBadRequest},
		{"publish without storage", http.MethodPost, "/api/v1/documents/page/publish", nil, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, r, tt.method, tt.path, tt.body); w.Code != tt.want {
				t.Fatalf("got %d want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestGenerateEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	do(t, r, http.MethodGet, "/api/v1/documents/page", nil)

	w := do(t, r, http.MethodPost, "/api/v1/documents/page/generate", map[string]string{"prompt": "yoga studio with pricing"})
	if w.Code != http.StatusOK {
		t.Fatalf("generate: %d %s", w.Code, w.Body.String())
	}
	var res services.GenerationResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.State == nil || len(res.State.Sections) == 0 {
		t.Fatalf("no layout installed: %s", w.Body.String())
	}
}

func TestCatalogAndHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/api/v1/catalog", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"heading"`) {
		t.Fatalf("catalog: %d %s", w.Code, w.Body.String())
	}
	w = do(t, r, http.MethodGet, "/api/v1/health", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"storage":"memory"`) {
		t.Fatalf("health: %d %s", w.Code, w.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, err := container.NewContainer(container.Options{InMemory: true, Logger: logging.NewDiscardLogger()})
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	hash, _ := security.HashPassword("open sesame")
	c.AuthService, _ = services.NewAuthService(c.Logger, c.PerfTracker, hash, "test-secret", time.Hour)
	r := SetupRoutes(c)

	if w := do(t, r, http.MethodGet, "/api/v1/catalog", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated request: %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/api/v1/auth/login", map[string]string{"password": "nope"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: %d", w.Code)
	}
	w := do(t, r, http.MethodPost, "/api/v1/auth/login", map[string]string{"password": "open sesame"})
	var res services.AuthResult
	json.Unmarshal(w.Body.Bytes(), &res)
	if !res.Success {
		t.Fatalf("login: %s", w.Body.String())
	}
	if w := do(t, r, http.MethodGet, "/api/v1/catalog", nil, "Authorization", "Bearer "+res.Token); w.Code != http.StatusOK {
		t.Fatalf("authenticated request: %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/v1/health", nil); w.Code != http.StatusOK {
		t.Fatalf("health should stay public: %d", w.Code)
	}
}

func TestPreviewSocket(t *testing.T) {
	r, c := newTestRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/documents/live/preview"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg messaging.PreviewMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("initial message: %v", err)
	}
	if msg.Type != messaging.MessageRender || msg.DocumentID != "live" {
		t.Fatalf("unexpected initial message %+v", msg)
	}

	deadline := time.Now().Add(2 * time.Second)
	for c.Broadcaster.ClientCount("live") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if w := do(t, r, http.MethodPost, "/api/v1/documents/live/commands", map[string]any{"op": "insert_section"}); w.Code != http.StatusOK {
		t.Fatalf("command: %d", w.Code)
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("render message: %v", err)
	}
	if msg.Revision != 1 || !msg.CanUndo {
		t.Fatalf("unexpected render message %+v", msg)
	}
}
