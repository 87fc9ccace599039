package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
)

// Message types sent to preview clients.
const (
	MessageRender = "render"
	MessageSaved  = "saved"
)

// PreviewMessage is one update on the preview feed.
type PreviewMessage struct {
	Type       string `json:"type"`
	DocumentID string `json:"documentId"`
	Revision   int    `json:"revision"`
	HTML       string `json:"html,omitempty"`
	SelectedID string `json:"selectedId,omitempty"`
	Device     string `json:"device,omitempty"`
	CanUndo    bool   `json:"canUndo"`
	CanRedo    bool   `json:"canRedo"`
	Dirty      bool   `json:"dirty"`
}

// PreviewClient represents a single connected preview websocket.
type PreviewClient struct {
	Conn       *websocket.Conn
	DocumentID string
	Send       chan []byte
}

// PreviewBroadcaster fans rendered markup out to websocket clients grouped
// by document.
type PreviewBroadcaster struct {
	docClients   map[string]map[*PreviewClient]bool
	register     chan *PreviewClient
	unregister   chan *PreviewClient
	stopped      chan struct{}
	mu           sync.RWMutex
	logger       *logging.ChanneledLogger
	pingInterval time.Duration
	writeTimeout time.Duration
}

// NewPreviewBroadcaster creates a broadcaster. Run must be started before
// clients are served.
func NewPreviewBroadcaster(logger *logging.ChanneledLogger, pingInterval, writeTimeout time.Duration) *PreviewBroadcaster {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &PreviewBroadcaster{
		docClients:   make(map[string]map[*PreviewClient]bool),
		register:     make(chan *PreviewClient),
		unregister:   make(chan *PreviewClient),
		stopped:      make(chan struct{}),
		logger:       logger,
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
	}
}

// Run owns client registration until ctx is cancelled, then closes every
// client. Clients served after Run returns are closed immediately. Run must
// be called at most once.
func (b *PreviewBroadcaster) Run(ctx context.Context) {
	defer close(b.stopped)
	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			if _, ok := b.docClients[client.DocumentID]; !ok {
				b.docClients[client.DocumentID] = make(map[*PreviewClient]bool)
			}
			b.docClients[client.DocumentID][client] = true
			b.mu.Unlock()
			b.logger.Preview().Debug("Preview client registered", "documentId", client.DocumentID)

		case client := <-b.unregister:
			b.remove(client)
			b.logger.Preview().Debug("Preview client unregistered", "documentId", client.DocumentID)

		case <-ctx.Done():
			b.mu.Lock()
			for docID, clients := range b.docClients {
				for client := range clients {
					close(client.Send)
				}
				delete(b.docClients, docID)
			}
			b.mu.Unlock()
			return
		}
	}
}

func (b *PreviewBroadcaster) remove(client *PreviewClient) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if clients, ok := b.docClients[client.DocumentID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.Send)
			if len(clients) == 0 {
				delete(b.docClients, client.DocumentID)
			}
		}
	}
}

// Broadcast sends msg to every client of documentID. Slow clients drop the
// message rather than block the editor.
func (b *PreviewBroadcaster) Broadcast(documentID string, msg *PreviewMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Preview().Error("Failed to marshal preview message", "error", err.Error(), "documentId", documentID)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.docClients[documentID] {
		select {
		case client.Send <- data:
		default:
			b.logger.Preview().Warn("Preview channel full, message dropped", "documentId", documentID)
		}
	}
}

// ClientCount returns the number of clients watching documentID.
func (b *PreviewBroadcaster) ClientCount(documentID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.docClients[documentID])
}

// Serve registers conn for documentID, writes initial if non-nil and pumps
// messages until the connection closes.
func (b *PreviewBroadcaster) Serve(conn *websocket.Conn, documentID string, initial *PreviewMessage) {
	client := &PreviewClient{Conn: conn, DocumentID: documentID, Send: make(chan []byte, 16)}
	if initial != nil {
		if data, err := json.Marshal(initial); err == nil {
			client.Send <- data
		}
	}
	select {
	case b.register <- client:
	case <-b.stopped:
		conn.Close()
		return
	}

	done := make(chan struct{})
	go b.readPump(client, done)
	b.writePump(client, done)
}

// readPump discards client frames; it exists to process control frames and
// notice disconnects.
func (b *PreviewBroadcaster) readPump(client *PreviewClient, done chan struct{}) {
	defer close(done)
	client.Conn.SetReadLimit(4096)
	_ = client.Conn.SetReadDeadline(time.Now().Add(2 * b.pingInterval))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(2 * b.pingInterval))
	})
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (b *PreviewBroadcaster) writePump(client *PreviewClient, done chan struct{}) {
	ticker := time.NewTicker(b.pingInterval)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
		select {
		case b.unregister <- client:
		case <-b.stopped:
		}
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(b.writeTimeout))
			if !ok {
				_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(b.writeTimeout))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
