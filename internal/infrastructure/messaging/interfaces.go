// Package messaging defines interfaces for real-time communication.
package messaging

// Broadcaster pushes preview updates to every client watching a document.
type Broadcaster interface {
	Broadcast(documentID string, msg *PreviewMessage)
	ClientCount(documentID string) int
}
