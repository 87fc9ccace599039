// Package repositories defines the repository interfaces for documents and
// their artifacts. These repositories abstract the data persistence details,
// ensuring the core application is clean and decoupled from the database.
package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
)

var (
	// ErrDocumentNotFound is returned when no stored document has the id.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrCorruptDocument wraps a stored payload that fails to parse.
	ErrCorruptDocument = errors.New("stored document is corrupt")
)

// DocumentSummary is a listing row.
type DocumentSummary struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Created time.Time `json:"created"`
	Changed time.Time `json:"changed"`
}

// Publication is an immutable published rendering of a document.
type Publication struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"documentId"`
	HTML       string    `json:"html"`
	Markdown   string    `json:"markdown"`
	Created    time.Time `json:"created"`
}

// MediaFile is an uploaded image and its thumbnail.
type MediaFile struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Thumbnail string    `json:"thumbnail"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Created   time.Time `json:"created"`
}

type DocumentRepository interface {
	FindByID(ctx context.Context, id string) (*document.Payload, error)
	FindAll(ctx context.Context) ([]*DocumentSummary, error)
	Store(ctx context.Context, payload *document.Payload) error
	Delete(ctx context.Context, id string) error
}

type PublicationRepository interface {
	Store(ctx context.Context, pub *Publication) error
	FindLatest(ctx context.Context, documentID string) (*Publication, error)
}

type MediaRepository interface {
	Store(ctx context.Context, file *MediaFile) error
	FindAll(ctx context.Context) ([]*MediaFile, error)
	Delete(ctx context.Context, id string) error
}
