// Package document provides the SQL document, publication and media repositories
package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/repositories"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/persistence/database"
)

const stampLayout = time.RFC3339Nano

type DocumentRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

func NewDocumentRepository(db *database.DB, logger *logging.ChanneledLogger) *DocumentRepository {
	return &DocumentRepository{db: db, logger: logger}
}

// FindByID loads and decodes a stored document. A payload that fails to
// parse is returned as an error wrapping repositories.ErrCorruptDocument.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*document.Payload, error) {
	query := r.db.Rebind(`SELECT title, payload, created_at, changed_at FROM documents WHERE id = ?`)

	start := time.Now()
	var title, payload, created, changed string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&title, &payload, &created, &changed)
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrDocumentNotFound
	}
	if err != nil {
		r.logger.Storage().Error("Document select failed", "error", err.Error(), "documentId", id)
		return nil, fmt.Errorf("failed to load document %s: %w", id, err)
	}

	p, err := document.DecodePayload([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", repositories.ErrCorruptDocument, id, err)
	}
	p.ID = id
	if p.Title == "" {
		p.Title = title
	}
	if t, err := time.Parse(stampLayout, created); err == nil {
		p.Created = t
	}
	if t, err := time.Parse(stampLayout, changed); err == nil {
		p.Changed = t
	}
	return p, nil
}

// FindAll lists stored documents, most recently changed first.
func (r *DocumentRepository) FindAll(ctx context.Context) ([]*repositories.DocumentSummary, error) {
	query := `SELECT id, title, created_at, changed_at FROM documents ORDER BY changed_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var out []*repositories.DocumentSummary
	for rows.Next() {
		var s repositories.DocumentSummary
		var created, changed string
		if err := rows.Scan(&s.ID, &s.Title, &created, &changed); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		s.Created, _ = time.Parse(stampLayout, created)
		s.Changed, _ = time.Parse(stampLayout, changed)
		out = append(out, &s)
	}
	return out, rows.Err()
}

// Store inserts or replaces a document. Last write wins.
func (r *DocumentRepository) Store(ctx context.Context, p *document.Payload) error {
	data, err := document.MarshalPayload(p)
	if err != nil {
		return err
	}

	created := p.Created
	if created.IsZero() {
		created = time.Now().UTC()
	}
	changed := p.Changed
	if changed.IsZero() {
		changed = time.Now().UTC()
	}

	var query string
	switch r.db.Dialect {
	case database.DialectMySQL:
		query = `INSERT INTO documents (id, title, payload, created_at, changed_at) VALUES (?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE title = VALUES(title), payload = VALUES(payload), changed_at = VALUES(changed_at)`
	default:
		query = r.db.Rebind(`INSERT INTO documents (id, title, payload, created_at, changed_at) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET title = excluded.title, payload = excluded.payload, changed_at = excluded.changed_at`)
	}

	start := time.Now()
	r.logger.Storage().Debug("Executing document upsert", "documentId", p.ID, "bytes", len(data))
	_, err = r.db.ExecContext(ctx, query, p.ID, p.Title, string(data),
		created.UTC().Format(stampLayout), changed.UTC().Format(stampLayout))
	if err != nil {
		r.logger.Storage().Error("Document upsert failed", "error", err.Error(), "documentId", p.ID)
		return fmt.Errorf("failed to store document %s: %w", p.ID, err)
	}

	duration := time.Since(start)
	r.logger.Storage().Info("Document upsert completed", "documentId", p.ID, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, "DOCUMENT_UPSERT", duration, p.ID)
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	query := r.db.Rebind(`DELETE FROM documents WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	r.logger.Storage().Info("Document deleted", "documentId", id)
	return nil
}

type PublicationRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

func NewPublicationRepository(db *database.DB, logger *logging.ChanneledLogger) *PublicationRepository {
	return &PublicationRepository{db: db, logger: logger}
}

func (r *PublicationRepository) Store(ctx context.Context, pub *repositories.Publication) error {
	query := r.db.Rebind(`INSERT INTO publications (id, document_id, html, markdown, created_at) VALUES (?, ?, ?, ?, ?)`)
	if pub.Created.IsZero() {
		pub.Created = time.Now().UTC()
	}
	start := time.Now()
	if _, err := r.db.ExecContext(ctx, query, pub.ID, pub.DocumentID, pub.HTML, pub.Markdown, pub.Created.UTC().Format(stampLayout)); err != nil {
		r.logger.Storage().Error("Publication insert failed", "error", err.Error(), "documentId", pub.DocumentID)
		return fmt.Errorf("failed to store publication: %w", err)
	}
	database.CheckAndLogSlowQuery(r.logger, "PUBLICATION_INSERT", time.Since(start), pub.DocumentID)
	return nil
}

// FindLatest returns the newest publication of a document, or nil when none exists.
func (r *PublicationRepository) FindLatest(ctx context.Context, documentID string) (*repositories.Publication, error) {
	query := r.db.Rebind(`SELECT id, html, markdown, created_at FROM publications WHERE document_id = ? ORDER BY created_at DESC LIMIT 1`)
	pub := &repositories.Publication{DocumentID: documentID}
	var created string
	err := r.db.QueryRowContext(ctx, query, documentID).Scan(&pub.ID, &pub.HTML, &pub.Markdown, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load publication: %w", err)
	}
	pub.Created, _ = time.Parse(stampLayout, created)
	return pub, nil
}

type MediaRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

func NewMediaRepository(db *database.DB, logger *logging.ChanneledLogger) *MediaRepository {
	return &MediaRepository{db: db, logger: logger}
}

func (r *MediaRepository) Store(ctx context.Context, f *repositories.MediaFile) error {
	query := r.db.Rebind(`INSERT INTO media_files (id, filename, thumbnail, width, height, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if f.Created.IsZero() {
		f.Created = time.Now().UTC()
	}
	if _, err := r.db.ExecContext(ctx, query, f.ID, f.Filename, f.Thumbnail, f.Width, f.Height, f.Created.UTC().Format(stampLayout)); err != nil {
		r.logger.Media().Error("Media insert failed", "error", err.Error(), "filename", f.Filename)
		return fmt.Errorf("failed to store media file: %w", err)
	}
	return nil
}

func (r *MediaRepository) FindAll(ctx context.Context) ([]*repositories.MediaFile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, filename, thumbnail, width, height, created_at FROM media_files ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list media files: %w", err)
	}
	defer rows.Close()

	var out []*repositories.MediaFile
	for rows.Next() {
		var f repositories.MediaFile
		var created string
		if err := rows.Scan(&f.ID, &f.Filename, &f.Thumbnail, &f.Width, &f.Height, &created); err != nil {
			return nil, fmt.Errorf("failed to scan media row: %w", err)
		}
		f.Created, _ = time.Parse(stampLayout, created)
		out = append(out, &f)
	}
	return out, rows.Err()
}

func (r *MediaRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM media_files WHERE id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete media file %s: %w", id, err)
	}
	return nil
}
