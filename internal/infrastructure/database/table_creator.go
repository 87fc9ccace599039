// Package database provides schema creation for the document store
package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
	persistence "github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/persistence/database"
)

// TableCreator handles the creation of the database schema.
type TableCreator struct {
	dialect persistence.Dialect
}

// NewTableCreator creates a new TableCreator for a dialect.
func NewTableCreator(dialect persistence.Dialect) *TableCreator {
	return &TableCreator{dialect: dialect}
}

// CreateSchema executes all necessary queries to build tables and indexes.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		query := tc.translate(tableSQL)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", query, err)
		}
	}

	for _, indexSQL := range indexes {
		if tc.dialect == persistence.DialectMySQL {
			// MySQL has no CREATE INDEX IF NOT EXISTS
			indexSQL = strings.Replace(indexSQL, "IF NOT EXISTS ", "", 1)
		}
		if _, err := db.Exec(indexSQL); err != nil {
			if tc.dialect == persistence.DialectMySQL && strings.Contains(err.Error(), "Duplicate key name") {
				continue
			}
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

// SeedInitialContent idempotently creates the default document with one
// empty section so a fresh install opens on a usable canvas.
func (tc *TableCreator) SeedInitialContent(db *sql.DB, documentID string) error {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM documents WHERE id = ?)"
	if tc.dialect == persistence.DialectPostgres {
		query = "SELECT EXISTS(SELECT 1 FROM documents WHERE id = $1)"
	}
	if err := db.QueryRow(query, documentID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check for default document: %w", err)
	}
	if exists {
		return nil
	}

	doc := document.New(documentID, document.WithTitle("Home"))
	doc.InsertSection()
	payload, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode default document: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	insert := "INSERT INTO documents (id, title, payload, created_at, changed_at) VALUES (?, ?, ?, ?, ?)"
	if tc.dialect == persistence.DialectPostgres {
		insert = "INSERT INTO documents (id, title, payload, created_at, changed_at) VALUES ($1, $2, $3, $4, $5)"
	}
	if _, err := db.Exec(insert, documentID, doc.Title, string(payload), now, now); err != nil {
		return fmt.Errorf("failed to insert default document: %w", err)
	}
	return nil
}

var (
	portableTypes = strings.NewReplacer("{key}", "TEXT", "{label}", "TEXT", "{text}", "TEXT", "{stamp}", "TEXT")
	// MySQL cannot index unbounded TEXT keys.
	mysqlTypes = strings.NewReplacer("{key}", "VARCHAR(64)", "{label}", "VARCHAR(255)", "{text}", "LONGTEXT", "{stamp}", "VARCHAR(40)")
)

// translate expands the column type placeholders for the dialect.
func (tc *TableCreator) translate(query string) string {
	if tc.dialect == persistence.DialectMySQL {
		return mysqlTypes.Replace(query)
	}
	return portableTypes.Replace(query)
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id {key} PRIMARY KEY,
		title {label} NOT NULL DEFAULT '',
		payload {text} NOT NULL,
		created_at {stamp} NOT NULL,
		changed_at {stamp} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS publications (
		id {key} PRIMARY KEY,
		document_id {key} NOT NULL,
		html {text} NOT NULL,
		markdown {text} NOT NULL,
		created_at {stamp} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS media_files (
		id {key} PRIMARY KEY,
		filename {label} NOT NULL,
		thumbnail {label} NOT NULL DEFAULT '',
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0,
		created_at {stamp} NOT NULL
	)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_publications_document ON publications(document_id)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_changed ON documents(changed_at)`,
}
