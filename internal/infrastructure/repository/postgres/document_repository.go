package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mkuzmin/docanalyst/internal/core/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id            TEXT PRIMARY KEY,
	filename      TEXT NOT NULL,
	mime_type     TEXT NOT NULL DEFAULT '',
	storage_path  TEXT NOT NULL,
	collection    TEXT NOT NULL,
	chunk_count   INT  NOT NULL DEFAULT 0,
	status        TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS documents_collection_idx ON documents (collection);
`

// OpenDB dials Postgres through the pgx stdlib driver and verifies the
// connection before handing it out.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// DocumentRepository persists the ingestion ledger for uploaded documents.
type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply documents schema: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	const query = `
		INSERT INTO documents (id, filename, mime_type, storage_path, collection, chunk_count, status, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.Filename, doc.MimeType, doc.StoragePath, doc.Collection,
		doc.ChunkCount, string(doc.Status), doc.Error, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document %s: %w", doc.ID, err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	const query = `
		SELECT id, filename, mime_type, storage_path, collection, chunk_count, status, error_message, created_at, updated_at
		FROM documents
		WHERE id = $1`

	var (
		doc    domain.Document
		status string
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.Filename, &doc.MimeType, &doc.StoragePath, &doc.Collection,
		&doc.ChunkCount, &status, &doc.Error, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, fmt.Sprintf("document %s", id), err)
	}
	if err != nil {
		return nil, fmt.Errorf("select document %s: %w", id, err)
	}
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

func (r *DocumentRepository) MarkReady(ctx context.Context, id string, chunkCount int) error {
	const query = `
		UPDATE documents
		SET status = $2, chunk_count = $3, error_message = '', updated_at = $4
		WHERE id = $1`

	return r.updateStatus(ctx, query, id, string(domain.StatusReady), chunkCount, time.Now().UTC())
}

func (r *DocumentRepository) MarkFailed(ctx context.Context, id string, errMessage string) error {
	const query = `
		UPDATE documents
		SET status = $2, error_message = $3, updated_at = $4
		WHERE id = $1`

	return r.updateStatus(ctx, query, id, string(domain.StatusFailed), errMessage, time.Now().UTC())
}

func (r *DocumentRepository) updateStatus(ctx context.Context, query, id string, args ...any) error {
	all := append([]any{id}, args...)
	res, err := r.db.ExecContext(ctx, query, all...)
	if err != nil {
		return fmt.Errorf("update document %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document %s: %w", id, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, fmt.Sprintf("document %s", id), sql.ErrNoRows)
	}
	return nil
}
