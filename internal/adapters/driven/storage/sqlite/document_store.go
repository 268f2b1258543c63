package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// InsertDocument stores a new document.
func (d *documentStore) InsertDocument(ctx context.Context, doc *domain.Document) error {
	metadataJSON, err := marshalMetadata(doc.Metadata)
	if err != nil {
		return err
	}

	_, err = d.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, scope_id, path, file_name, content_type, content_hash,
			size, status, error_message, metadata, created_at, updated_at, last_indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.ScopeID, doc.Path, doc.FileName, doc.ContentType, doc.ContentHash,
		doc.Size, string(doc.Status), doc.ErrorMessage, metadataJSON,
		doc.CreatedAt.UTC(), doc.UpdatedAt.UTC(), nullTime(doc.LastIndexedAt))
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

// UpdateDocument updates an existing document in place.
func (d *documentStore) UpdateDocument(ctx context.Context, doc *domain.Document) error {
	metadataJSON, err := marshalMetadata(doc.Metadata)
	if err != nil {
		return err
	}

	result, err := d.store.db.ExecContext(ctx, `
		UPDATE documents SET
			scope_id = ?, path = ?, file_name = ?, content_type = ?, content_hash = ?,
			size = ?, status = ?, error_message = ?, metadata = ?, updated_at = ?,
			last_indexed_at = ?
		WHERE id = ?
	`, doc.ScopeID, doc.Path, doc.FileName, doc.ContentType, doc.ContentHash,
		doc.Size, string(doc.Status), doc.ErrorMessage, metadataJSON, doc.UpdatedAt.UTC(),
		nullTime(doc.LastIndexedAt), doc.ID)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (d *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := d.store.db.QueryRowContext(ctx, `
		SELECT id, scope_id, path, file_name, content_type, content_hash,
			size, status, error_message, metadata, created_at, updated_at, last_indexed_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return doc, nil
}

// ListDocuments returns documents in a scope, optionally filtered by
// logical path prefix. Empty scope lists the whole corpus.
func (d *documentStore) ListDocuments(ctx context.Context, scopeID, pathPrefix string) ([]domain.Document, error) {
	rows, err := d.store.db.QueryContext(ctx, `
		SELECT id, scope_id, path, file_name, content_type, content_hash,
			size, status, error_message, metadata, created_at, updated_at, last_indexed_at
		FROM documents
		WHERE (? = '' OR scope_id = ?) AND (? = '' OR path LIKE ? || '%')
		ORDER BY path, id
	`, scopeID, scopeID, pathPrefix, pathPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document; the chunk rows cascade via the
// foreign key.
func (d *documentStore) DeleteDocument(ctx context.Context, id string) error {
	if _, err := d.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// SaveChunks upserts chunks for a document.
func (d *documentStore) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := d.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, scope_id, content, chunk_index,
			token_count, start_offset, end_offset, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			chunk_index = excluded.chunk_index,
			token_count = excluded.token_count,
			start_offset = excluded.start_offset,
			end_offset = excluded.end_offset,
			metadata = excluded.metadata
	`)
	if err != nil {
		return fmt.Errorf("preparing chunk upsert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		metadataJSON, err := marshalMetadata(chunk.Metadata)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.ScopeID,
			chunk.Content, chunk.Index, chunk.TokenCount, chunk.StartOffset,
			chunk.EndOffset, metadataJSON); err != nil {
			return fmt.Errorf("saving chunk %s: %w", chunk.ID, err)
		}
	}

	return tx.Commit()
}

// GetChunk retrieves a specific chunk by ID.
func (d *documentStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := d.store.db.QueryRowContext(ctx, `
		SELECT id, document_id, scope_id, content, chunk_index,
			token_count, start_offset, end_offset, metadata
		FROM chunks WHERE id = ?
	`, id)

	chunk, err := scanChunk(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	return chunk, nil
}

// GetChunks retrieves all chunks for a document ordered by index.
func (d *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := d.store.db.QueryContext(ctx, `
		SELECT id, document_id, scope_id, content, chunk_index,
			token_count, start_offset, end_offset, metadata
		FROM chunks WHERE document_id = ?
		ORDER BY chunk_index
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, *chunk)
	}
	return chunks, rows.Err()
}

// DeleteChunks removes all chunks for a document.
func (d *documentStore) DeleteChunks(ctx context.Context, documentID string) error {
	if _, err := d.store.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// scanDocument scans one document row through the given scan function.
func scanDocument(scan func(dest ...any) error) (*domain.Document, error) {
	var doc domain.Document
	var status, metadataJSON string
	var createdAt, updatedAt, lastIndexedAt sql.NullTime

	if err := scan(&doc.ID, &doc.ScopeID, &doc.Path, &doc.FileName, &doc.ContentType,
		&doc.ContentHash, &doc.Size, &status, &doc.ErrorMessage, &metadataJSON,
		&createdAt, &updatedAt, &lastIndexedAt); err != nil {
		return nil, err
	}

	doc.Status = domain.DocumentStatus(status)
	if err := unmarshalMetadata(metadataJSON, &doc.Metadata); err != nil {
		return nil, err
	}
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		doc.UpdatedAt = updatedAt.Time
	}
	if lastIndexedAt.Valid {
		doc.LastIndexedAt = lastIndexedAt.Time
	}
	return &doc, nil
}

// scanChunk scans one chunk row through the given scan function.
func scanChunk(scan func(dest ...any) error) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var metadataJSON string

	if err := scan(&chunk.ID, &chunk.DocumentID, &chunk.ScopeID, &chunk.Content,
		&chunk.Index, &chunk.TokenCount, &chunk.StartOffset, &chunk.EndOffset,
		&metadataJSON); err != nil {
		return nil, err
	}
	if err := unmarshalMetadata(metadataJSON, &chunk.Metadata); err != nil {
		return nil, err
	}
	return &chunk, nil
}

// marshalMetadata serialises a metadata map; nil maps become "{}".
func marshalMetadata(metadata map[string]string) (string, error) {
	if metadata == nil {
		return "{}", nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("marshalling metadata: %w", err)
	}
	return string(data), nil
}

func unmarshalMetadata(data string, out *map[string]string) error {
	if data == "" || data == "{}" {
		return nil
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return fmt.Errorf("unmarshalling metadata: %w", err)
	}
	return nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
