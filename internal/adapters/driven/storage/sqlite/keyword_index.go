package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

// keywordIndex implements driven.KeywordIndex on top of FTS5.
type keywordIndex struct {
	store *Store
}

var _ driven.KeywordIndex = (*keywordIndex)(nil)

// Index adds or updates chunks in the search index. Existing rows for
// the same chunk are replaced.
func (k *keywordIndex) Index(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := k.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, chunk := range chunks {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM chunks_fts WHERE chunk_id = ?", chunk.ID); err != nil {
			return fmt.Errorf("clearing index entry for chunk %s: %w", chunk.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chunks_fts (content, chunk_id, document_id, scope_id, path)
			VALUES (?, ?, ?, ?, COALESCE((SELECT path FROM documents WHERE id = ?), ''))
		`, chunk.Content, chunk.ID, chunk.DocumentID, chunk.ScopeID, chunk.DocumentID); err != nil {
			return fmt.Errorf("indexing chunk %s: %w", chunk.ID, err)
		}
	}

	return tx.Commit()
}

// Search runs a lexical query confined to the filter. Scores are the
// negated bm25 rank so that higher means more relevant.
func (k *keywordIndex) Search(ctx context.Context, query string, topK int, filter driven.VectorFilter) ([]driven.KeywordHit, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}

	rows, err := k.store.db.QueryContext(ctx, `
		SELECT chunk_id, document_id, -bm25(chunks_fts) AS score
		FROM chunks_fts
		WHERE chunks_fts MATCH ?
			AND scope_id = ?
			AND (? = '' OR path LIKE ? || '%')
		ORDER BY bm25(chunks_fts)
		LIMIT ?
	`, match, filter.ScopeID, filter.PathPrefix, filter.PathPrefix, topK)
	if err != nil {
		return nil, fmt.Errorf("searching keyword index: %w", err)
	}
	defer rows.Close()

	var hits []driven.KeywordHit
	for rows.Next() {
		var hit driven.KeywordHit
		if err := rows.Scan(&hit.ChunkID, &hit.DocumentID, &hit.Score); err != nil {
			return nil, fmt.Errorf("scanning keyword hit: %w", err)
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// DeleteByDocument removes every indexed chunk of the document.
func (k *keywordIndex) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := k.store.db.ExecContext(ctx,
		"DELETE FROM chunks_fts WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting index entries: %w", err)
	}
	return nil
}

// Close is a no-op; the underlying connection belongs to the Store.
func (k *keywordIndex) Close() error {
	return nil
}

// ftsQuery converts free text into an FTS5 MATCH expression. Each term
// is double-quoted so user input cannot inject query syntax; terms are
// implicitly AND-ed.
func ftsQuery(query string) string {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ReplaceAll(term, `"`, `""`)
		quoted = append(quoted, `"`+term+`"`)
	}
	return strings.Join(quoted, " ")
}
