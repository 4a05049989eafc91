package sqlite

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/docdex/docdex"
)

// Compile-time interface verification.
var _ docdex.VectorStore = (*VectorStore)(nil)

// VectorStore implements docdex.VectorStore using SQLite. Keyword
// relevance comes from an FTS5 index over chunk text; vector similarity
// is brute-force cosine over stored embeddings, which stays fast at the
// scale of documentation indexes.
type VectorStore struct {
	db *DB
}

// NewVectorStore creates a new VectorStore.
func NewVectorStore(db *DB) *VectorStore {
	return &VectorStore{db: db}
}

// Upsert inserts or replaces records by identity. Each record commits
// independently; failures are reported per item.
func (s *VectorStore) Upsert(ctx context.Context, records []*docdex.IndexedRecord) (*docdex.BulkResult, error) {
	result := &docdex.BulkResult{Failed: map[string]error{}}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.upsertOne(ctx, rec); err != nil {
			result.Failed[rec.ID] = err
			continue
		}
		result.Succeeded = append(result.Succeeded, rec.ID)
	}
	return result, nil
}

func (s *VectorStore) upsertOne(ctx context.Context, rec *docdex.IndexedRecord) error {
	if rec.ID == "" {
		return docdex.Errorf(docdex.EINVALID, "record ID required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (id, identity, chunk_index, source_id, locator, title, heading_path, start_offset, end_offset, text, hash, embedding, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			identity = excluded.identity,
			chunk_index = excluded.chunk_index,
			source_id = excluded.source_id,
			locator = excluded.locator,
			title = excluded.title,
			heading_path = excluded.heading_path,
			start_offset = excluded.start_offset,
			end_offset = excluded.end_offset,
			text = excluded.text,
			hash = excluded.hash,
			embedding = excluded.embedding,
			run_id = excluded.run_id
	`, rec.ID, string(rec.Identity), rec.Index, rec.SourceID, rec.Locator,
		rec.Metadata.Title, strings.Join(rec.Metadata.HeadingPath, "\n"),
		rec.Metadata.StartOffset, rec.Metadata.EndOffset,
		rec.Text, string(rec.Hash), encodeVector(rec.Embedding), rec.RunID)
	return err
}

// Delete removes records by identity. Missing identities are not an
// error.
func (s *VectorStore) Delete(ctx context.Context, ids []string) (*docdex.BulkResult, error) {
	result := &docdex.BulkResult{Failed: map[string]error{}}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id); err != nil {
			result.Failed[id] = err
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result, nil
}

// DeleteBySource removes all records belonging to a source.
func (s *VectorStore) DeleteBySource(ctx context.Context, sourceID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE source_id = ?`, sourceID)
	return err
}

// FetchIndexed returns the identity/hash inventory of a source's
// records.
func (s *VectorStore) FetchIndexed(ctx context.Context, sourceID string) ([]docdex.IndexedChunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, locator, hash FROM records WHERE source_id = ?
	`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []docdex.IndexedChunk
	for rows.Next() {
		var chunk docdex.IndexedChunk
		var hash string
		if err := rows.Scan(&chunk.ID, &chunk.Locator, &hash); err != nil {
			return nil, err
		}
		chunk.Hash = docdex.ContentHash(hash)
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// Query returns records ranked by cosine similarity to the embedding.
func (s *VectorStore) Query(ctx context.Context, embedding []float32, opts docdex.QueryOptions) ([]docdex.QueryMatch, error) {
	if len(embedding) == 0 {
		return nil, docdex.Errorf(docdex.EINVALID, "query embedding required")
	}

	query, args := recordSelect(opts.SourceIDs, "embedding IS NOT NULL")
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []docdex.QueryMatch
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		score := cosineSimilarity(embedding, rec.Embedding)
		matches = append(matches, docdex.QueryMatch{Record: rec, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sortMatches(matches)
	return truncate(matches, opts.Limit), nil
}

// KeywordQuery returns records ranked by FTS5 relevance to the text.
func (s *VectorStore) KeywordQuery(ctx context.Context, text string, opts docdex.QueryOptions) ([]docdex.QueryMatch, error) {
	match := ftsQuery(text)
	if match == "" {
		return nil, nil
	}

	var query strings.Builder
	args := []any{match}
	query.WriteString(`
		SELECT r.id, r.identity, r.chunk_index, r.source_id, r.locator, r.title, r.heading_path, r.start_offset, r.end_offset, r.text, r.hash, r.embedding, r.run_id,
		       bm25(records_fts) AS rank
		FROM records_fts
		JOIN records r ON r.rowid = records_fts.rowid
		WHERE records_fts MATCH ?`)
	if len(opts.SourceIDs) > 0 {
		query.WriteString(" AND r.source_id IN (" + placeholders(len(opts.SourceIDs)) + ")")
		for _, id := range opts.SourceIDs {
			args = append(args, id)
		}
	}
	query.WriteString(" ORDER BY rank ASC, r.id ASC")
	if opts.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []docdex.QueryMatch
	for rows.Next() {
		rec, rank, err := scanRecordWithRank(rows)
		if err != nil {
			return nil, err
		}
		// bm25 ranks best-first as most negative; negate so higher is
		// better like the vector score.
		matches = append(matches, docdex.QueryMatch{Record: rec, Score: float32(-rank)})
	}
	return matches, rows.Err()
}

// CountBySource returns the number of records indexed for a source.
func (s *VectorStore) CountBySource(ctx context.Context, sourceID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE source_id = ?`, sourceID).Scan(&n)
	return n, err
}

// EmbeddingDimension returns the dimension of the stored embeddings, or
// zero for an index without embeddings. Embeddings are float32 blobs, 4
// bytes per component.
func (s *VectorStore) EmbeddingDimension(ctx context.Context) (int, error) {
	var bytes int
	err := s.db.QueryRowContext(ctx, `
		SELECT length(embedding) FROM records WHERE embedding IS NOT NULL LIMIT 1
	`).Scan(&bytes)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return bytes / 4, nil
}

const recordColumns = `id, identity, chunk_index, source_id, locator, title, heading_path, start_offset, end_offset, text, hash, embedding, run_id`

// recordSelect builds a SELECT over records with optional source
// filtering and an extra WHERE condition.
func recordSelect(sourceIDs []string, extra string) (string, []any) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + recordColumns + " FROM records WHERE " + extra)
	if len(sourceIDs) > 0 {
		query.WriteString(" AND source_id IN (" + placeholders(len(sourceIDs)) + ")")
		for _, id := range sourceIDs {
			args = append(args, id)
		}
	}
	return query.String(), args
}

func scanRecord(rows *sql.Rows) (*docdex.IndexedRecord, error) {
	var rec docdex.IndexedRecord
	var identity, hash, headingPath string
	var embedding []byte

	err := rows.Scan(&rec.ID, &identity, &rec.Index, &rec.SourceID, &rec.Locator,
		&rec.Metadata.Title, &headingPath, &rec.Metadata.StartOffset, &rec.Metadata.EndOffset,
		&rec.Text, &hash, &embedding, &rec.RunID)
	if err != nil {
		return nil, err
	}

	rec.Identity = docdex.ContentIdentity(identity)
	rec.Hash = docdex.ContentHash(hash)
	rec.Embedding = decodeVector(embedding)
	if headingPath != "" {
		rec.Metadata.HeadingPath = strings.Split(headingPath, "\n")
	}
	return &rec, nil
}

func scanRecordWithRank(rows *sql.Rows) (*docdex.IndexedRecord, float64, error) {
	var rec docdex.IndexedRecord
	var identity, hash, headingPath string
	var embedding []byte
	var rank float64

	err := rows.Scan(&rec.ID, &identity, &rec.Index, &rec.SourceID, &rec.Locator,
		&rec.Metadata.Title, &headingPath, &rec.Metadata.StartOffset, &rec.Metadata.EndOffset,
		&rec.Text, &hash, &embedding, &rec.RunID, &rank)
	if err != nil {
		return nil, 0, err
	}

	rec.Identity = docdex.ContentIdentity(identity)
	rec.Hash = docdex.ContentHash(hash)
	rec.Embedding = decodeVector(embedding)
	if headingPath != "" {
		rec.Metadata.HeadingPath = strings.Split(headingPath, "\n")
	}
	return &rec, rank, nil
}

// sortMatches orders by descending score, ties broken by record ID for
// deterministic results.
func sortMatches(matches []docdex.QueryMatch) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Record.ID < matches[j].Record.ID
	})
}

func truncate(matches []docdex.QueryMatch, limit int) []docdex.QueryMatch {
	if limit > 0 && len(matches) > limit {
		return matches[:limit]
	}
	return matches
}
