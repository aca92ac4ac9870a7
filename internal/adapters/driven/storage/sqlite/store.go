package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/quarry-labs/quarry/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/quarry-labs/quarry/internal/core/domain"
	"github.com/quarry-labs/quarry/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// source store, vector index and chunk ledger through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.quarry/data/quarry.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".quarry", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "quarry.db")

	// WAL mode for better concurrency.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SourceStore returns a SourceStore interface backed by this store.
func (s *Store) SourceStore() driven.SourceStore {
	return &sourceStore{store: s}
}

// VectorIndex returns a VectorIndex interface backed by this store.
func (s *Store) VectorIndex() driven.VectorIndex {
	return &vectorIndex{store: s}
}

// ChunkLedger returns a ChunkLedger interface backed by this store.
func (s *Store) ChunkLedger() driven.ChunkLedger {
	return &chunkLedger{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1).
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Source Store ====================

// sourceStore implements driven.SourceStore.
type sourceStore struct {
	store *Store
}

var _ driven.SourceStore = (*sourceStore)(nil)

// Save stores or updates a source.
func (s *sourceStore) Save(ctx context.Context, source domain.Source) error {
	configJSON, err := json.Marshal(source.Config)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	now := time.Now().UTC()
	if source.CreatedAt.IsZero() {
		source.CreatedAt = now
	}
	source.UpdatedAt = now

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO sources (id, type, name, config, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			name = excluded.name,
			config = excluded.config,
			updated_at = excluded.updated_at
	`, source.ID, source.Type, source.Name, string(configJSON),
		source.CreatedAt, source.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving source: %w", err)
	}
	return nil
}

// Get retrieves a source by ID.
func (s *sourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, type, name, config, created_at, updated_at
		FROM sources WHERE id = ?
	`, id)

	source, err := scanSource(row.Scan)
	if err != nil {
		return nil, err
	}
	return source, nil
}

// Delete removes a source.
func (s *sourceStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM sources WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting source: %w", err)
	}
	return nil
}

// List returns all configured sources.
func (s *sourceStore) List(ctx context.Context) ([]domain.Source, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, type, name, config, created_at, updated_at
		FROM sources ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source //nolint:prealloc // size unknown from query
	for rows.Next() {
		source, err := scanSource(rows.Scan)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}

	return sources, nil
}

// scanSource scans one source row via the given Scan function.
func scanSource(scan func(...any) error) (*domain.Source, error) {
	var source domain.Source
	var sourceType string
	var configJSON string
	var createdAt, updatedAt sql.NullTime

	if err := scan(&source.ID, &sourceType, &source.Name, &configJSON, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning source: %w", err)
	}

	source.Type = domain.SourceType(sourceType)
	if err := json.Unmarshal([]byte(configJSON), &source.Config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if createdAt.Valid {
		source.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		source.UpdatedAt = updatedAt.Time
	}

	return &source, nil
}

// ==================== Vector Index ====================

// vectorIndex implements driven.VectorIndex with brute-force cosine
// similarity over the vector_records table.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Upsert writes or replaces records by ID. Records are written
// individually so a failure on one leaves the rest intact; failed IDs
// are collected into a *domain.UpsertError.
func (v *vectorIndex) Upsert(ctx context.Context, records []domain.VectorRecord) error {
	var failed []string
	var lastErr error

	for _, record := range records {
		if record.ID == "" {
			return fmt.Errorf("%w: record has no ID", domain.ErrValidation)
		}
		embeddingBlob := float32SliceToBytes(record.Embedding)

		_, err := v.store.db.ExecContext(ctx, `
			INSERT INTO vector_records (id, document_id, chunk_index, embedding, text, source)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				document_id = excluded.document_id,
				chunk_index = excluded.chunk_index,
				embedding = excluded.embedding,
				text = excluded.text,
				source = excluded.source
		`, record.ID, record.Metadata.DocumentID, record.Metadata.ChunkIndex,
			embeddingBlob, record.Metadata.Text, record.Metadata.Source)

		if err != nil {
			failed = append(failed, record.ID)
			lastErr = err
		}
	}

	if len(failed) > 0 {
		return &domain.UpsertError{
			FailedIDs: failed,
			Err:       fmt.Errorf("%w: %v", domain.ErrIndexWrite, lastErr),
		}
	}
	return nil
}

// Query returns up to topK matches ordered by descending cosine score,
// ties broken by lower chunk index then lexicographic document ID.
func (v *vectorIndex) Query(ctx context.Context, vector []float32, topK int) ([]domain.Match, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", domain.ErrValidation, topK)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: query vector must not be empty", domain.ErrValidation)
	}

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT id, document_id, chunk_index, embedding, text, source
		FROM vector_records
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying records: %v", domain.ErrIndexRead, err)
	}
	defer rows.Close()

	var matches []domain.Match //nolint:prealloc // size unknown from query
	for rows.Next() {
		var match domain.Match
		var embeddingBlob []byte
		if err := rows.Scan(&match.RecordID, &match.Metadata.DocumentID, &match.Metadata.ChunkIndex,
			&embeddingBlob, &match.Metadata.Text, &match.Metadata.Source); err != nil {
			return nil, fmt.Errorf("%w: scanning record: %v", domain.ErrIndexRead, err)
		}

		match.Score = cosineSimilarity(vector, bytesToFloat32Slice(embeddingBlob))
		matches = append(matches, match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating records: %v", domain.ErrIndexRead, err)
	}

	sortMatches(matches)
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Delete removes records by ID. Unknown IDs are ignored.
func (v *vectorIndex) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	_, err := v.store.db.ExecContext(ctx,
		"DELETE FROM vector_records WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return fmt.Errorf("%w: deleting records: %v", domain.ErrIndexWrite, err)
	}
	return nil
}

// Close is a no-op; the owning Store closes the connection.
func (v *vectorIndex) Close() error {
	return nil
}

// ==================== Chunk Ledger ====================

// chunkLedger implements driven.ChunkLedger.
type chunkLedger struct {
	store *Store
}

var _ driven.ChunkLedger = (*chunkLedger)(nil)

// ChunkCount returns the recorded chunk count for a document.
func (l *chunkLedger) ChunkCount(ctx context.Context, documentID string) (int, error) {
	var count int
	err := l.store.db.QueryRowContext(ctx,
		"SELECT chunk_count FROM chunk_ledger WHERE document_id = ?", documentID).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: document %s never ingested", domain.ErrNotFound, documentID)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: reading chunk count: %v", domain.ErrIndexRead, err)
	}
	return count, nil
}

// SetChunkCount records the document's current chunk count.
func (l *chunkLedger) SetChunkCount(ctx context.Context, documentID string, count int) error {
	_, err := l.store.db.ExecContext(ctx, `
		INSERT INTO chunk_ledger (document_id, chunk_count, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			chunk_count = excluded.chunk_count,
			updated_at = excluded.updated_at
	`, documentID, count, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: recording chunk count: %v", domain.ErrIndexWrite, err)
	}
	return nil
}

// Forget removes the ledger entry for a document.
func (l *chunkLedger) Forget(ctx context.Context, documentID string) error {
	_, err := l.store.db.ExecContext(ctx,
		"DELETE FROM chunk_ledger WHERE document_id = ?", documentID)
	if err != nil {
		return fmt.Errorf("%w: forgetting document: %v", domain.ErrIndexWrite, err)
	}
	return nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// cosineSimilarity computes the cosine of the angle between two
// vectors. Mismatched lengths or zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// sortMatches orders matches by descending score, ties broken by lower
// chunk index then lexicographic document ID.
func sortMatches(matches []domain.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].Metadata.ChunkIndex != matches[j].Metadata.ChunkIndex {
			return matches[i].Metadata.ChunkIndex < matches[j].Metadata.ChunkIndex
		}
		return matches[i].Metadata.DocumentID < matches[j].Metadata.DocumentID
	})
}
