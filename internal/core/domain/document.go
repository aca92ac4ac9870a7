package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Document is the uniform record every source connector produces.
// Documents are transient inputs: they are chunked, embedded and
// indexed, but never stored verbatim.
type Document struct {
	// ID is the stable identity of the document (source URL, file path,
	// Drive file ID). Re-ingesting the same ID updates its indexed
	// chunks rather than duplicating them.
	ID string

	// Title is the human-readable title, carried through to citations
	// as the source label.
	Title string

	// Text is the full plain-text content.
	Text string
}

// Chunk is a bounded text segment derived from a Document.
// Chunks are transient intermediate artifacts between chunking
// and indexing.
type Chunk struct {
	// DocumentID links back to the parent Document.
	DocumentID string

	// Index is the 0-based ordinal position within the document.
	// Chunk order always matches source text order.
	Index int

	// Text is the chunk content.
	Text string

	// SourceLabel is the human-readable provenance string
	// (typically the document title).
	SourceLabel string
}

// RecordMetadata is the fixed-field metadata carried by every vector
// record. Missing fields render as "unknown" at retrieval time rather
// than dropping the match.
type RecordMetadata struct {
	// Text is the chunk content.
	Text string

	// Source is the human-readable provenance label.
	Source string

	// DocumentID links to the originating document.
	DocumentID string

	// ChunkIndex is the chunk's position within the document.
	ChunkIndex int
}

// VectorRecord is the only persisted entity in the system: an
// embedding plus its metadata, keyed by a deterministic ID.
type VectorRecord struct {
	// ID is derived from (DocumentID, ChunkIndex) via RecordID so that
	// re-ingestion overwrites the same record. This is the system's
	// core idempotence invariant.
	ID string

	// Embedding is the fixed-dimension vector representation.
	Embedding []float32

	// Metadata carries the chunk text and provenance.
	Metadata RecordMetadata
}

// RecordID returns the deterministic vector record ID for a chunk.
// It is a pure function of (documentID, chunkIndex): the same chunk
// position always maps to the same record.
func RecordID(documentID string, chunkIndex int) string {
	return documentID + "#" + strconv.Itoa(chunkIndex)
}

// ParseRecordID splits a record ID back into its document ID and chunk
// index. Returns an error for IDs not produced by RecordID.
func ParseRecordID(id string) (documentID string, chunkIndex int, err error) {
	sep := strings.LastIndex(id, "#")
	if sep < 0 {
		return "", 0, fmt.Errorf("%w: record id %q has no chunk separator", ErrValidation, id)
	}
	idx, convErr := strconv.Atoi(id[sep+1:])
	if convErr != nil || idx < 0 {
		return "", 0, fmt.Errorf("%w: record id %q has no chunk index", ErrValidation, id)
	}
	return id[:sep], idx, nil
}

// NewRecord builds a VectorRecord from a chunk and its embedding.
func NewRecord(chunk Chunk, embedding []float32) VectorRecord {
	return VectorRecord{
		ID:        RecordID(chunk.DocumentID, chunk.Index),
		Embedding: embedding,
		Metadata: RecordMetadata{
			Text:       chunk.Text,
			Source:     chunk.SourceLabel,
			DocumentID: chunk.DocumentID,
			ChunkIndex: chunk.Index,
		},
	}
}
