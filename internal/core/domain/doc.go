// Package domain defines the core business entities for Quarry.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A raw document produced by a source connector
//   - Chunk: A bounded text segment derived from a document
//   - VectorRecord: The persisted unit of the vector index
//   - Match: A similarity search hit
//   - ContextBundle: Ranked, formatted retrieval output for generation
//   - Source: A configured data source
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
package domain
