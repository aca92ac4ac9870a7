// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Embedder: Maps text to fixed-dimension vectors
//   - VectorIndex: Persists vectors; upsert, k-NN query, delete
//   - ChunkLedger: Tracks per-document chunk counts for pruning
//   - SourceStore: Source configuration persistence
//   - Connector: Fetches documents from a data source
//   - ConnectorFactory: Creates connectors from source configuration
//
// # Optional Interfaces
//
//   - AnswerComposer: Generates the final answer. Without it,
//     retrieval still works but the ask operation fails with
//     domain.ErrComposerUnavailable.
package driven
