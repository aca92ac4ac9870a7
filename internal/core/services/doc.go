// Package services implements the driving port interfaces.
// Services contain the core business logic: chunking orchestration,
// ingestion, retrieval and answer composition. They coordinate calls
// to driven ports (adapters).
//
// Services are pure Go with no external dependencies beyond the
// domain and ports packages.
package services
