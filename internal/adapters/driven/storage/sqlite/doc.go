// Package sqlite provides a unified SQLite-backed store implementing
// the source store, the vector index and the chunk ledger. Similarity
// queries are brute-force cosine over the stored embeddings, which is
// adequate for the corpus sizes a single quarry instance indexes.
package sqlite
