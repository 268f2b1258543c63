// Package sqlite provides a unified SQLite-based implementation of the
// document store and keyword index ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. It serves two
// port interfaces from one database:
//
//   - DocumentStore: document and chunk persistence
//   - KeywordIndex: lexical full-text search over chunks (FTS5, bm25)
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and
// .down.sql files.
//
// # Thread Safety
//
// All operations are thread-safe. The store relies on database/sql's
// connection pool and SQLite's WAL mode, so the search engine's
// concurrent retrieval branches each get an independent connection.
package sqlite
