// Package memory provides in-memory implementations of the storage and
// index ports. They hold everything in maps guarded by a mutex and lose
// all data on restart.
//
// They serve two roles: test fixtures for the service layer, and a
// zero-dependency mode where no SQLite file or qdrant server is wanted.
// The vector index runs brute-force cosine similarity and the keyword
// index ranks by term frequency, so neither is suitable for large
// corpora.
package memory
