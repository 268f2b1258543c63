// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ContentSource: Fetches raw bytes for a logical path
//   - Parser: Extracts text from raw bytes
//   - ParserRegistry: Selects the appropriate parser
//   - Chunker: Splits parsed content into chunks
//   - DocumentStore: Document and chunk persistence
//   - KeywordIndex: Lexical full-text search
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - VectorIndex: Vector storage/search. Only enabled when EmbeddingService is configured.
//   - EmbeddingService: Generates vector embeddings. Without it, semantic and hybrid search are disabled.
//   - RelevanceScorer: Scores (query, candidate) pairs for cross-encoder reranking.
//   - ProgressObserver: Fire-and-forget sink for job phase updates.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, parser, or chunker package
package driven
