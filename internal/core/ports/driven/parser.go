package driven

import "context"

// ParseResult contains the output of parsing one document.
type ParseResult struct {
	// Content is the extracted plain text. Empty when parsing failed
	// recoverably; Warnings explains why.
	Content string

	// Metadata contains parser-specific key-value pairs (title, format).
	Metadata map[string]string

	// Warnings lists recoverable parse problems. A parser never fails
	// outright for these; it reports them and returns what it could.
	Warnings []string
}

// Parser extracts text from raw document bytes.
// Each parser declares the file extensions and MIME types it handles.
// Recoverable parse problems produce empty content plus warnings, never
// an error. Cancellation must propagate: a parser returns ctx.Err()
// rather than absorbing it into a warning.
type Parser interface {
	// Extensions returns the lower-case file extensions this parser
	// handles, without the leading dot (e.g., "md", "pdf").
	Extensions() []string

	// MIMETypes returns the content types this parser handles.
	MIMETypes() []string

	// Parse extracts text and metadata from the raw bytes.
	Parse(ctx context.Context, content []byte, fileName string) (*ParseResult, error)
}

// ParserRegistry resolves a parser by file extension or content type.
type ParserRegistry interface {
	// Resolve selects a parser for the file. Returns
	// domain.ErrUnsupportedType when nothing matches.
	Resolve(fileName, contentType string) (Parser, error)

	// Register adds a parser to the registry.
	Register(p Parser)
}
