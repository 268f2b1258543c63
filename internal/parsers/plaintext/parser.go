// Package plaintext provides the fallback parser for text-like files.
package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Parser handles plain text documents. It is also the registry fallback
// for unknown types that turn out to be valid UTF-8.
type Parser struct{}

// New creates a new plain text parser.
func New() *Parser {
	return &Parser{}
}

// Extensions returns the file extensions this parser handles.
func (p *Parser) Extensions() []string {
	return []string{"txt", "log", "csv", "json", "yaml", "yml", "toml", "xml"}
}

// MIMETypes returns the content types this parser handles.
func (p *Parser) MIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/yaml",
		"application/json",
		"application/xml",
	}
}

// Parse returns the bytes as text. Binary-looking input is a recoverable
// problem: empty content plus a warning, never an error.
func (p *Parser) Parse(ctx context.Context, content []byte, fileName string) (*driven.ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := string(content)
	if !utf8.ValidString(text) {
		return &driven.ParseResult{
			Metadata: map[string]string{"format": "plaintext"},
			Warnings: []string{fileName + ": content is not valid UTF-8, skipping"},
		}, nil
	}

	return &driven.ParseResult{
		Content:  strings.ReplaceAll(text, "\r\n", "\n"),
		Metadata: map[string]string{"format": "plaintext"},
	}, nil
}
