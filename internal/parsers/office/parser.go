// Package office provides a parser for PDF and office formats backed by
// the docconv conversion library.
package office

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"

	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// mimeByExtension maps supported extensions to the content type docconv
// expects when the caller supplied none.
var mimeByExtension = map[string]string{
	"pdf":  "application/pdf",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"doc":  "application/msword",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"odt":  "application/vnd.oasis.opendocument.text",
	"rtf":  "application/rtf",
}

// Parser extracts text from binary document formats via docconv.
// Extraction failures are recoverable by contract: they surface as
// warnings with empty content, never as errors.
type Parser struct{}

// New creates a new office document parser.
func New() *Parser {
	return &Parser{}
}

// Extensions returns the file extensions this parser handles.
func (p *Parser) Extensions() []string {
	exts := make([]string, 0, len(mimeByExtension))
	for ext := range mimeByExtension {
		exts = append(exts, ext)
	}
	return exts
}

// MIMETypes returns the content types this parser handles.
func (p *Parser) MIMETypes() []string {
	mimes := make([]string, 0, len(mimeByExtension))
	for _, mt := range mimeByExtension {
		mimes = append(mimes, mt)
	}
	return mimes
}

// Parse converts the document to plain text.
func (p *Parser) Parse(ctx context.Context, content []byte, fileName string) (*driven.ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mimeType := mimeForFile(fileName)
	result := &driven.ParseResult{
		Metadata: map[string]string{"format": "office"},
	}

	res, err := docconv.Convert(bytes.NewReader(content), mimeType, false)

	// Conversion can be slow on large files; honour cancellation before
	// trusting the outcome.
	if cerr := ctx.Err(); cerr != nil {
		return nil, cerr
	}

	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s: extraction failed for %s: %v", fileName, mimeType, err))
		return result, nil
	}

	text := strings.TrimSpace(res.Body)
	if text == "" {
		result.Warnings = append(result.Warnings, fileName+": extracted no text")
		return result, nil
	}

	result.Content = text
	for k, v := range res.Meta {
		result.Metadata[k] = v
	}

	return result, nil
}

// mimeForFile maps the file extension to a docconv content type.
func mimeForFile(fileName string) string {
	dot := strings.LastIndexByte(fileName, '.')
	if dot < 0 {
		return "application/octet-stream"
	}
	if mt, ok := mimeByExtension[strings.ToLower(fileName[dot+1:])]; ok {
		return mt
	}
	return "application/octet-stream"
}
