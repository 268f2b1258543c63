// Package html provides a parser for HTML documents.
package html

import (
	"context"
	stdhtml "html"
	"regexp"
	"strings"

	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Parser handles HTML documents by stripping tags and decoding entities.
type Parser struct{}

// New creates a new HTML parser.
func New() *Parser {
	return &Parser{}
}

// Extensions returns the file extensions this parser handles.
func (p *Parser) Extensions() []string {
	return []string{"html", "htm", "xhtml"}
}

// MIMETypes returns the content types this parser handles.
func (p *Parser) MIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Parse strips markup and extracts a title from the <title> tag.
func (p *Parser) Parse(ctx context.Context, content []byte, fileName string) (*driven.ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw := string(content)
	result := &driven.ParseResult{
		Metadata: map[string]string{"format": "html"},
	}

	if m := titleTag.FindStringSubmatch(raw); len(m) > 1 {
		if title := strings.TrimSpace(stdhtml.UnescapeString(m[1])); title != "" {
			result.Metadata["title"] = title
		}
	}

	text := stripHTML(raw)
	if text == "" && len(content) > 0 {
		result.Warnings = append(result.Warnings, fileName+": no text content after tag stripping")
		return result, nil
	}

	result.Content = text
	return result, nil
}

// Pre-compiled regular expressions for HTML stripping.
var (
	titleTag      = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	headTag       = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockClosers  = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	brTags        = regexp.MustCompile(`(?i)<br\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// stripHTML converts HTML markup into plain text, preserving block
// boundaries as newlines.
func stripHTML(content string) string {
	content = htmlComments.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")

	content = brTags.ReplaceAllString(content, "\n")
	content = blockClosers.ReplaceAllString(content, "\n\n")
	content = allTags.ReplaceAllString(content, " ")

	content = stdhtml.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	// Trim per-line whitespace before collapsing blank runs.
	lines := strings.Split(content, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	content = strings.Join(lines, "\n")
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
