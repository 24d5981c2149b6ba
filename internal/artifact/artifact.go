// Package artifact parses governance documents: ADRs, evidence records,
// and any other markdown artifact with YAML frontmatter.
//
// Parsing is structural only — it extracts the frontmatter block and the
// ## section headers and leaves judgement to the rules package. Section
// extraction walks the goldmark AST, so headers inside fenced code blocks
// (``` or ~~~) are never mistaken for sections.
package artifact

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// Document is a parsed governance artifact.
type Document struct {
	// Path is the location the document was read from, as given by the
	// caller. Empty for documents parsed from memory.
	Path string
	// Frontmatter holds the parsed YAML metadata block. Nil when the
	// document has no frontmatter.
	Frontmatter map[string]any
	// Sections lists the ## header titles in document order.
	Sections []string
	// Body is the markdown content after the frontmatter block.
	Body string
}

var delimiter = []byte("---")

// ParseFile reads and parses the artifact at path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading artifact %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing artifact %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// Parse parses raw artifact content.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}

	body := data
	if fm, rest, ok := splitFrontmatter(data); ok {
		meta := map[string]any{}
		if err := yaml.Unmarshal(fm, &meta); err != nil {
			return nil, fmt.Errorf("parsing frontmatter: %w", err)
		}
		doc.Frontmatter = meta
		body = rest
	}

	doc.Body = string(body)
	doc.Sections = extractSections(body)
	return doc, nil
}

// splitFrontmatter returns the frontmatter content and remaining body
// when data opens with a --- delimited block. ok is false when there is
// no frontmatter at all; an opening delimiter without a closing one
// yields the whole rest as frontmatter, which then fails YAML parsing
// upstream if malformed.
func splitFrontmatter(data []byte) (fm, body []byte, ok bool) {
	if !isDelimiter(firstLine(data)) {
		return nil, data, false
	}

	rest := data[len(firstLine(data)):]
	offset := len(firstLine(data))
	for len(rest) > 0 {
		line := firstLine(rest)
		if isDelimiter(line) {
			return data[len(firstLine(data)):offset], rest[len(line):], true
		}
		offset += len(line)
		rest = rest[len(line):]
	}

	// Opening --- with no closing delimiter: treat as no frontmatter so
	// a horizontal rule at the top of a plain document still parses.
	return nil, data, false
}

// firstLine returns the first line of data including its newline.
func firstLine(data []byte) []byte {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return data[:i+1]
	}
	return data
}

// isDelimiter reports whether a line is exactly "---".
func isDelimiter(line []byte) bool {
	return string(bytes.TrimRight(line, "\r\n")) == string(delimiter)
}

// extractSections collects the titles of all level-2 headings. Goldmark's
// AST is authoritative here: text that looks like a heading inside a
// fenced code block is a code line, not a heading node.
func extractSections(body []byte) []string {
	parser := goldmark.New().Parser()
	root := parser.Parse(text.NewReader(body))

	var sections []string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok && h.Level == 2 {
			sections = append(sections, headingTitle(h, body))
		}
		return ast.WalkContinue, nil
	})
	return sections
}

// headingTitle renders the heading's source text, stripping inline markup
// spans down to their literal content.
func headingTitle(h *ast.Heading, source []byte) string {
	var b strings.Builder
	for c := h.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(source))
		default:
			b.Write(node.Text(source))
		}
	}
	return strings.TrimSpace(b.String())
}

// Field returns the named frontmatter field rendered as a string.
// The second return is false when the field is absent or not a scalar.
func (d *Document) Field(key string) (string, bool) {
	v, ok := d.Frontmatter[key]
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case int, int64, float64, bool:
		return fmt.Sprintf("%v", val), true
	default:
		return "", false
	}
}

// ListField returns the named frontmatter field as a string list.
// A scalar value is returned as a single-element list.
func (d *Document) ListField(key string) []string {
	v, ok := d.Frontmatter[key]
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	case string:
		return []string{val}
	default:
		return nil
	}
}

// Has reports whether the named frontmatter field is present.
func (d *Document) Has(key string) bool {
	_, ok := d.Frontmatter[key]
	return ok
}

// HasSection reports whether a ## section with the given title exists.
func (d *Document) HasSection(title string) bool {
	for _, s := range d.Sections {
		if s == title {
			return true
		}
	}
	return false
}
