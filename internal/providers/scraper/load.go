package scraper

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

const (
	// MaxHTMLSize limits HTML input to 10MB to prevent memory exhaustion
	MaxHTMLSize = 10 * 1024 * 1024
)

var ErrEmptyPage = errors.New("html content required")

// metaCharset spots an explicit declaration in the document head
var metaCharset = regexp.MustCompile(`(?i)<meta[^>]+charset`)

// Parser turns raw page bytes into a queryable document
type Parser struct {
	sanitizer *bluemonday.Policy
	maxSize   int
}

// ParserOption configures a Parser
type ParserOption func(*Parser)

// WithSanitizer strips scripts, styles and event handlers before parsing.
// Class and data attributes survive so CSS selectors keep working.
func WithSanitizer() ParserOption {
	return func(p *Parser) {
		policy := bluemonday.UGCPolicy()
		policy.AllowStyling()
		policy.AllowDataAttributes()
		p.sanitizer = policy
	}
}

// WithMaxSize overrides MaxHTMLSize
func WithMaxSize(n int) ParserOption {
	return func(p *Parser) {
		if n > 0 {
			p.maxSize = n
		}
	}
}

// NewParser creates a parser
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{maxSize: MaxHTMLSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ValidateHTML checks HTML size and returns error if too large
func (p *Parser) ValidateHTML(raw []byte) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ErrEmptyPage
	}
	if len(raw) > p.maxSize {
		return fmt.Errorf("html exceeds maximum size of %d bytes", p.maxSize)
	}
	return nil
}

// Parse decodes raw to UTF-8 and builds a goquery document. contentType is
// the HTTP Content-Type header, empty for pages read from disk.
func (p *Parser) Parse(raw []byte, contentType string) (*goquery.Document, error) {
	if err := p.ValidateHTML(raw); err != nil {
		return nil, err
	}

	utf8Reader, err := charset.NewReaderLabel(DetectCharset(raw, contentType), bytes.NewReader(raw))
	if err != nil {
		utf8Reader = bytes.NewReader(raw)
	}

	if p.sanitizer != nil {
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(utf8Reader); err != nil {
			return nil, fmt.Errorf("decode page: %w", err)
		}
		return goquery.NewDocumentFromReader(p.sanitizer.SanitizeReader(&buf))
	}
	return goquery.NewDocumentFromReader(utf8Reader)
}

// LoadHTML parses a page with the default parser
func LoadHTML(raw []byte) (*goquery.Document, error) {
	return NewParser().Parse(raw, "")
}

// DetectCharset names the page encoding. A BOM or Content-Type header wins,
// then a meta declaration or valid UTF-8, then chardet's best guess.
// Names follow the WHATWG encoding labels, so ISO-8859-1 reads as windows-1252.
func DetectCharset(raw []byte, contentType string) string {
	_, name, certain := charset.DetermineEncoding(raw, contentType)
	head := raw
	if len(head) > 1024 {
		head = head[:1024]
	}
	if certain || name != "windows-1252" || metaCharset.Match(head) {
		return name
	}

	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(raw)
	if err != nil || result == nil {
		return name
	}
	return strings.ToLower(result.Charset)
}

// Root returns the html node behind a document for XPath queries
func Root(doc *goquery.Document) *html.Node {
	if len(doc.Nodes) == 0 {
		return nil
	}
	return doc.Nodes[0]
}

// NodeText joins the text nodes under n and collapses line breaks and runs
// of whitespace into single spaces
func NodeText(n *html.Node) string {
	var buf strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return NormalizeWhitespace(buf.String())
}

// NormalizeWhitespace collapses multiple spaces into one
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
