package scraper

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

var (
	ErrContainerNotFound = errors.New("container not found")
	ErrInvalidSelector   = errors.New("invalid selector")
)

// Selector picks nodes from a parsed page in document order
type Selector interface {
	Select(doc *goquery.Document) ([]*html.Node, error)
	String() string
}

// CSS selects every node matching a CSS selector
type CSS struct {
	Query string
}

func (s CSS) Select(doc *goquery.Document) ([]*html.Node, error) {
	return doc.Find(s.Query).Nodes, nil
}

func (s CSS) String() string {
	return "css(" + s.Query + ")"
}

// ByIndex selects Items inside the Nth Container. It addresses structural
// groups that have no id or class to anchor on.
type ByIndex struct {
	Container string
	Index     int
	Items     string
}

func (s ByIndex) Select(doc *goquery.Document) ([]*html.Node, error) {
	containers := doc.Find(s.Container)
	if s.Index < 0 || s.Index >= containers.Length() {
		return nil, fmt.Errorf("%w: %s has %d matches", ErrContainerNotFound, s, containers.Length())
	}
	return containers.Eq(s.Index).Find(s.Items).Nodes, nil
}

func (s ByIndex) String() string {
	return fmt.Sprintf("index(%s[%d] %s)", s.Container, s.Index, s.Items)
}

// ByXPath selects nodes with an XPath expression
type ByXPath struct {
	Expr string
}

func (s ByXPath) Select(doc *goquery.Document) ([]*html.Node, error) {
	root := Root(doc)
	if root == nil {
		return nil, nil
	}
	nodes, err := htmlquery.QueryAll(root, s.Expr)
	if err != nil {
		return nil, fmt.Errorf("%w: xpath %q: %v", ErrInvalidSelector, s.Expr, err)
	}
	return nodes, nil
}

func (s ByXPath) String() string {
	return "xpath(" + s.Expr + ")"
}

// ByAttribute selects Items inside the first Container whose attribute
// Attr equals Value
type ByAttribute struct {
	Container string
	Attr      string
	Value     string
	Items     string
}

func (s ByAttribute) Select(doc *goquery.Document) ([]*html.Node, error) {
	container := doc.Find(s.Container).FilterFunction(func(_ int, sel *goquery.Selection) bool {
		v, ok := sel.Attr(s.Attr)
		return ok && v == s.Value
	}).First()
	if container.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrContainerNotFound, s)
	}
	return container.Find(s.Items).Nodes, nil
}

func (s ByAttribute) String() string {
	return fmt.Sprintf("attr(%s[%s=%q] %s)", s.Container, s.Attr, s.Value, s.Items)
}

// ByTextMatch selects Items inside the first Container whose text matches
// Pattern. With Label set only the text of that descendant is matched, such
// as a table caption reading "Individual".
type ByTextMatch struct {
	Container string
	Label     string
	Pattern   *regexp.Regexp
	Items     string
}

func (s ByTextMatch) Select(doc *goquery.Document) ([]*html.Node, error) {
	container := doc.Find(s.Container).FilterFunction(func(_ int, sel *goquery.Selection) bool {
		if s.Label != "" {
			sel = sel.Find(s.Label).First()
		}
		return s.Pattern.MatchString(NormalizeWhitespace(sel.Text()))
	}).First()
	if container.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrContainerNotFound, s)
	}
	return container.Find(s.Items).Nodes, nil
}

func (s ByTextMatch) String() string {
	label := s.Container
	if s.Label != "" {
		label += " " + s.Label
	}
	return fmt.Sprintf("match(%s ~ /%s/ %s)", label, s.Pattern, s.Items)
}

// SelectorSpec is the declarative form of a Selector used in job files and
// API requests. Exactly one of CSS, XPath or Container is set.
type SelectorSpec struct {
	CSS   string `json:"css,omitempty" yaml:"css,omitempty" toml:"css,omitempty"`
	XPath string `json:"xpath,omitempty" yaml:"xpath,omitempty" toml:"xpath,omitempty"`

	Container string `json:"container,omitempty" yaml:"container,omitempty" toml:"container,omitempty"`
	Items     string `json:"items,omitempty" yaml:"items,omitempty" toml:"items,omitempty"`
	Index     int    `json:"index,omitempty" yaml:"index,omitempty" toml:"index,omitempty"`
	Attribute string `json:"attribute,omitempty" yaml:"attribute,omitempty" toml:"attribute,omitempty"`
	Value     string `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
	Match     string `json:"match,omitempty" yaml:"match,omitempty" toml:"match,omitempty"`
	Label     string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
}

// Build turns the spec into a Selector
func (s SelectorSpec) Build() (Selector, error) {
	set := 0
	for _, v := range []string{s.CSS, s.XPath, s.Container} {
		if strings.TrimSpace(v) != "" {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: exactly one of css, xpath or container must be set", ErrInvalidSelector)
	}

	switch {
	case s.CSS != "":
		if err := checkCSS(s.CSS); err != nil {
			return nil, err
		}
		return CSS{Query: s.CSS}, nil
	case s.XPath != "":
		if _, err := xpath.Compile(s.XPath); err != nil {
			return nil, fmt.Errorf("%w: xpath %q: %v", ErrInvalidSelector, s.XPath, err)
		}
		return ByXPath{Expr: s.XPath}, nil
	}

	if s.Items == "" {
		return nil, fmt.Errorf("%w: container %q needs items", ErrInvalidSelector, s.Container)
	}
	for _, q := range []string{s.Container, s.Items, s.Label} {
		if q == "" {
			continue
		}
		if err := checkCSS(q); err != nil {
			return nil, err
		}
	}

	switch {
	case s.Match != "":
		re, err := cachedRegex(s.Match)
		if err != nil {
			return nil, fmt.Errorf("%w: match %q: %v", ErrInvalidSelector, s.Match, err)
		}
		return ByTextMatch{Container: s.Container, Label: s.Label, Pattern: re, Items: s.Items}, nil
	case s.Attribute != "":
		return ByAttribute{Container: s.Container, Attr: s.Attribute, Value: s.Value, Items: s.Items}, nil
	default:
		if s.Index < 0 {
			return nil, fmt.Errorf("%w: negative index %d", ErrInvalidSelector, s.Index)
		}
		return ByIndex{Container: s.Container, Index: s.Index, Items: s.Items}, nil
	}
}

var regexCache sync.Map

// cachedRegex returns a compiled pattern, shared across jobs
func cachedRegex(pattern string) (*regexp.Regexp, error) {
	if cached, ok := regexCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	regexCache.Store(pattern, re)
	return re, nil
}

// checkCSS rejects selectors goquery would silently treat as matching nothing
func checkCSS(query string) error {
	if _, err := cascadia.Compile(query); err != nil {
		return fmt.Errorf("%w: css %q: %v", ErrInvalidSelector, query, err)
	}
	return nil
}
