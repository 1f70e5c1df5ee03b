// Package pattern detects Markdown syntax in a block's plain text: block
// prefixes at the start of a line and the first complete inline
// formatting span.
package pattern

import (
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"

	"github.com/yaklabco/mdlive/internal/mdsyntax"
)

// Inline pattern names.
const (
	NameBold   = "bold"
	NameItalic = "italic"
	NameCode   = "code"
	NameStrike = "strike"
	NameLink   = "link"
	NameImage  = "image"
)

// Match is the first inline formatting span found in a text. Start and End
// form a half-open byte range covering the span and its delimiters.
type Match struct {
	Start int
	End   int

	// Text is the matched source, delimiters included.
	Text string

	// Name is the pattern family (NameBold, NameItalic, ...).
	Name string

	// Delimiter is one occurrence of the opening delimiter, e.g. "**",
	// "_", "``", "[" or "![".
	Delimiter string

	// DelimiterLength is len(Delimiter).
	DelimiterLength int

	// OpenLength and CloseLength count the characters that disappear from
	// the content on either side once the span is formatted. For
	// symmetric delimiters both equal DelimiterLength.
	OpenLength  int
	CloseLength int

	// Underscore is true when emphasis was opened with '_'.
	Underscore bool
}

// Detector finds block and inline patterns.
type Detector struct {
	inline parser.Parser
}

// New creates a detector for the given flavor ("commonmark" or "gfm").
func New(flavor string) *Detector {
	return &Detector{inline: mdsyntax.NewInlineParser(flavor)}
}

// DetectInline parses text with the inline grammar and returns the first
// formatting span in document order, or nil. Precedence and flanking
// follow CommonMark: in "***bold**" the first '*' stays literal and the
// match starts at offset 1.
func (d *Detector) DetectInline(text string) *Match {
	if text == "" {
		return nil
	}
	src := []byte(text)
	doc := mdsyntax.Parse(d.inline, src)

	var found *Match
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if found != nil {
			return ast.WalkStop, nil
		}
		if !entering || !mdsyntax.IsFormatting(n) {
			return ast.WalkContinue, nil
		}
		if m, ok := newMatch(n, src); ok {
			found = m
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return found
}

// DetectInlinePattern is the boolean form of DetectInline.
func (d *Detector) DetectInlinePattern(text string) bool {
	return d.DetectInline(text) != nil
}

func newMatch(n ast.Node, src []byte) (*Match, bool) {
	start, end, ok := mdsyntax.Span(n, src)
	if !ok {
		return nil, false
	}
	m := &Match{Start: start, End: end, Text: string(src[start:end])}

	switch node := n.(type) {
	case *ast.Emphasis:
		m.Name = NameItalic
		if node.Level == 2 {
			m.Name = NameBold
		}
		m.Delimiter = mdsyntax.EmphasisDelimiter(node, src)
		m.Underscore = m.Delimiter[0] == '_'
	case *ast.CodeSpan:
		m.Name = NameCode
		m.Delimiter = mdsyntax.CodeDelimiter(node, src)
	case *east.Strikethrough:
		m.Name = NameStrike
		m.Delimiter = mdsyntax.StrikeDelimiter(node, src)
	case *ast.Link:
		m.Name = NameLink
		m.Delimiter = "["
	case *ast.Image:
		m.Name = NameImage
		m.Delimiter = "!["
	default:
		return nil, false
	}
	m.DelimiterLength = len(m.Delimiter)

	// Images render no text, so the whole span disappears.
	if m.Name == NameImage {
		m.OpenLength = end - start
		return m, true
	}

	contentStart, contentEnd, ok := contentRange(n, src)
	if !ok {
		m.OpenLength = m.DelimiterLength
		m.CloseLength = end - start - m.DelimiterLength
		return m, true
	}
	m.OpenLength = contentStart - start
	m.CloseLength = end - contentEnd
	return m, true
}

// contentRange returns the source range of the text that survives inside
// the formatted element: from the first to the last text descendant.
func contentRange(n ast.Node, src []byte) (int, int, bool) {
	var first, last *ast.Text
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			if first == nil {
				first = t
			}
			last = t
		}
		return ast.WalkContinue, nil
	})
	if first == nil {
		return 0, 0, false
	}
	start := first.Segment.Start
	end := last.Segment.Stop
	if start > end || end > len(src) {
		return 0, 0, false
	}
	return start, end, true
}
