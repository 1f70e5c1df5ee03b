// Package mdsyntax holds the goldmark configuration shared by the pattern
// detector and the markdown bridge, and maps inline AST nodes back to the
// source ranges their markup occupies.
package mdsyntax

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Flavor identifies the Markdown flavor.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// paragraphPriority matches goldmark's default priority for paragraphs.
const paragraphPriority = 1000

// strikethroughPriority matches goldmark's GFM strikethrough priority.
const strikethroughPriority = 500

// maxStrikeWidth is the longest tilde run treated as a strike delimiter.
const maxStrikeWidth = 2

// FlavorOrDefault returns the flavor if valid, otherwise CommonMark.
func FlavorOrDefault(flavor string) string {
	switch flavor {
	case FlavorCommonMark, FlavorGFM:
		return flavor
	default:
		return FlavorCommonMark
	}
}

// NewMarkdown creates a full block+inline goldmark instance.
//
//nolint:ireturn // goldmark.Markdown is an external interface type
func NewMarkdown(flavor string) goldmark.Markdown {
	var opts []goldmark.Option

	switch FlavorOrDefault(flavor) {
	case FlavorGFM:
		opts = append(opts, goldmark.WithExtensions(extension.GFM))
	case FlavorCommonMark:
		// No extensions for pure CommonMark.
	}

	return goldmark.New(opts...)
}

// NewInlineParser creates a parser that only knows paragraphs, so every
// input is read with the inline grammar alone. Block prefixes such as
// "# " or "- " stay literal text.
//
//nolint:ireturn // parser.Parser is an external interface type
func NewInlineParser(flavor string) parser.Parser {
	inlines := parser.DefaultInlineParsers()
	if FlavorOrDefault(flavor) == FlavorGFM {
		inlines = append(inlines, util.Prioritized(extension.NewStrikethroughParser(), strikethroughPriority))
	}

	return parser.NewParser(
		parser.WithBlockParsers(util.Prioritized(parser.NewParagraphParser(), paragraphPriority)),
		parser.WithInlineParsers(inlines...),
	)
}

// Parse runs p over src with a fresh parser context.
//
//nolint:ireturn // ast.Node is an external interface type
func Parse(p parser.Parser, src []byte) ast.Node {
	return p.Parse(text.NewReader(src), parser.WithContext(parser.NewContext()))
}

// IsFormatting reports whether n is an inline formatting node the engine
// transforms: emphasis, strong, code, strikethrough, link or image.
func IsFormatting(n ast.Node) bool {
	switch n.(type) {
	case *ast.Emphasis, *ast.CodeSpan, *ast.Link, *ast.Image, *east.Strikethrough:
		return true
	default:
		return false
	}
}

// Start returns the source offset where the markup of n begins.
func Start(n ast.Node, src []byte) (int, bool) {
	if n == nil {
		return 0, false
	}

	switch node := n.(type) {
	case *ast.Text:
		return node.Segment.Start, true

	case *ast.RawHTML:
		if node.Segments == nil || node.Segments.Len() == 0 {
			return 0, false
		}
		return node.Segments.At(0).Start, true

	case *ast.Emphasis:
		s, ok := Start(node.FirstChild(), src)
		if !ok || s-node.Level < 0 {
			return 0, false
		}
		return s - node.Level, true

	case *east.Strikethrough:
		s, ok := Start(node.FirstChild(), src)
		if !ok {
			return 0, false
		}
		return s - runBefore(src, s, '~', maxStrikeWidth), true

	case *ast.CodeSpan:
		s, ok := Start(node.FirstChild(), src)
		if !ok {
			return 0, false
		}
		// A single stripped space may sit between the fence and the content.
		if s >= 2 && src[s-1] == ' ' && src[s-2] == '`' {
			s--
		}
		ticks := runBefore(src, s, '`', len(src))
		if ticks == 0 {
			return 0, false
		}
		return s - ticks, true

	case *ast.Link:
		s, ok := Start(node.FirstChild(), src)
		if !ok || s < 1 {
			return 0, false
		}
		return s - 1, true

	case *ast.Image:
		s, ok := Start(node.FirstChild(), src)
		if !ok || s < 2 {
			return 0, false
		}
		return s - 2, true
	}

	return Start(n.FirstChild(), src)
}

// End returns the source offset just past the markup of n.
func End(n ast.Node, src []byte) (int, bool) {
	if n == nil {
		return 0, false
	}

	switch node := n.(type) {
	case *ast.Text:
		return node.Segment.Stop, true

	case *ast.RawHTML:
		if node.Segments == nil || node.Segments.Len() == 0 {
			return 0, false
		}
		return node.Segments.At(node.Segments.Len() - 1).Stop, true

	case *ast.Emphasis:
		e, ok := End(node.LastChild(), src)
		if !ok || e+node.Level > len(src) {
			return 0, false
		}
		return e + node.Level, true

	case *east.Strikethrough:
		e, ok := End(node.LastChild(), src)
		if !ok {
			return 0, false
		}
		return e + runAfter(src, e, '~', maxStrikeWidth), true

	case *ast.CodeSpan:
		s, ok := Start(node, src)
		if !ok {
			return 0, false
		}
		ticks := runAfter(src, s, '`', len(src))
		e, ok := End(node.LastChild(), src)
		if !ok {
			return 0, false
		}
		if e < len(src) && src[e] == ' ' && e+1 < len(src) && src[e+1] == '`' {
			e++
		}
		if e+ticks > len(src) {
			return 0, false
		}
		return e + ticks, true

	case *ast.Link:
		return linkEnd(node, src)

	case *ast.Image:
		return linkEnd(node, src)
	}

	return End(n.LastChild(), src)
}

// Span returns the half-open source range of n's markup.
func Span(n ast.Node, src []byte) (int, int, bool) {
	start, ok := Start(n, src)
	if !ok {
		return 0, 0, false
	}
	end, ok := End(n, src)
	if !ok || end < start {
		return 0, 0, false
	}
	return start, end, true
}

// EmphasisDelimiter returns the delimiter run that opened an emphasis node,
// e.g. "**" or "_".
func EmphasisDelimiter(n *ast.Emphasis, src []byte) string {
	s, ok := Start(n, src)
	if !ok || s >= len(src) {
		return defaultEmphasis(n.Level)
	}
	marker := src[s]
	if marker != '*' && marker != '_' {
		return defaultEmphasis(n.Level)
	}
	out := make([]byte, n.Level)
	for i := range out {
		out[i] = marker
	}
	return string(out)
}

// StrikeDelimiter returns the tilde run that opened a strikethrough node.
func StrikeDelimiter(n *east.Strikethrough, src []byte) string {
	s, ok := Start(n.FirstChild(), src)
	if !ok {
		return "~~"
	}
	width := runBefore(src, s, '~', maxStrikeWidth)
	if width == 0 {
		return "~~"
	}
	return string(src[s-width : s])
}

// CodeDelimiter returns the backtick fence that opened a code span.
func CodeDelimiter(n *ast.CodeSpan, src []byte) string {
	s, ok := Start(n, src)
	if !ok {
		return "`"
	}
	ticks := runAfter(src, s, '`', len(src))
	if ticks == 0 {
		return "`"
	}
	return string(src[s : s+ticks])
}

func defaultEmphasis(level int) string {
	if level >= 2 {
		return "**"
	}
	return "*"
}

// linkEnd scans "](destination "title")" after the link text. The title
// may be quoted with '"', '\'' or parentheses and may contain ')'.
func linkEnd(n ast.Node, src []byte) (int, bool) {
	e, ok := End(n.LastChild(), src)
	if !ok || e >= len(src) || src[e] != ']' {
		return 0, false
	}
	e++
	if e >= len(src) || src[e] != '(' {
		return e, true
	}

	i := skipSpace(src, e+1)
	i, ok = scanDestination(src, i)
	if !ok {
		return 0, false
	}
	i = skipSpace(src, i)
	if i < len(src) && (src[i] == '"' || src[i] == '\'' || src[i] == '(') {
		if i, ok = scanTitle(src, i); !ok {
			return 0, false
		}
		i = skipSpace(src, i)
	}
	if i >= len(src) || src[i] != ')' {
		return 0, false
	}
	return i + 1, true
}

// scanDestination skips a link destination starting at i: either
// "<...>" or a run of non-space bytes with balanced parentheses.
func scanDestination(src []byte, i int) (int, bool) {
	if i < len(src) && src[i] == '<' {
		for j := i + 1; j < len(src); j++ {
			switch src[j] {
			case '\\':
				j++
			case '>':
				return j + 1, true
			case '\n':
				return 0, false
			}
		}
		return 0, false
	}

	depth := 0
	for ; i < len(src); i++ {
		switch c := src[i]; {
		case c == '\\':
			i++
		case c == '(':
			depth++
		case c == ')':
			if depth == 0 {
				return i, true
			}
			depth--
		case c == ' ' || c == '\t' || c == '\n':
			return i, depth == 0
		}
	}
	return i, depth == 0
}

// scanTitle skips a title opened at i and returns the offset after its
// closing quote.
func scanTitle(src []byte, i int) (int, bool) {
	closer := src[i]
	if closer == '(' {
		closer = ')'
	}
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case closer:
			return j + 1, true
		}
	}
	return 0, false
}

func skipSpace(src []byte, i int) int {
	for i < len(src) && (src[i] == ' ' || src[i] == '\t' || src[i] == '\n') {
		i++
	}
	return i
}

func runBefore(src []byte, pos int, c byte, limit int) int {
	count := 0
	for pos-count-1 >= 0 && src[pos-count-1] == c && count < limit {
		count++
	}
	return count
}

func runAfter(src []byte, pos int, c byte, limit int) int {
	count := 0
	for pos+count < len(src) && src[pos+count] == c && count < limit {
		count++
	}
	return count
}
