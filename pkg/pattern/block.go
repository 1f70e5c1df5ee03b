package pattern

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/yaklabco/mdlive/pkg/dom"
)

// BlockKind identifies a block-level prefix pattern.
type BlockKind uint8

// Block pattern kinds, in detection order.
const (
	BlockNone BlockKind = iota
	BlockHeading
	BlockCodeFence
	BlockThematicBreak
	BlockQuote
	BlockUnorderedList
	BlockOrderedList
	BlockTableRow
)

// String returns the pattern name.
func (k BlockKind) String() string {
	switch k {
	case BlockHeading:
		return "heading"
	case BlockCodeFence:
		return "code-fence"
	case BlockThematicBreak:
		return "thematic-break"
	case BlockQuote:
		return "blockquote"
	case BlockUnorderedList:
		return "unordered-list"
	case BlockOrderedList:
		return "ordered-list"
	case BlockTableRow:
		return "table-row"
	default:
		return "none"
	}
}

// StartsList reports whether the pattern opens a list.
func (k BlockKind) StartsList() bool {
	return k == BlockUnorderedList || k == BlockOrderedList
}

// BlockMatch describes a block prefix found at the start of a block.
type BlockMatch struct {
	Kind BlockKind

	// Prefix is the matched prefix text, e.g. "## " or "1. ".
	Prefix string

	// Level is the heading level for BlockHeading.
	Level int
}

type blockPattern struct {
	kind BlockKind
	re   *regexp.Regexp
}

// blockPatterns is ordered: thematic breaks are tested before lists so
// "* * * " is a rule, not a list. A lone "***" or "___" needs a trailing
// space so typing "***bold**" does not turn into a rule midway.
//
//nolint:gochecknoglobals // Compiled patterns are read-only.
var blockPatterns = []blockPattern{
	{BlockHeading, regexp.MustCompile(`^(#{1,6})[ \t]`)},
	{BlockCodeFence, regexp.MustCompile("^(?:`{3,}[^`\\s]*|~{3,}[^\\s]*)[ \\t]$")},
	{BlockThematicBreak, regexp.MustCompile(`^(?:-[ \t]*){3,}$|^(?:(?:\*[ \t]*){3,}|(?:_[ \t]*){3,})[ \t]$`)},
	{BlockQuote, regexp.MustCompile(`^>[ \t]`)},
	{BlockUnorderedList, regexp.MustCompile(`^[-*+][ \t]`)},
	{BlockOrderedList, regexp.MustCompile(`^\d{1,9}[.)][ \t]`)},
	{BlockTableRow, regexp.MustCompile(`^\|.*\|[ \t]*$`)},
}

// DetectBlock tests the start of text against the block prefix patterns.
// context is the block the text belongs to; inside a list item,
// list-starting patterns are suppressed unless nesting is allowed there.
func (d *Detector) DetectBlock(text string, context *html.Node) (BlockMatch, bool) {
	for _, p := range blockPatterns {
		loc := p.re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		match := BlockMatch{Kind: p.kind, Prefix: text[loc[0]:loc[1]]}
		if p.kind == BlockHeading {
			match.Level = loc[3] - loc[2]
		}
		if p.kind.StartsList() && !nestingAllowed(text, match.Prefix, context) {
			return BlockMatch{}, false
		}
		return match, true
	}
	return BlockMatch{}, false
}

// DetectBlockPattern is the boolean form of DetectBlock.
func (d *Detector) DetectBlockPattern(text string, context *html.Node) bool {
	_, ok := d.DetectBlock(text, context)
	return ok
}

// nestingAllowed decides whether a list may start inside context. Outside
// list items it always may. Inside one, a nested list is only created when
// the item holds nothing but the marker and a sibling item has content, so
// typing a marker never leaves a single orphaned empty nested list.
func nestingAllowed(text, prefix string, context *html.Node) bool {
	item := enclosingItem(context)
	if item == nil {
		return true
	}
	if strings.TrimSpace(text) != strings.TrimSpace(prefix) {
		return false
	}
	for sib := item.Parent.FirstChild; sib != nil; sib = sib.NextSibling {
		if sib != item && dom.KindOf(sib) == dom.KindListItem && !dom.IsBlank(sib) {
			return true
		}
	}
	return false
}

func enclosingItem(n *html.Node) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if dom.KindOf(cur) == dom.KindListItem && cur.Parent != nil {
			return cur
		}
	}
	return nil
}
