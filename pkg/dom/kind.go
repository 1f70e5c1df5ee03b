// Package dom provides the document-tree model used by the live editing
// engine. The tree is made of golang.org/x/net/html nodes; this package
// classifies them once into tagged variants so the rest of the engine never
// inspects tag names directly.
package dom

import (
	"golang.org/x/net/html"
)

// Kind classifies a document-tree node.
type Kind uint8

// Node kinds for block-level and inline-level editing structure.
const (
	KindUnknown Kind = iota
	KindRoot

	// Block-level kinds.
	KindParagraph
	KindHeading
	KindList
	KindListItem
	KindBlockquote
	KindCodeBlock
	KindThematicBreak
	KindTable
	KindTableSection
	KindTableRow
	KindTableCell

	// Inline-level kinds.
	KindText
	KindStrong
	KindEmphasis
	KindCode
	KindStrike
	KindLink
	KindImage
	KindLineBreak
	KindCheckbox

	// KindFocusMark is a synthetic delimiter-display span.
	KindFocusMark
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindList:
		return "list"
	case KindListItem:
		return "list-item"
	case KindBlockquote:
		return "blockquote"
	case KindCodeBlock:
		return "code-block"
	case KindThematicBreak:
		return "thematic-break"
	case KindTable:
		return "table"
	case KindTableSection:
		return "table-section"
	case KindTableRow:
		return "table-row"
	case KindTableCell:
		return "table-cell"
	case KindText:
		return "text"
	case KindStrong:
		return "strong"
	case KindEmphasis:
		return "emphasis"
	case KindCode:
		return "code"
	case KindStrike:
		return "strike"
	case KindLink:
		return "link"
	case KindImage:
		return "image"
	case KindLineBreak:
		return "line-break"
	case KindCheckbox:
		return "checkbox"
	case KindFocusMark:
		return "focus-mark"
	default:
		return "unknown"
	}
}

// Class is the result of classifying a node.
type Class struct {
	Kind Kind

	// Level is the heading level (1-6) for KindHeading.
	Level int

	// Ordered is true for ordered KindList nodes.
	Ordered bool
}

// Classify inspects a node once and returns its variant.
func Classify(n *html.Node) Class {
	if n == nil {
		return Class{Kind: KindUnknown}
	}

	switch n.Type {
	case html.DocumentNode:
		return Class{Kind: KindRoot}
	case html.TextNode:
		return Class{Kind: KindText}
	case html.ElementNode:
		// Handled below.
	default:
		return Class{Kind: KindUnknown}
	}

	switch n.Data {
	case "div", "body", "article", "section":
		return Class{Kind: KindRoot}
	case "p":
		return Class{Kind: KindParagraph}
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return Class{Kind: KindHeading, Level: int(n.Data[1] - '0')}
	case "ul":
		return Class{Kind: KindList}
	case "ol":
		return Class{Kind: KindList, Ordered: true}
	case "li":
		return Class{Kind: KindListItem}
	case "blockquote":
		return Class{Kind: KindBlockquote}
	case "pre":
		return Class{Kind: KindCodeBlock}
	case "hr":
		return Class{Kind: KindThematicBreak}
	case "table":
		return Class{Kind: KindTable}
	case "thead", "tbody":
		return Class{Kind: KindTableSection}
	case "tr":
		return Class{Kind: KindTableRow}
	case "td", "th":
		return Class{Kind: KindTableCell}
	case "strong", "b":
		return Class{Kind: KindStrong}
	case "em", "i":
		return Class{Kind: KindEmphasis}
	case "code":
		// The body of a fenced block belongs to its <pre>.
		if n.Parent != nil && n.Parent.Type == html.ElementNode && n.Parent.Data == "pre" {
			return Class{Kind: KindUnknown}
		}
		return Class{Kind: KindCode}
	case "del", "s", "strike":
		return Class{Kind: KindStrike}
	case "a":
		return Class{Kind: KindLink}
	case "img":
		return Class{Kind: KindImage}
	case "br":
		return Class{Kind: KindLineBreak}
	case "input":
		return Class{Kind: KindCheckbox}
	case "span":
		if IsFocusMark(n) {
			return Class{Kind: KindFocusMark}
		}
	}

	return Class{Kind: KindUnknown}
}

// IsBlock returns true for block-level kinds.
func (c Class) IsBlock() bool {
	switch c.Kind {
	case KindParagraph, KindHeading, KindList, KindListItem, KindBlockquote,
		KindCodeBlock, KindThematicBreak, KindTable, KindTableSection,
		KindTableRow, KindTableCell:
		return true
	default:
		return false
	}
}

// IsEditableBlock returns true for the structural units a caret is typed
// into: paragraphs, headings, list items, code blocks and table cells.
func (c Class) IsEditableBlock() bool {
	switch c.Kind {
	case KindParagraph, KindHeading, KindListItem, KindCodeBlock, KindTableCell:
		return true
	default:
		return false
	}
}

// IsFormatted returns true for inline formatting elements.
func (c Class) IsFormatted() bool {
	switch c.Kind {
	case KindStrong, KindEmphasis, KindCode, KindStrike, KindLink, KindImage:
		return true
	default:
		return false
	}
}

// HasInlineMarks returns true for inline elements that display an opening
// and a closing focus mark.
func (c Class) HasInlineMarks() bool {
	switch c.Kind {
	case KindStrong, KindEmphasis, KindCode, KindStrike:
		return true
	default:
		return false
	}
}

// HasBlockMark returns true for block elements that display a prefix mark.
func (c Class) HasBlockMark() bool {
	return c.Kind == KindHeading || c.Kind == KindListItem
}

// KindOf is shorthand for Classify(n).Kind.
func KindOf(n *html.Node) Kind {
	return Classify(n).Kind
}
