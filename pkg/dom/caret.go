package dom

import (
	"golang.org/x/net/html"
)

// Caret is a collapsed selection point. It follows DOM selection
// semantics: when Node is a text node, Offset is a byte offset into its
// data; when Node is an element, Offset is a child index.
//
// Caret is a value. Operations that mutate the tree take a caret and
// return the re-addressed caret instead of patching a shared selection.
type Caret struct {
	Node   *html.Node
	Offset int
}

// IsZero reports whether the caret is unset.
func (c Caret) IsZero() bool {
	return c.Node == nil
}

// InText reports whether the caret addresses a text node.
func (c Caret) InText() bool {
	return c.Node != nil && c.Node.Type == html.TextNode
}

// At returns a caret inside node n at offset.
func At(n *html.Node, offset int) Caret {
	return Caret{Node: n, Offset: offset}
}

// Bias decides which side of a node boundary an offset resolves to.
type Bias uint8

const (
	// Backward prefers the end of the earlier text node.
	Backward Bias = iota
	// Forward prefers the start of the later text node.
	Forward
)

// ContentOffset converts caret into a character offset from the start of
// container. With skipMarks, focus-mark text does not count, and a caret
// inside a mark maps to the content boundary the mark sits on.
func ContentOffset(container *html.Node, caret Caret, skipMarks bool) (int, bool) {
	if caret.Node == nil || !Contains(container, caret.Node) {
		return 0, false
	}

	if caret.Node.Type == html.TextNode {
		if skipMarks {
			if mark := EnclosingMark(caret.Node); mark != nil && Contains(container, mark) {
				return lengthBefore(container, mark, true)
			}
		}
		before, ok := lengthBefore(container, caret.Node, skipMarks)
		if !ok {
			return 0, false
		}
		return before + clamp(caret.Offset, 0, len(caret.Node.Data)), true
	}

	node := caret.Node
	if skipMarks {
		if mark := EnclosingMark(node); mark != nil && Contains(container, mark) {
			return lengthBefore(container, mark, true)
		}
	}
	if child := ChildAt(node, caret.Offset); child != nil {
		return lengthBefore(container, child, skipMarks)
	}

	// Past the last child: everything before node plus node itself.
	if node == container {
		return len(contentOf(container, skipMarks)), true
	}
	before, ok := lengthBefore(container, node, skipMarks)
	if !ok {
		return 0, false
	}
	return before + len(contentOf(node, skipMarks)), true
}

func contentOf(n *html.Node, skipMarks bool) string {
	if skipMarks {
		return ContentText(n)
	}
	return TextContent(n)
}

// lengthBefore sums the text preceding target in document order.
func lengthBefore(container, target *html.Node, skipMarks bool) (int, bool) {
	total := 0
	found := false

	var visit func(n *html.Node) bool
	visit = func(n *html.Node) bool {
		if n == target {
			found = true
			return true
		}
		if n.Type == html.TextNode {
			total += len(n.Data)
			return false
		}
		if skipMarks && IsFocusMark(n) {
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if visit(c) {
				return true
			}
		}
		return false
	}

	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if visit(c) {
			break
		}
	}
	if container == target {
		return 0, true
	}
	return total, found
}

// Resolve converts a content offset back into a caret inside container.
// Offsets past the end clamp to the end. When offset falls between two
// text nodes, bias picks the side. A forward-biased offset at the very end
// of container, after a formatted element, resolves to the position after
// that element rather than inside it.
func Resolve(container *html.Node, offset int, bias Bias, skipMarks bool) Caret {
	texts := TextNodes(container, skipMarks)
	if offset < 0 {
		offset = 0
	}

	start := 0
	var last *html.Node
	for _, t := range texts {
		if len(t.Data) == 0 {
			continue
		}
		end := start + len(t.Data)
		switch bias {
		case Forward:
			if offset >= start && offset < end {
				return Caret{Node: t, Offset: offset - start}
			}
		default:
			if offset >= start && offset <= end {
				return Caret{Node: t, Offset: offset - start}
			}
		}
		start = end
		last = t
	}

	if last == nil {
		// No text at all: use an empty text node if one exists.
		for _, t := range texts {
			return Caret{Node: t, Offset: 0}
		}
		return Caret{Node: container, Offset: 0}
	}

	// Offset is at or beyond the end of the content.
	if bias == Forward && last.Parent != container {
		return Caret{Node: container, Offset: ChildCount(container)}
	}
	return Caret{Node: last, Offset: len(last.Data)}
}

// EndOf returns the caret at the end of n's content.
func EndOf(n *html.Node) Caret {
	if n == nil {
		return Caret{}
	}
	if n.Type == html.TextNode {
		return Caret{Node: n, Offset: len(n.Data)}
	}
	texts := TextNodes(n, true)
	if len(texts) > 0 {
		last := texts[len(texts)-1]
		return Caret{Node: last, Offset: len(last.Data)}
	}
	// Descend to the deepest last element so the caret lands inside the
	// innermost container (e.g. an empty <li> inside a new <ul>).
	cur := n
	for cur.LastChild != nil && cur.LastChild.Type == html.ElementNode && !IsFocusMark(cur.LastChild) && CanHoldCaret(cur.LastChild) {
		cur = cur.LastChild
	}
	return Caret{Node: cur, Offset: ChildCount(cur)}
}

// CanHoldCaret reports whether a caret may be placed inside n.
func CanHoldCaret(n *html.Node) bool {
	switch KindOf(n) {
	case KindThematicBreak, KindImage, KindLineBreak, KindCheckbox:
		return false
	default:
		return true
	}
}

// Block returns the editable block containing node, stopping at root.
func Block(root, node *html.Node) *html.Node {
	for cur := node; cur != nil && cur != root; cur = cur.Parent {
		if Classify(cur).IsEditableBlock() {
			return cur
		}
	}
	return nil
}

// BlockAt returns the editable block containing caret. An element caret on
// the root addresses the block before it.
func BlockAt(root *html.Node, caret Caret) *html.Node {
	if caret.Node == nil || !IsConnected(caret.Node, root) {
		return nil
	}
	if caret.Node == root {
		if child := ChildAt(root, caret.Offset-1); child != nil {
			return Block(root, deepestFirstBlock(child))
		}
		return Block(root, deepestFirstBlock(root.FirstChild))
	}
	return Block(root, caret.Node)
}

func deepestFirstBlock(n *html.Node) *html.Node {
	cur := n
	for cur != nil && !Classify(cur).IsEditableBlock() {
		cur = cur.FirstChild
	}
	return cur
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
