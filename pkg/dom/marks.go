package dom

import (
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// FocusMarkClass is the stable class carried by every focus-mark span.
// Host stylesheets use it to de-emphasize delimiter text.
const FocusMarkClass = "md-focus-mark"

// focusMarkSelector matches focus-mark spans.
//
//nolint:gochecknoglobals // Compiled selector is read-only.
var focusMarkSelector = cascadia.MustCompile("span." + FocusMarkClass)

// IsFocusMark reports whether n is a focus-mark span.
func IsFocusMark(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && focusMarkSelector.Match(n)
}

// NewFocusMark creates a detached focus-mark span showing text.
func NewFocusMark(text string) *html.Node {
	span := NewElement("span", "class", FocusMarkClass)
	span.AppendChild(NewText(text))
	return span
}

// FocusMarks returns every focus-mark span under n, in document order.
func FocusMarks(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	return focusMarkSelector.MatchAll(n)
}

// MarkText returns the delimiter text currently displayed by a mark.
func MarkText(mark *html.Node) string {
	return TextContent(mark)
}

// SetMarkText replaces the text displayed by a mark, reusing its first
// text node so carets inside it stay attached.
func SetMarkText(mark *html.Node, text string) {
	var first *html.Node
	for c := mark.FirstChild; c != nil; {
		next := c.NextSibling
		if first == nil && c.Type == html.TextNode {
			first = c
		} else {
			mark.RemoveChild(c)
		}
		c = next
	}
	if first == nil {
		mark.AppendChild(NewText(text))
		return
	}
	first.Data = text
}

// EnclosingMark returns the focus-mark span containing n, or nil.
func EnclosingMark(n *html.Node) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if IsFocusMark(cur) {
			return cur
		}
	}
	return nil
}

// BoundaryMarks returns the focus marks sitting at the first and last
// child positions of el. For a block element only open is set.
func BoundaryMarks(el *html.Node) (open, closing *html.Node) {
	if el == nil {
		return nil, nil
	}
	if IsFocusMark(el.FirstChild) {
		open = el.FirstChild
	}
	if el.LastChild != open && IsFocusMark(el.LastChild) {
		closing = el.LastChild
	}
	return open, closing
}

// StripFocusMarks removes every focus mark under n, merges the text nodes
// that become adjacent, and returns the caret re-addressed to the
// surviving nodes.
func StripFocusMarks(n *html.Node, caret Caret) Caret {
	for _, mark := range FocusMarks(n) {
		caret = Remove(mark, caret)
	}
	return Normalize(n, caret)
}
