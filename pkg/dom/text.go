package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// TextContent returns the concatenated text of every text descendant.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	collectText(n, &sb, false)
	return sb.String()
}

// ContentText returns the text of n with focus-mark spans excluded. This
// is the text the pattern detector sees.
func ContentText(n *html.Node) string {
	var sb strings.Builder
	collectText(n, &sb, true)
	return sb.String()
}

func collectText(n *html.Node, sb *strings.Builder, skipMarks bool) {
	if n == nil {
		return
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	if skipMarks && IsFocusMark(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb, skipMarks)
	}
}

// TextNodes returns the text descendants of n in document order.
func TextNodes(n *html.Node, skipMarks bool) []*html.Node {
	var out []*html.Node
	var visit func(*html.Node)
	visit = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			out = append(out, cur)
			return
		}
		if skipMarks && IsFocusMark(cur) {
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	if n != nil {
		visit(n)
	}
	return out
}

// IsBlank reports whether the content text of n is empty after trimming.
func IsBlank(n *html.Node) bool {
	return strings.TrimSpace(ContentText(n)) == ""
}

// PatternText returns the content text of nodes as the pattern detector
// should see it: focus marks are skipped and the content of code spans is
// masked, since Markdown inside them is literal. Offsets match
// ContentText.
func PatternText(nodes ...*html.Node) string {
	var sb strings.Builder
	var visit func(n *html.Node, masked bool)
	visit = func(n *html.Node, masked bool) {
		switch {
		case n.Type == html.TextNode:
			if masked {
				sb.WriteString(strings.Repeat("x", len(n.Data)))
			} else {
				sb.WriteString(n.Data)
			}
			return
		case IsFocusMark(n):
			return
		}
		masked = masked || KindOf(n) == KindCode
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c, masked)
		}
	}
	for _, n := range nodes {
		visit(n, false)
	}
	return sb.String()
}

// InlineChildren returns the leading children of n that are not blocks.
// For a list item these are its own content, ahead of any nested list.
func InlineChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if Classify(c).IsBlock() {
			break
		}
		out = append(out, c)
	}
	return out
}
