package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Render serializes nodes to HTML. Render errors only come from the
// writer, which cannot fail for a strings.Builder.
func Render(nodes ...*html.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		_ = html.Render(&sb, n)
	}
	return sb.String()
}

// RenderChildren serializes the children of n.
func RenderChildren(n *html.Node) string {
	return Render(Children(n)...)
}

// ParseFragment parses an HTML fragment in the context of a <div> and
// returns the detached top-level nodes.
func ParseFragment(markup string) ([]*html.Node, error) {
	context := NewElement("div")
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, err
	}
	return nodes, nil
}
