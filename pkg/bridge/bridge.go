// Package bridge converts between Markdown text and document-tree
// fragments. It is the engine's only contact with the Markdown grammar:
// parsing goes through goldmark, serialization walks the tree.
package bridge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/net/html"

	"github.com/yaklabco/mdlive/internal/mdsyntax"
	"github.com/yaklabco/mdlive/pkg/dom"
)

// Flavor identifies the Markdown flavor supported by the bridge.
const (
	FlavorCommonMark = mdsyntax.FlavorCommonMark
	FlavorGFM        = mdsyntax.FlavorGFM
)

// ErrUnsupportedNode is returned when a tree holds an element the
// serializer has no Markdown form for.
var ErrUnsupportedNode = errors.New("unsupported node")

// ErrConversion is returned when the Markdown parser fails.
var ErrConversion = errors.New("markdown conversion failed")

// Fragment is the result of parsing Markdown.
type Fragment struct {
	// Nodes are the detached top-level nodes.
	Nodes []*html.Node

	// Inline is true when the Markdown formed a single paragraph; Nodes
	// then hold that paragraph's inline children.
	Inline bool
}

// Bridge implements Markdown ⇄ tree conversion.
type Bridge struct {
	flavor string
	md     goldmark.Markdown
	inline parser.Parser
}

// New creates a bridge for the given flavor.
// Supported flavors are "commonmark" and "gfm".
// Invalid flavors default to "commonmark".
func New(flavor string) *Bridge {
	f := mdsyntax.FlavorOrDefault(flavor)
	return &Bridge{
		flavor: f,
		md:     mdsyntax.NewMarkdown(f),
		inline: mdsyntax.NewInlineParser(f),
	}
}

// Flavor returns the configured Markdown flavor.
func (b *Bridge) Flavor() string {
	return b.flavor
}

// ParseMarkdown converts Markdown into a tree fragment.
func (b *Bridge) ParseMarkdown(markdown string) (frag Fragment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrConversion, r)
		}
	}()

	src := []byte(markdown)
	doc := mdsyntax.Parse(b.md.Parser(), src)

	container := dom.NewElement("div")
	newMapper(src).mapChildren(doc, container)
	dom.Normalize(container, dom.Caret{})

	if doc.ChildCount() == 1 {
		if _, ok := doc.FirstChild().(*ast.Paragraph); ok {
			return Fragment{Nodes: detachChildren(container.FirstChild), Inline: true}, nil
		}
	}
	if doc.ChildCount() == 0 {
		return Fragment{Inline: true}, nil
	}

	return Fragment{Nodes: detachChildren(container)}, nil
}

// ParseInline converts Markdown into inline nodes using the inline grammar
// only: block syntax is never recognised. Leading and trailing whitespace,
// which paragraphs would otherwise drop, is preserved.
func (b *Bridge) ParseInline(markdown string) (nodes []*html.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrConversion, r)
		}
	}()

	src := []byte(markdown)
	doc := mdsyntax.Parse(b.inline, src)

	container := dom.NewElement("span")
	m := newMapper(src)
	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		if container.FirstChild != nil {
			container.AppendChild(dom.NewText("\n"))
		}
		m.mapChildren(child, container)
	}

	restoreEdgeWhitespace(container, markdown)
	dom.Normalize(container, dom.Caret{})

	return detachChildren(container), nil
}

// restoreEdgeWhitespace re-adds the whitespace paragraph parsing strips
// from either end of the source.
func restoreEdgeWhitespace(container *html.Node, source string) {
	lead := source[:len(source)-len(strings.TrimLeft(source, " \t"))]
	trail := source[len(strings.TrimRight(source, " \t")):]
	if lead == source {
		trail = ""
	}

	content := dom.TextContent(container)
	if lead != "" && !strings.HasPrefix(content, lead) {
		container.InsertBefore(dom.NewText(lead), container.FirstChild)
	}
	if trail != "" && !strings.HasSuffix(content, trail) {
		container.AppendChild(dom.NewText(trail))
	}
}

func detachChildren(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	children := dom.Children(n)
	for _, c := range children {
		n.RemoveChild(c)
	}
	return children
}
