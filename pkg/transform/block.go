package transform

import (
	"context"

	"golang.org/x/net/html"

	"github.com/yaklabco/mdlive/internal/logging"
	"github.com/yaklabco/mdlive/pkg/dom"
	"github.com/yaklabco/mdlive/pkg/pattern"
)

// transformBlock converts a block whose text starts with a block prefix.
// A paragraph is replaced by the new blocks; a list item keeps its place
// and receives them as content, except that a nested list typed into an
// empty item attaches to the previous item when that one has content.
func (o *Orchestrator) transformBlock(ctx context.Context, block *html.Node, bm pattern.BlockMatch, caret dom.Caret) (dom.Caret, Outcome) {
	logger := logging.FromContext(ctx)

	md, err := o.bridge.SerializeInline(dom.InlineChildren(block)...)
	if err != nil {
		logger.Warn("serialize failed", logging.FieldError, err, logging.FieldBlock, block.Data)
		return caret, OutcomeFailed
	}
	frag, err := o.bridge.ParseMarkdown(md)
	if err != nil {
		logger.Warn("parse failed", logging.FieldError, err, logging.FieldInput, md)
		return caret, OutcomeFailed
	}
	if frag.Inline || len(frag.Nodes) == 0 {
		// The prefix alone is not a block here, e.g. a lone table row.
		return caret, OutcomeNone
	}
	nodes := editable(frag.Nodes)

	dom.StripFocusMarks(block, dom.Caret{})

	if dom.KindOf(block) == dom.KindListItem {
		return o.fillItem(block, bm, nodes), OutcomeBlock
	}

	parent := block.Parent
	for _, n := range nodes {
		parent.InsertBefore(n, block)
	}
	parent.RemoveChild(block)
	return dom.EndOf(nodes[len(nodes)-1]), OutcomeBlock
}

// fillItem replaces the inline content of a list item with nodes.
func (o *Orchestrator) fillItem(item *html.Node, bm pattern.BlockMatch, nodes []*html.Node) dom.Caret {
	if bm.Kind.StartsList() && len(nodes) == 1 {
		if prev := previousItem(item); prev != nil && !dom.IsBlank(prev) {
			prev.AppendChild(nodes[0])
			item.Parent.RemoveChild(item)
			return dom.EndOf(nodes[0])
		}
	}

	var anchor *html.Node
	for _, c := range dom.InlineChildren(item) {
		anchor = c.NextSibling
		item.RemoveChild(c)
	}
	if anchor == nil {
		anchor = item.FirstChild
	}
	for _, n := range nodes {
		item.InsertBefore(n, anchor)
	}
	return dom.EndOf(nodes[len(nodes)-1])
}

func previousItem(item *html.Node) *html.Node {
	for c := item.PrevSibling; c != nil; c = c.PrevSibling {
		if dom.KindOf(c) == dom.KindListItem {
			return c
		}
	}
	return nil
}

// editable makes sure the caret has somewhere to go in new blocks: an empty
// quote gets a paragraph, and a trailing rule is followed by one.
func editable(nodes []*html.Node) []*html.Node {
	for _, n := range nodes {
		if dom.KindOf(n) == dom.KindBlockquote && n.FirstChild == nil {
			n.AppendChild(dom.NewElement("p"))
		}
	}
	if last := nodes[len(nodes)-1]; !dom.CanHoldCaret(last) {
		nodes = append(nodes, dom.NewElement("p"))
	}
	return nodes
}
