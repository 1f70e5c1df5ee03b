package focusmark

import (
	"strconv"

	"golang.org/x/net/html"

	"github.com/yaklabco/mdlive/pkg/dom"
)

// liftItem moves a list item out of its list as a paragraph. The list is
// split around it; nested blocks of the item follow the paragraph. Child
// instances are moved, not copied, so carets inside them stay valid.
func liftItem(item *html.Node, caret dom.Caret) (*html.Node, dom.Caret) {
	list := item.Parent
	p := dom.NewElement("p")

	var tail *html.Node
	if following := followingItems(item); len(following) > 0 {
		tail = dom.ShallowClone(list)
		if dom.Classify(list).Ordered {
			dom.SetAttr(tail, "start", strconv.Itoa(ordinal(following[0])))
		}
		for _, li := range following {
			list.RemoveChild(li)
			tail.AppendChild(li)
		}
	}

	if caret.Node == item {
		caret.Node = p
	}
	var blocks []*html.Node
	for c := item.FirstChild; c != nil; {
		next := c.NextSibling
		item.RemoveChild(c)
		if dom.Classify(c).IsBlock() {
			blocks = append(blocks, c)
		} else {
			p.AppendChild(c)
		}
		c = next
	}

	parent := list.Parent
	anchor := list.NextSibling
	parent.InsertBefore(p, anchor)
	for _, b := range blocks {
		parent.InsertBefore(b, anchor)
	}
	if tail != nil {
		parent.InsertBefore(tail, anchor)
	}

	list.RemoveChild(item)
	if dom.ChildCount(list) == 0 {
		caret = dom.Remove(list, caret)
	}
	return p, caret
}

func followingItems(item *html.Node) []*html.Node {
	var out []*html.Node
	for c := item.NextSibling; c != nil; c = c.NextSibling {
		if dom.KindOf(c) == dom.KindListItem {
			out = append(out, c)
		}
	}
	return out
}
