package dom

import (
	"golang.org/x/net/html"
)

// Remove detaches n and returns caret re-addressed so it stays attached:
// a caret inside n collapses to the position n occupied.
func Remove(n *html.Node, caret Caret) Caret {
	parent := n.Parent
	if parent == nil {
		return caret
	}
	idx := IndexOf(n)

	switch {
	case caret.Node != nil && Contains(n, caret.Node):
		caret = Caret{Node: parent, Offset: idx}
	case caret.Node == parent && caret.Offset > idx:
		caret.Offset--
	}

	parent.RemoveChild(n)
	return caret
}

// Insert places child at index i of parent. An element caret on parent at
// or after i shifts right when stickAfter is set, or when it is strictly
// after i.
func Insert(parent, child *html.Node, i int, caret Caret, stickAfter bool) Caret {
	InsertAt(parent, child, i)
	if caret.Node == parent && (caret.Offset > i || (stickAfter && caret.Offset == i)) {
		caret.Offset++
	}
	return caret
}

// Unwrap replaces el with its children, keeping the child instances.
func Unwrap(el *html.Node, caret Caret) Caret {
	parent := el.Parent
	if parent == nil {
		return caret
	}
	idx := IndexOf(el)
	count := ChildCount(el)

	switch {
	case caret.Node == el:
		caret = Caret{Node: parent, Offset: idx + caret.Offset}
	case caret.Node == parent && caret.Offset > idx:
		caret.Offset += count - 1
	}

	for c := el.FirstChild; c != nil; {
		next := c.NextSibling
		el.RemoveChild(c)
		parent.InsertBefore(c, el)
		c = next
	}
	parent.RemoveChild(el)
	return caret
}

// Rename replaces el by a new element with tag, moving every child
// instance across. Attributes are not carried over.
func Rename(el *html.Node, tag string, caret Caret) (*html.Node, Caret) {
	replacement := NewElement(tag)
	for c := el.FirstChild; c != nil; {
		next := c.NextSibling
		el.RemoveChild(c)
		replacement.AppendChild(c)
		c = next
	}
	if caret.Node == el {
		caret.Node = replacement
	}
	ReplaceNode(el, replacement)
	return replacement, caret
}

// Normalize merges adjacent text nodes and drops empty ones under n,
// returning caret re-addressed to the merged nodes.
func Normalize(n *html.Node, caret Caret) Caret {
	if n == nil || n.Type != html.ElementNode {
		return caret
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling

		if c.Type != html.TextNode {
			caret = Normalize(c, caret)
			c = next
			continue
		}

		// Merge following text siblings into c.
		for next != nil && next.Type == html.TextNode {
			switch {
			case caret.Node == next:
				caret = Caret{Node: c, Offset: len(c.Data) + caret.Offset}
			case caret.Node == n:
				ci := IndexOf(c)
				if caret.Offset == ci+1 {
					caret = Caret{Node: c, Offset: len(c.Data)}
				} else if caret.Offset > ci+1 {
					caret.Offset--
				}
			}
			c.Data += next.Data
			after := next.NextSibling
			n.RemoveChild(next)
			next = after
		}

		// Empty text nodes are dropped unless they are the only child, so an
		// emptied mark or block still has a node for the caret to sit in.
		if c.Data == "" && !(n.FirstChild == c && n.LastChild == c) {
			caret = Remove(c, caret)
		}

		c = next
	}
	return caret
}
