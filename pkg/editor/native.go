package editor

import (
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/yaklabco/mdlive/pkg/dom"
)

// insertText performs the host's native insertion of text at caret.
func (e *Editor) insertText(caret dom.Caret, text string) dom.Caret {
	if caret.InText() {
		n := caret.Node
		n.Data = n.Data[:caret.Offset] + text + n.Data[caret.Offset:]
		return dom.At(n, caret.Offset+len(text))
	}

	parent := caret.Node
	if !acceptsText(parent) {
		block := dom.BlockAt(e.root, caret)
		if block == nil {
			block = dom.NewElement("p")
			e.root.AppendChild(block)
		}
		end := dom.EndOf(block)
		if end.InText() || acceptsText(end.Node) {
			return e.insertText(end, text)
		}
		parent = block
		caret = dom.At(block, dom.ChildCount(block))
	}

	if prev := dom.ChildAt(parent, caret.Offset-1); prev != nil && prev.Type == html.TextNode {
		prev.Data += text
		return dom.At(prev, len(prev.Data))
	}
	if next := dom.ChildAt(parent, caret.Offset); next != nil && next.Type == html.TextNode {
		next.Data = text + next.Data
		return dom.At(next, len(text))
	}
	t := dom.NewText(text)
	dom.InsertAt(parent, t, caret.Offset)
	return dom.At(t, len(text))
}

// acceptsText reports whether text may be a direct child of n.
func acceptsText(n *html.Node) bool {
	class := dom.Classify(n)
	switch {
	case class.IsEditableBlock():
		return class.Kind != dom.KindCodeBlock
	case class.Kind == dom.KindFocusMark:
		return true
	default:
		return !class.IsBlock() && class.Kind != dom.KindRoot && dom.CanHoldCaret(n)
	}
}

// deleteBefore removes the character before caret, staying inside the
// caret's block. It reports false when there is nothing to delete.
func (e *Editor) deleteBefore(caret dom.Caret) (dom.Caret, bool) {
	var target *html.Node
	end := 0

	if caret.InText() && caret.Offset > 0 {
		target, end = caret.Node, caret.Offset
	} else {
		block := dom.BlockAt(e.root, caret)
		if block == nil {
			return caret, false
		}
		target = textBefore(block, caret)
		if target == nil {
			return caret, false
		}
		end = len(target.Data)
	}

	_, size := utf8.DecodeLastRuneInString(target.Data[:end])
	target.Data = target.Data[:end-size] + target.Data[end:]
	return dom.At(target, end-size), true
}

// textBefore returns the last non-empty text node under block that
// precedes caret in document order, focus-mark text included. A caret on
// an ancestor of block lies after all of it.
func textBefore(block *html.Node, caret dom.Caret) *html.Node {
	var stopAt, stopAfter *html.Node
	switch {
	case !dom.Contains(block, caret.Node):
	case caret.InText():
		stopAt = caret.Node
	case dom.ChildAt(caret.Node, caret.Offset) != nil:
		stopAt = dom.ChildAt(caret.Node, caret.Offset)
	default:
		stopAfter = caret.Node
	}

	var last *html.Node
	done := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == stopAt {
			done = true
			return
		}
		if n.Type == html.TextNode && n.Data != "" {
			last = n
		}
		for c := n.FirstChild; c != nil && !done; c = c.NextSibling {
			walk(c)
		}
		if n == stopAfter {
			done = true
		}
	}
	walk(block)
	return last
}
