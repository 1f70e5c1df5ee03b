package focusmark

import (
	"context"
	"strconv"

	"golang.org/x/net/html"

	"github.com/yaklabco/mdlive/internal/logging"
	"github.com/yaklabco/mdlive/pkg/bridge"
	"github.com/yaklabco/mdlive/pkg/dom"
	"github.com/yaklabco/mdlive/pkg/pattern"
	"github.com/yaklabco/mdlive/pkg/reconcile"
)

// edge is a caret position touching one of the inline marks.
type edge struct {
	mark    *html.Node
	opening bool

	// outer is true on the side of the mark facing away from the content.
	outer bool
}

// before reports whether typed text lands in front of the mark's text.
func (e edge) before() bool {
	return e.opening == e.outer
}

// BeforeInput runs before the host inserts text at caret. When the caret
// touches an inline mark, a delimiter character that extends the mark to
// another supported delimiter rewrites both marks and reparses; anything
// else is inserted as content on the caret's side of the mark. Text typed
// at the inner edge of a block mark goes into the block's content.
//
// It returns true when the input was consumed and the host must not
// insert it.
func (m *Manager) BeforeInput(ctx context.Context, caret dom.Caret, text string) (dom.Caret, bool) {
	if !m.enabled || text == "" || caret.IsZero() {
		return caret, false
	}
	m.checkLiveness()

	if e, ok := m.inlineEdge(caret); ok {
		return m.interceptInline(ctx, e, caret, text), true
	}

	if m.blockMark != nil && caret.InText() && caret.Node.Parent == m.blockMark &&
		caret.Offset == len(caret.Node.Data) {
		return insertAfter(m.blockMark, text), true
	}
	return caret, false
}

func (m *Manager) interceptInline(ctx context.Context, e edge, caret dom.Caret, text string) dom.Caret {
	current := dom.MarkText(e.mark)
	candidate := current + text
	if e.before() {
		candidate = text + current
	}

	if delimiterCharPattern.MatchString(text) && IsInlineDelimiter(candidate) {
		logging.FromContext(ctx).Debug("mark extended",
			logging.FieldDelimiter, candidate, logging.FieldInput, text)

		dom.SetMarkText(m.openMark, candidate)
		dom.SetMarkText(m.closeMark, candidate)
		offset := len(candidate)
		if e.before() {
			offset = len(text)
		}
		caret = dom.At(e.mark.FirstChild, offset)
		return m.unwrapAndReparse(ctx, caret)
	}

	el := m.activeInline
	switch {
	case e.opening && e.outer:
		return insertBefore(el, text)
	case e.opening:
		return insertAfter(m.openMark, text)
	case e.outer:
		return insertAfter(el, text)
	default:
		return insertBefore(m.closeMark, text)
	}
}

// inlineEdge classifies caret against the active inline marks.
func (m *Manager) inlineEdge(caret dom.Caret) (edge, bool) {
	el := m.activeInline
	if el == nil {
		return edge{}, false
	}
	open, closing := m.openMark, m.closeMark
	n, off := caret.Node, caret.Offset

	if caret.InText() {
		switch {
		case n.Parent == open && off == 0:
			return edge{mark: open, opening: true, outer: true}, true
		case n.Parent == open && off == len(n.Data):
			return edge{mark: open, opening: true}, true
		case n.Parent == closing && off == 0:
			return edge{mark: closing}, true
		case n.Parent == closing && off == len(n.Data):
			return edge{mark: closing, outer: true}, true
		case off == 0 && n.PrevSibling == open:
			return edge{mark: open, opening: true}, true
		case off == len(n.Data) && n.NextSibling == closing:
			return edge{mark: closing}, true
		case off == len(n.Data) && n.NextSibling == el:
			return edge{mark: open, opening: true, outer: true}, true
		case off == 0 && n.PrevSibling == el:
			return edge{mark: closing, outer: true}, true
		}
		return edge{}, false
	}

	switch n {
	case el:
		switch off {
		case 0:
			return edge{mark: open, opening: true, outer: true}, true
		case 1:
			return edge{mark: open, opening: true}, true
		case dom.IndexOf(closing):
			return edge{mark: closing}, true
		case dom.ChildCount(el):
			return edge{mark: closing, outer: true}, true
		}
	case el.Parent:
		switch off {
		case dom.IndexOf(el):
			return edge{mark: open, opening: true, outer: true}, true
		case dom.IndexOf(el) + 1:
			return edge{mark: closing, outer: true}, true
		}
	}
	return edge{}, false
}

// AfterInput runs after the host changed the content. It keeps the inline
// marks mirrored, unwraps and reparses elements whose marks or content no
// longer describe them, creates nested formatting typed inside the active
// element, and applies edits of the block prefix mark.
//
// It returns true when it changed the structure.
func (m *Manager) AfterInput(ctx context.Context, caret dom.Caret) (dom.Caret, bool) {
	if !m.enabled {
		return caret, false
	}
	if m.activeInline != nil {
		if next, handled := m.afterInline(ctx, caret); handled {
			return next, true
		}
	}
	if m.activeBlock != nil {
		if next, handled := m.afterBlock(ctx, caret); handled {
			return next, true
		}
	}
	return caret, false
}

func (m *Manager) afterInline(ctx context.Context, caret dom.Caret) (dom.Caret, bool) {
	el := m.activeInline
	if !dom.IsConnected(el, m.root) {
		m.resetInline()
		return caret, false
	}
	if !dom.Contains(el, m.openMark) || !dom.Contains(el, m.closeMark) {
		return m.unwrapAndReparse(ctx, caret), true
	}

	openText, closeText := dom.MarkText(m.openMark), dom.MarkText(m.closeMark)
	stored := m.inlineDelimiter

	if openText != closeText {
		switch {
		case closeText == stored && IsInlineDelimiter(openText):
			dom.SetMarkText(m.closeMark, openText)
		case openText == stored && IsInlineDelimiter(closeText):
			dom.SetMarkText(m.openMark, closeText)
		}
		return m.unwrapAndReparse(ctx, caret), true
	}
	if openText != stored {
		return m.unwrapAndReparse(ctx, caret), true
	}

	content := dom.PatternText(dom.Children(el)...)
	raw := openText + content + closeText
	if whole := m.detector.DetectInline(raw); whole == nil || whole.Start != 0 || whole.End != len(raw) {
		return m.unwrapAndReparse(ctx, caret), true
	}

	if dom.KindOf(el) == dom.KindCode {
		return caret, false
	}
	if nested := m.detector.DetectInline(content); nested != nil {
		return m.createNested(ctx, el, nested, caret), true
	}
	return caret, false
}

// unwrapAndReparse turns the active inline element back into raw text,
// marks included, and re-runs the transform on its block.
func (m *Manager) unwrapAndReparse(ctx context.Context, caret dom.Caret) dom.Caret {
	el := m.activeInline
	block := dom.Block(m.root, el)

	for _, mark := range []*html.Node{m.openMark, m.closeMark} {
		if mark != nil && dom.Contains(el, mark) {
			caret = dom.Unwrap(mark, caret)
		}
	}
	caret = dom.Unwrap(el, caret)
	m.resetInline()

	if block == nil {
		return caret
	}
	caret = dom.Normalize(block, caret)

	logging.FromContext(ctx).Debug("unwrapped for reparse",
		logging.FieldBlock, block.Data,
		logging.FieldInput, dom.ContentText(block))

	caret, _ = m.transformer.Transform(ctx, block, caret)
	return caret
}

// createNested formats a pattern typed inside the active element. The
// element's marks are detached while its content is reparsed and put
// back at the same boundaries afterwards.
func (m *Manager) createNested(ctx context.Context, el *html.Node, match *pattern.Match, caret dom.Caret) dom.Caret {
	open, closing := m.openMark, m.closeMark
	caret = dom.Remove(open, caret)
	caret = dom.Remove(closing, caret)

	reattach := func(caret dom.Caret) dom.Caret {
		caret = dom.Insert(el, open, 0, caret, true)
		return dom.Insert(el, closing, dom.ChildCount(el), caret, false)
	}

	md, err := m.bridge.SerializeInline(dom.Children(el)...)
	if err != nil {
		logging.FromContext(ctx).Debug("nested serialize failed", logging.FieldError, err)
		return reattach(caret)
	}
	next, err := m.bridge.ParseInline(md)
	if err != nil {
		logging.FromContext(ctx).Debug("nested parse failed", logging.FieldError, err)
		return reattach(caret)
	}

	res := reconcile.Reconcile(ctx, el, next, caret, match)
	logging.FromContext(ctx).Debug("nested pattern created",
		logging.FieldPattern, match.Name,
		logging.FieldStart, match.Start,
		logging.FieldEnd, match.End)
	return reattach(res.Caret)
}

func (m *Manager) afterBlock(ctx context.Context, caret dom.Caret) (dom.Caret, bool) {
	el := m.activeBlock
	if !dom.IsConnected(el, m.root) {
		m.resetBlock()
		return caret, false
	}
	mark := m.blockMark
	if !dom.Contains(el, mark) {
		return m.demote(ctx, el, nil, caret), true
	}

	text := dom.MarkText(mark)
	if text == m.blockDelimiter {
		return caret, false
	}
	level, ok := validBlockMark(el, text)
	if !ok {
		return m.demote(ctx, el, mark, caret), true
	}

	if dom.KindOf(el) == dom.KindHeading {
		if level != dom.Classify(el).Level {
			el, caret = dom.Rename(el, "h"+strconv.Itoa(level), caret)
			m.activeBlock = el
			logging.FromContext(ctx).Debug("heading level changed", logging.FieldDelimiter, text)
			m.committer.Commit(ctx, ReasonBlockMark)
		}
		m.blockDelimiter = text
		return caret, true
	}

	list := el.Parent
	before := dom.ShallowClone(list)
	setListMarker(el, text)
	m.blockDelimiter = text
	if !dom.Equal(before, dom.ShallowClone(list)) {
		logging.FromContext(ctx).Debug("list marker changed", logging.FieldDelimiter, text)
		m.committer.Commit(ctx, ReasonBlockMark)
	}
	return caret, true
}

// setListMarker records an edited list prefix on the item's list.
func setListMarker(item *html.Node, prefix string) {
	list := item.Parent
	if sub := bulletMarkPattern.FindStringSubmatch(prefix); sub != nil {
		dom.SetAttr(list, bridge.AttrMarker, sub[1])
		return
	}
	sub := orderedMarkPattern.FindStringSubmatch(prefix)
	if sub == nil {
		return
	}
	dom.SetAttr(list, bridge.AttrMarker, sub[2])
	if dom.IndexOf(item) != firstItemIndex(list) {
		return
	}
	if sub[1] == "1" {
		dom.RemoveAttr(list, "start")
	} else if n, err := strconv.Atoi(sub[1]); err == nil {
		dom.SetAttr(list, "start", strconv.Itoa(n))
	}
}

func firstItemIndex(list *html.Node) int {
	i := 0
	for c := list.FirstChild; c != nil; c = c.NextSibling {
		if dom.KindOf(c) == dom.KindListItem {
			return i
		}
		i++
	}
	return -1
}

// demote turns a heading or list item whose prefix mark became invalid
// into a paragraph. The mark's text stays as literal leading text and the
// paragraph is handed back to the transformer.
func (m *Manager) demote(ctx context.Context, el, mark *html.Node, caret dom.Caret) dom.Caret {
	if mark != nil {
		caret = dom.Unwrap(mark, caret)
	}
	m.resetBlock()

	var p *html.Node
	if dom.KindOf(el) == dom.KindListItem {
		p, caret = liftItem(el, caret)
	} else {
		p, caret = dom.Rename(el, "p", caret)
	}
	caret = dom.Normalize(p, caret)

	if m.activeInline != nil && !dom.IsConnected(m.activeInline, m.root) {
		m.resetInline()
	}

	logging.FromContext(ctx).Debug("block demoted", logging.FieldBlock, el.Data)
	m.committer.Commit(ctx, ReasonBlockMark)
	caret, _ = m.transformer.Transform(ctx, p, caret)
	return caret
}

func insertBefore(ref *html.Node, text string) dom.Caret {
	if prev := ref.PrevSibling; prev != nil && prev.Type == html.TextNode {
		prev.Data += text
		return dom.At(prev, len(prev.Data))
	}
	t := dom.NewText(text)
	ref.Parent.InsertBefore(t, ref)
	return dom.At(t, len(text))
}

func insertAfter(ref *html.Node, text string) dom.Caret {
	if next := ref.NextSibling; next != nil && next.Type == html.TextNode {
		next.Data = text + next.Data
		return dom.At(next, len(text))
	}
	t := dom.NewText(text)
	ref.Parent.InsertBefore(t, ref.NextSibling)
	return dom.At(t, len(text))
}
