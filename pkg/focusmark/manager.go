// Package focusmark shows the raw Markdown delimiters of the formatted
// element under the caret as editable spans, and turns edits of those
// spans back into formatting changes.
//
// A Manager owns the focus state of one editing surface. At most one
// inline element (two marks) and one block element (one prefix mark) are
// active at a time.
package focusmark

import (
	"context"

	"golang.org/x/net/html"

	"github.com/yaklabco/mdlive/internal/logging"
	"github.com/yaklabco/mdlive/pkg/bridge"
	"github.com/yaklabco/mdlive/pkg/dom"
	"github.com/yaklabco/mdlive/pkg/pattern"
)

// Transformer re-runs pattern detection and transformation on a block.
// The transform orchestrator implements it.
type Transformer interface {
	Transform(ctx context.Context, block *html.Node, caret dom.Caret) (dom.Caret, bool)
}

// TransformerFunc adapts a function to Transformer.
type TransformerFunc func(ctx context.Context, block *html.Node, caret dom.Caret) (dom.Caret, bool)

// Transform calls f.
func (f TransformerFunc) Transform(ctx context.Context, block *html.Node, caret dom.Caret) (dom.Caret, bool) {
	return f(ctx, block, caret)
}

// Committer is told when a block mark edit changed the document. The
// editor passes the same history collaborator the transform orchestrator
// uses.
type Committer interface {
	Commit(ctx context.Context, reason string)
}

// ReasonBlockMark is the commit reason for a heading level, list marker
// or block demotion made through a block mark.
const ReasonBlockMark = "block-mark"

type nopCommitter struct{}

func (nopCommitter) Commit(context.Context, string) {}

// Option configures a Manager.
type Option func(*Manager)

// WithEnabled turns mark display on or off. A disabled manager never
// injects marks.
func WithEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithDetector sets the pattern detector used for breaking-delimiter and
// nested-pattern checks.
func WithDetector(d *pattern.Detector) Option {
	return func(m *Manager) {
		m.detector = d
	}
}

// WithCommitter sets the receiver of block mark commits.
func WithCommitter(c Committer) Option {
	return func(m *Manager) {
		m.committer = c
	}
}

// Manager is the focus-mark state machine of one editing surface.
type Manager struct {
	root        *html.Node
	bridge      *bridge.Bridge
	detector    *pattern.Detector
	transformer Transformer
	committer   Committer
	enabled     bool

	activeInline    *html.Node
	inlineDelimiter string
	openMark        *html.Node
	closeMark       *html.Node

	activeBlock    *html.Node
	blockDelimiter string
	blockMark      *html.Node

	skipNext bool
}

// New creates a manager for the surface rooted at root. transformer may be
// nil, in which case unwrapped elements are left as raw text.
func New(root *html.Node, b *bridge.Bridge, transformer Transformer, opts ...Option) *Manager {
	m := &Manager{
		root:        root,
		bridge:      b,
		transformer: transformer,
		committer:   nopCommitter{},
		enabled:     true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.detector == nil {
		m.detector = pattern.New(b.Flavor())
	}
	if m.transformer == nil {
		m.transformer = TransformerFunc(func(_ context.Context, _ *html.Node, caret dom.Caret) (dom.Caret, bool) {
			return caret, false
		})
	}
	return m
}

// ActiveInline returns the inline element showing marks, or nil.
func (m *Manager) ActiveInline() *html.Node { return m.activeInline }

// ActiveBlock returns the block element showing its prefix mark, or nil.
func (m *Manager) ActiveBlock() *html.Node { return m.activeBlock }

// InlineDelimiter returns the delimiter the inline marks should display.
func (m *Manager) InlineDelimiter() string { return m.inlineDelimiter }

// BlockDelimiter returns the prefix the block mark should display.
func (m *Manager) BlockDelimiter() string { return m.blockDelimiter }

// InlineMarks returns the opening and closing inline marks.
func (m *Manager) InlineMarks() (open, closing *html.Node) { return m.openMark, m.closeMark }

// BlockMark returns the block prefix mark.
func (m *Manager) BlockMark() *html.Node { return m.blockMark }

// SkipNext suppresses mark injection for the next Update, so a run that
// was just created shows no delimiters until the caret moves again.
func (m *Manager) SkipNext() { m.skipNext = true }

// Skipping reports whether the next Update is suppressed.
func (m *Manager) Skipping() bool { return m.skipNext }

// Update moves focus to the elements at caret: marks are ejected from
// elements that lost focus and injected into those that gained it.
func (m *Manager) Update(ctx context.Context, caret dom.Caret) dom.Caret {
	logger := logging.FromContext(ctx)

	m.checkLiveness()

	if m.skipNext {
		m.skipNext = false
		return caret
	}
	if !m.enabled || caret.IsZero() || !dom.IsConnected(caret.Node, m.root) {
		return m.Unfocus(caret)
	}

	inline := m.inlineTarget(caret)
	if inline != m.activeInline {
		caret = m.ejectInline(caret)
		if inline != nil {
			caret = m.injectInline(inline, caret)
			logger.Debug("inline focus", logging.FieldBlock, inline.Data, logging.FieldDelimiter, m.inlineDelimiter)
		}
	}

	block := m.blockTarget(caret)
	if block != m.activeBlock {
		caret = m.ejectBlock(caret)
		if block != nil {
			caret = m.injectBlock(block, caret)
			logger.Debug("block focus", logging.FieldBlock, block.Data, logging.FieldDelimiter, m.blockDelimiter)
		}
	}

	return m.sweep(caret)
}

// Unfocus ejects every mark and resets the state.
func (m *Manager) Unfocus(caret dom.Caret) dom.Caret {
	caret = m.ejectInline(caret)
	caret = m.ejectBlock(caret)
	return m.sweep(caret)
}

// checkLiveness drops references to elements or marks that are no longer
// attached to the surface.
func (m *Manager) checkLiveness() {
	if m.activeInline != nil {
		if !dom.IsConnected(m.activeInline, m.root) ||
			!dom.Contains(m.activeInline, m.openMark) || !dom.Contains(m.activeInline, m.closeMark) {
			m.resetInline()
		}
	}
	if m.activeBlock != nil {
		if !dom.IsConnected(m.activeBlock, m.root) || !dom.Contains(m.activeBlock, m.blockMark) {
			m.resetBlock()
		}
	}
}

func (m *Manager) resetInline() {
	m.activeInline = nil
	m.inlineDelimiter = ""
	m.openMark = nil
	m.closeMark = nil
}

func (m *Manager) resetBlock() {
	m.activeBlock = nil
	m.blockDelimiter = ""
	m.blockMark = nil
}

// inlineTarget finds the inline element to focus: a formatted sibling the
// caret touches at a text edge, else the nearest formatted ancestor.
func (m *Manager) inlineTarget(caret dom.Caret) *html.Node {
	node := caret.Node

	var adjacent *html.Node
	if caret.InText() {
		if caret.Offset == 0 {
			adjacent = edgeElement(node.PrevSibling, false)
		}
		if adjacent == nil && caret.Offset == len(node.Data) {
			adjacent = edgeElement(node.NextSibling, true)
		}
	} else {
		adjacent = edgeElement(dom.ChildAt(node, caret.Offset-1), false)
		if adjacent == nil {
			adjacent = edgeElement(dom.ChildAt(node, caret.Offset), true)
		}
	}
	if adjacent != nil {
		return adjacent
	}

	for cur := node; cur != nil && cur != m.root; cur = cur.Parent {
		class := dom.Classify(cur)
		if class.IsBlock() {
			break
		}
		if class.HasInlineMarks() {
			return cur
		}
	}
	return nil
}

// edgeElement returns n when it shows inline marks, descending into nested
// formatted elements on the touched side so the innermost one wins.
func edgeElement(n *html.Node, fromStart bool) *html.Node {
	if !dom.Classify(n).HasInlineMarks() {
		return nil
	}
	for {
		child := edgeContentChild(n, fromStart)
		if child == nil || !dom.Classify(child).HasInlineMarks() {
			return n
		}
		n = child
	}
}

func edgeContentChild(n *html.Node, fromStart bool) *html.Node {
	if fromStart {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !dom.IsFocusMark(c) {
				return c
			}
		}
		return nil
	}
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if !dom.IsFocusMark(c) {
			return c
		}
	}
	return nil
}

func (m *Manager) blockTarget(caret dom.Caret) *html.Node {
	block := dom.BlockAt(m.root, caret)
	if block == nil || !dom.Classify(block).HasBlockMark() {
		return nil
	}
	return block
}

// injectInline shows the delimiters of el. Boundary marks already present
// (cloned across a reconciliation) are adopted instead of duplicated.
func (m *Manager) injectInline(el *html.Node, caret dom.Caret) dom.Caret {
	open, closing, ok := m.deriveInline(el)
	if !ok {
		return caret
	}

	openMark, closeMark := dom.BoundaryMarks(el)
	if openMark == nil {
		openMark = dom.NewFocusMark(open)
		caret = dom.Insert(el, openMark, 0, caret, true)
	} else if dom.MarkText(openMark) != open {
		dom.SetMarkText(openMark, open)
	}
	if closeMark == nil {
		closeMark = dom.NewFocusMark(closing)
		caret = dom.Insert(el, closeMark, dom.ChildCount(el), caret, false)
	} else if dom.MarkText(closeMark) != closing {
		dom.SetMarkText(closeMark, closing)
	}

	m.activeInline = el
	m.inlineDelimiter = open
	m.openMark = openMark
	m.closeMark = closeMark
	return caret
}

// injectBlock shows the prefix of a heading or list item.
func (m *Manager) injectBlock(el *html.Node, caret dom.Caret) dom.Caret {
	prefix, ok := m.deriveBlock(el)
	if !ok {
		return caret
	}

	mark := el.FirstChild
	if !dom.IsFocusMark(mark) {
		mark = dom.NewFocusMark(prefix)
		caret = dom.Insert(el, mark, 0, caret, true)
	} else if dom.MarkText(mark) != prefix {
		dom.SetMarkText(mark, prefix)
	}

	m.activeBlock = el
	m.blockDelimiter = prefix
	m.blockMark = mark
	return caret
}

func (m *Manager) ejectInline(caret dom.Caret) dom.Caret {
	el := m.activeInline
	for _, mark := range []*html.Node{m.openMark, m.closeMark} {
		if mark != nil && mark.Parent != nil {
			caret = dom.Remove(mark, caret)
		}
	}
	if el != nil && el.Parent != nil {
		caret = dom.Normalize(el, caret)
	}
	m.resetInline()
	return caret
}

func (m *Manager) ejectBlock(caret dom.Caret) dom.Caret {
	el := m.activeBlock
	if m.blockMark != nil && m.blockMark.Parent != nil {
		caret = dom.Remove(m.blockMark, caret)
	}
	if el != nil && el.Parent != nil {
		caret = dom.Normalize(el, caret)
	}
	m.resetBlock()
	return caret
}

// sweep removes marks the manager does not own, such as clones left on an
// element that did not end up focused.
func (m *Manager) sweep(caret dom.Caret) dom.Caret {
	for _, mark := range dom.FocusMarks(m.root) {
		if mark == m.openMark || mark == m.closeMark || mark == m.blockMark {
			continue
		}
		parent := mark.Parent
		caret = dom.Remove(mark, caret)
		caret = dom.Normalize(parent, caret)
	}
	return caret
}
