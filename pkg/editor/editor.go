// Package editor wires the live-editing engine into a single editing
// surface: a document tree, a caret, a focus-mark manager and a transform
// orchestrator. It plays the host's part for headless use, performing the
// native text insertion and deletion a browser would and routing every
// keystroke through the engine hooks in order.
package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html"

	"github.com/yaklabco/mdlive/internal/logging"
	"github.com/yaklabco/mdlive/pkg/bridge"
	"github.com/yaklabco/mdlive/pkg/config"
	"github.com/yaklabco/mdlive/pkg/dom"
	"github.com/yaklabco/mdlive/pkg/focusmark"
	"github.com/yaklabco/mdlive/pkg/pattern"
	"github.com/yaklabco/mdlive/pkg/transform"
)

var (
	// ErrNoCaret is returned by input operations when no caret is placed.
	ErrNoCaret = errors.New("no caret")

	// ErrCaretOutside is returned when a caret does not address the surface.
	ErrCaretOutside = errors.New("caret outside the editing surface")

	// ErrBlockIndex is returned by Place for a block index out of range.
	ErrBlockIndex = errors.New("block index out of range")

	// ErrUnknownFlavor is returned by New for an unsupported flavor.
	ErrUnknownFlavor = errors.New("unknown markdown flavor")
)

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger attached to every operation's context.
func WithLogger(logger *log.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithCommitter sets the receiver of committable document states.
func WithCommitter(c transform.Committer) Option {
	return func(e *Editor) {
		e.committer = c
	}
}

// Editor is one editing surface.
type Editor struct {
	cfg       *config.Config
	logger    *log.Logger
	committer transform.Committer

	root       *html.Node
	bridge     *bridge.Bridge
	marks      *focusmark.Manager
	transforms *transform.Orchestrator
	caret      dom.Caret
}

// New creates an empty editing surface. A nil cfg uses the defaults.
func New(cfg *config.Config, opts ...Option) (*Editor, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	switch cfg.Flavor {
	case "", config.FlavorCommonMark, config.FlavorGFM:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFlavor, cfg.Flavor)
	}

	e := &Editor{
		cfg:       cfg,
		committer: transform.NopCommitter{},
		root:      dom.NewRoot(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.bridge = bridge.New(string(cfg.Flavor))
	detector := pattern.New(e.bridge.Flavor())
	e.transforms = transform.New(e.root, e.bridge,
		transform.WithDetector(detector),
		transform.WithCommitter(e.committer))
	e.marks = focusmark.New(e.root, e.bridge, e.transforms,
		focusmark.WithDetector(detector),
		focusmark.WithCommitter(e.committer),
		focusmark.WithEnabled(cfg.FocusMarksEnabled()))
	if cfg.SuppressAfterTransform() {
		e.transforms.SetSuppressor(e.marks)
	}

	e.reset(nil)
	return e, nil
}

// context attaches the editor's logger, if any, to ctx.
func (e *Editor) context(ctx context.Context) context.Context {
	if e.logger != nil {
		return logging.WithLogger(ctx, e.logger)
	}
	return ctx
}

// Load replaces the document with the parsed markdown. The caret is
// cleared.
func (e *Editor) Load(ctx context.Context, markdown string) error {
	ctx = e.context(ctx)

	frag, err := e.bridge.ParseMarkdown(markdown)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	nodes := frag.Nodes
	if frag.Inline {
		p := dom.NewElement("p")
		for _, n := range nodes {
			p.AppendChild(n)
		}
		if p.FirstChild == nil {
			p.AppendChild(dom.NewText(""))
		}
		nodes = []*html.Node{p}
	}
	e.reset(nodes)

	logging.FromContext(ctx).Debug("document loaded",
		logging.FieldFlavor, e.bridge.Flavor(),
		logging.FieldInput, len(markdown))
	return nil
}

// reset swaps the surface content for nodes and clears focus state. An
// empty document gets one empty paragraph so there is a place to type.
func (e *Editor) reset(nodes []*html.Node) {
	e.marks.Unfocus(dom.Caret{})
	for c := e.root.FirstChild; c != nil; c = e.root.FirstChild {
		e.root.RemoveChild(c)
	}
	for _, n := range nodes {
		e.root.AppendChild(n)
	}
	if e.root.FirstChild == nil {
		p := dom.NewElement("p")
		p.AppendChild(dom.NewText(""))
		e.root.AppendChild(p)
	}
	e.caret = dom.Caret{}
}

// Root returns the surface root. Callers must not keep references across
// edits; nodes are replaced by transforms.
func (e *Editor) Root() *html.Node { return e.root }

// Caret returns the current caret.
func (e *Editor) Caret() dom.Caret { return e.caret }

// Marks returns the focus-mark manager of the surface.
func (e *Editor) Marks() *focusmark.Manager { return e.marks }

// Blocks returns the editable blocks of the document in order.
func (e *Editor) Blocks() []*html.Node {
	var out []*html.Node
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if dom.Classify(c).IsEditableBlock() {
				out = append(out, c)
			}
			visit(c)
		}
	}
	visit(e.root)
	return out
}

// SetCaret moves the caret and updates focus marks, as a selection change
// in the host would.
func (e *Editor) SetCaret(ctx context.Context, caret dom.Caret) error {
	if caret.IsZero() || !dom.IsConnected(caret.Node, e.root) {
		return ErrCaretOutside
	}
	e.caret = e.marks.Update(e.context(ctx), caret)
	return nil
}

// Place puts the caret at a content offset of the blockIndex-th editable
// block. Focus-mark text does not count towards offset.
func (e *Editor) Place(ctx context.Context, blockIndex, offset int) error {
	blocks := e.Blocks()
	if blockIndex < 0 || blockIndex >= len(blocks) {
		return fmt.Errorf("%w: %d of %d", ErrBlockIndex, blockIndex, len(blocks))
	}
	return e.SetCaret(ctx, dom.Resolve(blocks[blockIndex], offset, dom.Backward, true))
}

// CaretPosition reports the caret as Place would take it: the index of its
// editable block and the content offset within it. ok is false when no
// caret is placed.
func (e *Editor) CaretPosition() (blockIndex, offset int, ok bool) {
	if e.caret.IsZero() {
		return 0, 0, false
	}
	block := dom.BlockAt(e.root, e.caret)
	for i, b := range e.Blocks() {
		if b != block {
			continue
		}
		offset, inside := dom.ContentOffset(b, e.caret, true)
		if !inside {
			offset = len(dom.ContentText(b))
		}
		return i, offset, true
	}
	return 0, 0, false
}

// Blur removes every focus mark and clears the caret.
func (e *Editor) Blur(ctx context.Context) {
	e.marks.Unfocus(e.caret)
	e.caret = dom.Caret{}
	logging.FromContext(e.context(ctx)).Debug("blurred")
}

// Type sends text one keystroke per rune.
func (e *Editor) Type(ctx context.Context, text string) error {
	for _, r := range text {
		if err := e.Insert(ctx, string(r)); err != nil {
			return err
		}
	}
	return nil
}

// Insert handles one input event inserting text at the caret.
func (e *Editor) Insert(ctx context.Context, text string) error {
	if e.caret.IsZero() {
		return ErrNoCaret
	}
	ctx = e.context(ctx)

	caret, consumed := e.marks.BeforeInput(ctx, e.caret, text)
	if !consumed {
		caret = e.insertText(caret, text)
	}
	e.settle(ctx, caret)
	return nil
}

// DeleteBackward handles one backspace. At the start of a block it does
// nothing.
func (e *Editor) DeleteBackward(ctx context.Context) error {
	if e.caret.IsZero() {
		return ErrNoCaret
	}
	ctx = e.context(ctx)

	caret, ok := e.deleteBefore(e.caret)
	if !ok {
		return nil
	}
	e.settle(ctx, caret)
	return nil
}

// NewParagraph appends an empty paragraph after the top-level block
// holding the caret and moves the caret into it.
func (e *Editor) NewParagraph(ctx context.Context) error {
	if e.caret.IsZero() {
		return ErrNoCaret
	}
	caret := e.marks.Unfocus(e.caret)

	top := caret.Node
	for top != nil && top.Parent != e.root {
		top = top.Parent
	}
	if caret.Node == e.root {
		top = dom.ChildAt(e.root, caret.Offset-1)
	}

	p := dom.NewElement("p")
	text := dom.NewText("")
	p.AppendChild(text)
	if top != nil {
		e.root.InsertBefore(p, top.NextSibling)
	} else {
		e.root.AppendChild(p)
	}
	return e.SetCaret(ctx, dom.At(text, 0))
}

// settle runs the after-input hooks and the selection update, then
// commits the caret.
func (e *Editor) settle(ctx context.Context, caret dom.Caret) {
	caret, handled := e.marks.AfterInput(ctx, caret)
	if !handled {
		caret, _ = e.transforms.HandleInput(ctx, caret)
	}
	e.caret = e.marks.Update(ctx, caret)
}

// HTML renders the surface content, focus marks included.
func (e *Editor) HTML() string {
	return dom.RenderChildren(e.root)
}

// Markdown serializes the document.
func (e *Editor) Markdown() (string, error) {
	md, err := e.bridge.SerializeBlock(e.root)
	if err != nil {
		return "", fmt.Errorf("serialize: %w", err)
	}
	return md, nil
}
