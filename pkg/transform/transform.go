// Package transform drives pattern detection and conversion on every
// content change: it finds the block under the caret, asks the detector
// whether a pattern now matches, and swaps in the converted structure.
package transform

import (
	"context"
	"fmt"

	"golang.org/x/net/html"

	"github.com/yaklabco/mdlive/internal/logging"
	"github.com/yaklabco/mdlive/pkg/bridge"
	"github.com/yaklabco/mdlive/pkg/dom"
	"github.com/yaklabco/mdlive/pkg/pattern"
	"github.com/yaklabco/mdlive/pkg/reconcile"
)

// Outcome describes what an input event did to the document.
type Outcome uint8

// Transform outcomes.
const (
	// OutcomeNone means no pattern matched; the tree is unchanged.
	OutcomeNone Outcome = iota
	// OutcomeInline means inline formatting was reconciled into the block.
	OutcomeInline
	// OutcomeBlock means the block was replaced by new block structure.
	OutcomeBlock
	// OutcomeFailed means the conversion failed and the block was left
	// as it was.
	OutcomeFailed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeInline:
		return "inline"
	case OutcomeBlock:
		return "block"
	case OutcomeFailed:
		return "failed"
	default:
		return "none"
	}
}

// Changed reports whether the tree was transformed.
func (o Outcome) Changed() bool {
	return o == OutcomeInline || o == OutcomeBlock
}

// Committer is told when a committable document state exists. An undo
// history implements it.
type Committer interface {
	Commit(ctx context.Context, reason string)
}

// NopCommitter discards commits.
type NopCommitter struct{}

// Commit does nothing.
func (NopCommitter) Commit(context.Context, string) {}

// Suppressor receives a signal after an inline transform created new
// formatting. The focus-mark manager implements it.
type Suppressor interface {
	SkipNext()
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCommitter sets the history collaborator.
func WithCommitter(c Committer) Option {
	return func(o *Orchestrator) {
		o.committer = c
	}
}

// WithSuppressor sets the receiver of the post-transform signal.
func WithSuppressor(s Suppressor) Option {
	return func(o *Orchestrator) {
		o.suppressor = s
	}
}

// WithDetector overrides the pattern detector.
func WithDetector(d *pattern.Detector) Option {
	return func(o *Orchestrator) {
		o.detector = d
	}
}

// Orchestrator is the per-keystroke transform driver of one surface.
type Orchestrator struct {
	root       *html.Node
	bridge     *bridge.Bridge
	detector   *pattern.Detector
	committer  Committer
	suppressor Suppressor
}

// New creates an orchestrator for the surface rooted at root.
func New(root *html.Node, b *bridge.Bridge, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		root:      root,
		bridge:    b,
		committer: NopCommitter{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.detector == nil {
		o.detector = pattern.New(b.Flavor())
	}
	return o
}

// SetSuppressor replaces the post-transform signal receiver.
func (o *Orchestrator) SetSuppressor(s Suppressor) {
	o.suppressor = s
}

// HandleInput processes a content change at caret. A caret outside the
// surface is a no-op.
func (o *Orchestrator) HandleInput(ctx context.Context, caret dom.Caret) (dom.Caret, Outcome) {
	block := dom.BlockAt(o.root, caret)
	if block == nil {
		return caret, OutcomeNone
	}

	caret, outcome := o.run(ctx, block, caret)
	if outcome == OutcomeInline && o.suppressor != nil {
		o.suppressor.SkipNext()
	}
	if outcome.Changed() {
		o.committer.Commit(ctx, outcome.String())
	}
	return caret, outcome
}

// Transform re-runs detection on block. It is used to reparse a block
// after a formatted element was unwrapped.
func (o *Orchestrator) Transform(ctx context.Context, block *html.Node, caret dom.Caret) (dom.Caret, bool) {
	if block == nil || !dom.IsConnected(block, o.root) {
		return caret, false
	}
	caret, outcome := o.run(ctx, block, caret)
	if outcome.Changed() {
		o.committer.Commit(ctx, "reparse")
	}
	return caret, outcome.Changed()
}

// run detects and applies a transform on block. A panic while mutating is
// recovered and the block's content restored from a snapshot.
func (o *Orchestrator) run(ctx context.Context, block *html.Node, caret dom.Caret) (next dom.Caret, outcome Outcome) {
	logger := logging.FromContext(ctx)

	if dom.KindOf(block) == dom.KindCodeBlock {
		return caret, OutcomeNone
	}

	snapshot := dom.Clone(block)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("transform aborted", logging.FieldError, fmt.Sprint(r), logging.FieldBlock, block.Data)
			next = restore(block, snapshot, caret)
			outcome = OutcomeFailed
		}
	}()

	text := dom.PatternText(dom.InlineChildren(block)...)

	if blockEligible(block) {
		if bm, ok := o.detector.DetectBlock(text, block); ok {
			logger.Debug("block pattern", logging.FieldPattern, bm.Kind, logging.FieldInput, text)
			c, result := o.transformBlock(ctx, block, bm, caret)
			if result != OutcomeNone {
				return c, result
			}
		}
	}

	match := o.detector.DetectInline(text)
	if match == nil {
		return caret, OutcomeNone
	}
	logger.Debug("inline pattern",
		logging.FieldPattern, match.Name,
		logging.FieldStart, match.Start,
		logging.FieldEnd, match.End,
		logging.FieldDelimiter, match.Delimiter)
	return o.transformInline(ctx, block, match, caret)
}

// blockEligible reports whether block prefixes are recognised in block.
// Headings, cells and code blocks never turn into other blocks.
func blockEligible(block *html.Node) bool {
	switch dom.KindOf(block) {
	case dom.KindParagraph, dom.KindListItem:
		return true
	default:
		return false
	}
}

func (o *Orchestrator) transformInline(ctx context.Context, block *html.Node, match *pattern.Match, caret dom.Caret) (dom.Caret, Outcome) {
	logger := logging.FromContext(ctx)

	inline := dom.InlineChildren(block)
	md, err := o.bridge.SerializeInline(inline...)
	if err != nil {
		logger.Warn("serialize failed", logging.FieldError, err, logging.FieldBlock, block.Data)
		return caret, OutcomeFailed
	}
	next, err := o.bridge.ParseInline(md)
	if err != nil {
		logger.Warn("parse failed", logging.FieldError, err, logging.FieldInput, md)
		return caret, OutcomeFailed
	}

	// Nested blocks of a list item are carried over unchanged.
	for c := block.FirstChild; c != nil; c = c.NextSibling {
		if dom.Classify(c).IsBlock() {
			next = append(next, dom.Clone(c))
		}
	}

	res := reconcile.Reconcile(ctx, block, next, caret, match)
	if res.Replaced+res.Appended+res.Removed == 0 {
		return res.Caret, OutcomeNone
	}
	return res.Caret, OutcomeInline
}

// restore puts the snapshot's content back into block.
func restore(block, snapshot *html.Node, caret dom.Caret) dom.Caret {
	if block.Parent == nil {
		return caret
	}
	for c := block.FirstChild; c != nil; c = block.FirstChild {
		block.RemoveChild(c)
	}
	for c := snapshot.FirstChild; c != nil; c = snapshot.FirstChild {
		snapshot.RemoveChild(c)
		block.AppendChild(c)
	}
	return dom.EndOf(block)
}
