// Package reconcile replaces a block's children with freshly parsed
// structure while keeping unchanged nodes and the caret's logical
// position.
package reconcile

import (
	"context"

	"golang.org/x/net/html"

	"github.com/yaklabco/mdlive/internal/logging"
	"github.com/yaklabco/mdlive/pkg/dom"
	"github.com/yaklabco/mdlive/pkg/pattern"
)

// Result reports what a reconciliation did.
type Result struct {
	// Caret is the re-addressed caret.
	Caret dom.Caret

	Kept     int
	Replaced int
	Appended int
	Removed  int

	// Tracked is true when the caret was re-resolved from its content
	// offset because the node holding it was replaced or removed.
	Tracked bool

	// Fallback is true when the caret could not be tracked and was
	// collapsed to the end of the container's last child.
	Fallback bool
}

// Reconcile walks the children of container and next in parallel. Equal
// children keep their old instance; differing ones are swapped for the
// new node; extra new children are appended and extra old ones removed.
//
// When match is non-nil the caret's content offset is compensated for the
// delimiters the pattern consumed; a caret at or past the match end is
// shifted by the measured change in content length. Focus marks at the boundaries of a
// replaced node holding the caret are cloned onto its replacement.
func Reconcile(ctx context.Context, container *html.Node, next []*html.Node, caret dom.Caret, match *pattern.Match) Result {
	logger := logging.FromContext(ctx)
	res := Result{Caret: caret}

	if caret.IsZero() {
		apply(container, next, nil, &res)
		return res
	}

	offset, inside := dom.ContentOffset(container, caret, true)
	if !inside {
		// The caret lives elsewhere; only the tree changes.
		apply(container, next, nil, &res)
		return res
	}

	target := offset
	if match != nil {
		target = Compensate(offset, match)
	}

	before := len(dom.ContentText(container))
	apply(container, next, &caret, &res)

	// Past the match, the caret moves by however much the content
	// actually changed. The serialized block can carry delimiters the
	// pattern text did not see, and a new code span keeps them as text.
	if match != nil && offset >= match.End {
		target = offset + len(dom.ContentText(container)) - before
	}

	// An element caret on the container is re-resolved as well once
	// children change, since their indices shift.
	changed := res.Replaced+res.Appended+res.Removed > 0
	if res.Tracked || (changed && caret.Node == container) || !dom.IsConnected(caret.Node, container) {
		bias := dom.Backward
		if match != nil {
			bias = dom.Forward
		}
		res.Caret = dom.Resolve(container, target, bias, true)
		res.Tracked = true
		if target > len(dom.ContentText(container)) || !dom.IsConnected(res.Caret.Node, container) {
			res.Caret = fallback(container)
			res.Tracked = false
			res.Fallback = true
		}
	}

	logger.Debug("reconciled block",
		logging.FieldOffset, offset,
		logging.FieldTarget, target,
		logging.FieldKept, res.Kept,
		logging.FieldReplaced, res.Replaced,
		logging.FieldAppended, res.Appended,
		logging.FieldRemoved, res.Removed,
		logging.FieldFallback, res.Fallback,
	)
	return res
}

// apply performs the child diff. caret may be nil when there is no caret
// to track; res.Tracked is set when the caret's node is swapped out.
// Focus marks among the old children stay where they are and take no
// part in the diff.
func apply(container *html.Node, next []*html.Node, caret *dom.Caret, res *Result) {
	old := contentChildren(container)

	holdsCaret := func(n *html.Node) bool {
		return caret != nil && caret.Node != nil && dom.Contains(n, caret.Node)
	}

	var last *html.Node
	for i := 0; i < len(old) || i < len(next); i++ {
		switch {
		case i >= len(old):
			dom.Detach(next[i])
			insertAfter(container, last, next[i])
			last = next[i]
			res.Appended++

		case i >= len(next):
			if holdsCaret(old[i]) {
				res.Tracked = true
			}
			container.RemoveChild(old[i])
			res.Removed++

		case dom.Equal(old[i], next[i]):
			last = old[i]
			res.Kept++

		default:
			if holdsCaret(old[i]) {
				res.Tracked = true
				inheritMarks(old[i], next[i])
			}
			dom.ReplaceNode(old[i], next[i])
			last = next[i]
			res.Replaced++
		}
	}
}

func contentChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !dom.IsFocusMark(c) {
			out = append(out, c)
		}
	}
	return out
}

// insertAfter places n after prev, or after any leading focus marks when
// prev is nil.
func insertAfter(container, prev, n *html.Node) {
	if prev == nil {
		ref := container.FirstChild
		for ref != nil && dom.IsFocusMark(ref) {
			ref = ref.NextSibling
		}
		container.InsertBefore(n, ref)
		return
	}
	container.InsertBefore(n, prev.NextSibling)
}

// inheritMarks clones the boundary focus marks of old onto replacement
// when both are the same kind of formatted element.
func inheritMarks(old, replacement *html.Node) {
	if dom.KindOf(old) != dom.KindOf(replacement) {
		return
	}
	open, closing := dom.BoundaryMarks(old)
	if open != nil && !dom.IsFocusMark(replacement.FirstChild) {
		replacement.InsertBefore(dom.Clone(open), replacement.FirstChild)
	}
	if closing != nil && !dom.IsFocusMark(replacement.LastChild) {
		replacement.AppendChild(dom.Clone(closing))
	}
}

// Compensate maps a content offset measured in the raw text onto the
// formatted text, where the pattern's delimiters no longer count.
// Offsets at or before Start are unchanged; offsets at or after End lose
// both delimiters; offsets inside lose what they passed of the opening
// delimiter, and offsets inside the closing delimiter clamp to the end of
// the content.
func Compensate(offset int, m *pattern.Match) int {
	switch {
	case m == nil || offset <= m.Start:
		return offset
	case offset >= m.End:
		return offset - m.OpenLength - m.CloseLength
	case offset > m.End-m.CloseLength:
		return m.End - m.CloseLength - m.OpenLength
	default:
		return offset - min(m.OpenLength, offset-m.Start)
	}
}

// fallback collapses the caret to the end of the container's last child.
func fallback(container *html.Node) dom.Caret {
	last := container.LastChild
	if last == nil || !dom.CanHoldCaret(last) {
		return dom.At(container, dom.ChildCount(container))
	}
	return dom.EndOf(last)
}
