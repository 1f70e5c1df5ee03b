package focusmark_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/yaklabco/mdlive/pkg/bridge"
	"github.com/yaklabco/mdlive/pkg/dom"
	"github.com/yaklabco/mdlive/pkg/focusmark"
	"github.com/yaklabco/mdlive/pkg/transform"
)

const (
	markOpen  = `<span class="md-focus-mark">`
	markClose = `</span>`
)

func mark(text string) string {
	return markOpen + text + markClose
}

func newSurface(t *testing.T, markup string, opts ...focusmark.Option) (*html.Node, *focusmark.Manager) {
	t.Helper()

	root := dom.NewRoot()
	nodes, err := dom.ParseFragment(markup)
	require.NoError(t, err)
	for _, n := range nodes {
		root.AppendChild(n)
	}

	b := bridge.New(bridge.FlavorGFM)
	return root, focusmark.New(root, b, transform.New(root, b), opts...)
}

// find returns the first element named tag under n.
func find(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if found := find(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// textOf returns the first content text node under n.
func textOf(n *html.Node) *html.Node {
	texts := dom.TextNodes(n, true)
	if len(texts) == 0 {
		return nil
	}
	return texts[0]
}

func TestUpdate_InlineMarks(t *testing.T) {
	t.Parallel()

	const plain = `<p>a <strong data-md-delim="**">bold</strong> c</p>`

	tests := []struct {
		name  string
		caret func(root *html.Node) dom.Caret
	}{
		{"inside the element", func(root *html.Node) dom.Caret {
			return dom.At(textOf(find(root, "strong")), 2)
		}},
		{"touching the start", func(root *html.Node) dom.Caret {
			return dom.At(find(root, "p").FirstChild, 2)
		}},
		{"touching the end", func(root *html.Node) dom.Caret {
			return dom.At(find(root, "p").LastChild, 0)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root, m := newSurface(t, plain)
			strong := find(root, "strong")

			caret := m.Update(context.Background(), tt.caret(root))

			assert.Equal(t,
				`<p>a <strong data-md-delim="**">`+mark("**")+`bold`+mark("**")+`</strong> c</p>`,
				dom.RenderChildren(root))
			assert.Same(t, strong, m.ActiveInline())
			assert.Equal(t, "**", m.InlineDelimiter())
			assert.Nil(t, m.ActiveBlock())
			assert.True(t, dom.IsConnected(caret.Node, root))

			open, closing := m.InlineMarks()
			assert.Same(t, strong.FirstChild, open)
			assert.Same(t, strong.LastChild, closing)
		})
	}
}

func TestUpdate_InnermostElementWins(t *testing.T) {
	t.Parallel()

	root, m := newSurface(t, `<p>x <em data-md-delim="_"><strong data-md-delim="__">y</strong></em></p>`)
	caret := dom.At(find(root, "p").FirstChild, 2)

	m.Update(context.Background(), caret)

	assert.Same(t, find(root, "strong"), m.ActiveInline())
	assert.Equal(t, "__", m.InlineDelimiter())
}

func TestUpdate_MovingAwayEjects(t *testing.T) {
	t.Parallel()

	const plain = `<p>a <strong data-md-delim="**">bold</strong> c</p>`
	root, m := newSurface(t, plain)
	ctx := context.Background()

	m.Update(ctx, dom.At(textOf(find(root, "strong")), 1))
	require.NotNil(t, m.ActiveInline())

	tail := find(root, "p").LastChild
	caret := m.Update(ctx, dom.At(tail, len(tail.Data)))

	assert.Equal(t, plain, dom.RenderChildren(root))
	assert.Nil(t, m.ActiveInline())
	assert.Empty(t, m.InlineDelimiter())
	assert.Equal(t, dom.At(tail, 2), caret)
}

func TestUpdate_BlockMarks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		tag    string
		prefix string
	}{
		{"heading", "<h2>Title</h2>", "h2", "## "},
		{"bullet item", `<ul data-md-marker="+"><li>one</li></ul>`, "li", "+ "},
		{"ordered item", `<ol data-md-marker=")" start="7"><li>one</li></ol>`, "li", "7) "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root, m := newSurface(t, tt.markup)
			block := find(root, tt.tag)

			m.Update(context.Background(), dom.At(textOf(block), 0))

			assert.Same(t, block, m.ActiveBlock())
			assert.Equal(t, tt.prefix, m.BlockDelimiter())
			require.NotNil(t, m.BlockMark())
			assert.Same(t, block.FirstChild, m.BlockMark())
			assert.Equal(t, tt.prefix, dom.MarkText(m.BlockMark()))
		})
	}
}

func TestUpdate_OrderedItemShowsItsOwnNumber(t *testing.T) {
	t.Parallel()

	root, m := newSurface(t, `<ol data-md-marker="." start="3"><li>a</li><li>b</li></ol>`)
	second := find(root, "ol").LastChild

	m.Update(context.Background(), dom.At(textOf(second), 1))

	assert.Equal(t, "4. ", m.BlockDelimiter())
}

func TestUpdate_NothingToFocus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
	}{
		{"plain paragraph", "<p>plain</p>"},
		{"link", `<p><a href="u">link</a></p>`},
		{"blockquote paragraph", "<blockquote><p>quoted</p></blockquote>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root, m := newSurface(t, tt.markup)
			before := dom.RenderChildren(root)

			m.Update(context.Background(), dom.At(textOf(root), 1))

			assert.Equal(t, before, dom.RenderChildren(root))
			assert.Nil(t, m.ActiveInline())
			assert.Nil(t, m.ActiveBlock())
		})
	}
}

func TestUpdate_Disabled(t *testing.T) {
	t.Parallel()

	root, m := newSurface(t, `<h1><em data-md-delim="*">x</em></h1>`, focusmark.WithEnabled(false))
	caret := dom.At(textOf(root), 0)

	m.Update(context.Background(), caret)
	_, consumed := m.BeforeInput(context.Background(), caret, "*")
	_, handled := m.AfterInput(context.Background(), caret)

	assert.Empty(t, dom.FocusMarks(root))
	assert.Nil(t, m.ActiveInline())
	assert.Nil(t, m.ActiveBlock())
	assert.False(t, consumed)
	assert.False(t, handled)
}

func TestSkipNext(t *testing.T) {
	t.Parallel()

	root, m := newSurface(t, `<p><em data-md-delim="*">x</em></p>`)
	ctx := context.Background()
	caret := dom.At(textOf(root), 1)

	m.SkipNext()
	assert.True(t, m.Skipping())

	m.Update(ctx, caret)
	assert.False(t, m.Skipping())
	assert.Empty(t, dom.FocusMarks(root))

	m.Update(ctx, caret)
	assert.Len(t, dom.FocusMarks(root), 2)
}

func TestUnfocus(t *testing.T) {
	t.Parallel()

	const plain = `<ul data-md-marker="-"><li>a <code data-md-delim="` + "`" + `">c</code></li></ul>`
	root, m := newSurface(t, plain)

	caret := m.Update(context.Background(), dom.At(textOf(find(root, "code")), 1))
	require.Len(t, dom.FocusMarks(root), 3)

	caret = m.Unfocus(caret)

	assert.Equal(t, plain, dom.RenderChildren(root))
	assert.Nil(t, m.ActiveInline())
	assert.Nil(t, m.ActiveBlock())
	assert.Equal(t, "c", caret.Node.Data)
}

func TestUpdate_DropsDetachedElements(t *testing.T) {
	t.Parallel()

	root, m := newSurface(t, `<p><em data-md-delim="*">x</em></p><p>y</p>`)
	ctx := context.Background()

	m.Update(ctx, dom.At(textOf(find(root, "em")), 0))
	require.NotNil(t, m.ActiveInline())

	first := root.FirstChild
	root.RemoveChild(first)
	m.Update(ctx, dom.At(textOf(root), 1))

	assert.Nil(t, m.ActiveInline())
	assert.Empty(t, dom.FocusMarks(root))
}

func TestBeforeInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	focused := func(t *testing.T) (*html.Node, *focusmark.Manager) {
		t.Helper()
		root, m := newSurface(t, `<p><em data-md-delim="*">word</em></p>`)
		m.Update(ctx, dom.At(textOf(find(root, "em")), 2))
		require.NotNil(t, m.ActiveInline())
		return root, m
	}

	t.Run("delimiter extends the mark", func(t *testing.T) {
		t.Parallel()
		root, m := focused(t)
		open, _ := m.InlineMarks()

		caret, consumed := m.BeforeInput(ctx, dom.At(open.FirstChild, 1), "*")

		assert.True(t, consumed)
		assert.Equal(t, `<p><strong data-md-delim="**">word</strong></p>`, dom.RenderChildren(root))
		assert.True(t, dom.IsConnected(caret.Node, root))
		assert.Nil(t, m.ActiveInline())
	})

	t.Run("text at the outer edge goes before the element", func(t *testing.T) {
		t.Parallel()
		root, m := focused(t)
		open, _ := m.InlineMarks()

		caret, consumed := m.BeforeInput(ctx, dom.At(open.FirstChild, 0), "a")

		assert.True(t, consumed)
		assert.Equal(t,
			`<p>a<em data-md-delim="*">`+mark("*")+`word`+mark("*")+`</em></p>`,
			dom.RenderChildren(root))
		assert.Equal(t, "a", caret.Node.Data)
		assert.Equal(t, 1, caret.Offset)
	})

	t.Run("text at the inner edge joins the content", func(t *testing.T) {
		t.Parallel()
		root, m := focused(t)
		_, closing := m.InlineMarks()

		caret, consumed := m.BeforeInput(ctx, dom.At(closing.FirstChild, 0), "s")

		assert.True(t, consumed)
		assert.Equal(t, "words", dom.ContentText(find(root, "em")))
		assert.Equal(t, dom.At(textOf(find(root, "em")), 5), caret)
	})

	t.Run("unsupported delimiter is literal", func(t *testing.T) {
		t.Parallel()
		root, m := focused(t)
		_, closing := m.InlineMarks()

		_, consumed := m.BeforeInput(ctx, dom.At(closing.FirstChild, 1), "_")

		assert.True(t, consumed)
		assert.Equal(t,
			`<p><em data-md-delim="*">`+mark("*")+`word`+mark("*")+`</em>_</p>`,
			dom.RenderChildren(root))
	})

	t.Run("away from marks the host inserts", func(t *testing.T) {
		t.Parallel()
		root, m := focused(t)
		caret := dom.At(textOf(find(root, "em")), 2)

		next, consumed := m.BeforeInput(ctx, caret, "*")

		assert.False(t, consumed)
		assert.Equal(t, caret, next)
	})

	t.Run("block mark edge", func(t *testing.T) {
		t.Parallel()
		root, m := newSurface(t, "<h1>Title</h1>")
		m.Update(ctx, dom.At(textOf(root), 0))
		blockMark := m.BlockMark()
		require.NotNil(t, blockMark)

		caret, consumed := m.BeforeInput(ctx, dom.At(blockMark.FirstChild, 2), "X")

		assert.True(t, consumed)
		assert.Equal(t, `<h1>`+mark("# ")+`XTitle</h1>`, dom.RenderChildren(root))
		assert.Equal(t, 1, caret.Offset)
	})
}

func TestAfterInput_InlineMarks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name   string
		markup string
		edit   func(m *focusmark.Manager, el *html.Node) dom.Caret
		want   string
	}{
		{
			name:   "shortened opening mark is mirrored",
			markup: `<p>a <strong data-md-delim="**">bold</strong> c</p>`,
			edit: func(m *focusmark.Manager, _ *html.Node) dom.Caret {
				open, _ := m.InlineMarks()
				open.FirstChild.Data = "*"
				return dom.At(open.FirstChild, 1)
			},
			want: `<p>a <em data-md-delim="*">bold</em> c</p>`,
		},
		{
			name:   "shortened closing mark is mirrored",
			markup: `<p><strong data-md-delim="__">bold</strong></p>`,
			edit: func(m *focusmark.Manager, _ *html.Node) dom.Caret {
				_, closing := m.InlineMarks()
				closing.FirstChild.Data = "_"
				return dom.At(closing.FirstChild, 0)
			},
			want: `<p><em data-md-delim="_">bold</em></p>`,
		},
		{
			name:   "deleted mark unwraps",
			markup: `<p><em data-md-delim="*">word</em></p>`,
			edit: func(m *focusmark.Manager, el *html.Node) dom.Caret {
				_, closing := m.InlineMarks()
				el.RemoveChild(closing)
				return dom.EndOf(el)
			},
			want: `<p>*word</p>`,
		},
		{
			name:   "breaking delimiter in the content",
			markup: `<p><em data-md-delim="*">word</em></p>`,
			edit: func(_ *focusmark.Manager, el *html.Node) dom.Caret {
				text := textOf(el)
				text.Data = "wo*rd"
				return dom.At(text, 3)
			},
			want: `<p><em data-md-delim="*">wo</em>rd*</p>`,
		},
		{
			name:   "marks changed to another delimiter",
			markup: `<p><del data-md-delim="~~">gone</del></p>`,
			edit: func(m *focusmark.Manager, _ *html.Node) dom.Caret {
				open, closing := m.InlineMarks()
				open.FirstChild.Data = "**"
				closing.FirstChild.Data = "**"
				return dom.At(open.FirstChild, 2)
			},
			want: `<p><strong data-md-delim="**">gone</strong></p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root, m := newSurface(t, tt.markup)
			el := find(root, "p").FirstChild
			for el.Type == html.TextNode {
				el = el.NextSibling
			}
			m.Update(ctx, dom.At(textOf(el), 1))
			require.Same(t, el, m.ActiveInline())

			caret, handled := m.AfterInput(ctx, tt.edit(m, el))

			assert.True(t, handled)
			assert.Equal(t, tt.want, dom.RenderChildren(root))
			assert.Nil(t, m.ActiveInline())
			assert.True(t, dom.IsConnected(caret.Node, root))
		})
	}
}

func TestAfterInput_ContentEditKeepsElement(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root, m := newSurface(t, `<p><em data-md-delim="*">word</em></p>`)
	em := find(root, "em")
	m.Update(ctx, dom.At(textOf(em), 4))

	text := textOf(em)
	text.Data = "words"
	caret, handled := m.AfterInput(ctx, dom.At(text, 5))

	assert.False(t, handled)
	assert.Same(t, em, m.ActiveInline())
	assert.Equal(t, dom.At(text, 5), caret)
}

func TestAfterInput_NestedPattern(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root, m := newSurface(t, `<p><em data-md-delim="_">a b</em></p>`)
	em := find(root, "em")
	m.Update(ctx, dom.At(textOf(em), 3))

	text := textOf(em)
	text.Data = "a **b**"
	caret, handled := m.AfterInput(ctx, dom.At(text, len(text.Data)))

	assert.True(t, handled)
	assert.Equal(t,
		`<p><em data-md-delim="_">`+mark("_")+`a <strong data-md-delim="**">b</strong>`+mark("_")+`</em></p>`,
		dom.RenderChildren(root))
	assert.Same(t, em, m.ActiveInline())
	assert.True(t, dom.IsConnected(caret.Node, root))
}

func TestAfterInput_CodeContentIsLiteral(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root, m := newSurface(t, "<p><code data-md-delim=\"`\">x</code></p>")
	code := find(root, "code")
	m.Update(ctx, dom.At(textOf(code), 1))

	text := textOf(code)
	text.Data = "*x*"
	_, handled := m.AfterInput(ctx, dom.At(text, 3))

	assert.False(t, handled)
	assert.Same(t, code, m.ActiveInline())
	assert.Nil(t, find(code, "em"))
}

func TestAfterInput_BlockMarks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name      string
		markup    string
		markText  string
		want      string
		delimiter string
	}{
		{
			name:      "heading level change",
			markup:    "<h2>Title</h2>",
			markText:  "### ",
			want:      `<h3>` + mark("### ") + `Title</h3>`,
			delimiter: "### ",
		},
		{
			name:     "invalid heading mark demotes",
			markup:   "<h2>Title</h2>",
			markText: "#x",
			want:     `<p>#xTitle</p>`,
		},
		{
			name:      "bullet marker change",
			markup:    `<ul data-md-marker="-"><li>one</li></ul>`,
			markText:  "* ",
			want:      `<ul data-md-marker="*"><li>` + mark("* ") + `one</li></ul>`,
			delimiter: "* ",
		},
		{
			name:      "ordered start change",
			markup:    `<ol data-md-marker="."><li>one</li></ol>`,
			markText:  "5) ",
			want:      `<ol data-md-marker=")" start="5"><li>` + mark("5) ") + `one</li></ol>`,
			delimiter: "5) ",
		},
		{
			name:     "invalid list mark lifts the item",
			markup:   `<ul data-md-marker="-"><li>one</li></ul>`,
			markText: "-x",
			want:     `<p>-xone</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root, m := newSurface(t, tt.markup)
			m.Update(ctx, dom.At(textOf(root), 0))
			blockMark := m.BlockMark()
			require.NotNil(t, blockMark)

			blockMark.FirstChild.Data = tt.markText
			caret, handled := m.AfterInput(ctx, dom.At(blockMark.FirstChild, len(tt.markText)))

			assert.True(t, handled)
			assert.Equal(t, tt.want, dom.RenderChildren(root))
			assert.Equal(t, tt.delimiter, m.BlockDelimiter())
			assert.True(t, dom.IsConnected(caret.Node, root))
		})
	}
}

type recordingCommitter struct {
	reasons []string
}

func (r *recordingCommitter) Commit(_ context.Context, reason string) {
	r.reasons = append(r.reasons, reason)
}

func TestAfterInput_BlockMarkCommits(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name     string
		markup   string
		markText string
		want     []string
	}{
		{name: "heading level change", markup: "<h2>Title</h2>", markText: "### ", want: []string{focusmark.ReasonBlockMark}},
		{name: "heading demoted", markup: "<h2>Title</h2>", markText: "#x", want: []string{focusmark.ReasonBlockMark}},
		{name: "bullet marker change", markup: `<ul data-md-marker="-"><li>one</li></ul>`, markText: "* ", want: []string{focusmark.ReasonBlockMark}},
		{name: "ordered start change", markup: `<ol data-md-marker="."><li>one</li></ol>`, markText: "5. ", want: []string{focusmark.ReasonBlockMark}},
		{name: "unchanged mark", markup: "<h2>Title</h2>", markText: "## "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			committer := &recordingCommitter{}
			root, m := newSurface(t, tt.markup, focusmark.WithCommitter(committer))
			m.Update(ctx, dom.At(textOf(root), 0))
			blockMark := m.BlockMark()
			require.NotNil(t, blockMark)

			blockMark.FirstChild.Data = tt.markText
			m.AfterInput(ctx, dom.At(blockMark.FirstChild, len(tt.markText)))

			assert.Equal(t, tt.want, committer.reasons)
		})
	}
}

func TestAfterInput_DeletedBlockMark(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root, m := newSurface(t, `<ol data-md-marker="."><li>a</li><li>b</li><li>c</li></ol>`)
	second := find(root, "ol").FirstChild.NextSibling
	m.Update(ctx, dom.At(textOf(second), 0))
	require.Same(t, second, m.ActiveBlock())

	caret := dom.Remove(m.BlockMark(), dom.At(textOf(second), 0))
	caret, handled := m.AfterInput(ctx, caret)

	assert.True(t, handled)
	assert.Equal(t,
		`<ol data-md-marker="."><li>a</li></ol><p>b</p><ol data-md-marker="." start="3"><li>c</li></ol>`,
		dom.RenderChildren(root))
	assert.Nil(t, m.ActiveBlock())
	assert.Equal(t, "b", caret.Node.Data)
}

func TestIsInlineDelimiter(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"*", "_", "**", "__", "`", "``", "~", "~~"} {
		assert.True(t, focusmark.IsInlineDelimiter(s), s)
	}
	for _, s := range []string{"", "***", "*_", "~~~", "#", "["} {
		assert.False(t, focusmark.IsInlineDelimiter(s), s)
	}
}

func TestTransformerFunc(t *testing.T) {
	t.Parallel()

	called := false
	var tr focusmark.Transformer = focusmark.TransformerFunc(
		func(_ context.Context, _ *html.Node, caret dom.Caret) (dom.Caret, bool) {
			called = true
			return caret, true
		})

	_, ok := tr.Transform(context.Background(), nil, dom.Caret{})
	assert.True(t, called)
	assert.True(t, ok)
}
