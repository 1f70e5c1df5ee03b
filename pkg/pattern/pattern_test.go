package pattern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/yaklabco/mdlive/pkg/dom"
	"github.com/yaklabco/mdlive/pkg/pattern"
)

func TestDetectInline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		flavor     string
		text       string
		wantNil    bool
		start, end int
		family     string
		delim      string
		open       int
		closeLen   int
		underscore bool
	}{
		{name: "bold", text: "**bold**", start: 0, end: 8, family: pattern.NameBold, delim: "**", open: 2, closeLen: 2},
		{name: "stray leading asterisk", text: "***bold**", start: 1, end: 9, family: pattern.NameBold, delim: "**", open: 2, closeLen: 2},
		{name: "underscore italic", text: "say _hi_ now", start: 4, end: 8, family: pattern.NameItalic, delim: "_", open: 1, closeLen: 1, underscore: true},
		{name: "underscore bold", text: "__b__", start: 0, end: 5, family: pattern.NameBold, delim: "__", open: 2, closeLen: 2, underscore: true},
		{name: "code span", text: "`code`", start: 0, end: 6, family: pattern.NameCode, delim: "`", open: 1, closeLen: 1},
		{name: "double backtick code", text: "x ``a`b`` y", start: 2, end: 9, family: pattern.NameCode, delim: "``", open: 2, closeLen: 2},
		{name: "strike", flavor: "gfm", text: "~~gone~~", start: 0, end: 8, family: pattern.NameStrike, delim: "~~", open: 2, closeLen: 2},
		{name: "strike needs gfm", flavor: "commonmark", text: "~~gone~~", wantNil: true},
		{name: "link", text: "see [a](http://x)", start: 4, end: 17, family: pattern.NameLink, delim: "[", open: 1, closeLen: 11},
		{name: "link title with paren", text: `[a](b "t)") z`, start: 0, end: 11, family: pattern.NameLink, delim: "[", open: 1, closeLen: 9},
		{name: "link single-quoted title", text: `[a](b 't)') z`, start: 0, end: 11, family: pattern.NameLink, delim: "[", open: 1, closeLen: 9},
		{name: "link parenthesized title", text: "[a](b (t)) z", start: 0, end: 10, family: pattern.NameLink, delim: "[", open: 1, closeLen: 8},
		{name: "link angle destination", text: "[a](<b c>) z", start: 0, end: 10, family: pattern.NameLink, delim: "[", open: 1, closeLen: 8},
		{name: "link balanced destination", text: "[a](b(c)) z", start: 0, end: 9, family: pattern.NameLink, delim: "[", open: 1, closeLen: 7},
		{name: "image", text: "![alt](i.png)", start: 0, end: 13, family: pattern.NameImage, delim: "![", open: 13, closeLen: 0},
		{name: "first in document order", text: "*a* and **b**", start: 0, end: 3, family: pattern.NameItalic, delim: "*", open: 1, closeLen: 1},
		{name: "nested outer wins", text: "***a***", start: 0, end: 7, family: pattern.NameItalic, delim: "*", open: 3, closeLen: 3},
		{name: "unclosed", text: "**bold", wantNil: true},
		{name: "spaced asterisks", text: "2 * 3 * 4", wantNil: true},
		{name: "heading prefix is literal", text: "# title", wantNil: true},
		{name: "empty", text: "", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			flavor := tt.flavor
			if flavor == "" {
				flavor = "gfm"
			}
			m := pattern.New(flavor).DetectInline(tt.text)
			if tt.wantNil {
				assert.Nil(t, m)
				return
			}

			require.NotNil(t, m)
			assert.Equal(t, tt.start, m.Start, "start")
			assert.Equal(t, tt.end, m.End, "end")
			assert.Equal(t, tt.text[tt.start:tt.end], m.Text)
			assert.Equal(t, tt.family, m.Name)
			assert.Equal(t, tt.delim, m.Delimiter)
			assert.Equal(t, len(tt.delim), m.DelimiterLength)
			assert.Equal(t, tt.open, m.OpenLength, "open length")
			assert.Equal(t, tt.closeLen, m.CloseLength, "close length")
			assert.Equal(t, tt.underscore, m.Underscore)
		})
	}
}

func TestDetectBlock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text   string
		kind   pattern.BlockKind
		prefix string
		level  int
	}{
		{"# Title", pattern.BlockHeading, "# ", 1},
		{"###### deep", pattern.BlockHeading, "###### ", 6},
		{"####### too deep", pattern.BlockNone, "", 0},
		{"#hashtag", pattern.BlockNone, "", 0},
		{"```go ", pattern.BlockCodeFence, "```go ", 0},
		{"~~~ ", pattern.BlockCodeFence, "~~~ ", 0},
		{"```", pattern.BlockNone, "", 0},
		{"---", pattern.BlockThematicBreak, "---", 0},
		{"***", pattern.BlockNone, "", 0},
		{"*** ", pattern.BlockThematicBreak, "*** ", 0},
		{"> ", pattern.BlockQuote, "> ", 0},
		{"- ", pattern.BlockUnorderedList, "- ", 0},
		{"* item", pattern.BlockUnorderedList, "* ", 0},
		{"+ item", pattern.BlockUnorderedList, "+ ", 0},
		{"1. ", pattern.BlockOrderedList, "1. ", 0},
		{"10) ten", pattern.BlockOrderedList, "10) ", 0},
		{"| a | b |", pattern.BlockTableRow, "| a | b |", 0},
		{"plain text", pattern.BlockNone, "", 0},
		{"-no space", pattern.BlockNone, "", 0},
	}

	d := pattern.New("gfm")
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()

			got, ok := d.DetectBlock(tt.text, dom.NewElement("p"))
			assert.Equal(t, tt.kind != pattern.BlockNone, ok)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.prefix, got.Prefix)
			assert.Equal(t, tt.level, got.Level)
			assert.Equal(t, ok, d.DetectBlockPattern(tt.text, nil))
		})
	}
}

func list(items ...string) (*html.Node, []*html.Node) {
	ul := dom.NewElement("ul")
	var lis []*html.Node
	for _, text := range items {
		li := dom.NewElement("li")
		li.AppendChild(dom.NewText(text))
		ul.AppendChild(li)
		lis = append(lis, li)
	}
	return ul, lis
}

func TestDetectBlock_ListNesting(t *testing.T) {
	t.Parallel()

	d := pattern.New("commonmark")

	t.Run("empty item with content siblings nests", func(t *testing.T) {
		t.Parallel()
		_, lis := list("one", "- ")
		assert.True(t, d.DetectBlockPattern("- ", lis[1]))
	})

	t.Run("lone empty item does not nest", func(t *testing.T) {
		t.Parallel()
		_, lis := list("- ")
		assert.False(t, d.DetectBlockPattern("- ", lis[0]))
	})

	t.Run("empty siblings do not count", func(t *testing.T) {
		t.Parallel()
		_, lis := list(" ", "1. ")
		assert.False(t, d.DetectBlockPattern("1. ", lis[1]))
	})

	t.Run("non-empty item does not nest", func(t *testing.T) {
		t.Parallel()
		_, lis := list("one", "- two")
		assert.False(t, d.DetectBlockPattern("- two", lis[1]))
	})

	t.Run("headings are not list patterns", func(t *testing.T) {
		t.Parallel()
		_, lis := list("# sub")
		got, ok := d.DetectBlock("# sub", lis[0])
		require.True(t, ok)
		assert.Equal(t, pattern.BlockHeading, got.Kind)
	})

	t.Run("paragraph inside an item", func(t *testing.T) {
		t.Parallel()
		_, lis := list("one")
		p := dom.NewElement("p")
		p.AppendChild(dom.NewText("- x"))
		lis[0].AppendChild(p)
		assert.False(t, d.DetectBlockPattern("- x", p))
	})
}

func TestBlockKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "heading", pattern.BlockHeading.String())
	assert.Equal(t, "ordered-list", pattern.BlockOrderedList.String())
	assert.Equal(t, "none", pattern.BlockNone.String())
	assert.True(t, pattern.BlockUnorderedList.StartsList())
	assert.False(t, pattern.BlockQuote.StartsList())
}

func FuzzDetectInline(f *testing.F) {
	seeds := []string{
		"", "**bold**", "***bold**", "_x_", "`a`", "~~s~~",
		"[l](u)", "![i](s)", "*a **b** c*", "\\*esc\\*", "``", "[x](<a b>)",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	d := pattern.New("gfm")
	f.Fuzz(func(t *testing.T, text string) {
		m := d.DetectInline(text)
		if m == nil {
			return
		}
		if m.Start < 0 || m.End > len(text) || m.Start >= m.End {
			t.Fatalf("invalid range [%d,%d) for %q", m.Start, m.End, text)
		}
		if m.OpenLength+m.CloseLength > m.End-m.Start {
			t.Fatalf("delimiters exceed span for %q", text)
		}
	})
}
