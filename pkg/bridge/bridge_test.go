package bridge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/yaklabco/mdlive/pkg/bridge"
	"github.com/yaklabco/mdlive/pkg/dom"
)

func TestNew_Flavor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, bridge.FlavorGFM, bridge.New("gfm").Flavor())
	assert.Equal(t, bridge.FlavorCommonMark, bridge.New("commonmark").Flavor())
	assert.Equal(t, bridge.FlavorCommonMark, bridge.New("bogus").Flavor())
}

func TestParseMarkdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		inline bool
		want   string
	}{
		{"empty", "", true, ""},
		{"bold", "**bold**", true, `<strong data-md-delim="**">bold</strong>`},
		{"variants", "_a_ and __b__", true, `<em data-md-delim="_">a</em> and <strong data-md-delim="__">b</strong>`},
		{"code span", "`x`", true, "<code data-md-delim=\"`\">x</code>"},
		{"strike", "~~s~~", true, `<del data-md-delim="~~">s</del>`},
		{"heading", "# Title", false, "<h1>Title</h1>"},
		{"empty heading", "## ", false, "<h2></h2>"},
		{"bullet list", "- a\n- b", false, `<ul data-md-marker="-"><li>a</li><li>b</li></ul>`},
		{"ordered start", "3) x", false, `<ol data-md-marker=")" start="3"><li>x</li></ol>`},
		{"quote", "> q", false, "<blockquote><p>q</p></blockquote>"},
		{"rule", "---", false, "<hr/>"},
		{"fence", "```go\nx\n```", false, "<pre data-md-fence=\"```\"><code class=\"language-go\">x\n</code></pre>"},
		{"tilde fence", "~~~~\ny\n~~~~", false, `<pre data-md-fence="~~~~"><code>y` + "\n" + `</code></pre>`},
		{"escapes resolved", `\*not\*`, true, "*not*"},
		{"hard break", "a\\\nb", true, "a<br/>b"},
		{"inline html stays literal", "a <kbd>b</kbd>", true, "a &lt;kbd&gt;b&lt;/kbd&gt;"},
	}

	b := bridge.New("gfm")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			frag, err := b.ParseMarkdown(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.inline, frag.Inline)
			assert.Equal(t, tt.want, dom.Render(frag.Nodes...))
		})
	}
}

func TestParseMarkdown_LinkAttributes(t *testing.T) {
	t.Parallel()

	frag, err := bridge.New("commonmark").ParseMarkdown(`[a](http://x "t") ![i](s.png)`)
	require.NoError(t, err)
	require.True(t, frag.Inline)
	require.Len(t, frag.Nodes, 3)

	link := frag.Nodes[0]
	assert.Equal(t, dom.KindLink, dom.KindOf(link))
	href, _ := dom.Attr(link, "href")
	title, _ := dom.Attr(link, "title")
	assert.Equal(t, "http://x", href)
	assert.Equal(t, "t", title)

	img := frag.Nodes[2]
	alt, _ := dom.Attr(img, "alt")
	assert.Equal(t, "i", alt)
}

func TestParseInline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"block syntax stays literal", "# not heading", "# not heading"},
		{"list marker stays literal", "- item **b**", `- item <strong data-md-delim="**">b</strong>`},
		{"edge whitespace", "  **b** ", `  <strong data-md-delim="**">b</strong> `},
		{"stray asterisk", "***bold**", `*<strong data-md-delim="**">bold</strong>`},
		{"plain", "hello", "hello"},
	}

	b := bridge.New("gfm")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			nodes, err := b.ParseInline(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, dom.Render(nodes...))
			for _, n := range nodes {
				assert.Nil(t, n.Parent, "nodes must be detached")
			}
		})
	}
}

func mustFragment(t *testing.T, markup string) []*html.Node {
	t.Helper()
	nodes, err := dom.ParseFragment(markup)
	require.NoError(t, err)
	return nodes
}

func TestSerializeBlock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{"paragraph keeps literal syntax", `<p>a **b** <em data-md-delim="_">c</em></p>`, "a **b** _c_"},
		{"heading", "<h2>T</h2>", "## T"},
		{"bullet marker", `<ul data-md-marker="*"><li>a</li><li>b</li></ul>`, "* a\n* b"},
		{"ordered", `<ol data-md-marker=")" start="3"><li>x</li><li>y</li></ol>`, "3) x\n4) y"},
		{"default ordered marker", `<ol><li>x</li></ol>`, "1. x"},
		{"list item alone", `<ol start="7"><li>seven</li></ol>`, "7. seven"},
		{"quote", "<blockquote><p>q</p></blockquote>", "> q"},
		{"fence", `<pre data-md-fence="~~~"><code class="language-go">x</code></pre>`, "~~~go\nx\n~~~"},
		{"rule", "<hr>", "---"},
		{"link title", `<p><a href="u" title="t">a</a></p>`, `[a](u "t")`},
		{"image", `<p><img src="s" alt="i"></p>`, "![i](s)"},
		{"line break", "<p>a<br>b</p>", "a\\\nb"},
		{"focus marks skipped", `<p><strong><span class="md-focus-mark">**</span>b<span class="md-focus-mark">**</span></strong></p>`, "**b**"},
		{"block mark skipped", `<h1><span class="md-focus-mark"># </span>T</h1>`, "# T"},
		{"task item", `<ul><li><input type="checkbox" checked="">done</li></ul>`, "- [x] done"},
	}

	b := bridge.New("gfm")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			nodes := mustFragment(t, tt.markup)
			require.Len(t, nodes, 1)
			got, err := b.SerializeBlock(nodes[0])
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSerialize_Unsupported(t *testing.T) {
	t.Parallel()

	b := bridge.New("gfm")

	nodes := mustFragment(t, "<p>a<video></video></p>")
	_, err := b.SerializeBlock(nodes[0])
	require.ErrorIs(t, err, bridge.ErrUnsupportedNode)

	_, err = b.SerializeInline(dom.NewElement("p"))
	require.ErrorIs(t, err, bridge.ErrUnsupportedNode)
}

func TestListItemPrefix(t *testing.T) {
	t.Parallel()

	nodes := mustFragment(t, `<ol start="4" data-md-marker="."><li>a</li><li>b</li></ol>`)
	items := dom.Children(nodes[0])
	assert.Equal(t, "4. ", bridge.ListItemPrefix(items[0]))
	assert.Equal(t, "5. ", bridge.ListItemPrefix(items[1]))

	orphan := dom.NewElement("li")
	assert.Equal(t, "- ", bridge.ListItemPrefix(orphan))
}

// Canonical Markdown survives parse then serialize unchanged.
func TestRoundTrip_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"**bold**",
		"_it_ and `code`",
		"~~gone~~",
		"[a](http://x)",
		"# Title",
		"###### Deep *one*",
		"- a\n- b",
		"* star",
		"1. x\n2. y",
		"- a\n  - b",
		"> quote",
		"```go\nx := 1\n```",
		"---",
		"| a | b |\n| --- | --- |\n| 1 | 2 |",
		"# Title\n\nbody **b**\n\n- item",
	}

	b := bridge.New("gfm")
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			frag, err := b.ParseMarkdown(input)
			require.NoError(t, err)

			root := dom.NewRoot()
			if frag.Inline {
				p := dom.NewElement("p")
				for _, n := range frag.Nodes {
					p.AppendChild(n)
				}
				root.AppendChild(p)
			} else {
				for _, n := range frag.Nodes {
					root.AppendChild(n)
				}
			}

			got, err := b.SerializeBlock(root)
			require.NoError(t, err)
			assert.Equal(t, input, got)
		})
	}
}
