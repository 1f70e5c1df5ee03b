package bridge

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"golang.org/x/net/html"

	"github.com/yaklabco/mdlive/internal/mdsyntax"
	"github.com/yaklabco/mdlive/pkg/dom"
)

// Attributes recording the user's original syntax on mapped elements.
const (
	// AttrDelimiter holds the delimiter run of emphasis, strong, code and
	// strikethrough elements ("_", "**", "``", "~~").
	AttrDelimiter = "data-md-delim"

	// AttrMarker holds the list marker ("-", "*", "+" or "." / ")").
	AttrMarker = "data-md-marker"

	// AttrFence holds the fence of a fenced code block.
	AttrFence = "data-md-fence"
)

// mapper converts a goldmark AST into document-tree nodes.
type mapper struct {
	src []byte
}

// newMapper creates a new mapper for the given source.
func newMapper(src []byte) *mapper {
	return &mapper{src: src}
}

// mapChildren recursively maps all children of a goldmark node into parent.
func (m *mapper) mapChildren(gmParent ast.Node, parent *html.Node) {
	for child := gmParent.FirstChild(); child != nil; child = child.NextSibling() {
		switch gmn := child.(type) {
		case *ast.TextBlock:
			// Tight list items: inline content sits directly in the item.
			m.mapChildren(gmn, parent)

		case *ast.Text:
			m.mapText(gmn, parent)

		default:
			if node := m.mapNode(child); node != nil {
				parent.AppendChild(node)
			} else {
				m.mapChildren(child, parent)
			}
		}
	}
}

// mapNode converts a single goldmark node. It returns nil for nodes whose
// children should be spliced into the parent.
func (m *mapper) mapNode(gmNode ast.Node) *html.Node {
	var node *html.Node

	switch gmn := gmNode.(type) {
	// Block-level nodes.
	case *ast.Paragraph:
		node = dom.NewElement("p")
		m.mapChildren(gmn, node)

	case *ast.Heading:
		node = dom.NewElement("h" + strconv.Itoa(gmn.Level))
		m.mapChildren(gmn, node)

	case *ast.List:
		node = m.mapList(gmn)

	case *ast.ListItem:
		node = dom.NewElement("li")
		m.mapChildren(gmn, node)

	case *ast.Blockquote:
		node = dom.NewElement("blockquote")
		m.mapChildren(gmn, node)

	case *ast.FencedCodeBlock:
		node = m.mapFencedCodeBlock(gmn)

	case *ast.CodeBlock:
		node = m.mapCodeBlock(gmn, "")

	case *ast.ThematicBreak:
		node = dom.NewElement("hr")

	case *ast.HTMLBlock:
		// Raw HTML is shown literally; sanitization belongs to paste handling.
		node = dom.NewElement("p")
		node.AppendChild(dom.NewText(strings.TrimRight(m.lines(gmn), "\n")))

	// Inline-level nodes.
	case *ast.String:
		node = dom.NewText(string(gmn.Value))

	case *ast.Emphasis:
		node = m.mapEmphasis(gmn)

	case *ast.CodeSpan:
		node = m.mapCodeSpan(gmn)

	case *ast.Link:
		node = dom.NewElement("a", "href", string(gmn.Destination))
		if len(gmn.Title) > 0 {
			dom.SetAttr(node, "title", string(gmn.Title))
		}
		m.mapChildren(gmn, node)

	case *ast.Image:
		node = dom.NewElement("img", "src", string(gmn.Destination), "alt", m.plainText(gmn))
		if len(gmn.Title) > 0 {
			dom.SetAttr(node, "title", string(gmn.Title))
		}

	case *ast.AutoLink:
		node = dom.NewElement("a", "href", string(gmn.URL(m.src)))
		node.AppendChild(dom.NewText(string(gmn.Label(m.src))))

	case *ast.RawHTML:
		node = dom.NewText(m.segments(gmn.Segments))

	// GFM extension nodes.
	case *east.Strikethrough:
		node = dom.NewElement("del", AttrDelimiter, mdsyntax.StrikeDelimiter(gmn, m.src))
		m.mapChildren(gmn, node)

	case *east.TaskCheckBox:
		node = dom.NewElement("input", "type", "checkbox", "disabled", "")
		if gmn.IsChecked {
			dom.SetAttr(node, "checked", "")
		}

	case *east.Table:
		node = m.mapTable(gmn)

	default:
		return nil
	}

	return node
}

// mapText appends a goldmark Text node, resolving escapes and entities.
func (m *mapper) mapText(textNode *ast.Text, parent *html.Node) {
	value := textNode.Value(m.src)
	if !textNode.IsRaw() {
		value = util.UnescapePunctuations(value)
		value = util.ResolveNumericReferences(value)
		value = util.ResolveEntityNames(value)
	}
	parent.AppendChild(dom.NewText(string(value)))

	switch {
	case textNode.HardLineBreak():
		parent.AppendChild(dom.NewElement("br"))
	case textNode.SoftLineBreak():
		parent.AppendChild(dom.NewText("\n"))
	}
}

// mapList converts a goldmark List, keeping the marker the user typed.
func (m *mapper) mapList(list *ast.List) *html.Node {
	if !list.IsOrdered() {
		node := dom.NewElement("ul", AttrMarker, string(list.Marker))
		m.mapChildren(list, node)
		return node
	}

	node := dom.NewElement("ol", AttrMarker, string(list.Marker))
	if list.Start != 1 {
		dom.SetAttr(node, "start", strconv.Itoa(list.Start))
	}
	m.mapChildren(list, node)
	return node
}

// mapEmphasis converts emphasis to <em> or <strong>, recording the
// delimiter variant so it survives a round trip.
func (m *mapper) mapEmphasis(emphasis *ast.Emphasis) *html.Node {
	tag := "em"
	if emphasis.Level == 2 {
		tag = "strong"
	}
	node := dom.NewElement(tag, AttrDelimiter, mdsyntax.EmphasisDelimiter(emphasis, m.src))
	m.mapChildren(emphasis, node)
	return node
}

// mapCodeSpan converts a code span; its content is never unescaped.
func (m *mapper) mapCodeSpan(codeSpan *ast.CodeSpan) *html.Node {
	node := dom.NewElement("code", AttrDelimiter, mdsyntax.CodeDelimiter(codeSpan, m.src))

	var sb strings.Builder
	for child := codeSpan.FirstChild(); child != nil; child = child.NextSibling() {
		if textNode, ok := child.(*ast.Text); ok {
			sb.Write(textNode.Value(m.src))
		}
	}
	node.AppendChild(dom.NewText(sb.String()))
	return node
}

// mapFencedCodeBlock converts a fenced code block to <pre><code>.
func (m *mapper) mapFencedCodeBlock(codeBlock *ast.FencedCodeBlock) *html.Node {
	lang := ""
	if codeBlock.Info != nil {
		lang = string(codeBlock.Language(m.src))
	}
	node := m.mapCodeBlock(codeBlock, lang)
	dom.SetAttr(node, AttrFence, m.detectFence(codeBlock))
	return node
}

func (m *mapper) mapCodeBlock(block ast.Node, lang string) *html.Node {
	pre := dom.NewElement("pre")
	code := dom.NewElement("code")
	if lang != "" {
		dom.SetAttr(code, "class", "language-"+lang)
	}
	code.AppendChild(dom.NewText(m.lines(block)))
	pre.AppendChild(code)
	return pre
}

// detectFence finds the opening fence by scanning back from the first
// content line, or forward from the info string when there is none.
func (m *mapper) detectFence(codeBlock *ast.FencedCodeBlock) string {
	var lineStart int
	switch {
	case codeBlock.Info != nil:
		lineStart = codeBlock.Info.Segment.Start
	case codeBlock.Lines().Len() > 0:
		lineStart = codeBlock.Lines().At(0).Start - 1
		if lineStart < 0 {
			return "```"
		}
	default:
		return "```"
	}

	// Back up to the start of the fence line.
	for lineStart > 0 && m.src[lineStart-1] != '\n' {
		lineStart--
	}
	pos := lineStart
	for pos < len(m.src) && (m.src[pos] == ' ' || m.src[pos] == '\t') {
		pos++
	}
	if pos >= len(m.src) || (m.src[pos] != '`' && m.src[pos] != '~') {
		return "```"
	}
	fenceChar := m.src[pos]
	end := pos
	for end < len(m.src) && m.src[end] == fenceChar {
		end++
	}
	if end-pos < 3 {
		return "```"
	}
	return string(m.src[pos:end])
}

// mapTable converts a GFM table into thead/tbody structure.
func (m *mapper) mapTable(table *east.Table) *html.Node {
	node := dom.NewElement("table")
	var body *html.Node

	for child := table.FirstChild(); child != nil; child = child.NextSibling() {
		switch row := child.(type) {
		case *east.TableHeader:
			head := dom.NewElement("thead")
			head.AppendChild(m.mapRow(row, "th"))
			node.AppendChild(head)
		case *east.TableRow:
			if body == nil {
				body = dom.NewElement("tbody")
				node.AppendChild(body)
			}
			body.AppendChild(m.mapRow(row, "td"))
		}
	}
	return node
}

func (m *mapper) mapRow(row ast.Node, cellTag string) *html.Node {
	tr := dom.NewElement("tr")
	for child := row.FirstChild(); child != nil; child = child.NextSibling() {
		cell, ok := child.(*east.TableCell)
		if !ok {
			continue
		}
		td := dom.NewElement(cellTag)
		if align := alignmentName(cell.Alignment); align != "" {
			dom.SetAttr(td, "align", align)
		}
		m.mapChildren(cell, td)
		tr.AppendChild(td)
	}
	return tr
}

func alignmentName(a east.Alignment) string {
	switch a {
	case east.AlignLeft:
		return "left"
	case east.AlignRight:
		return "right"
	case east.AlignCenter:
		return "center"
	case east.AlignNone:
		return ""
	default:
		return ""
	}
}

// lines joins the raw source lines of a block node.
func (m *mapper) lines(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		sb.Write(seg.Value(m.src))
	}
	return sb.String()
}

func (m *mapper) segments(segs *text.Segments) string {
	var sb strings.Builder
	for i := range segs.Len() {
		seg := segs.At(i)
		sb.Write(seg.Value(m.src))
	}
	return sb.String()
}

// plainText returns the text of every Text descendant of n.
func (m *mapper) plainText(n ast.Node) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := node.(*ast.Text); ok {
			sb.Write(t.Value(m.src))
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}
