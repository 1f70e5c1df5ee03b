package bridge

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/yaklabco/mdlive/pkg/dom"
)

// SerializeBlock converts a block element (or a whole root) to Markdown.
// Text nodes are written verbatim so literal syntax the user typed stays
// literal syntax; focus marks are skipped.
func (b *Bridge) SerializeBlock(n *html.Node) (string, error) {
	var sb strings.Builder
	if err := b.writeBlock(&sb, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// SerializeInline converts inline nodes to Markdown.
func (b *Bridge) SerializeInline(nodes ...*html.Node) (string, error) {
	var sb strings.Builder
	for _, n := range nodes {
		if err := b.writeInline(&sb, n); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func (b *Bridge) writeBlock(sb *strings.Builder, n *html.Node) error {
	class := dom.Classify(n)

	switch class.Kind {
	case dom.KindRoot:
		return b.writeBlocks(sb, dom.Children(n), "\n\n")

	case dom.KindParagraph, dom.KindTableCell:
		return b.writeInlineChildren(sb, n)

	case dom.KindHeading:
		sb.WriteString(strings.Repeat("#", class.Level))
		sb.WriteByte(' ')
		return b.writeInlineChildren(sb, n)

	case dom.KindList:
		return b.writeList(sb, n)

	case dom.KindListItem:
		return b.writeListItem(sb, n, ListItemPrefix(n))

	case dom.KindBlockquote:
		var inner strings.Builder
		if err := b.writeMixed(&inner, n); err != nil {
			return err
		}
		sb.WriteString(prefixLines(inner.String(), "> ", "> "))
		return nil

	case dom.KindCodeBlock:
		writeCodeBlock(sb, n)
		return nil

	case dom.KindThematicBreak:
		sb.WriteString("---")
		return nil

	case dom.KindTable:
		return b.writeTable(sb, n)

	case dom.KindFocusMark:
		return nil

	case dom.KindUnknown, dom.KindTableSection, dom.KindTableRow:
		if n.Type == html.ElementNode {
			return fmt.Errorf("%w: <%s>", ErrUnsupportedNode, n.Data)
		}
		return nil

	default:
		return b.writeInline(sb, n)
	}
}

// writeBlocks writes block children separated by sep. Runs of inline
// children are grouped into a single paragraph.
func (b *Bridge) writeBlocks(sb *strings.Builder, nodes []*html.Node, sep string) error {
	first := true
	var run []*html.Node

	flush := func() error {
		if len(run) == 0 {
			return nil
		}
		if !first {
			sb.WriteString(sep)
		}
		first = false
		for _, n := range run {
			if err := b.writeInline(sb, n); err != nil {
				return err
			}
		}
		run = run[:0]
		return nil
	}

	for _, n := range nodes {
		if !dom.Classify(n).IsBlock() {
			run = append(run, n)
			continue
		}
		if err := flush(); err != nil {
			return err
		}
		if !first {
			sb.WriteString(sep)
		}
		first = false
		if err := b.writeBlock(sb, n); err != nil {
			return err
		}
	}
	return flush()
}

// writeMixed writes a container whose children may be inline or block.
func (b *Bridge) writeMixed(sb *strings.Builder, n *html.Node) error {
	return b.writeBlocks(sb, dom.Children(n), "\n\n")
}

func (b *Bridge) writeList(sb *strings.Builder, list *html.Node) error {
	sep := "\n"
	first := true
	for c := list.FirstChild; c != nil; c = c.NextSibling {
		if dom.KindOf(c) != dom.KindListItem {
			continue
		}
		if !first {
			sb.WriteString(sep)
		}
		first = false
		if err := b.writeListItem(sb, c, ListItemPrefix(c)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bridge) writeListItem(sb *strings.Builder, item *html.Node, prefix string) error {
	var inner strings.Builder
	if err := b.writeBlocks(&inner, dom.Children(item), "\n"); err != nil {
		return err
	}
	indent := strings.Repeat(" ", len(prefix))
	sb.WriteString(prefixLines(inner.String(), prefix, indent))
	return nil
}

// ListItemPrefix returns the Markdown marker for a list item, derived from
// its parent list's type, recorded marker and the item's ordinal.
func ListItemPrefix(item *html.Node) string {
	list := item.Parent
	class := dom.Classify(list)
	if class.Kind != dom.KindList {
		return "- "
	}

	marker, ok := dom.Attr(list, AttrMarker)
	if !class.Ordered {
		if !ok || marker == "" {
			marker = "-"
		}
		return marker + " "
	}

	if !ok || (marker != "." && marker != ")") {
		marker = "."
	}
	start := 1
	if v, ok := dom.Attr(list, "start"); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			start = parsed
		}
	}
	ordinal := start
	for c := list.FirstChild; c != nil && c != item; c = c.NextSibling {
		if dom.KindOf(c) == dom.KindListItem {
			ordinal++
		}
	}
	return strconv.Itoa(ordinal) + marker + " "
}

func writeCodeBlock(sb *strings.Builder, pre *html.Node) {
	fence, ok := dom.Attr(pre, AttrFence)
	if !ok || fence == "" {
		fence = "```"
	}
	lang := ""
	body := pre
	if code := pre.FirstChild; code != nil && code.Type == html.ElementNode && code.Data == "code" {
		body = code
		if cls, ok := dom.Attr(code, "class"); ok {
			for _, field := range strings.Fields(cls) {
				if after, found := strings.CutPrefix(field, "language-"); found {
					lang = after
				}
			}
		}
	}
	content := dom.ContentText(body)

	sb.WriteString(fence)
	sb.WriteString(lang)
	sb.WriteByte('\n')
	sb.WriteString(content)
	if content != "" && !strings.HasSuffix(content, "\n") {
		sb.WriteByte('\n')
	}
	sb.WriteString(fence)
}

func (b *Bridge) writeTable(sb *strings.Builder, table *html.Node) error {
	var rows [][]string
	var aligns []string

	var collect func(n *html.Node) error
	collect = func(n *html.Node) error {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch dom.KindOf(c) {
			case dom.KindTableSection:
				if err := collect(c); err != nil {
					return err
				}
			case dom.KindTableRow:
				var cells []string
				for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
					if dom.KindOf(cell) != dom.KindTableCell {
						continue
					}
					var cb strings.Builder
					if err := b.writeInlineChildren(&cb, cell); err != nil {
						return err
					}
					cells = append(cells, cb.String())
					if len(rows) == 0 {
						align, _ := dom.Attr(cell, "align")
						aligns = append(aligns, align)
					}
				}
				rows = append(rows, cells)
			default:
			}
		}
		return nil
	}
	if err := collect(table); err != nil {
		return err
	}

	for i, row := range rows {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("| " + strings.Join(row, " | ") + " |")
		if i == 0 {
			sb.WriteString("\n|")
			for _, align := range aligns {
				sb.WriteString(" " + delimiterCell(align) + " |")
			}
		}
	}
	return nil
}

func delimiterCell(align string) string {
	switch align {
	case "left":
		return ":---"
	case "right":
		return "---:"
	case "center":
		return ":---:"
	default:
		return "---"
	}
}

func (b *Bridge) writeInlineChildren(sb *strings.Builder, n *html.Node) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := b.writeInline(sb, c); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bridge) writeInline(sb *strings.Builder, n *html.Node) error {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return nil
	}
	if n.Type != html.ElementNode {
		return nil
	}

	switch dom.KindOf(n) {
	case dom.KindFocusMark:
		return nil

	case dom.KindStrong:
		return b.wrapInline(sb, n, delimiterOr(n, "**"))

	case dom.KindEmphasis:
		return b.wrapInline(sb, n, delimiterOr(n, "*"))

	case dom.KindStrike:
		return b.wrapInline(sb, n, delimiterOr(n, "~~"))

	case dom.KindCode:
		fence := delimiterOr(n, "`")
		content := dom.ContentText(n)
		pad := ""
		if strings.HasPrefix(content, "`") || strings.HasSuffix(content, "`") {
			pad = " "
		}
		sb.WriteString(fence + pad + content + pad + fence)
		return nil

	case dom.KindLink:
		sb.WriteByte('[')
		if err := b.writeInlineChildren(sb, n); err != nil {
			return err
		}
		href, _ := dom.Attr(n, "href")
		sb.WriteString("](" + href + titleSuffix(n) + ")")
		return nil

	case dom.KindImage:
		alt, _ := dom.Attr(n, "alt")
		src, _ := dom.Attr(n, "src")
		sb.WriteString("![" + alt + "](" + src + titleSuffix(n) + ")")
		return nil

	case dom.KindLineBreak:
		sb.WriteString("\\\n")
		return nil

	case dom.KindCheckbox:
		if _, checked := dom.Attr(n, "checked"); checked {
			sb.WriteString("[x] ")
		} else {
			sb.WriteString("[ ] ")
		}
		return nil

	case dom.KindUnknown:
		if n.Data == "span" {
			return b.writeInlineChildren(sb, n)
		}
		return fmt.Errorf("%w: <%s>", ErrUnsupportedNode, n.Data)

	default:
		return fmt.Errorf("%w: block <%s> in inline content", ErrUnsupportedNode, n.Data)
	}
}

func (b *Bridge) wrapInline(sb *strings.Builder, n *html.Node, delim string) error {
	sb.WriteString(delim)
	if err := b.writeInlineChildren(sb, n); err != nil {
		return err
	}
	sb.WriteString(delim)
	return nil
}

func delimiterOr(n *html.Node, fallback string) string {
	if v, ok := dom.Attr(n, AttrDelimiter); ok && v != "" {
		return v
	}
	return fallback
}

func titleSuffix(n *html.Node) string {
	title, ok := dom.Attr(n, "title")
	if !ok || title == "" {
		return ""
	}
	return ` "` + strings.ReplaceAll(title, `"`, `\"`) + `"`
}

// prefixLines prefixes the first line with first and every later line with
// rest.
func prefixLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		switch {
		case i == 0:
			lines[i] = first + line
		case line == "":
			lines[i] = strings.TrimRight(rest, " ")
		default:
			lines[i] = rest + line
		}
	}
	return strings.Join(lines, "\n")
}
