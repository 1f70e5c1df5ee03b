package focusmark

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/yaklabco/mdlive/pkg/dom"
)

// placeholder is the template content used to recover delimiters. It
// never occurs inside a delimiter.
const placeholder = "x"

// inlineDelimiters is the table of strings an inline mark may hold. A mark
// edited to anything else is unwrapped back to raw text.
//
//nolint:gochecknoglobals // Read-only lookup table.
var inlineDelimiters = []string{"*", "_", "**", "__", "`", "``", "~", "~~"}

//nolint:gochecknoglobals // Compiled patterns are read-only.
var (
	headingMarkPattern   = regexp.MustCompile(`^(#{1,6}) $`)
	bulletMarkPattern    = regexp.MustCompile(`^([-*+]) $`)
	orderedMarkPattern   = regexp.MustCompile(`^(\d{1,9})([.)]) $`)
	delimiterCharPattern = regexp.MustCompile("^[*_`~]+$")
)

// IsInlineDelimiter reports whether s is a supported inline delimiter.
func IsInlineDelimiter(s string) bool {
	return slices.Contains(inlineDelimiters, s)
}

// deriveInline recovers the delimiters of el by serializing a template
// clone (same tag and attributes, placeholder text) and cutting the
// placeholder out, so the user's variant (e.g. "_" rather than "*") is
// reproduced.
func (m *Manager) deriveInline(el *html.Node) (open, closing string, ok bool) {
	tmpl := dom.ShallowClone(el)
	tmpl.AppendChild(dom.NewText(placeholder))

	md, err := m.bridge.SerializeInline(tmpl)
	if err != nil {
		return "", "", false
	}
	i := strings.Index(md, placeholder)
	if i <= 0 {
		return "", "", false
	}
	return md[:i], md[i+len(placeholder):], true
}

// deriveBlock recovers the prefix of a heading or list item. List items
// are serialized inside a single-item clone of their list, numbered as the
// item is, so ordered prefixes carry the right ordinal.
func (m *Manager) deriveBlock(el *html.Node) (string, bool) {
	tmpl := dom.ShallowClone(el)
	tmpl.AppendChild(dom.NewText(placeholder))

	subject := tmpl
	if dom.KindOf(el) == dom.KindListItem {
		list := el.Parent
		if dom.KindOf(list) != dom.KindList {
			return "", false
		}
		wrapper := dom.ShallowClone(list)
		if dom.Classify(list).Ordered {
			dom.SetAttr(wrapper, "start", strconv.Itoa(ordinal(el)))
		}
		wrapper.AppendChild(tmpl)
		subject = wrapper
	}

	md, err := m.bridge.SerializeBlock(subject)
	if err != nil {
		return "", false
	}
	prefix, found := strings.CutSuffix(md, placeholder)
	if !found || prefix == "" {
		return "", false
	}
	return prefix, true
}

// ordinal returns the number an ordered list displays for item.
func ordinal(item *html.Node) int {
	n := 1
	if v, ok := dom.Attr(item.Parent, "start"); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			n = parsed
		}
	}
	for c := item.Parent.FirstChild; c != nil && c != item; c = c.NextSibling {
		if dom.KindOf(c) == dom.KindListItem {
			n++
		}
	}
	return n
}

// validBlockMark checks an edited block mark against its element. It
// returns the heading level for headings and zero for list items.
func validBlockMark(el *html.Node, text string) (level int, ok bool) {
	class := dom.Classify(el)
	switch class.Kind {
	case dom.KindHeading:
		sub := headingMarkPattern.FindStringSubmatch(text)
		if sub == nil {
			return 0, false
		}
		return len(sub[1]), true
	case dom.KindListItem:
		if dom.Classify(el.Parent).Ordered {
			return 0, orderedMarkPattern.MatchString(text)
		}
		return 0, bulletMarkPattern.MatchString(text)
	default:
		return 0, false
	}
}
