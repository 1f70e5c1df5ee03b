package pretty

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	markOpen  = `<span class="md-focus-mark">`
	markClose = `</span>`
	labelGap  = 2
)

// Step is one replayed keystroke of an editing session.
type Step struct {
	// Index counts keystrokes from 1.
	Index int

	// Key is the keystroke as shown to the user, e.g. "*" or "{enter}".
	Key string

	// HTML is the surface content after the keystroke.
	HTML string

	// Block and Offset locate the caret; HasCaret is false after a blur.
	Block    int
	Offset   int
	HasCaret bool
}

// FormatStep renders one transcript line. A positive width truncates the
// line to fit.
func (s *Styles) FormatStep(step Step, width int) string {
	caret := s.Dim.Render("no caret")
	if step.HasCaret {
		caret = s.Caret.Render(fmt.Sprintf("%d:%d", step.Block, step.Offset))
	}

	line := fmt.Sprintf("%s  %s  %s  %s",
		s.Step.Render(fmt.Sprintf("%3d", step.Index)),
		s.Key.Render(fmt.Sprintf("%-9q", step.Key)),
		caret,
		s.HighlightMarks(step.HTML),
	)
	if width > 0 {
		line = lipgloss.NewStyle().MaxWidth(width).Render(line)
	}
	return line + "\n"
}

// HighlightMarks styles the text of focus-mark spans in markup. Without
// color the markup is returned unchanged so the spans stay visible.
func (s *Styles) HighlightMarks(markup string) string {
	if !s.color {
		return s.Markup.Render(markup)
	}

	var sb strings.Builder
	rest := markup
	for {
		start := strings.Index(rest, markOpen)
		if start < 0 {
			break
		}
		end := strings.Index(rest[start:], markClose)
		if end < 0 {
			break
		}
		end += start
		sb.WriteString(s.Markup.Render(rest[:start]))
		sb.WriteString(s.FocusMark.Render(rest[start+len(markOpen) : end]))
		rest = rest[end+len(markClose):]
	}
	sb.WriteString(s.Markup.Render(rest))
	return sb.String()
}

// FormatSection renders a titled block of output.
func (s *Styles) FormatSection(title, body string) string {
	body = strings.TrimRight(body, "\n")
	return s.Heading.Render(title+":") + "\n" + body + "\n"
}

// Field is one labelled value of a FormatFields listing.
type Field struct {
	Label string
	Value string
}

// FormatFields renders fields as an aligned label/value listing.
func (s *Styles) FormatFields(fields []Field) string {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.Label))
	}

	var sb strings.Builder
	for _, f := range fields {
		pad := strings.Repeat(" ", width-len(f.Label)+labelGap)
		sb.WriteString("  " + s.Label.Render(f.Label) + pad + s.Value.Render(f.Value) + "\n")
	}
	return sb.String()
}
