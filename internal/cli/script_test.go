package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScript(t *testing.T) {
	t.Parallel()

	text := func(s string) keystroke { return keystroke{action: keyText, text: s} }

	tests := []struct {
		name   string
		script string
		want   []keystroke
	}{
		{"empty", "", nil},
		{"runes", "a*", []keystroke{text("a"), text("*")}},
		{"multibyte", "é→", []keystroke{text("é"), text("→")}},
		{"named keys", "x{enter}{backspace}{blur}{end}", []keystroke{
			text("x"),
			{action: keyEnter},
			{action: keyBackspace},
			{action: keyBlur},
			{action: keyEnd},
		}},
		{"escaped brace", "{{x}", []keystroke{text("{"), text("x"), text("}")}},
		{"lone closing brace", "}", []keystroke{text("}")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseScript(tt.script)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseScript_Errors(t *testing.T) {
	t.Parallel()

	for _, script := range []string{"{enter", "a{tab}", "{}"} {
		_, err := parseScript(script)
		require.ErrorIs(t, err, ErrBadScript, script)
	}
}

func TestKeystrokeLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "*", keystroke{action: keyText, text: "*"}.label())
	assert.Equal(t, "{enter}", keystroke{action: keyEnter}.label())
	assert.Equal(t, "{blur}", keystroke{action: keyBlur}.label())
}
