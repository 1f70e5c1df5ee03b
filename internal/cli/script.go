package cli

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrBadScript is returned for a keystroke script that cannot be parsed.
var ErrBadScript = errors.New("invalid keystroke script")

type keyAction uint8

const (
	keyText keyAction = iota
	keyEnter
	keyBackspace
	keyBlur
	keyEnd
)

// keystroke is one step of a replayed script.
type keystroke struct {
	action keyAction
	text   string
}

// label is the keystroke as shown in a transcript.
func (k keystroke) label() string {
	if k.action == keyText {
		return k.text
	}
	for name, action := range namedKeys {
		if action == k.action {
			return "{" + name + "}"
		}
	}
	return "{?}"
}

//nolint:gochecknoglobals // Read-only lookup table.
var namedKeys = map[string]keyAction{
	"enter":     keyEnter,
	"backspace": keyBackspace,
	"blur":      keyBlur,
	"end":       keyEnd,
}

// parseScript splits a script into keystrokes: every rune is typed on its
// own, "{name}" sends a named key and "{{" types a literal brace.
func parseScript(script string) ([]keystroke, error) {
	var keys []keystroke
	for i := 0; i < len(script); {
		if strings.HasPrefix(script[i:], "{{") {
			keys = append(keys, keystroke{action: keyText, text: "{"})
			i += 2
			continue
		}
		if script[i] == '{' {
			end := strings.IndexByte(script[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated key at byte %d", ErrBadScript, i)
			}
			name := script[i+1 : i+end]
			action, ok := namedKeys[name]
			if !ok {
				return nil, fmt.Errorf("%w: unknown key {%s}", ErrBadScript, name)
			}
			keys = append(keys, keystroke{action: action})
			i += end + 1
			continue
		}

		_, size := utf8.DecodeRuneInString(script[i:])
		keys = append(keys, keystroke{action: keyText, text: script[i : i+size]})
		i += size
	}
	return keys, nil
}
