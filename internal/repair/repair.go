// Package repair normalizes near-JSON text emitted by language models into
// strictly parseable JSON. Models wrap JSON in prose, code fences, raw
// newlines, stray escapes, and trailing commas; each fix here is a pure
// transform applied in a fixed order, and every transform is idempotent so
// repairing already-clean JSON is a no-op.
package repair

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// ContainerHint selects which JSON container the caller expects.
type ContainerHint byte

const (
	// ArrayHint expects a top-level JSON array.
	ArrayHint ContainerHint = '['
	// ObjectHint expects a top-level JSON object.
	ObjectHint ContainerHint = '{'
)

// ErrNoContainer is returned when the input contains no opening or closing
// bracket of the requested kind.
var ErrNoContainer = eris.New("repair: no JSON container found")

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	trailingCommas = regexp.MustCompile(`,\s*([}\]])`)
)

// Repair applies the full transform pipeline and returns text a strict JSON
// parser can consume, or ErrNoContainer if no bracket of the hinted kind
// exists. Repair(Repair(x)) == Repair(x) for any x it accepts.
func Repair(raw string, hint ContainerHint) (string, error) {
	s := stripNewlines(raw)

	s, err := sliceContainer(s, hint)
	if err != nil {
		return "", err
	}

	s = stripCodeFences(s)
	s = collapseEscapes(s)
	s = collapseWhitespace(s)
	s = dropTrailingCommas(s)
	return s, nil
}

// stripNewlines removes raw newline and carriage-return characters. Models
// frequently wrap JSON across lines inside string values, which breaks
// parsers that treat raw newlines in strings as structural.
func stripNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", "")
}

// sliceContainer cuts the span from the first opening bracket of the hinted
// kind to the last matching closing bracket, discarding leading prose
// ("Here is the JSON:") and trailing prose the model appended.
func sliceContainer(s string, hint ContainerHint) (string, error) {
	open := byte(hint)
	var close byte
	switch hint {
	case ArrayHint:
		close = ']'
	case ObjectHint:
		close = '}'
	default:
		return "", eris.Errorf("repair: unknown container hint %q", hint)
	}

	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end < start {
		return "", ErrNoContainer
	}
	return s[start : end+1], nil
}

// stripCodeFences removes markdown code-fence markers. Fences outside the
// container span are already gone after slicing; this catches backtick runs
// the model embedded inside the span.
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	return strings.ReplaceAll(s, "```", "")
}

// collapseEscapes drops backslash-escaped newline sequences and stray
// backslashes that do not begin a valid JSON escape. Valid escapes
// (\" \\ \/ \b \f \r \t \uXXXX) pass through untouched.
func collapseEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(s) {
			break // trailing stray backslash
		}
		switch s[i+1] {
		case 'n':
			i++ // escaped newline: drop the pair
		case '"', '\\', '/', 'b', 'f', 'r', 't', 'u':
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
		default:
			// stray backslash: drop it, keep the following character
		}
	}
	return b.String()
}

// collapseWhitespace squeezes whitespace runs to single spaces. No schema
// field depends on internal whitespace, and some models pad output with
// multi-space runs.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(s, " "))
}

// dropTrailingCommas removes commas immediately before a closing } or ].
// Runs to a fixed point so stacked trailing commas (",,]") also clean up.
func dropTrailingCommas(s string) string {
	for {
		out := trailingCommas.ReplaceAllString(s, "$1")
		if out == s {
			return out
		}
		s = out
	}
}
