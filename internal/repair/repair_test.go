package repair

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepair_ProseWrappedArray(t *testing.T) {
	raw := "Here is the JSON you asked for:\n```json\n[{\"name\": \"Acme\"},]\n```\nLet me know if you need anything else."

	out, err := Repair(raw, ArrayHint)
	require.NoError(t, err)
	assert.Equal(t, `[{"name": "Acme"}]`, out)

	var parsed []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, "Acme", parsed[0]["name"])
}

func TestRepair_Idempotent(t *testing.T) {
	inputs := []struct {
		raw  string
		hint ContainerHint
	}{
		{"[{\"a\": 1},\n {\"b\": 2},]", ArrayHint},
		{"prose ```json {\"k\": \"v\\n still v\"} ``` more prose", ObjectHint},
		{`{"path": "a\/b", "quote": "say \"hi\""}`, ObjectHint},
		{"[1, 2, 3,,]", ArrayHint},
	}

	for _, in := range inputs {
		once, err := Repair(in.raw, in.hint)
		require.NoError(t, err)
		twice, err := Repair(once, in.hint)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "second pass changed output for %q", in.raw)
	}
}

func TestRepair_NoContainer(t *testing.T) {
	_, err := Repair("I could not find any companies matching that description.", ArrayHint)
	assert.ErrorIs(t, err, ErrNoContainer)

	// A closing bracket before the opening one is not a container.
	_, err = Repair("] nothing here [", ArrayHint)
	assert.ErrorIs(t, err, ErrNoContainer)
}

func TestRepair_HintSelectsContainer(t *testing.T) {
	raw := `The object {"a": 1} sits inside [1, 2] here`

	obj, err := Repair(raw, ObjectHint)
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, obj)

	// Array hint slices from the first [ to the last ], swallowing the
	// object span with it.
	arr, err := Repair(raw, ArrayHint)
	require.NoError(t, err)
	assert.Contains(t, arr, "[1, 2]")
}

func TestStripNewlines(t *testing.T) {
	assert.Equal(t, `{"a": "line one line two"}`, stripNewlines("{\"a\": \"line one\nline two\"}\r\n"))
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, stripCodeFences("```json{\"a\": 1}```"))
	assert.Equal(t, `{"a": 1}`, stripCodeFences("```{\"a\": 1}```"))
}

func TestCollapseEscapes(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"escaped newline dropped", `{"a": "x\ny"}`, `{"a": "xy"}`},
		{"valid quote escape kept", `{"a": "say \"hi\""}`, `{"a": "say \"hi\""}`},
		{"valid backslash escape kept", `{"a": "c:\\temp"}`, `{"a": "c:\\temp"}`},
		{"unicode escape kept", `{"a": "\u00e9"}`, `{"a": "\u00e9"}`},
		{"stray backslash dropped", `{"a": "odd \x char"}`, `{"a": "odd x char"}`},
		{"trailing backslash dropped", `{"a": "end"}\`, `{"a": "end"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := collapseEscapes(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, collapseEscapes(got), "not idempotent")
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, `{ "a": 1 }`, collapseWhitespace("  {   \"a\": \t 1 }  "))
}

func TestDropTrailingCommas(t *testing.T) {
	assert.Equal(t, `[1, 2]`, dropTrailingCommas(`[1, 2,]`))
	assert.Equal(t, `{"a": [1]}`, dropTrailingCommas(`{"a": [1,],}`))
	// Stacked commas clean up to a fixed point.
	assert.Equal(t, `[1]`, dropTrailingCommas(`[1,, ,]`))
	// Commas between elements are untouched.
	assert.Equal(t, `[1, 2, 3]`, dropTrailingCommas(`[1, 2, 3]`))
}
