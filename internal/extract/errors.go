package extract

import "fmt"

// ErrorKind classifies extraction failures.
type ErrorKind string

const (
	// KindNoContainerFound means no bracket of the expected kind was present.
	KindNoContainerFound ErrorKind = "no_container_found"
	// KindMalformedJSON means the repaired text still failed to parse.
	KindMalformedJSON ErrorKind = "malformed_json"
	// KindSchemaMismatch means the parsed JSON is not the expected shape.
	KindSchemaMismatch ErrorKind = "schema_mismatch"
)

// Error is an extraction failure. Raw always carries the text that failed —
// the repaired text when repair succeeded, otherwise the original input —
// so a user can diagnose or manually correct the upstream prompt.
type Error struct {
	Kind   ErrorKind
	Raw    string
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("extract: %s", e.Kind)
	}
	return fmt.Sprintf("extract: %s: %s", e.Kind, e.Detail)
}
