package extract

import "fmt"

// MalformedInputError reports a document that cannot be treated as markup at
// all. Extraction returns no records alongside it.
type MalformedInputError struct {
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed input: %s: %v", e.Reason, e.Err)
	}
	return "malformed input: " + e.Reason
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

func malformed(reason string, err error) error {
	return &MalformedInputError{Reason: reason, Err: err}
}

// LayoutError reports an invalid layout definition.
type LayoutError struct {
	Layout string
	Field  string
	Reason string
}

func (e *LayoutError) Error() string {
	name := e.Layout
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("layout %s: %s: %s", name, e.Field, e.Reason)
}
