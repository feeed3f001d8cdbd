package arrangement

import (
	"encoding/json"
	"fmt"
	"io"
)

// Decode reads a JSON arrangement definition. Unknown fields are rejected so
// authoring typos surface at load time instead of silently validating
// nothing.
func Decode(r io.Reader) (GridArrangement, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var a GridArrangement
	if err := dec.Decode(&a); err != nil {
		return GridArrangement{}, fmt.Errorf("decode arrangement: %w", err)
	}
	return a, nil
}

// Encode writes the arrangement as indented JSON.
func Encode(w io.Writer, a GridArrangement) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encode arrangement: %w", err)
	}
	return nil
}
