package fileutil

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
)

// MarshalIndented encodes value as two-space indented JSON with a trailing
// newline and without HTML escaping.
func MarshalIndented(value any) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func WriteJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func PrintJSON(value any) error {
	return WriteJSON(os.Stdout, value)
}
