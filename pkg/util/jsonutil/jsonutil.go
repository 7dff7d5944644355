package jsonutil

import (
	"encoding/json"
	"io"
)

// WriteLine writes the input as one newline terminated JSON document
// (ndjson record).
func WriteLine(w io.Writer, input interface{}) error {
	return encode(w, input, false)
}

// WritePretty writes the input as indented JSON.
func WritePretty(w io.Writer, input interface{}) error {
	return encode(w, input, true)
}

func encode(w io.Writer, input interface{}, pretty bool) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if pretty {
		encoder.SetIndent("", "  ")
	}

	return encoder.Encode(input)
}
