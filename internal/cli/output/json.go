package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter formats data as JSON.
type JSONFormatter struct{}

// Format formats data as indented JSON. A Table is written as its rows
// keyed by header.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(plain(data))
}

// plain unwraps table values so machine formats see records, not layout.
func plain(data any) any {
	switch v := data.(type) {
	case *Table:
		return v.Records()
	case Table:
		return v.Records()
	}
	return data
}
