package export

import (
	"fmt"
	"io"
	"strings"
)

// TableExporter prints a dataset as tab-separated console text, with a blank
// line whenever the first column changes value.
type TableExporter struct{}

// NewTableExporter constructs a console table exporter.
func NewTableExporter() *TableExporter {
	return &TableExporter{}
}

// Write prints the header row followed by grouped data rows.
func (e *TableExporter) Write(w io.Writer, data Dataset) error {
	if len(data.Headers) == 0 {
		return fmt.Errorf("table requires at least one header")
	}
	if _, err := fmt.Fprintln(w, strings.Join(data.Headers, "\t ")); err != nil {
		return err
	}
	previous := ""
	for i, row := range data.Rows {
		key := row[data.Headers[0]]
		if i > 0 && key != previous {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		previous = key
		values := make([]string, len(data.Headers))
		for j, header := range data.Headers {
			values[j] = row[header]
		}
		if _, err := fmt.Fprintln(w, strings.Join(values, "\t ")); err != nil {
			return err
		}
	}
	return nil
}
