// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-summary/pkg/types"
)

// CSVHeader is the first line of a CSV export.
const CSVHeader = "Date,Output,Controls"

// WriteCSV writes entries as CSV: the header row, then one row per entry.
// Every field is quoted and embedded quotes are doubled. Rows are separated
// by "\n" with no trailing newline.
func WriteCSV(w io.Writer, entries []Entry) error {
	rows := make([]string, 0, len(entries)+1)
	rows = append(rows, CSVHeader)
	for _, e := range entries {
		rows = append(rows, strings.Join([]string{quote(e.Date), quote(e.Output), quote(e.Controls)}, ","))
	}
	if _, err := io.WriteString(w, strings.Join(rows, "\n")); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// ExportFilename returns the CSV file name for an export made at t.
func ExportFilename(t time.Time) string {
	return "research_summary_history_" + t.Format("2006-01-02") + ".csv"
}

// WriteYAML writes the full records as a YAML sequence.
func WriteYAML(w io.Writer, records []types.GenerationRecord) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// WriteJSON writes the full records as an indented JSON array.
func WriteJSON(w io.Writer, records []types.GenerationRecord) error {
	if records == nil {
		records = []types.GenerationRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
