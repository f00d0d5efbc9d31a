package parser

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ScheduleColumns is the required header of a schedule table, in export order.
var ScheduleColumns = []string{
	"stage_id",
	"stage_name",
	"match_id",
	"team_a",
	"team_b",
	"match_time_iso",
	"winner_team",
}

// Table is a header plus string rows. Line numbers in errors are 1-based and
// count the header line.
type Table struct {
	Columns []string
	Rows    []Row
}

type Row struct {
	Line   int
	Values []string
}

// Get returns the trimmed value of column in row, or "" when absent.
func (t *Table) Get(row Row, column string) string {
	for i, c := range t.Columns {
		if c == column {
			if i < len(row.Values) {
				return strings.TrimSpace(row.Values[i])
			}
			return ""
		}
	}
	return ""
}

// Missing lists required columns absent from the header.
func (t *Table) Missing(required []string) []string {
	have := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		have[c] = true
	}
	var missing []string
	for _, c := range required {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

type Parser interface {
	Parse(data []byte) (*Table, error)
}

type ParserFactory interface {
	GetParser(filename string) (Parser, error)
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) GetParser(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".csv", "":
		return NewCSVParser(), nil
	case ".xlsx", ".xlsm":
		return NewXLSXParser(), nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

// FromRows builds a Table from raw rows whose first non-empty row is the
// header. Used by the CSV, XLSX and Sheets readers alike.
func FromRows(rows [][]string) (*Table, error) {
	return fromRows(rows, nil)
}

// fromRows takes source line numbers when the reader skipped lines itself.
func fromRows(rows [][]string, lines []int) (*Table, error) {
	t := &Table{}
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		if t.Columns == nil {
			t.Columns = normalizeHeader(row)
			continue
		}
		line := i + 1
		if i < len(lines) {
			line = lines[i]
		}
		t.Rows = append(t.Rows, Row{Line: line, Values: row})
	}
	if t.Columns == nil {
		return nil, fmt.Errorf("schedule has no header row")
	}
	return t, nil
}

func normalizeHeader(row []string) []string {
	cols := make([]string, len(row))
	for i, c := range row {
		c = strings.TrimPrefix(c, "\ufeff")
		cols[i] = strings.ToLower(strings.TrimSpace(c))
	}
	return cols
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
