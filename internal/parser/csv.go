package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

type CSVParser struct{}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

func (p *CSVParser) Parse(data []byte) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	var records [][]string
	var lines []int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)
		records = append(records, record)
		lines = append(lines, line)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}
	return fromRows(records, lines)
}

// WriteCSV renders rows under the given header.
func WriteCSV(columns []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return buf.Bytes(), nil
}
