package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXParser reads the first sheet of a workbook.
type XLSXParser struct{}

func NewXLSXParser() *XLSXParser {
	return &XLSXParser{}
}

func (p *XLSXParser) Parse(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		if strings.Contains(err.Error(), "zip: not a valid zip file") {
			return nil, fmt.Errorf("failed to open XLSX file: %w. (Hint: If this is a CSV file, please ensure it has a .csv extension)", err)
		}
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX file has no sheets")
	}

	sheetName := sheets[0]
	// raw values keep ISO timestamps typed as text intact
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheetName)
	}
	return FromRows(rows)
}
