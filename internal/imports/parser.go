package imports

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one data row of the import spreadsheet. Line is the 1-indexed
// spreadsheet line including the header, so the first data row is line 2.
// Error messages must match what the operator sees in Excel.
type Row struct {
	Line   int
	Name   string
	Email  string
	Block  string
	Unit   string
	Amount *float64
}

// ParseRows reads the first sheet of an xlsx file. Fixed positional columns
// [name, email, block, unit, amount]; the header row is discarded.
func ParseRows(fileBytes []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(fileBytes))
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir planilha: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("planilha sem abas")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("falha ao ler planilha: %w", err)
	}
	// A header-only file is valid: the job completes with zero rows.
	if len(rows) < 2 {
		return nil, nil
	}

	out := make([]Row, 0, len(rows)-1)
	for i, raw := range rows[1:] {
		out = append(out, Row{
			Line:   i + 2,
			Name:   cell(raw, 0),
			Email:  cell(raw, 1),
			Block:  cell(raw, 2),
			Unit:   cell(raw, 3),
			Amount: parseAmount(cell(raw, 4)),
		})
	}
	return out, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseAmount accepts both "1234.56" and the Brazilian "1.234,56"; a blank
// or unparseable cell means "not informed", never zero.
func parseAmount(s string) *float64 {
	if s == "" {
		return nil
	}
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
