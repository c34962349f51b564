// Package bulk turns uploaded Excel/CSV sheets into candidate rows for
// bulk intake. Header detection is fuzzy: the first row within the top
// ten that yields at least a name or phone column wins.
package bulk

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one candidate parsed out of a sheet.
type Row struct {
	Name        string
	PhoneNumber string
	Email       string
	Campaign    string
	Notes       string
}

const headerScanRows = 10

// columnFor maps a header cell to a canonical column name, or "".
func columnFor(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	switch {
	case h == "":
		return ""
	case strings.Contains(h, "name"):
		return "name"
	case strings.Contains(h, "phone"), strings.Contains(h, "tel"):
		return "phone_number"
	case strings.Contains(h, "mail"):
		return "email"
	case strings.Contains(h, "campaign"):
		return "campaign"
	case strings.Contains(h, "note"):
		return "notes"
	}
	return ""
}

// findHeader scans the leading rows for one that names the candidate
// columns. Returns the header row index and column index per field.
func findHeader(rows [][]string) (int, map[string]int, error) {
	limit := len(rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}
	for i := 0; i < limit; i++ {
		cols := map[string]int{}
		for j, cell := range rows[i] {
			if name := columnFor(cell); name != "" {
				if _, taken := cols[name]; !taken {
					cols[name] = j
				}
			}
		}
		if _, ok := cols["name"]; ok {
			return i, cols, nil
		}
		if _, ok := cols["phone_number"]; ok {
			return i, cols, nil
		}
	}
	return 0, nil, fmt.Errorf("no header row with name/phone columns found in first %d rows", headerScanRows)
}

func rowsToCandidates(rows [][]string) ([]Row, error) {
	headerIdx, cols, err := findHeader(rows)
	if err != nil {
		return nil, err
	}

	cell := func(row []string, field string) string {
		idx, ok := cols[field]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var out []Row
	for _, row := range rows[headerIdx+1:] {
		r := Row{
			Name:        cell(row, "name"),
			PhoneNumber: cell(row, "phone_number"),
			Email:       cell(row, "email"),
			Campaign:    cell(row, "campaign"),
			Notes:       cell(row, "notes"),
		}
		if r.Name == "" && r.PhoneNumber == "" && r.Email == "" {
			continue // blank or decorative row
		}
		out = append(out, r)
	}
	return out, nil
}

// ParseExcel reads candidate rows from the first sheet of an xlsx file.
func ParseExcel(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rowsToCandidates(rows)
}

// ParseCSV reads candidate rows from CSV data.
func ParseCSV(data []byte) ([]Row, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, record)
	}
	return rowsToCandidates(rows)
}
