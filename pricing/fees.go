package pricing

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

//go:embed fees_default.csv
var defaultFeesCSV []byte

// Jurisdiction is a state of formation and its filing fee.
type Jurisdiction struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Fee  Cents  `json:"fee"`
}

// FeeSchedule maps jurisdiction codes to filing fees.
type FeeSchedule struct {
	byCode map[string]Jurisdiction
}

// DefaultFeeSchedule returns the schedule bundled with the binary.
func DefaultFeeSchedule() *FeeSchedule {
	rows, err := readRows(defaultFeesCSV, ".csv")
	if err != nil {
		panic(fmt.Sprintf("bundled fee schedule: %v", err))
	}
	s, err := ParseFeeRows(rows)
	if err != nil {
		panic(fmt.Sprintf("bundled fee schedule: %v", err))
	}
	return s
}

// LoadFeeSchedule reads a .csv or .xlsx schedule with code, name and fee
// columns. An empty path yields the default schedule.
func LoadFeeSchedule(path string) (*FeeSchedule, error) {
	if path == "" {
		return DefaultFeeSchedule(), nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fee schedule: %w", err)
	}
	rows, err := readRows(buf, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("read fee schedule %s: %w", path, err)
	}
	return ParseFeeRows(rows)
}

func readRows(content []byte, ext string) ([][]string, error) {
	switch ext {
	case ".csv":
		r := csv.NewReader(bytes.NewReader(content))
		r.FieldsPerRecord = -1
		return r.ReadAll()
	case ".xlsx":
		f, err := excelize.OpenReader(bytes.NewReader(content))
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return [][]string{}, nil
		}
		return f.GetRows(sheets[0])
	default:
		return nil, fmt.Errorf("unsupported file type %q; use .csv or .xlsx", ext)
	}
}

// ParseFeeRows builds a schedule from rows of code, name, fee. A first row
// whose fee column is not an amount is treated as a header. Blank rows are skipped.
func ParseFeeRows(rows [][]string) (*FeeSchedule, error) {
	s := &FeeSchedule{byCode: map[string]Jurisdiction{}}
	for i, row := range rows {
		if blankRow(row) {
			continue
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("row %d: want code, name, fee", i+1)
		}
		fee, err := ParseCents(row[2])
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		code := normalizeCode(row[0])
		if code == "" {
			return nil, fmt.Errorf("row %d: empty code", i+1)
		}
		if _, dup := s.byCode[code]; dup {
			return nil, fmt.Errorf("row %d: duplicate code %s", i+1, code)
		}
		s.byCode[code] = Jurisdiction{Code: code, Name: strings.TrimSpace(row[1]), Fee: fee}
	}
	if len(s.byCode) == 0 {
		return nil, fmt.Errorf("fee schedule is empty")
	}
	return s, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *FeeSchedule) Lookup(code string) (Jurisdiction, bool) {
	j, ok := s.byCode[normalizeCode(code)]
	return j, ok
}

// List returns all jurisdictions ordered by code.
func (s *FeeSchedule) List() []Jurisdiction {
	out := make([]Jurisdiction, 0, len(s.byCode))
	for _, j := range s.byCode {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Code < out[k].Code })
	return out
}
