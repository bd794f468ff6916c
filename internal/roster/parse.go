// Package roster reads monthly shift tables out of xlsx workbooks and turns
// them into per-day shift documents. The layout (header row, name column,
// date column span) is operator supplied because every facility formats the
// sheet differently.
package roster

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ParseOptions locates the roster grid inside the sheet. Columns and rows are
// 1-based, matching what the operator sees in Excel.
type ParseOptions struct {
	SheetIndex   int
	HeaderRow    int
	NameCol      int
	DateStartCol int
	DateEndCol   int // inclusive; 0 means until the last header cell
	DataStartRow int
	DataEndRow   int // inclusive; 0 means until the last row
	// MonthHint ("YYYY-MM") completes header cells that hold only a day
	// number (1..31).
	MonthHint string
}

type HeaderCell struct {
	Col  int
	Raw  string
	Date string // "YYYY-MM-DD" when recognized, else ""
}

type Row struct {
	Row        int
	Name       string
	CellsByCol map[int]string
}

type ParsedRoster struct {
	Header []HeaderCell
	Rows   []Row
}

var (
	datePattern   = regexp.MustCompile(`^(\d{4})[/\-.](\d{1,2})[/\-.](\d{1,2})$`)
	isoDate       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dayNumber     = regexp.MustCompile(`^(\d{1,2})$`)
	monthHintForm = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
)

// DetectedDates lists the header dates that parsed as full calendar dates.
func (p *ParsedRoster) DetectedDates() []string {
	out := []string{}
	for _, h := range p.Header {
		if isoDate.MatchString(h.Date) {
			out = append(out, h.Date)
		}
	}
	return out
}

// Parse reads the workbook and extracts the header dates and the per-staff
// cell grid. Cells are returned as trimmed display strings.
func Parse(r io.Reader, opts ParseOptions) (*ParsedRoster, error) {
	if opts.NameCol < 1 || opts.DateStartCol < 1 {
		return nil, errors.New("invalid column selection")
	}
	if opts.HeaderRow < 1 || opts.DataStartRow < 1 {
		return nil, errors.New("invalid row selection")
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if opts.SheetIndex < 0 || opts.SheetIndex >= len(sheets) {
		return nil, errors.New("sheet not found")
	}
	rows, err := f.GetRows(sheets[opts.SheetIndex])
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}

	maxCol := opts.DateEndCol
	if maxCol == 0 {
		maxCol = len(cellsOf(rows, opts.HeaderRow)) // header cell count
	}

	header := []HeaderCell{}
	for c := opts.DateStartCol; c <= maxCol; c++ {
		raw := cellAt(rows, opts.HeaderRow, c)
		date := normalizeHeaderDate(raw)
		if !isoDate.MatchString(date) {
			date = inferDateFromDayNumber(raw, opts.MonthHint)
		}
		header = append(header, HeaderCell{Col: c, Raw: raw, Date: date})
	}

	endRow := opts.DataEndRow
	if endRow == 0 {
		endRow = len(rows)
	}
	out := []Row{}
	for r := opts.DataStartRow; r <= endRow; r++ {
		name := cellAt(rows, r, opts.NameCol)
		if name == "" {
			continue
		}
		cells := make(map[int]string, len(header))
		for _, h := range header {
			cells[h.Col] = cellAt(rows, r, h.Col)
		}
		out = append(out, Row{Row: r, Name: name, CellsByCol: cells})
	}

	return &ParsedRoster{Header: header, Rows: out}, nil
}

func cellsOf(rows [][]string, row int) []string {
	if row < 1 || row > len(rows) {
		return nil
	}
	return rows[row-1]
}

func cellAt(rows [][]string, row, col int) string {
	cells := cellsOf(rows, row)
	if col < 1 || col > len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[col-1])
}

func normalizeHeaderDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if m := datePattern.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
		if int(t.Month()) == mo && t.Day() == d {
			return t.Format("2006-01-02")
		}
		return ""
	}
	return s
}

func inferDateFromDayNumber(raw, monthHint string) string {
	if monthHint == "" {
		return ""
	}
	dm := dayNumber.FindStringSubmatch(strings.TrimSpace(raw))
	if dm == nil {
		return ""
	}
	day, _ := strconv.Atoi(dm[1])
	if day < 1 || day > 31 {
		return ""
	}
	hm := monthHintForm.FindStringSubmatch(monthHint)
	if hm == nil {
		return ""
	}
	y, _ := strconv.Atoi(hm[1])
	mo, _ := strconv.Atoi(hm[2])
	t := time.Date(y, time.Month(mo), day, 0, 0, 0, 0, time.UTC)
	// Reject month rollover such as 2026-02-31.
	if int(t.Month()) != mo {
		return ""
	}
	return t.Format("2006-01-02")
}
