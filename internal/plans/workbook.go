package plans

import (
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"ledger-reports/internal/apperr"
	"ledger-reports/internal/ledger"
)

var periodLayouts = []string{
	ledger.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02.01.2006",
}

// ParseWorkbook reads plan rows from the first sheet of an xlsx file. The
// header row must name the period, category and sum columns, in any order.
func ParseWorkbook(r io.Reader) ([]PlanRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.InvalidFormat("cannot read spreadsheet: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.InvalidFormat("spreadsheet has no sheets")
	}

	// Raw values keep dates as serial numbers instead of locale formatted text.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperr.InvalidFormat("cannot read sheet %q: %v", sheets[0], err)
	}

	header := -1
	for i, row := range rows {
		if !blank(row) {
			header = i
			break
		}
	}
	if header < 0 {
		return nil, apperr.InvalidFormat("spreadsheet is empty")
	}

	cols, err := locateColumns(rows[header])
	if err != nil {
		return nil, err
	}

	var out []PlanRow
	for i := header + 1; i < len(rows); i++ {
		row := rows[i]
		if blank(row) {
			continue
		}
		rowNum := i + 1

		period, err := parsePeriod(cell(row, cols.period))
		if err != nil {
			return nil, apperr.InvalidFormat("row %d: invalid plan month %q", rowNum, cell(row, cols.period))
		}

		sumText := strings.ReplaceAll(cell(row, cols.sum), ",", ".")
		sum, err := strconv.ParseFloat(strings.TrimSpace(sumText), 64)
		if err != nil || math.IsNaN(sum) || math.IsInf(sum, 0) {
			return nil, apperr.InvalidFormat("row %d: invalid plan sum %q", rowNum, cell(row, cols.sum))
		}

		out = append(out, PlanRow{
			Row:    rowNum,
			Period: period,
			Label:  cell(row, cols.category),
			Sum:    sum,
		})
	}

	return out, nil
}

type columns struct {
	period, category, sum int
}

func locateColumns(header []string) (columns, error) {
	cols := columns{period: -1, category: -1, sum: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "period":
			cols.period = i
		case "category":
			cols.category = i
		case "sum":
			cols.sum = i
		}
	}
	if cols.period < 0 || cols.category < 0 || cols.sum < 0 {
		return cols, apperr.InvalidFormat("header must contain period, category and sum columns")
	}
	return cols, nil
}

func parsePeriod(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return ledger.Day(t), nil
	}

	var lastErr error
	for _, layout := range periodLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return ledger.Day(t), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
