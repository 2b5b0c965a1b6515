package dataprocessing

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	apierrors "github.com/marcojr93/cntrackerv1/internal/errors"
	"github.com/marcojr93/cntrackerv1/pkg/contracts/domain"
)

// DefaultSheet is the register tab holding upcoming deliveries
const DefaultSheet = "SOON"

// DefaultHeaderRow is the 1-based row carrying the column captions
const DefaultHeaderRow = 2

// LoadOptions selects the sheet and column layout of a register workbook
type LoadOptions struct {
	Sheet     string
	HeaderRow int
	Layout    domain.FieldLayout
}

func (o LoadOptions) withDefaults() LoadOptions {
	if strings.TrimSpace(o.Sheet) == "" {
		o.Sheet = DefaultSheet
	}
	if o.HeaderRow <= 0 {
		o.HeaderRow = DefaultHeaderRow
	}
	return o
}

// Register is the raw content of one register sheet
type Register struct {
	Sheet   string
	Headers []string
	Records []domain.ShipmentRecord
}

// ParseFile opens a register workbook and extracts its shipment rows.
func ParseFile(filePath string, opts LoadOptions) (*Register, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, apierrors.NewParsingError("failed to open workbook", err).WithContext("path", filePath)
	}
	defer f.Close()

	return parseWorkbook(f, opts)
}

// ParseReader reads a register workbook from r, e.g. an uploaded file.
func ParseReader(r io.Reader, opts LoadOptions) (*Register, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apierrors.NewParsingError("failed to read workbook", err)
	}
	defer f.Close()

	return parseWorkbook(f, opts)
}

func parseWorkbook(f *excelize.File, opts LoadOptions) (*Register, error) {
	opts = opts.withDefaults()

	sheet, ok := findSheet(f, opts.Sheet)
	if !ok {
		return nil, apierrors.NewNotFoundError(fmt.Sprintf("sheet %q", opts.Sheet)).
			WithContext("available_sheets", f.GetSheetList())
	}

	// Raw values keep numbers unformatted and date cells as serials
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apierrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}

	reg := &Register{Sheet: sheet}
	if len(rows) >= opts.HeaderRow {
		reg.Headers = trimCells(rows[opts.HeaderRow-1])
	}

	skipped := 0
	for i := opts.HeaderRow; i < len(rows); i++ {
		if isBlankRow(rows[i]) {
			skipped++
			continue
		}
		reg.Records = append(reg.Records, opts.Layout.Extract(i+1, trimCells(rows[i])))
	}

	slog.Debug("register sheet parsed",
		slog.String("sheet", sheet),
		slog.String("layout", opts.Layout.Name),
		slog.Int("records", len(reg.Records)),
		slog.Int("blank_rows", skipped))

	return reg, nil
}

// findSheet matches the requested sheet exactly, then ignoring case and padding
func findSheet(f *excelize.File, name string) (string, bool) {
	if idx, err := f.GetSheetIndex(name); err == nil && idx >= 0 {
		return name, true
	}
	for _, candidate := range f.GetSheetList() {
		if strings.EqualFold(strings.TrimSpace(candidate), strings.TrimSpace(name)) {
			return candidate, true
		}
	}
	return "", false
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func trimCells(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.TrimSpace(cell)
	}
	return out
}
