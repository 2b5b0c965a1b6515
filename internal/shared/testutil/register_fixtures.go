package testutil

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Register workbook columns (0-based), matching the "soon" layout
const (
	ColSupplier  = 0
	ColPONumber  = 1
	ColProduct   = 4
	ColContainer = 5
	ColCountry   = 9
	ColDelivery  = 19
	ColTransport = 20
	ColAmountW   = 22
	ColAmountX   = 23
)

// RegisterRow is one data row of a test register. Delivery and Amount are
// written as-is, so a time.Time produces a date cell and a number a numeric cell.
type RegisterRow struct {
	Supplier  string
	PONumber  string
	Product   string
	Container string
	Country   string
	Delivery  any
	Transport string
	Amount    any
}

// RegisterWorkbook describes a workbook to generate
type RegisterWorkbook struct {
	Sheet       string
	AmountCol   int
	Rows        []RegisterRow
	BlankRowsAt []int // data positions (0-based) preceded by an empty row
	ExtraSheets []string
}

// WriteRegister saves the workbook under dir and returns its path. Row 1
// carries a title, row 2 the captions and data starts on row 3.
func WriteRegister(t *testing.T, dir, name string, wb RegisterWorkbook) string {
	t.Helper()

	if wb.Sheet == "" {
		wb.Sheet = "SOON"
	}
	if wb.AmountCol == 0 {
		wb.AmountCol = ColAmountX
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), wb.Sheet); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	for _, extra := range wb.ExtraSheets {
		if _, err := f.NewSheet(extra); err != nil {
			t.Fatalf("add sheet %s: %v", extra, err)
		}
	}

	set := func(col, row int, v any) {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetCellValue(wb.Sheet, cell, v); err != nil {
			t.Fatalf("set %s: %v", cell, err)
		}
	}

	set(0, 1, "Container register")
	captions := map[int]string{
		ColSupplier: "Supplier", ColPONumber: "PO", ColProduct: "Product",
		ColContainer: "Container", ColCountry: "Country", ColDelivery: "Delivery",
		ColTransport: "Transport", wb.AmountCol: "Amount",
	}
	for col, caption := range captions {
		set(col, 2, caption)
	}

	blanks := make(map[int]bool, len(wb.BlankRowsAt))
	for _, pos := range wb.BlankRowsAt {
		blanks[pos] = true
	}

	row := 3
	for i, r := range wb.Rows {
		if blanks[i] {
			row++
		}
		set(ColSupplier, row, r.Supplier)
		set(ColPONumber, row, r.PONumber)
		set(ColProduct, row, r.Product)
		set(ColContainer, row, r.Container)
		set(ColCountry, row, r.Country)
		if r.Delivery != nil {
			set(ColDelivery, row, r.Delivery)
		}
		if r.Transport != "" {
			set(ColTransport, row, r.Transport)
		}
		if r.Amount != nil {
			set(wb.AmountCol, row, r.Amount)
		}
		row++
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}
