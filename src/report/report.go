// Package report writes the analysis results as an Excel workbook and a
// PDF summary embedding the rendered charts.
package report

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/javierwelch/challenge-latam/src/analysis"
)

// RateSheet is one delay-rate table destined for its own workbook sheet.
type RateSheet struct {
	GroupColumn string
	Rates       dataframe.DataFrame // [GroupColumn, delay_rate]
}

// WriteWorkbook writes one sheet per grouping column with the group names
// and their delay rates. NaN rates become empty cells.
func WriteWorkbook(path string, global float64, sheets []RateSheet) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		name := sheetName(sheet.GroupColumn)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return fmt.Errorf("add sheet %q: %w", name, err)
			}
		}

		f.SetCellValue(name, "A1", sheet.GroupColumn)
		f.SetCellValue(name, "B1", "delay rate (%)")

		groups := sheet.Rates.Col(sheet.GroupColumn).Records()
		rates := sheet.Rates.Col(analysis.RateColumn).Float()
		for row := range groups {
			cellA, _ := excelize.CoordinatesToCellName(1, row+2)
			cellB, _ := excelize.CoordinatesToCellName(2, row+2)
			f.SetCellValue(name, cellA, groups[row])
			if !math.IsNaN(rates[row]) {
				f.SetCellValue(name, cellB, rates[row])
			}
		}

		footer, _ := excelize.CoordinatesToCellName(1, len(groups)+3)
		if !math.IsNaN(global) {
			f.SetCellValue(name, footer, fmt.Sprintf("overall delay rate: %.2f%%", global))
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// WritePDF writes a summary page followed by one page per chart image.
func WritePDF(path string, global float64, rows int, chartPaths []string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Flight delay analysis", false)

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Flight delay analysis")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Flights analyzed: %d", rows))
	pdf.Ln(8)
	if !math.IsNaN(global) {
		pdf.Cell(0, 8, fmt.Sprintf("Overall delay rate: %.2f%%", global))
		pdf.Ln(8)
	}

	for _, chart := range chartPaths {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, filepath.Base(chart))
		pdf.Ln(10)
		pdf.ImageOptions(chart, 10, 30, 190, 0, false,
			gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}, 0, "")
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("save pdf: %w", err)
	}
	return nil
}

// sheetName keeps sheet names inside Excel's 31-character limit.
func sheetName(col string) string {
	if len(col) > 31 {
		return col[:31]
	}
	return col
}
