package report

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"github.com/javierwelch/challenge-latam/src/analysis"
)

func TestWriteWorkbook(t *testing.T) {
	rates := dataframe.New(
		series.New([]string{"B", "A", "C"}, series.String, "OPERA"),
		series.New([]float64{100, 50, math.NaN()}, series.Float, analysis.RateColumn),
	)

	path := filepath.Join(t.TempDir(), "report.xlsx")
	err := WriteWorkbook(path, 75, []RateSheet{{GroupColumn: "OPERA", Rates: rates}})
	if err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue("OPERA", "A2"); got != "B" {
		t.Errorf("A2 = %q, want B", got)
	}
	if got, _ := f.GetCellValue("OPERA", "B2"); got != "100" {
		t.Errorf("B2 = %q, want 100", got)
	}
	// NaN rate leaves the cell empty.
	if got, _ := f.GetCellValue("OPERA", "B4"); got != "" {
		t.Errorf("B4 = %q, want empty", got)
	}
}

func TestWritePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := WritePDF(path, 75, 4, nil); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("pdf missing: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("pdf is empty")
	}
}

func TestSheetNameTruncation(t *testing.T) {
	long := "a_very_long_grouping_column_name_indeed"
	if got := sheetName(long); len(got) != 31 {
		t.Errorf("sheetName length = %d, want 31", len(got))
	}
	if got := sheetName("OPERA"); got != "OPERA" {
		t.Errorf("sheetName(OPERA) = %q", got)
	}
}
