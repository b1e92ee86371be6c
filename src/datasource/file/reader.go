// Package file loads flight datasets from disk into gota DataFrames.
package file

import (
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ReadCSVToDataFrame reads a CSV dataset. encoding may be "" / "utf-8" or
// "latin1" (the SCL dataset ships ISO-8859-1 city names).
func ReadCSVToDataFrame(filePath, encoding string) (dataframe.DataFrame, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	switch encoding {
	case "", "utf-8", "utf8":
	case "latin1", "iso-8859-1":
		r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	default:
		return dataframe.DataFrame{}, fmt.Errorf("unsupported csv encoding: %q", encoding)
	}

	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DefaultType(series.String),
		dataframe.DetectTypes(false),
	)
	if df.Error() != nil {
		return dataframe.DataFrame{}, fmt.Errorf("parse csv: %w", df.Error())
	}
	return df, nil
}

// ReadXLSXToDataFrame reads one sheet of an Excel workbook. All cells come
// back as string columns; typed columns are derived later.
func ReadXLSXToDataFrame(filePath, sheetName string) (dataframe.DataFrame, error) {
	xlFile, err := xlsx.OpenFile(filePath)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open xlsx file: %w", err)
	}
	if len(xlFile.Sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("workbook %s has no sheets", filePath)
	}

	sheet, ok := xlFile.Sheet[sheetName]
	if !ok {
		return dataframe.DataFrame{}, fmt.Errorf("workbook %s has no sheet %q", filePath, sheetName)
	}
	return convertSheetToDataFrame(sheet), nil
}

// convertSheetToDataFrame turns an xlsx.Sheet into a DataFrame, taking the
// first row as the header.
func convertSheetToDataFrame(sheet *xlsx.Sheet) dataframe.DataFrame {
	if len(sheet.Rows) < 2 {
		return dataframe.New()
	}

	var headers []string
	for _, cell := range sheet.Rows[0].Cells {
		headers = append(headers, cell.Value)
	}

	columns := make([][]string, len(headers))
	for i := range columns {
		columns[i] = make([]string, 0, len(sheet.Rows)-1)
	}

	for _, row := range sheet.Rows[1:] {
		for i := range headers {
			v := ""
			if i < len(row.Cells) {
				v = row.Cells[i].Value
			}
			columns[i] = append(columns[i], v)
		}
	}

	seriesList := make([]series.Series, len(headers))
	for i, colName := range headers {
		seriesList[i] = series.New(columns[i], series.String, colName)
	}
	return dataframe.New(seriesList...)
}
