package dataset

import (
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	apperrors "shopee-dashboard/internal/errors"
)

// ReadCSV returns the header followed by every record, all as raw strings.
// Type detection is disabled so identifiers such as 0042 survive intact.
func ReadCSV(r io.Reader) ([][]string, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, apperrors.Parse(0, "", fmt.Errorf("read csv: %w", df.Err))
	}
	return df.Records(), nil
}

// ReadXLSX reads the first sheet of a workbook.
func ReadXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.Parse(0, "", fmt.Errorf("open workbook: %w", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.Parse(0, "", fmt.Errorf("workbook has no sheets"))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.Parse(0, "", fmt.Errorf("read sheet %q: %w", sheets[0], err))
	}
	return rows, nil
}
