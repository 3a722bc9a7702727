package file

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chemguess-service/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Loader is satisfied by every file format.
type Loader interface {
	LoadCompounds(ctx context.Context) ([]domain.Compound, error)
}

// NewLoader picks a loader from the file extension.
func NewLoader(path string) (Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSONLoader{Path: path}, nil
	case ".csv":
		return CSVLoader{Path: path}, nil
	case ".xlsx":
		return XLSXLoader{Path: path}, nil
	default:
		return nil, fmt.Errorf("unsupported catalog file: %s", path)
	}
}

// JSONLoader reads an array of compounds.
type JSONLoader struct {
	Path string
}

func (l JSONLoader) LoadCompounds(context.Context) ([]domain.Compound, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.Path, err)
	}
	var compounds []domain.Compound
	if err := json.Unmarshal(data, &compounds); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", l.Path, err)
	}
	return compounds, nil
}

// CSVLoader reads one compound per row after a header row.
type CSVLoader struct {
	Path string
}

func (l CSVLoader) LoadCompounds(context.Context) ([]domain.Compound, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.Path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.Path, err)
	}
	compounds, err := rowsToCompounds(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.Path, err)
	}
	return compounds, nil
}

// XLSXLoader reads Sheet (default: Sheet1, else the first sheet).
type XLSXLoader struct {
	Path  string
	Sheet string
}

func (l XLSXLoader) LoadCompounds(context.Context) ([]domain.Compound, error) {
	f, err := excelize.OpenFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.Path, err)
	}
	defer f.Close()

	sheet := l.Sheet
	if sheet == "" {
		sheet = "Sheet1"
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
			sheet = f.GetSheetName(0)
		}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	compounds, err := rowsToCompounds(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.Path, err)
	}
	return compounds, nil
}
