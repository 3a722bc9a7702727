package file

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"chemguess-service/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Export writes compounds to path, choosing the format from the extension.
func Export(path string, compounds []domain.Compound) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := WriteCSV(f, compounds); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case ".xlsx":
		return WriteXLSX(path, compounds)
	default:
		return fmt.Errorf("unsupported export file: %s", path)
	}
}

// WriteCSV writes a UTF-8 BOM so Excel on Windows shows the Chinese headers.
func WriteCSV(w io.Writer, compounds []domain.Compound) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, c := range compounds {
		if err := cw.Write(compoundRow(c)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteXLSX(path string, compounds []domain.Compound) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return err
		}
		f.SetActiveSheet(idx)
	}

	rows := make([][]string, 0, len(compounds)+1)
	rows = append(rows, exportHeader)
	for _, c := range compounds {
		rows = append(rows, compoundRow(c))
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}
