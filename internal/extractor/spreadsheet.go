package extractor

import (
	"fmt"
	"strings"

	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
)

// extractXLSX renders each sheet as tab-separated rows under a sheet-name
// heading, with a blank line between sheets.
func extractXLSX(filePath string) (string, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return "", fmt.Errorf("read xlsx: %w", err)
	}

	var sb strings.Builder
	for _, sheet := range f.Sheets {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(sheet.Name + "\n")
		for _, row := range sheet.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				cells = append(cells, cell.String())
			}
			sb.WriteString(strings.Join(cells, "\t") + "\n")
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

func extractODS(filePath string) (string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return "", fmt.Errorf("read ods: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return "", fmt.Errorf("read ods sheet %q: %w", sheetName, err)
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(sheetName + "\n")
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t") + "\n")
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
