package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/karvasek/cbrelay/pkg/report"
)

// WriteXLSX writes a workbook with a "sent" and a "received" sheet, one row
// per record, derived columns included.
func WriteXLSX(path string, received []report.ReceivedRow, sent []report.SentRow) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "sent")
	if _, err := f.NewSheet("received"); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}

	if err := writeSheet(f, "sent", sentHeader, len(sent), func(i int) []string {
		return sentStrings(sent[i])
	}); err != nil {
		return err
	}
	if err := writeSheet(f, "received", receivedHeader, len(received), func(i int) []string {
		return receivedStrings(received[i])
	}); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, n int, row func(int) []string) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("sheet %s header: %w", sheet, err)
	}
	for i := 0; i < n; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+2, err)
		}
		values := row(i)
		cells := make([]any, len(values))
		for j, v := range values {
			cells[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
