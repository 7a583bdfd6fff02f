package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/karvasek/cbrelay/pkg/report"
)

// WriteCSV writes received.csv and sent.csv into dir, creating it if needed.
func WriteCSV(dir string, received []report.ReceivedRow, sent []report.SentRow) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	recRows := make([][]string, len(received))
	for i, r := range received {
		recRows[i] = receivedStrings(r)
	}
	if err := writeCSVFile(filepath.Join(dir, "received.csv"), receivedHeader, recRows); err != nil {
		return err
	}

	sentRows := make([][]string, len(sent))
	for i, r := range sent {
		sentRows[i] = sentStrings(r)
	}
	return writeCSVFile(filepath.Join(dir, "sent.csv"), sentHeader, sentRows)
}

func writeCSVFile(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}
