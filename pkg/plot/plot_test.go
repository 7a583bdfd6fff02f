package plot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/karvasek/cbrelay/pkg/report"
)

func sampleReceived() []report.ReceivedRow {
	return []report.ReceivedRow{
		{BlockHash: "aa", ReceivedSize: 20000, ReconstructionTime: 250 * time.Millisecond, BytesMissing: 880},
		{BlockHash: "bb", ReceivedSize: 9000, ReconstructionTime: 3 * time.Millisecond},
		{BlockHash: "cc", ReceivedSize: 15000},
	}
}

func sampleSent() []report.SentRow {
	return []report.SentRow{
		{BlockHash: "aa", PeerID: 11, SendSize: 25000, TCPWindowSize: 14480, PrefillSize: 5000},
		{BlockHash: "aa", PeerID: 3, SendSize: 20500, TCPWindowSize: 28960, PrefillSize: 500},
	}
}

func wantPNG(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("chart not written: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("%s is empty", path)
	}
}

func wantNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("%s written for empty data", path)
	}
}

func TestReceivedSizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	if err := ReceivedSizes(path, sampleReceived()); err != nil {
		t.Fatalf("plot: %v", err)
	}
	wantPNG(t, path)
}

func TestReceivedSizes_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	if err := ReceivedSizes(path, nil); err != nil {
		t.Fatalf("plot: %v", err)
	}
	wantNoFile(t, path)
}

func TestReceivedSizes_SingleRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	if err := ReceivedSizes(path, sampleReceived()[:1]); err != nil {
		t.Fatalf("plot: %v", err)
	}
	wantPNG(t, path)
}

func TestReconstructionTimes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	if err := ReconstructionTimes(path, sampleReceived()); err != nil {
		t.Fatalf("plot: %v", err)
	}
	wantPNG(t, path)
}

func TestReconstructionTimes_NoneReconstructed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	rows := []report.ReceivedRow{{BlockHash: "aa", ReceivedSize: 9000}}
	if err := ReconstructionTimes(path, rows); err != nil {
		t.Fatalf("plot: %v", err)
	}
	wantNoFile(t, path)
}

func TestReconstructionScatter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	if err := ReconstructionScatter(path, sampleReceived()); err != nil {
		t.Fatalf("plot: %v", err)
	}
	wantPNG(t, path)
}

// A log with exactly one reconstructed block gives the scatter a single
// point. The log-scale X axis must survive the collapsed range.
func TestReconstructionScatter_SinglePoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	rows := []report.ReceivedRow{
		{BlockHash: "aa", ReconstructionTime: time.Microsecond, BytesMissing: 880},
	}
	if err := ReconstructionScatter(path, rows); err != nil {
		t.Fatalf("plot: %v", err)
	}
	wantPNG(t, path)
}

// Several points sharing one reconstruction time collapse the X range the
// same way a single point does.
func TestReconstructionScatter_OneDistinctTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	rows := []report.ReceivedRow{
		{BlockHash: "aa", ReconstructionTime: 5 * time.Millisecond, BytesMissing: 100},
		{BlockHash: "bb", ReconstructionTime: 5 * time.Millisecond, BytesMissing: 900},
	}
	if err := ReconstructionScatter(path, rows); err != nil {
		t.Fatalf("plot: %v", err)
	}
	wantPNG(t, path)
}

func TestReconstructionScatter_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	if err := ReconstructionScatter(path, nil); err != nil {
		t.Fatalf("plot: %v", err)
	}
	wantNoFile(t, path)
}

func TestWindowSizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	if err := WindowSizes(path, sampleSent()); err != nil {
		t.Fatalf("plot: %v", err)
	}
	wantPNG(t, path)
}

func TestWindowSizes_SingleRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	if err := WindowSizes(path, sampleSent()[:1]); err != nil {
		t.Fatalf("plot: %v", err)
	}
	wantPNG(t, path)
}

func TestPrefillSizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	if err := PrefillSizes(path, sampleSent()); err != nil {
		t.Fatalf("plot: %v", err)
	}
	wantPNG(t, path)
}

func TestPrefillSizes_NonePrefilled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	rows := []report.SentRow{{BlockHash: "aa", SendSize: 9000, TCPWindowSize: 14480}}
	if err := PrefillSizes(path, rows); err != nil {
		t.Fatalf("plot: %v", err)
	}
	wantNoFile(t, path)
}

func TestAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	if err := All(dir, sampleReceived(), sampleSent()); err != nil {
		t.Fatalf("all: %v", err)
	}
	for _, name := range []string{
		"received_sizes.png",
		"reconstruction_times.png",
		"reconstruction_scatter.png",
		"tcp_window.png",
		"prefill_sizes.png",
	} {
		wantPNG(t, filepath.Join(dir, name))
	}
}

func TestAll_Empty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	if err := All(dir, nil, nil); err != nil {
		t.Fatalf("all: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("charts written for empty data: %v", entries)
	}
}
