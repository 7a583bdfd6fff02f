// Package plot renders the analysis charts as PNG files: received sizes,
// reconstruction times, send-window sizes, and prefill distributions.
package plot

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/karvasek/cbrelay/pkg/report"
)

const (
	width  = 8 * vg.Inch
	height = 5 * vg.Inch
)

// All writes every chart into dir, creating it if needed. Charts whose
// underlying data is empty are skipped.
func All(dir string, received []report.ReceivedRow, sent []report.SentRow) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	steps := []struct {
		name string
		fn   func(string) error
	}{
		{"received_sizes.png", func(p string) error { return ReceivedSizes(p, received) }},
		{"reconstruction_times.png", func(p string) error { return ReconstructionTimes(p, received) }},
		{"reconstruction_scatter.png", func(p string) error { return ReconstructionScatter(p, received) }},
		{"tcp_window.png", func(p string) error { return WindowSizes(p, sent) }},
		{"prefill_sizes.png", func(p string) error { return PrefillSizes(p, sent) }},
	}
	for _, s := range steps {
		if err := s.fn(filepath.Join(dir, s.name)); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// ReceivedSizes is a histogram of received CMPCTBLOCK sizes.
func ReceivedSizes(path string, received []report.ReceivedRow) error {
	vals := make(plotter.Values, 0, len(received))
	for _, r := range received {
		vals = append(vals, float64(r.ReceivedSize))
	}
	if len(vals) == 0 {
		return nil
	}

	p := plot.New()
	p.Title.Text = "Received CMPCTBLOCK sizes"
	p.X.Label.Text = "Received size (bytes)"
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(vals, 70)
	if err != nil {
		return err
	}
	p.Add(h)
	return p.Save(width, height, path)
}

// ReconstructionTimes is a histogram of reconstruction durations in ms.
func ReconstructionTimes(path string, received []report.ReceivedRow) error {
	vals := make(plotter.Values, 0, len(received))
	for _, r := range received {
		if r.ReconstructionTime > 0 {
			vals = append(vals, float64(r.ReconstructionTime.Nanoseconds())/1e6)
		}
	}
	if len(vals) == 0 {
		return nil
	}

	p := plot.New()
	p.Title.Text = "Reconstruction times"
	p.X.Label.Text = "Reconstruction time (ms)"
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(vals, 70)
	if err != nil {
		return err
	}
	p.Add(h)
	return p.Save(width, height, path)
}

// ReconstructionScatter plots missing bytes against reconstruction time,
// log scale on the time axis since most reconstructions are sub-ms.
func ReconstructionScatter(path string, received []report.ReceivedRow) error {
	var xys plotter.XYs
	for _, r := range received {
		ms := float64(r.ReconstructionTime.Nanoseconds()) / 1e6
		if ms <= 0 {
			continue
		}
		xys = append(xys, plotter.XY{X: ms, Y: float64(r.BytesMissing)})
	}
	if len(xys) == 0 {
		return nil
	}

	p := plot.New()
	p.Title.Text = "Missing bytes vs reconstruction time"
	p.X.Label.Text = "Reconstruction time (ms, log scale)"
	p.Y.Label.Text = "Missing bytes"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}

	s, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	p.Add(s)

	// With a single distinct X value the autoscaled range collapses and the
	// log-scale axis padding crosses zero, which LogTicks rejects. Bracket
	// the value so the axis stays positive.
	xmin, xmax := xys[0].X, xys[0].X
	for _, xy := range xys[1:] {
		xmin = math.Min(xmin, xy.X)
		xmax = math.Max(xmax, xy.X)
	}
	if xmin == xmax {
		p.X.Min = xmin / 2
		p.X.Max = xmax * 2
	}

	return p.Save(width, height, path)
}

// WindowSizes is a histogram of the per-RTT send windows observed at
// transmission time.
func WindowSizes(path string, sent []report.SentRow) error {
	vals := make(plotter.Values, 0, len(sent))
	for _, r := range sent {
		if r.TCPWindowSize > 0 {
			vals = append(vals, float64(r.TCPWindowSize))
		}
	}
	if len(vals) == 0 {
		return nil
	}

	p := plot.New()
	p.Title.Text = "TCP window sizes for sent CMPCTBLOCK's"
	p.X.Label.Text = "Window size (bytes)"
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(vals, 100)
	if err != nil {
		return err
	}
	p.Add(h)
	return p.Save(width, height, path)
}

// PrefillSizes is a histogram of prefill sizes for sends that prefilled.
func PrefillSizes(path string, sent []report.SentRow) error {
	vals := make(plotter.Values, 0, len(sent))
	for _, r := range sent {
		if r.PrefillSize > 0 {
			vals = append(vals, float64(r.PrefillSize))
		}
	}
	if len(vals) == 0 {
		return nil
	}

	p := plot.New()
	p.Title.Text = "Prefill sizes"
	p.X.Label.Text = "Prefill size (bytes)"
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(vals, 70)
	if err != nil {
		return err
	}
	p.Add(h)
	return p.Save(width, height, path)
}
