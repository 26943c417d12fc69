package export

import (
	"bytes"
	"fmt"
	"os"

	svg "github.com/ajstarks/svgo"

	"github.com/OptimusPi/motely/pkg/search"
)

// SVGOptions configures the score-distribution report.
type SVGOptions struct {
	Width   int    // Canvas width in pixels
	Height  int    // Canvas height in pixels
	Bins    int    // Histogram bin count
	Margin  int    // Canvas margin in pixels
	Title   string // Title above the chart
	BarFill string // Histogram bar fill color
}

// DefaultSVGOptions returns sensible defaults for the report.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:   900,
		Height:  540,
		Bins:    24,
		Margin:  60,
		Title:   "Score Distribution",
		BarFill: "#4477aa",
	}
}

// ExportSVG renders a histogram of match scores: where the found seeds
// landed, and how hard a cutoff would trim them. Returns the SVG bytes.
func ExportSVG(matches []search.Match, opts SVGOptions) ([]byte, error) {
	if len(matches) == 0 {
		return nil, fmt.Errorf("no matches to chart")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		def := DefaultSVGOptions()
		opts.Width, opts.Height = def.Width, def.Height
	}
	if opts.Bins <= 0 {
		opts.Bins = DefaultSVGOptions().Bins
	}
	if opts.Margin <= 0 {
		opts.Margin = DefaultSVGOptions().Margin
	}

	lo, hi := matches[0].Score, matches[0].Score
	for _, m := range matches {
		if m.Score < lo {
			lo = m.Score
		}
		if m.Score > hi {
			hi = m.Score
		}
	}
	span := hi - lo + 1
	if span < opts.Bins {
		opts.Bins = span
	}

	bins := make([]int, opts.Bins)
	for _, m := range matches {
		b := (m.Score - lo) * opts.Bins / span
		if b == opts.Bins {
			b--
		}
		bins[b]++
	}
	peak := 0
	for _, n := range bins {
		if n > peak {
			peak = n
		}
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(opts.Width, opts.Height)
	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:white")
	canvas.Text(opts.Width/2, opts.Margin/2, opts.Title,
		"text-anchor:middle;font-size:18px;font-family:sans-serif")
	canvas.Text(opts.Width/2, opts.Margin/2+20,
		fmt.Sprintf("%d seeds, scores %d..%d", len(matches), lo, hi),
		"text-anchor:middle;font-size:12px;font-family:sans-serif;fill:#666")

	plotW := opts.Width - 2*opts.Margin
	plotH := opts.Height - 2*opts.Margin
	barW := plotW / opts.Bins

	for i, n := range bins {
		if n == 0 {
			continue
		}
		h := n * plotH / peak
		x := opts.Margin + i*barW
		y := opts.Height - opts.Margin - h
		canvas.Rect(x, y, barW-2, h, "fill:"+opts.BarFill)
	}

	// Axis line and bin labels at both ends.
	canvas.Line(opts.Margin, opts.Height-opts.Margin, opts.Width-opts.Margin, opts.Height-opts.Margin,
		"stroke:#333;stroke-width:1")
	canvas.Text(opts.Margin, opts.Height-opts.Margin+18, fmt.Sprintf("%d", lo),
		"font-size:11px;font-family:sans-serif")
	canvas.Text(opts.Width-opts.Margin, opts.Height-opts.Margin+18, fmt.Sprintf("%d", hi),
		"text-anchor:end;font-size:11px;font-family:sans-serif")

	canvas.End()
	return buf.Bytes(), nil
}

// SaveSVGToFile renders the report and writes it to a file.
func SaveSVGToFile(matches []search.Match, path string, opts SVGOptions) error {
	data, err := ExportSVG(matches, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing SVG file: %w", err)
	}
	return nil
}
