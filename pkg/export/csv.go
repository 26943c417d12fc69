package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/OptimusPi/motely/pkg/search"
)

// CSVOptions configures result export.
type CSVOptions struct {
	// Deck and Stake label the header comment row.
	Deck  string
	Stake string

	// Columns are the per-clause score column headers, in SHOULD clause
	// input order.
	Columns []string
}

// CSVWriter streams matches to a writer in the canonical result format:
// a "# Deck: X, Stake: Y" comment row, a header, then one row per match
// with the total score and the per-clause sub-scores.
type CSVWriter struct {
	w    *csv.Writer
	opts CSVOptions
	rows int
}

// NewCSVWriter writes the comment row and header immediately.
func NewCSVWriter(w io.Writer, opts CSVOptions) (*CSVWriter, error) {
	if _, err := fmt.Fprintf(w, "# Deck: %s, Stake: %s\n", opts.Deck, opts.Stake); err != nil {
		return nil, fmt.Errorf("writing CSV preamble: %w", err)
	}
	cw := &CSVWriter{w: csv.NewWriter(w), opts: opts}

	header := append([]string{"Seed", "TotalScore"}, opts.Columns...)
	if err := cw.w.Write(header); err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}
	return cw, nil
}

// Write appends one match row.
func (cw *CSVWriter) Write(m search.Match) error {
	row := make([]string, 0, 2+len(cw.opts.Columns))
	row = append(row, m.Seed, strconv.Itoa(m.Score))
	for i := range cw.opts.Columns {
		part := 0
		if i < len(m.Parts) {
			part = m.Parts[i]
		}
		row = append(row, strconv.Itoa(part))
	}
	if err := cw.w.Write(row); err != nil {
		return fmt.Errorf("writing CSV row for %s: %w", m.Seed, err)
	}
	cw.rows++
	return nil
}

// Rows returns how many match rows were written.
func (cw *CSVWriter) Rows() int { return cw.rows }

// Flush drains buffered rows and reports any deferred write error.
func (cw *CSVWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}

// SaveCSVToFile writes a complete match list to a file.
func SaveCSVToFile(matches []search.Match, path string, opts CSVOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSV file: %w", err)
	}
	defer f.Close()

	cw, err := NewCSVWriter(f, opts)
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := cw.Write(m); err != nil {
			return err
		}
	}
	return cw.Flush()
}
