// Package console owns the user-facing surface of a search: a per-search
// slog handle and the styled progress line. Nothing here is global; every
// search carries its own Console so two searches in one process cannot
// interleave state.
package console

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	seedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// Console is a per-search output handle.
type Console struct {
	out    io.Writer
	silent bool
	debug  bool
	log    *slog.Logger
	start  time.Time
}

// New builds a console writing to out. Silent suppresses progress and
// match echo; debug raises the log level and adds source positions.
func New(out io.Writer, silent, debug bool) *Console {
	if out == nil {
		out = os.Stderr
	}
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level, AddSource: debug})
	return &Console{
		out:    out,
		silent: silent,
		debug:  debug,
		log:    slog.New(handler),
		start:  time.Now(),
	}
}

// Logger returns the search's slog handle.
func (c *Console) Logger() *slog.Logger { return c.log }

// Progress renders one progress sample line.
func (c *Console) Progress(seeds, matches uint64, doneBatches, totalBatches uint64) {
	if c.silent {
		return
	}
	elapsed := time.Since(c.start).Seconds()
	rate := float64(seeds) / max(elapsed, 0.001)

	line := fmt.Sprintf("%s seeds  %s matches  %s",
		countStyle.Render(humanCount(seeds)),
		seedStyle.Render(humanCount(matches)),
		dimStyle.Render(fmt.Sprintf("%s seeds/s", humanCount(uint64(rate)))))
	if totalBatches > 0 {
		pct := float64(doneBatches) / float64(totalBatches) * 100
		line += dimStyle.Render(fmt.Sprintf("  %.2f%%", pct))
	}
	fmt.Fprintf(c.out, "\r%s", line)
}

// Match echoes a found seed.
func (c *Console) Match(seed string, score int) {
	if c.silent {
		return
	}
	fmt.Fprintf(c.out, "\r%s  score %s\n", seedStyle.Render(seed), countStyle.Render(fmt.Sprintf("%d", score)))
}

// Done finishes the progress line.
func (c *Console) Done(seeds, matches uint64) {
	if c.silent {
		return
	}
	fmt.Fprintf(c.out, "\rsearched %s seeds, %s matches in %s\n",
		humanCount(seeds), humanCount(matches), time.Since(c.start).Round(time.Millisecond))
}

// Fail reports a terminal error on a single line; the full trace only
// appears at debug level through the logger, one record per layer of the
// wrapped error chain.
func (c *Console) Fail(err error) {
	fmt.Fprintf(c.out, "\r%s %v\n", errStyle.Render("error:"), err)
	for e := err; e != nil; {
		c.log.Debug("error trace", "type", fmt.Sprintf("%T", e), "error", e.Error())
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
}

// humanCount renders large counters compactly.
func humanCount(n uint64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.2fB", float64(n)/1e9)
	case n >= 1_000_000:
		return fmt.Sprintf("%.2fM", float64(n)/1e6)
	case n >= 10_000:
		return fmt.Sprintf("%.1fK", float64(n)/1e3)
	}
	return fmt.Sprintf("%d", n)
}
