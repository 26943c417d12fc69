package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/OptimusPi/motely/pkg/console"
	"github.com/OptimusPi/motely/pkg/export"
	"github.com/OptimusPi/motely/pkg/filterdsl"
	"github.com/OptimusPi/motely/pkg/game"
	"github.com/OptimusPi/motely/pkg/rng"
	"github.com/OptimusPi/motely/pkg/search"
)

const version = "1.0.0"

// Exit codes.
const (
	exitOK        = 0
	exitConfig    = 1
	exitRuntime   = 2
	exitCancelled = 130
)

// CLI flags
var (
	jsonName   = flag.String("json", "", "Name of a JSON filter file under the filter directory")
	seedFlag   = flag.String("seed", "", "Single-seed mode: analyse one seed instead of searching")
	wordlist   = flag.String("wordlist", "", "Name of a seed wordlist file under the wordlist directory")
	threads    = flag.Int("threads", 0, "Worker thread count (0 = logical core count)")
	batchSize  = flag.Int("batchSize", 4, "Number of varying seed characters per batch (1-8)")
	seedLen    = flag.Int("seedLen", rng.MaxSeedLen, "Seed length for sequential search (1-8)")
	startBatch = flag.Uint64("startBatch", 0, "First batch index of the sequential search")
	endBatch   = flag.Uint64("endBatch", 0, "End batch index, exclusive (0 = unbounded)")
	cutoffFlag = flag.String("cutoff", "", "Score cutoff: a number, or 'auto' for a rising high-water mark")
	configPath = flag.String("config", "", "Path to a YAML settings file")
	outPath    = flag.String("out", "", "CSV output path (default: <filter name>.csv)")
	svgOut     = flag.Bool("svg", false, "Also write a score-distribution SVG next to the CSV")
	silent     = flag.Bool("silent", false, "Suppress progress output")
	debug      = flag.Bool("debug", false, "Verbose diagnostics and full traces")
	versionF   = flag.Bool("version", false, "Print version and exit")
)

// Settings are the optional YAML-file defaults. Flags win over settings.
type Settings struct {
	// JSONDir is where --json names resolve.
	JSONDir string `yaml:"jsonDir"`

	// WordlistDir is where --wordlist names resolve.
	WordlistDir string `yaml:"wordlistDir"`

	// OutputDir receives CSV and SVG results.
	OutputDir string `yaml:"outputDir"`

	// Tables optionally overrides the embedded item tables.
	Tables string `yaml:"tables,omitempty"`

	// Threads is the default worker count.
	Threads int `yaml:"threads,omitempty"`
}

// Validate checks settings-file constraints.
func (s *Settings) Validate() error {
	if s.Threads < 0 {
		return fmt.Errorf("threads must not be negative, got %d", s.Threads)
	}
	return nil
}

func loadSettings(path string) (*Settings, error) {
	s := &Settings{JSONDir: ".", WordlistDir: ".", OutputDir: "."}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings YAML: %w", err)
	}
	if s.JSONDir == "" {
		s.JSONDir = "."
	}
	if s.WordlistDir == "" {
		s.WordlistDir = "."
	}
	if s.OutputDir == "" {
		s.OutputDir = "."
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func main() {
	flag.Parse()

	if *versionF {
		fmt.Printf("motely version %s\n", version)
		os.Exit(exitOK)
	}

	code := run()
	os.Exit(code)
}

// run funnels every failure path into one exit code.
func run() int {
	con := console.New(os.Stderr, *silent, *debug)

	settings, err := loadSettings(*configPath)
	if err != nil {
		con.Fail(err)
		return exitConfig
	}

	tables, err := resolveTables(settings)
	if err != nil {
		con.Fail(err)
		return exitConfig
	}

	compiled, err := resolveFilter(settings, tables)
	if err != nil {
		con.Fail(err)
		return exitConfig
	}

	cutoff, err := resolveCutoff()
	if err != nil {
		con.Fail(err)
		return exitConfig
	}

	src, err := resolveSource(settings)
	if err != nil {
		con.Fail(err)
		return exitConfig
	}

	workers := *threads
	if workers == 0 {
		workers = settings.Threads
	}
	eng, err := search.New(search.Config{
		Tables:  tables,
		Deck:    compiled.Deck,
		Stake:   compiled.Stake,
		Chain:   compiled.Chain,
		Scorer:  compiled.Scorer,
		Cutoff:  cutoff,
		Threads: workers,
		Logger:  con.Logger(),
	})
	if err != nil {
		con.Fail(err)
		return exitConfig
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	matches, err := drain(ctx, eng, src, compiled, con)
	if err != nil {
		con.Fail(err)
		return exitRuntime
	}
	if ctx.Err() != nil {
		// Partial results already written stay valid.
		return exitCancelled
	}
	if eng.Stats().Failed() {
		return exitRuntime
	}

	if err := writeResults(settings, compiled, matches, con); err != nil {
		con.Fail(err)
		return exitRuntime
	}
	con.Done(eng.Stats().SeedsSearched.Load(), eng.Stats().Matches.Load())
	return exitOK
}

// drain runs the search and collects matches, sampling progress on a
// ticker between channel reads.
func drain(ctx context.Context, eng *search.Engine, src search.BatchSource, compiled *filterdsl.Compiled, con *console.Console) ([]search.Match, error) {
	var total uint64
	if seq, ok := src.(*search.Sequential); ok {
		total = seq.TotalBatches()
		if *endBatch > 0 && *endBatch < total {
			total = *endBatch
		}
	}

	out := eng.Run(ctx, src)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var matches []search.Match
	for {
		select {
		case m, ok := <-out:
			if !ok {
				return matches, nil
			}
			matches = append(matches, m)
			con.Match(m.Seed, m.Score)
		case <-ticker.C:
			stats := eng.Stats()
			con.Progress(stats.SeedsSearched.Load(), stats.Matches.Load(), stats.LastBatch(), total)
		}
	}
}

func resolveTables(settings *Settings) (*game.Tables, error) {
	if settings.Tables != "" {
		return game.LoadTables(settings.Tables)
	}
	return game.Default()
}

// resolveFilter loads the --json document, or compiles an empty
// pass-through document for bare single-seed or wordlist runs.
func resolveFilter(settings *Settings, tables *game.Tables) (*filterdsl.Compiled, error) {
	if *jsonName == "" {
		return filterdsl.Compile(&filterdsl.Document{
			Name:  "passthrough",
			Deck:  string(game.DeckRed),
			Stake: game.StakeWhite.String(),
		}, tables)
	}
	name := *jsonName
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	doc, err := filterdsl.Load(filepath.Join(settings.JSONDir, name))
	if err != nil {
		return nil, err
	}
	return filterdsl.Compile(doc, tables)
}

func resolveCutoff() (*search.Cutoff, error) {
	switch {
	case *cutoffFlag == "":
		return nil, nil
	case strings.EqualFold(*cutoffFlag, "auto"):
		return search.AutoCutoff(), nil
	default:
		n, err := strconv.Atoi(*cutoffFlag)
		if err != nil {
			return nil, fmt.Errorf("cutoff must be a number or 'auto', got %q", *cutoffFlag)
		}
		return search.FixedCutoff(n), nil
	}
}

// resolveSource picks the seed source: --seed, --wordlist, or the full
// sequential space.
func resolveSource(settings *Settings) (search.BatchSource, error) {
	if *seedFlag != "" {
		return search.NewList([]string{*seedFlag})
	}
	if *wordlist != "" {
		seeds, err := readWordlist(filepath.Join(settings.WordlistDir, *wordlist))
		if err != nil {
			return nil, err
		}
		return search.NewList(seeds)
	}
	return search.NewSequential(*seedLen, *batchSize, *startBatch, *endBatch)
}

func readWordlist(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening wordlist: %w", err)
	}
	defer f.Close()

	var seeds []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seeds = append(seeds, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading wordlist: %w", err)
	}
	if len(seeds) == 0 {
		return nil, errors.New("wordlist holds no seeds")
	}
	return seeds, nil
}

func writeResults(settings *Settings, compiled *filterdsl.Compiled, matches []search.Match, con *console.Console) error {
	if len(matches) == 0 {
		return nil
	}
	base := compiled.Doc.Name
	if base == "" {
		base = "motely"
	}
	csvPath := *outPath
	if csvPath == "" {
		csvPath = filepath.Join(settings.OutputDir, base+".csv")
	}

	opts := export.CSVOptions{
		Deck:    string(compiled.Deck),
		Stake:   compiled.Stake.String(),
		Columns: compiled.Columns,
	}
	if err := export.SaveCSVToFile(matches, csvPath, opts); err != nil {
		return err
	}
	con.Logger().Debug("wrote results", "path", csvPath, "rows", len(matches))

	if *svgOut {
		svgPath := strings.TrimSuffix(csvPath, ".csv") + ".svg"
		svgOpts := export.DefaultSVGOptions()
		svgOpts.Title = fmt.Sprintf("%s — score distribution", base)
		if err := export.SaveSVGToFile(matches, svgPath, svgOpts); err != nil {
			return err
		}
	}
	return nil
}
