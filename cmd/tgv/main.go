package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/xiaoyu12139/treegrid/pkg/config"
	"github.com/xiaoyu12139/treegrid/pkg/export"
	"github.com/xiaoyu12139/treegrid/pkg/grid"
	"github.com/xiaoyu12139/treegrid/pkg/loader"
	"github.com/xiaoyu12139/treegrid/pkg/model"
	"github.com/xiaoyu12139/treegrid/pkg/ui"
	"github.com/xiaoyu12139/treegrid/pkg/watcher"
)

const version = "0.3.0"

type options struct {
	dataPath  string
	dbPath    string
	demo      bool
	parents   int
	children  int
	exportMD  string
	exportSVG string
	stateDir  string
}

func main() {
	var opts options
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.StringVar(&opts.dataPath, "data", "", "Load rows from a JSONL file (watched for changes)")
	flag.StringVar(&opts.dbPath, "db", "", "Load rows from a SQLite database")
	flag.BoolVar(&opts.demo, "demo", false, "Use the generated demo dataset")
	flag.IntVar(&opts.parents, "parents", loader.DemoParents, "Demo dataset: number of parent rows")
	flag.IntVar(&opts.children, "children", loader.DemoChildren, "Demo dataset: children per parent")
	flag.StringVar(&opts.exportMD, "export-md", "", "Export the hierarchy to a Markdown file and exit")
	flag.StringVar(&opts.exportSVG, "export-svg", "", "Export the hierarchy to an SVG diagram and exit")
	flag.StringVar(&opts.stateDir, "state-dir", "", "Override the .treegrid state directory")
	flag.Parse()

	if *help {
		fmt.Println("Usage: tgv [options]")
		fmt.Println("\nA TUI viewer for hierarchical table data.")
		flag.PrintDefaults()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Printf("tgv %s\n", version)
		os.Exit(0)
	}

	stateDir := resolveStateDir(opts.stateDir)
	cfg, err := config.Load(config.ConfigPath(stateDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if opts.dataPath == "" {
		opts.dataPath = cfg.DataPath
	}
	if opts.dbPath == "" {
		opts.dbPath = cfg.DBPath
	}
	if opts.demo {
		// An explicit --demo beats any configured source.
		opts.dataPath, opts.dbPath = "", ""
	}

	rows, err := loadInitialRows(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading rows: %v\n", err)
		os.Exit(1)
	}

	if opts.exportMD != "" || opts.exportSVG != "" {
		if err := runExports(opts, rows, cfg.Schema()); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Done!")
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "tgv needs a terminal; use --export-md or --export-svg for non-interactive output")
		os.Exit(1)
	}

	// The TUI owns the terminal, so the standard logger goes to a file.
	cleanup := setupLogging(stateDir)
	defer cleanup()

	store := grid.NewStore(cfg.Schema())
	if err := loader.Populate(store, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Error building store: %v\n", err)
		os.Exit(1)
	}
	ui.LoadGridState(stateDir, store)

	m := ui.NewModel(store, ui.Options{
		DataPath:  opts.dataPath,
		StateDir:  stateDir,
		Debounce:  cfg.Debounce(),
		Lookahead: cfg.Lookahead,
		Title:     gridTitle(opts),
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	worker, err := ui.NewReloadWorker(opts.dataPath, watcher.DefaultDebounce, p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error watching %s: %v\n", opts.dataPath, err)
		os.Exit(1)
	}
	if err := worker.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting file watcher: %v\n", err)
		os.Exit(1)
	}
	defer worker.Stop()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running tree grid viewer: %v\n", err)
		os.Exit(1)
	}
}

// loadInitialRows picks the data source: database, file, or the demo set.
// With no source at all the demo set is used, so a bare `tgv` shows
// something.
func loadInitialRows(opts options) ([]model.Row, error) {
	switch {
	case opts.demo:
		return loader.GenerateDemo(opts.parents, opts.children), nil
	case opts.dbPath != "":
		return loader.LoadRowsFromDB(opts.dbPath)
	case opts.dataPath != "":
		return loader.LoadRows(opts.dataPath)
	default:
		return loader.GenerateDemo(opts.parents, opts.children), nil
	}
}

// runExports writes the requested formats, concurrently when both are asked
// for.
func runExports(opts options, rows []model.Row, schema model.Schema) error {
	title := gridTitle(opts)
	var g errgroup.Group
	if opts.exportMD != "" {
		g.Go(func() error {
			return export.WriteMarkdown(opts.exportMD, rows, schema, title)
		})
	}
	if opts.exportSVG != "" {
		g.Go(func() error {
			return export.GenerateSVG(opts.exportSVG, rows, schema, title)
		})
	}
	return g.Wait()
}

// resolveStateDir prefers the flag, then a discovered .treegrid directory,
// then one next to the current directory.
func resolveStateDir(override string) string {
	if override != "" {
		return override
	}
	if dir, ok := config.Discover(); ok {
		return dir
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, config.StateDirName)
}

// gridTitle names the view after its data source.
func gridTitle(opts options) string {
	switch {
	case opts.dbPath != "":
		return filepath.Base(opts.dbPath)
	case opts.dataPath != "":
		return filepath.Base(opts.dataPath)
	default:
		return "Demo"
	}
}

// setupLogging sends the standard logger to <stateDir>/tgv.log, or discards
// it when the directory cannot be created.
func setupLogging(stateDir string) func() {
	if stateDir == "" {
		log.SetOutput(io.Discard)
		return func() {}
	}
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	f, err := os.OpenFile(filepath.Join(stateDir, "tgv.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	log.SetOutput(f)
	return func() { _ = f.Close() }
}
