package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nao1215/gravestash/internal/config"
	"github.com/nao1215/gravestash/internal/crawler"
	"github.com/nao1215/gravestash/internal/fetch"
	"github.com/nao1215/gravestash/internal/model"
	"github.com/nao1215/gravestash/internal/report"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [searches-file]",
		Short: "Build a grave visit worklist from memorial searches",
		Long: `Search reads every memorial-search of the search file (default
searches.txt) page by page and writes a worklist with one row per memorial:
a sortable name, the birth and death years, the plot and what to do at the
grave.

  Take Photo   the grave has no photo
  Add GPS      the search label contains "No GPS"
  Update GPS   the search label contains "Has GPS" and the volunteer
               given by --photographer took the photo
  -            nothing to do

The stash is not used or changed.

Examples:
  # Write memorial_data_<timestamp>.xlsx
  gravestash search

  # Name the volunteer and drop a section name from plots
  gravestash search --photographer Priscilla --plot-label "Last Supper" -o visit.xlsx

Search file example:
  # <memorial-search URL>;<label>
  https://www.findagrave.com/cemetery/2243718/memorial-search?isGps=false;Sherrill No GPS
  https://www.findagrave.com/cemetery/2243718/memorial-search?isGps=true;Sherrill Has GPS`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSearchCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Worklist file path (default memorial_data_<timestamp>.xlsx)")
	cmd.Flags().String("plot-label", "",
		"Text removed from every plot (overrides the configuration file)")
	cmd.Flags().String("photographer", "",
		"Volunteer whose photos mean the GPS needs updating (overrides the configuration file)")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:1080)")

	return cmd
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.SearchesFile = args[0]
	}

	if cfg.WorklistFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}
	if cfg.WorklistFile == "" {
		cfg.WorklistFile = "memorial_data_" + time.Now().Format("20060102-150405") + ".xlsx"
	}
	for flag, dst := range map[string]*string{
		"plot-label":   &cfg.PlotLabel,
		"photographer": &cfg.Photographer,
		"proxy":        &cfg.ProxyAddress,
	} {
		v, err := cmd.Flags().GetString(flag)
		if err != nil {
			return err
		}
		if v != "" {
			*dst = v
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	searches, err := config.LoadSearches(cfg.SearchesFile)
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	return runSearch(cmd.Context(), cmd.OutOrStdout(), cfg, searches, logger)
}

// runSearch runs the searches and writes the worklist. Items found before
// a failure are still written.
func runSearch(ctx context.Context, out io.Writer, cfg *config.Config, searches []model.Search, logger *slog.Logger) error {
	schema, err := loadSchema(cfg)
	if err != nil {
		return err
	}
	fetcher, err := fetch.New(fetch.OptionsFromConfig(cfg), fetch.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}

	logger.Info("starting search", "searches", len(searches))
	searcher := crawler.NewSearcher(fetcher, schema, crawler.SearchOptionsFromConfig(cfg),
		crawler.WithSearchLogger(logger))
	items, searchErr := searcher.Search(ctx, searches)

	if len(items) > 0 || searchErr == nil {
		if err := writeWorklist(cfg.WorklistFile, items); err != nil {
			return err
		}
		logger.Info("worklist written", "path", cfg.WorklistFile, "memorials", len(items))
		printWorklistSummary(out, searches, items, cfg.WorklistFile)
	}
	if searchErr != nil {
		return fmt.Errorf("search stopped: %w", searchErr)
	}
	return nil
}

func writeWorklist(path string, items []model.WorkItem) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path) //nolint:gosec // user-chosen output path
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := report.NewWorklistWriter(f).Write(items); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// printWorklistSummary writes one table row per search with the count of
// each instruction.
func printWorklistSummary(out io.Writer, searches []model.Search, items []model.WorkItem, path string) {
	instructions := []string{
		model.InstructionTakePhoto,
		model.InstructionAddGPS,
		model.InstructionUpdateGPS,
		model.InstructionNone,
	}
	counts := make(map[string]map[string]int)
	for _, it := range items {
		if counts[it.Search] == nil {
			counts[it.Search] = make(map[string]int)
		}
		counts[it.Search][it.Instruction]++
	}

	t := newTable(out)
	t.SetTitle("Worklist")
	header := table.Row{"Search", "Memorials"}
	for _, in := range instructions {
		header = append(header, in)
	}
	t.AppendHeader(header)

	for _, q := range searches {
		c := counts[q.Label]
		total := 0
		for _, n := range c {
			total += n
		}
		row := table.Row{q.Label, total}
		for _, in := range instructions {
			row = append(row, c[in])
		}
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{"Total", len(items)})
	t.SetCaption("Written to %s.", path)
	t.Render()
}
