package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/gravestash/internal/config"
	"github.com/nao1215/gravestash/internal/database"
	"github.com/nao1215/gravestash/internal/extract"
	"github.com/nao1215/gravestash/internal/model"
	"github.com/nao1215/gravestash/internal/report"
	"github.com/nao1215/gravestash/internal/store"
)

// defaultReportFile is the workbook written when --output is not given.
const defaultReportFile = "gravestash.xlsx"

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [instructions-file]",
		Short: "Extract stashed pages into a spreadsheet",
		Long: `Report reads the stashed burial pages of every cemetery in the
instruction file (default instructions.txt) and writes a workbook with one
worksheet per cemetery and one row per memorial. It makes no network
requests.

Family member cemeteries are looked up in the stash, so run the stash
command with the family groups first to fill those references in.

Examples:
  # Write gravestash.xlsx
  gravestash report

  # Also write CSV files and a markdown summary
  gravestash report -o ohio.xlsx --csv ./csv --markdown summary.md ohio.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runReportCmd,
	}

	cmd.Flags().StringP("output", "o", defaultReportFile,
		"Workbook file path (creates directories if needed)")
	cmd.Flags().String("csv", "",
		"Directory to write one CSV file per worksheet into")
	cmd.Flags().StringP("markdown", "m", "",
		"Markdown summary file path")
	cmd.Flags().IntP("workers", "w", config.DefaultReportWorkers,
		"Number of pages parsed concurrently")
	cmd.Flags().Bool("no-bold", false,
		"Write names as plain text instead of bolding the surname")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cfg.InstructionsFile = instructionsPath(args)

	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}
	if cfg.CSVDir, err = cmd.Flags().GetString("csv"); err != nil {
		return err
	}
	if cfg.MarkdownFile, err = cmd.Flags().GetString("markdown"); err != nil {
		return err
	}
	if cfg.ReportWorkers, err = cmd.Flags().GetInt("workers"); err != nil {
		return err
	}
	noBold, err := cmd.Flags().GetBool("no-bold")
	if err != nil {
		return err
	}
	cfg.BoldNames = !noBold

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	instructions, err := config.LoadInstructions(cfg.InstructionsFile)
	if err != nil {
		return err
	}
	cfg.RunLog = instructions.RunLog

	logger, closeLog, err := setupLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	return runReport(cmd.Context(), cmd.OutOrStdout(), cfg, instructions.Units, logger)
}

// runReport builds the workbook and writes every requested output.
func runReport(ctx context.Context, out io.Writer, cfg *config.Config, units []model.CemeteryUnit, logger *slog.Logger) error {
	if _, err := os.Stat(cfg.StashDir); err != nil {
		return fmt.Errorf("stash not found at %s: %w", cfg.StashDir, err)
	}
	st, err := store.Open(cfg.StashDir)
	if err != nil {
		return err
	}

	schema, err := loadSchema(cfg)
	if err != nil {
		return err
	}
	index, err := st.LoadMasterIndex()
	if err != nil {
		return fmt.Errorf("failed to load master index: %w", err)
	}
	logger.Debug("master index loaded", "pages", index.Len())

	run := extract.NewRun(schema, index, st, extract.Options{
		BaseURL:   cfg.BaseURL,
		BoldNames: cfg.BoldNames,
	}, logger)
	builder := report.NewBuilder(st, run,
		report.WithBuilderLogger(logger),
		report.WithWorkers(cfg.ReportWorkers),
	)

	wb, err := builder.Build(ctx, units)
	if err != nil {
		return fmt.Errorf("report stopped: %w", err)
	}

	outputs, err := writeOutputs(ctx, cfg, wb, logger)
	if err != nil {
		return err
	}

	_, err = report.NewSimpleWriter(out,
		report.WithVerbose(cfg.Verbose),
		report.WithOutputs(outputs...),
	).Write(wb)
	return err
}

// writeOutputs writes the workbook and the optional CSV files and markdown
// summary. It returns the paths written.
func writeOutputs(ctx context.Context, cfg *config.Config, wb *report.Workbook, logger *slog.Logger) ([]string, error) {
	var files []*os.File
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()
	create := func(path string) (*os.File, error) {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create directory: %w", err)
			}
		}
		f, err := os.Create(path) //nolint:gosec // user-chosen output path
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", path, err)
		}
		files = append(files, f)
		return f, nil
	}

	mw := report.NewMultiWriter()
	var outputs []string

	xlsxFile, err := create(cfg.ReportFile)
	if err != nil {
		return nil, err
	}
	mw.Add(report.NewXLSXWriter(xlsxFile))
	outputs = append(outputs, cfg.ReportFile)

	if cfg.CSVDir != "" {
		mw.Add(report.NewCSVWriter(cfg.CSVDir))
		outputs = append(outputs, cfg.CSVDir)
	}

	if cfg.MarkdownFile != "" {
		mdFile, err := create(cfg.MarkdownFile)
		if err != nil {
			return nil, err
		}
		var opts []report.MarkdownWriterOption
		if stats := ledgerStats(ctx, cfg, logger); len(stats) > 0 {
			opts = append(opts, report.WithLedgerStats(stats))
		}
		mw.Add(report.NewMarkdownWriter(mdFile, opts...))
		outputs = append(outputs, cfg.MarkdownFile)
	}

	if _, err := mw.Write(wb); err != nil {
		return nil, err
	}
	for _, f := range files {
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("failed to close %s: %w", f.Name(), err)
		}
	}
	files = nil
	return outputs, nil
}

// ledgerStats reads the crawl ledger if one exists. The report does not
// depend on it, so problems are only logged.
func ledgerStats(ctx context.Context, cfg *config.Config, logger *slog.Logger) []database.CemeteryStats {
	db, err := database.Open(cfg.DBDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, database.ErrDatabaseNotFound) {
		logger.Debug("no crawl ledger", "dir", cfg.DBDir)
		return nil
	}
	if err != nil {
		logger.Warn("crawl ledger unavailable", "error", err)
		return nil
	}
	defer db.Close()

	stats, err := db.CemeteryStats(ctx)
	if err != nil {
		logger.Warn("failed to read crawl ledger", "error", err)
		return nil
	}
	return stats
}
