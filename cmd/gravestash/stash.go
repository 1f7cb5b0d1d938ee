package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nao1215/gravestash/internal/config"
	"github.com/nao1215/gravestash/internal/crawler"
	"github.com/nao1215/gravestash/internal/database"
	"github.com/nao1215/gravestash/internal/fetch"
	"github.com/nao1215/gravestash/internal/model"
	"github.com/nao1215/gravestash/internal/store"
)

// NewStashCmd creates the stash command.
func NewStashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stash [instructions-file]",
		Short: "Download memorial pages into the stash",
		Long: `Stash crawls every cemetery of the instruction file (default
instructions.txt). For each cemetery it stores the burial pages listed by
the cemetery's memorial search, then the pages of the family members
those burials link to, one group at a time.

Pages already in the stash are not downloaded again, except that each
group's folder is rebuilt when the group runs. Requests are made one at a
time with random pauses.

Examples:
  # Crawl the cemeteries in instructions.txt
  gravestash stash

  # Crawl with another instruction file and stash
  gravestash stash -s ./stash ohio.txt

Instruction file example:
  # Oak Hill, every group
  1234567-OH
  # Elm Park, burials and spouses only
  7654321-EP: burial, spouse
  log`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStashCmd,
	}

	cmd.Flags().Bool("no-ledger", false,
		"Do not record stored pages in the crawl ledger")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:1080)")

	return cmd
}

// runStashCmd executes the stash command.
func runStashCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cfg.InstructionsFile = instructionsPath(args)

	noLedger, err := cmd.Flags().GetBool("no-ledger")
	if err != nil {
		return err
	}
	cfg.SaveToDB = !noLedger

	proxyAddress, err := cmd.Flags().GetString("proxy")
	if err != nil {
		return err
	}
	if proxyAddress != "" {
		cfg.ProxyAddress = proxyAddress
	}

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

	return runStash(cmd.Context(), cmd.OutOrStdout(), cfg, instructions.Units, logger)
}

// runStash crawls units into the stash and prints what was done, also when
// the crawl stopped on an error.
func runStash(ctx context.Context, out io.Writer, cfg *config.Config, units []model.CemeteryUnit, logger *slog.Logger) error {
	schema, err := loadSchema(cfg)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.StashDir)
	if err != nil {
		return err
	}

	fetcher, err := fetch.New(fetch.OptionsFromConfig(cfg), fetch.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}

	options := []crawler.Option{crawler.WithLogger(logger)}
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("crawl ledger opened", "path", db.Path())
		options = append(options, crawler.WithRecorder(db))
	}

	logger.Info("starting crawl",
		"cemeteries", len(units),
		"stash", st.Root(),
	)

	digger := crawler.NewDigger(fetcher, st, schema, crawler.OptionsFromConfig(cfg), options...)
	summary, err := digger.Dig(ctx, units)
	if summary != nil {
		printCrawlSummary(out, summary)
	}
	if err != nil {
		return fmt.Errorf("crawl stopped: %w", err)
	}
	return nil
}

// printCrawlSummary writes one table row per group run.
func printCrawlSummary(out io.Writer, summary *crawler.Summary) {
	t := newTable(out)
	t.SetTitle("Crawl Summary")
	t.AppendHeader(table.Row{"Cemetery", "Group", "Listed", "Fetched", "Cached", "Duplicates"})

	for _, c := range summary.Cemeteries {
		label := c.ID
		if c.Name != "" {
			label = c.ID + " " + c.Name
		}
		for _, g := range c.Groups {
			t.AppendRow(table.Row{label, g.Kind.String(), g.Listed, g.Fetched, g.Cached, g.Duplicates})
		}
	}

	t.AppendFooter(table.Row{"", "Total", "", summary.Fetched(), "", ""})
	t.SetCaption("Finished in %s.", summary.Duration().Round(time.Millisecond))
	t.Render()
}
