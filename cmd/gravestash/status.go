package main

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nao1215/gravestash/internal/database"
	"github.com/nao1215/gravestash/internal/model"
	"github.com/nao1215/gravestash/internal/report"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show what the crawl ledger holds",
		Long: `Status prints, per cemetery, how many burial and family pages the
crawls stored and how many family links they found.

With --memorial it lists the family links recorded for one memorial
instead.

Examples:
  gravestash status
  gravestash status --memorial 84600372
  gravestash status --memorial 84600372 --kind spouse`,
		Args: cobra.NoArgs,
		RunE: runStatusCmd,
	}

	cmd.Flags().String("memorial", "",
		"List the family links of this memorial id")
	cmd.Flags().String("kind", "",
		"Only list links of this kind (parent, spouse, child, sibling, half-sibling)")

	return cmd
}

// runStatusCmd executes the status command.
func runStatusCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	memorialID, err := cmd.Flags().GetString("memorial")
	if err != nil {
		return err
	}
	kindToken, err := cmd.Flags().GetString("kind")
	if err != nil {
		return err
	}

	filter := database.RelationFilter{MemorialID: memorialID}
	if kindToken != "" {
		kind, err := model.ParseRelationKind(kindToken)
		if err != nil {
			return err
		}
		filter.Kind = &kind
	}

	out := cmd.OutOrStdout()
	db, err := database.Open(cfg.DBDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, database.ErrDatabaseNotFound) {
		fmt.Fprintf(out, "No crawl ledger in %s. Run \"gravestash stash\" first.\n", cfg.DBDir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	if memorialID != "" {
		rels, err := db.QueryRelations(ctx, filter)
		if err != nil {
			return err
		}
		if len(rels) == 0 {
			fmt.Fprintf(out, "No family links recorded for memorial %s.\n", memorialID)
			return nil
		}
		t := newTable(out)
		t.SetTitle("Family Links of " + memorialID)
		t.AppendHeader(table.Row{"Memorial", "Kind", "Listed", "Cemetery", "Recorded"})
		for _, r := range rels {
			t.AppendRow(table.Row{
				r.From.StashName(),
				r.Kind.String(),
				r.To.StashName(),
				r.CemeteryID,
				r.Timestamp.Format("2006-01-02 15:04"),
			})
		}
		t.Render()
		return nil
	}

	stats, err := db.CemeteryStats(ctx)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Fprintln(out, "The crawl ledger is empty.")
		return nil
	}

	t := newTable(out)
	t.SetTitle("Crawl Ledger")
	t.AppendHeader(table.Row{"Cemetery", "Burial Pages", "Family Pages", "Relations", "Size", "Last Stored"})
	var pages, relations int
	var size int64
	for _, s := range stats {
		t.AppendRow(table.Row{
			s.CemeteryID,
			s.Burials,
			s.FamilyPages,
			s.Relations,
			report.FormatBytes(s.Bytes),
			s.LastStored.Format("2006-01-02 15:04"),
		})
		pages += s.Pages()
		relations += s.Relations
		size += s.Bytes
	}
	t.AppendFooter(table.Row{"Total", pages, "", relations, report.FormatBytes(size), ""})
	t.Render()
	return nil
}
