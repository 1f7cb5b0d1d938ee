package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for gravestash.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gravestash",
		Short: "Stash memorial pages and extract them into a spreadsheet",
		Long: `gravestash crawls the memorial pages of the cemeteries named in an
instruction file, together with the pages of the parents, spouses,
children and siblings they link to, and keeps them in a local stash.

The report command extracts the stashed pages into a workbook with one
worksheet per cemetery. It works offline.

The search command turns memorial-search results into a worklist of
graves to photograph or locate.

Instruction file lines:
  <cemeteryId>[-<abbreviation>][:<group>,<group>,...]
  log

Groups: burial, parent, spouse, child, sibling, half-sibling.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .gravestash in current or home directory)")
	cmd.PersistentFlags().StringP("stash", "s", "",
		"Stash directory (overrides the configuration file)")

	// Add subcommands
	cmd.AddCommand(NewStashCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command. An interrupt cancels the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "gravestash:", err)
		os.Exit(1)
	}
}
