package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nao1215/gravestash/internal/config"
	"github.com/nao1215/gravestash/internal/extract"
	applog "github.com/nao1215/gravestash/internal/log"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the defaults, the configuration file
// and the persistent flags, in increasing order of precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit path must exist; the default locations are optional.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	stashDir, err := cmd.Flags().GetString("stash")
	if err != nil {
		return nil, err
	}
	if stashDir != "" {
		cfg.StashDir = stashDir
	}

	return cfg, nil
}

// instructionsPath returns the instruction file named on the command line,
// or the default one.
func instructionsPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return config.DefaultInstructionsFile
}

// loadSchema returns the configured page schema, or the built-in one.
func loadSchema(cfg *config.Config) (*extract.Schema, error) {
	if cfg.SchemaFile == "" {
		return extract.DefaultSchema()
	}
	schema, err := extract.LoadSchema(cfg.SchemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", cfg.SchemaFile, err)
	}
	return schema, nil
}

// setupLogger creates the run logger. With runLog set, a copy of every
// record goes to a timestamped file under the log directory; the returned
// function closes it.
func setupLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, func(), error) {
	if !cfg.RunLog {
		return applog.NewRunLogger(cmd.ErrOrStderr(), cfg.Verbose, nil), func() {}, nil
	}

	f, err := applog.OpenRunLog(cfg.LogDir, time.Now())
	if err != nil {
		return nil, nil, err
	}
	logger := applog.NewRunLogger(cmd.ErrOrStderr(), cfg.Verbose, f)
	logger.Info("run log opened", "path", f.Name())
	return logger, func() { _ = f.Close() }, nil
}

// newTable returns a console table writing to w.
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}
