// Package cmd provides the CLI commands for dirsearch.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/dirsearch/internal/config"
	dserrors "github.com/Aman-CERP/dirsearch/internal/errors"
	"github.com/Aman-CERP/dirsearch/internal/logging"
	"github.com/Aman-CERP/dirsearch/pkg/version"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	logFile    string
	debug      bool
}

// NewRootCmd creates the root command for the dirsearch CLI.
func NewRootCmd() *cobra.Command {
	var flags globalFlags
	var cfg *config.Config
	var loggingCleanup func()

	cmd := &cobra.Command{
		Use:   "dirsearch",
		Short: "Full-text search over watched directories",
		Long: `dirsearch indexes the text files of one or more directories, keeps the
index in step with the file system while they change, and answers word
queries with the paths of matching files.

Queries are whitespace separated words joined with AND (or OR with
--operator or). Words may contain * and ? wildcards.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("dirsearch version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default: .dirsearch.yaml in the working directory)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "Also write logs to this file")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging to ~/.dirsearch/logs/")

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		loaded, err := loadConfig(flags)
		if err != nil {
			return err
		}
		cleanup, err := logging.SetupDefault(loggingConfig(loaded, flags))
		if err != nil {
			return fmt.Errorf("failed to setup logging: %w", err)
		}
		cfg = loaded
		loggingCleanup = cleanup
		slog.Debug("config_loaded",
			slog.Int("directories", len(cfg.Watch.Directories)),
			slog.Int("files", len(cfg.Watch.Files)),
			slog.Int("workers", cfg.Index.Workers))
		return nil
	}
	cmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		if loggingCleanup != nil {
			loggingCleanup()
			loggingCleanup = nil
		}
		return nil
	}

	current := func() *config.Config { return cfg }
	cmd.AddCommand(newWatchCmd(current))
	cmd.AddCommand(newSearchCmd(current))
	cmd.AddCommand(newConfigCmd(current))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command and prints a failure the CLI way.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprint(os.Stderr, dserrors.FormatForCLI(err))
	}
	return err
}

// loadConfig reads --config when given, otherwise the working directory's
// project config, then applies the log flags.
func loadConfig(flags globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		dir, wdErr := os.Getwd()
		if wdErr != nil {
			return nil, dserrors.IOError("failed to get working directory", wdErr)
		}
		cfg, err = config.Load(dir)
	}
	if err != nil {
		return nil, err
	}

	if flags.logLevel != "" {
		if !logging.ValidLevel(flags.logLevel) {
			return nil, dserrors.InvalidArgument("unknown log level: " + flags.logLevel).
				WithSuggestion("use debug, info, warn or error")
		}
		cfg.Logging.Level = flags.logLevel
	}
	if flags.logFile != "" {
		cfg.Logging.File = flags.logFile
	}
	return cfg, nil
}

// loggingConfig maps the logging section and flags to logging.Config.
// --debug wins over everything else.
func loggingConfig(cfg *config.Config, flags globalFlags) logging.Config {
	if flags.debug {
		return logging.DebugConfig()
	}
	lc := logging.DefaultConfig()
	lc.Level = cfg.Logging.Level
	lc.Format = cfg.Logging.Format
	lc.FilePath = cfg.Logging.File
	if cfg.Logging.MaxSizeMB > 0 {
		lc.MaxSizeMB = cfg.Logging.MaxSizeMB
	}
	if cfg.Logging.MaxFiles > 0 {
		lc.MaxFiles = cfg.Logging.MaxFiles
	}
	return lc
}
