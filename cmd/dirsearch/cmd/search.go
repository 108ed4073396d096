package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/dirsearch/internal/config"
	"github.com/Aman-CERP/dirsearch/internal/output"
)

func newSearchCmd(cfg func() *config.Config) *cobra.Command {
	var sources sourceFlags
	var operator string

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Index the sources once and print matching files",
		Long: `Index every watched source, wait until indexing settles, print the
paths of files matching the query and exit.`,
		Example: `  dirsearch search --dir ./notes --filter "*.md" invoice 2024
  dirsearch search --dir /var/log --operator or timeout refused
  dirsearch search --file ./todo.txt "mile*"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runSearch(ctx, cmd, cfg(), sources, operator, strings.Join(args, " "))
		},
	}

	sources.register(cmd)
	cmd.Flags().StringVarP(&operator, "operator", "o", "", "Operator joining query words: and, or (default from config)")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, cfg *config.Config, sources sourceFlags, operator, text string) error {
	if operator != "" {
		cfg.Index.DefaultOperator = operator
	}

	orch, err := openOrchestrator(cfg, sources.merge(cfg), nil)
	if err != nil {
		return err
	}
	defer func() { _ = orch.Close() }()

	if err := orch.WaitIdle(ctx); err != nil {
		return err
	}

	paths, err := orch.Search(text)
	if err != nil {
		return err
	}
	output.New(cmd.OutOrStdout()).Results(text, paths)
	return nil
}
