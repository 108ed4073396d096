package cmd

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/dirsearch/internal/config"
	"github.com/Aman-CERP/dirsearch/internal/indexer"
	"github.com/Aman-CERP/dirsearch/internal/output"
	"github.com/Aman-CERP/dirsearch/pkg/version"
)

func newWatchCmd(cfg func() *config.Config) *cobra.Command {
	var sources sourceFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep an index of the sources live and answer queries from stdin",
		Long: `Watch every source, keep the index in step with file changes and read
queries from stdin, one per line. Matching paths are printed after each
query. Indexing state changes are printed as they happen.

The command ends at end of input or on interrupt.`,
		Example: `  dirsearch watch --dir ./notes --filter "*.md"
  echo "error*" | dirsearch watch --dir /var/log --file ./app.log`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, cfg(), sources)
		},
	}

	sources.register(cmd)

	return cmd
}

// lockedWriter serializes output from the query loop and progress callbacks.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func runWatch(ctx context.Context, cmd *cobra.Command, cfg *config.Config, sources sourceFlags) error {
	out := output.New(&lockedWriter{w: cmd.OutOrStdout()})

	states := newStateFeed()
	orch, err := openOrchestrator(cfg, sources.merge(cfg), states.set)
	if err != nil {
		return err
	}
	defer func() { _ = orch.Close() }()

	out.Header("dirsearch " + version.Short())
	for _, root := range orch.Roots() {
		out.Statusf("", "watching %s", root)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return printTransitions(gctx, out, orch.Pending, states)
	})
	g.Go(func() error {
		defer cancel()
		return answerQueries(gctx, out, orch, readLines(cmd.InOrStdin()))
	})
	return g.Wait()
}

// stateFeed hands the latest indexing state from the progress callback to
// the printer without blocking indexing. The printer samples: it may skip
// a busy/idle pair, but the last state set is always delivered.
type stateFeed struct {
	indexing atomic.Bool
	changed  chan struct{}
}

func newStateFeed() *stateFeed {
	return &stateFeed{changed: make(chan struct{}, 1)}
}

func (f *stateFeed) set(indexing bool) {
	f.indexing.Store(indexing)
	select {
	case f.changed <- struct{}{}:
	default:
	}
}

// printTransitions prints the indexing state whenever it differs from the
// one printed last, so printed states alternate.
func printTransitions(ctx context.Context, out *output.Writer, pending func() int, states *stateFeed) error {
	printed, last := false, false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-states.changed:
			indexing := states.indexing.Load()
			if printed && indexing == last {
				continue
			}
			out.Indexing(indexing, pending())
			printed, last = true, indexing
		}
	}
}

func answerQueries(ctx context.Context, out *output.Writer, orch *indexer.Orchestrator, lines <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			paths, err := orch.Search(text)
			if err != nil {
				out.Errorf("search %q: %v", text, err)
				continue
			}
			out.Results(text, paths)
		}
	}
}

// readLines feeds r into a channel that is closed at end of input. The
// reading goroutine cannot be interrupted; it ends with the process.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}
