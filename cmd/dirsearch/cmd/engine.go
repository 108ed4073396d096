package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/dirsearch/internal/analysis"
	"github.com/Aman-CERP/dirsearch/internal/config"
	dserrors "github.com/Aman-CERP/dirsearch/internal/errors"
	"github.com/Aman-CERP/dirsearch/internal/indexer"
	"github.com/Aman-CERP/dirsearch/internal/query"
	"github.com/Aman-CERP/dirsearch/internal/search"
	"github.com/Aman-CERP/dirsearch/internal/store"
	"github.com/Aman-CERP/dirsearch/internal/watcher"
)

// sourceFlags are the --dir, --filter and --file flags of commands that
// index files. They add to the watch section of the config.
type sourceFlags struct {
	dirs   []string
	filter string
	files  []string
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&s.dirs, "dir", "d", nil, "Directory to watch recursively (repeatable)")
	cmd.Flags().StringVarP(&s.filter, "filter", "f", "", "File name mask for --dir, e.g. \"*.txt\"")
	cmd.Flags().StringArrayVar(&s.files, "file", nil, "Single file to watch (repeatable)")
}

// merge returns the watch section of cfg extended with the flags.
func (s *sourceFlags) merge(cfg *config.Config) config.WatchConfig {
	w := cfg.Watch
	w.Directories = append([]config.DirectoryConfig(nil), cfg.Watch.Directories...)
	for _, d := range s.dirs {
		w.Directories = append(w.Directories, config.DirectoryConfig{Path: d, Filter: s.filter})
	}
	w.Files = append(append([]string(nil), cfg.Watch.Files...), s.files...)
	return w
}

// openOrchestrator builds the analyzer, store, index and orchestrator
// described by cfg and starts watching every source. onProgress, if not nil,
// is subscribed before the first source so the initial scan is reported.
// The caller owns the returned orchestrator.
func openOrchestrator(cfg *config.Config, sources config.WatchConfig, onProgress indexer.ProgressFunc) (*indexer.Orchestrator, error) {
	if len(sources.Directories) == 0 && len(sources.Files) == 0 {
		return nil, dserrors.InvalidArgument("nothing to watch").
			WithSuggestion("pass --dir or --file, or list watch.directories in .dirsearch.yaml")
	}

	op, err := query.ParseOperator(cfg.Index.DefaultOperator)
	if err != nil {
		return nil, err
	}

	st, err := store.NewMemoryStore(store.Config{
		CompactionInterval: cfg.CompactionEvery(),
		WildcardCacheSize:  cfg.Index.WildcardCacheSize,
	})
	if err != nil {
		return nil, err
	}
	index, err := search.New(analysis.NewSimpleAnalyzer(), st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	orch, err := indexer.New(index, indexer.Options{
		Workers:         cfg.Index.Workers,
		ReadRetryDelay:  cfg.RetryDelay(),
		MaxFileSize:     cfg.Index.MaxFileSize,
		DefaultOperator: op,
		Watch: watcher.Options{
			DebounceWindow:  cfg.DebounceWindow(),
			ErrorBufferSize: cfg.Watch.ErrorBuffer,
		},
	})
	if err != nil {
		_ = index.Close()
		return nil, err
	}
	orch.OnProgress(onProgress)

	for _, d := range sources.Directories {
		if err := orch.AddDirectory(d.Path, d.Filter); err != nil {
			_ = orch.Close()
			return nil, err
		}
	}
	for _, f := range sources.Files {
		if err := orch.AddFile(f); err != nil {
			_ = orch.Close()
			return nil, err
		}
	}
	return orch, nil
}
