// Package watcher reports file changes under watched directories and for
// single watched files.
//
// A Watchdog is built on fsnotify. Start registers the watches, reports every
// matching file already present as Existed through the handler, and then
// converts filesystem notifications into Created, Updated and Deleted events
// on a single goroutine, so a handler sees the events of one watchdog in
// order. Bursts of writes to the same file are collapsed into one Updated.
//
// Usage:
//
//	w, err := watcher.NewDirectoryWatchdog("/path/to/docs", "*.txt", watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	err = w.Start(ctx, func(e watcher.Event) {
//	    switch e.Kind {
//	    case watcher.Existed, watcher.Created, watcher.Updated:
//	        // (re)index e.Path
//	    case watcher.Deleted:
//	        // drop e.Path
//	    }
//	})
package watcher
