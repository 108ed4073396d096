package indexer

import (
	"fmt"

	"github.com/Aman-CERP/dirsearch/internal/watcher"
)

// pathQueue holds the changes not yet applied for one path. A path has a
// queue while it is waiting in the ready list or a worker is applying one of
// its changes, and only one worker holds a path at a time.
type pathQueue struct {
	kinds []watcher.ChangeKind
}

// enqueue schedules a change for path behind every earlier change to the
// same path. Unknown change kinds are a programming error and panic.
func (o *Orchestrator) enqueue(path string, kind watcher.ChangeKind) {
	switch kind {
	case watcher.Existed, watcher.Created, watcher.Updated, watcher.Deleted:
	default:
		panic(fmt.Sprintf("indexer: unknown change kind %v for %s", kind, path))
	}

	// Counted before it becomes visible to workers so the count never dips.
	o.prog.track(1)

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		o.prog.track(-1)
		return
	}
	q, ok := o.queues[path]
	if !ok {
		q = &pathQueue{}
		o.queues[path] = q
		o.ready = append(o.ready, path)
	}
	q.kinds = append(q.kinds, kind)
	if o.pool.TryAcquire(1) {
		o.wg.Add(1)
		go o.work()
	}
	o.mu.Unlock()
}

// work applies changes until the ready list is empty or the orchestrator is
// cancelled. Each worker holds one pool slot for its whole life.
func (o *Orchestrator) work() {
	defer o.wg.Done()

	for {
		path, kind, ok := o.next()
		if !ok {
			return
		}
		o.apply(path, kind)
		o.release(path)
		o.prog.track(-1)
	}
}

// next pops the oldest change of the first ready path. When there is
// nothing to do it gives the pool slot back under the same lock enqueue
// takes, so a change is never left without a worker.
func (o *Orchestrator) next() (string, watcher.ChangeKind, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ctx.Err() != nil || len(o.ready) == 0 {
		o.pool.Release(1)
		return "", 0, false
	}

	path := o.ready[0]
	o.ready[0] = ""
	o.ready = o.ready[1:]

	q := o.queues[path]
	kind := q.kinds[0]
	q.kinds = q.kinds[1:]
	return path, kind, true
}

// release puts path back on the ready list if more changes arrived while it
// was being applied, and forgets it otherwise.
func (o *Orchestrator) release(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	q, ok := o.queues[path]
	if !ok {
		return
	}
	if len(q.kinds) > 0 {
		o.ready = append(o.ready, path)
		return
	}
	delete(o.queues, path)
}

// drain drops every queued change. It runs after the workers have exited.
func (o *Orchestrator) drain() {
	o.mu.Lock()
	dropped := 0
	for _, q := range o.queues {
		dropped += len(q.kinds)
	}
	clear(o.queues)
	o.ready = nil
	o.mu.Unlock()

	if dropped > 0 {
		o.prog.track(-dropped)
	}
}
