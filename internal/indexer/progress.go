package indexer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Status is the coarse indexing state.
type Status string

const (
	// StatusIndexing means work is in flight.
	StatusIndexing Status = "indexing"
	// StatusReady means every received change has been applied.
	StatusReady Status = "ready"
)

// ProgressFunc is called with true when the orchestrator goes from idle to
// busy and with false when it becomes idle again. Calls are serialized and
// strictly alternate. A ProgressFunc must not call OnProgress.
type ProgressFunc func(indexing bool)

// ProgressSnapshot is an immutable snapshot of indexing activity.
type ProgressSnapshot struct {
	Status       Status `json:"status"`
	InFlight     int    `json:"in_flight"`
	FilesIndexed int64  `json:"files_indexed"`
	FilesRemoved int64  `json:"files_removed"`
	FilesSkipped int64  `json:"files_skipped"`
	FilesFailed  int64  `json:"files_failed"`
	BusySeconds  int    `json:"busy_seconds"`
}

// progress tracks in-flight work and notifies listeners on edges.
type progress struct {
	mu        sync.Mutex
	inFlight  int
	idle      chan struct{}
	busySince time.Time
	listeners []ProgressFunc

	indexing atomic.Bool

	indexed atomic.Int64
	removed atomic.Int64
	skipped atomic.Int64
	failed  atomic.Int64
}

func newProgress() *progress {
	idle := make(chan struct{})
	close(idle)
	return &progress{idle: idle}
}

func (p *progress) subscribe(fn ProgressFunc) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

// track adjusts the in-flight count by delta and fires listeners when the
// count leaves or reaches zero.
func (p *progress) track(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	before := p.inFlight
	p.inFlight += delta
	if p.inFlight < 0 {
		panic("indexer: in-flight count below zero")
	}

	switch {
	case before == 0 && p.inFlight > 0:
		p.idle = make(chan struct{})
		p.busySince = time.Now()
		p.indexing.Store(true)
		p.notify(true)
	case before > 0 && p.inFlight == 0:
		p.indexing.Store(false)
		p.notify(false)
		close(p.idle)
	}
}

func (p *progress) notify(indexing bool) {
	for _, fn := range p.listeners {
		fn(indexing)
	}
}

func (p *progress) waitIdle(ctx context.Context) error {
	p.mu.Lock()
	idle := p.idle
	p.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *progress) snapshot() ProgressSnapshot {
	p.mu.Lock()
	inFlight := p.inFlight
	busySince := p.busySince
	p.mu.Unlock()

	s := ProgressSnapshot{
		Status:       StatusReady,
		InFlight:     inFlight,
		FilesIndexed: p.indexed.Load(),
		FilesRemoved: p.removed.Load(),
		FilesSkipped: p.skipped.Load(),
		FilesFailed:  p.failed.Load(),
	}
	if inFlight > 0 {
		s.Status = StatusIndexing
		s.BusySeconds = int(time.Since(busySince).Seconds())
	}
	return s
}
