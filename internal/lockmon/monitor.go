// Package lockmon is a small live lock monitor: workers register with a Monitor, acquire
// monitored locks, and the monitor builds a wait-for graph from who holds what and who is
// waiting for what.
package lockmon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"deadsched/internal/logging"
	"deadsched/internal/waitgraph"
)

var (
	ErrUnknownWorker = errors.New("unknown worker")
	ErrNotOwner      = errors.New("lock not held by worker")
)

type Monitor struct {
	mu      sync.Mutex
	workers map[string]bool
	owners  map[*Lock]string
	waiting map[string][]*Lock
	log     *slog.Logger
}

type Option func(m *Monitor)

func WithLogger(log *slog.Logger) Option {
	return func(m *Monitor) {
		m.log = log
	}
}

func New(opts ...Option) *Monitor {
	m := &Monitor{
		workers: make(map[string]bool),
		owners:  make(map[*Lock]string),
		waiting: make(map[string][]*Lock),
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Monitor) Register(worker string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.workers[worker] {
		return fmt.Errorf("worker %q already registered", worker)
	}
	m.workers[worker] = true
	return nil
}

// Deregister forgets a worker. Locks it still holds stay held.
func (m *Monitor) Deregister(worker string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.workers, worker)
	delete(m.waiting, worker)
}

func (m *Monitor) NewLock(name string) *Lock {
	return &Lock{name: name, m: m, sem: make(chan struct{}, 1)}
}

func (m *Monitor) Owner(l *Lock) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owner, ok := m.owners[l]
	return owner, ok
}

func (m *Monitor) startWaiting(worker string, l *Lock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.workers[worker] {
		return fmt.Errorf("%w: %q", ErrUnknownWorker, worker)
	}
	m.waiting[worker] = append(m.waiting[worker], l)
	return nil
}

func (m *Monitor) stopWaiting(worker string, l *Lock, acquired bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws := m.waiting[worker]
	for i, w := range ws {
		if w == l {
			m.waiting[worker] = append(ws[:i:i], ws[i+1:]...)
			break
		}
	}
	if len(m.waiting[worker]) == 0 {
		delete(m.waiting, worker)
	}
	if acquired {
		m.owners[l] = worker
	}
}

func (m *Monitor) release(worker string, l *Lock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.owners[l] != worker {
		return fmt.Errorf("%w: %s by %q", ErrNotOwner, l.name, worker)
	}
	delete(m.owners, l)
	return nil
}

// Detect returns one wait-for cycle as worker names, or nil. An edge runs from every waiting
// worker to the owner of the lock it waits on.
func (m *Monitor) Detect() []string {
	m.mu.Lock()
	g := waitgraph.New()
	for worker, locks := range m.waiting {
		for _, l := range locks {
			owner, held := m.owners[l]
			if held && owner != worker {
				g.AddEdge(g.AddNode(worker), g.AddNode(owner))
			}
		}
	}
	m.mu.Unlock()

	cycle := g.FindCycle()
	if cycle == nil {
		return nil
	}
	names := make([]string, len(cycle))
	for i, v := range cycle {
		names[i] = g.Label(v)
	}
	return names
}

// Watch polls Detect every interval until ctx is done, calling found for each cycle seen.
func (m *Monitor) Watch(ctx context.Context, interval time.Duration, found func(cycle []string)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if cycle := m.Detect(); cycle != nil {
				m.log.Warn("lock cycle detected", "cycle", cycle)
				found(cycle)
			}
		}
	}
}

// Lock is a mutual-exclusion lock whose ownership is tracked by its Monitor.
type Lock struct {
	name string
	m    *Monitor
	sem  chan struct{}
}

func (l *Lock) String() string {
	return l.name
}

// Acquire blocks until worker holds l or ctx is done.
func (l *Lock) Acquire(ctx context.Context, worker string) error {
	if err := l.m.startWaiting(worker, l); err != nil {
		return err
	}
	l.m.log.Debug("waiting", "worker", worker, "lock", l.name)
	select {
	case l.sem <- struct{}{}:
		l.m.stopWaiting(worker, l, true)
		l.m.log.Debug("acquired", "worker", worker, "lock", l.name)
		return nil
	case <-ctx.Done():
		l.m.stopWaiting(worker, l, false)
		return ctx.Err()
	}
}

func (l *Lock) Release(worker string) error {
	if err := l.m.release(worker, l); err != nil {
		return err
	}
	<-l.sem
	l.m.log.Debug("released", "worker", worker, "lock", l.name)
	return nil
}
