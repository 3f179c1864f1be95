package lockmon

import (
	"context"
	"errors"
	"sync"
	"time"
)

const DEMO_POLL_INTERVAL = 10 * time.Millisecond

// RunDemo provokes the classic two-lock deadlock: worker-1 takes lock-A then wants lock-B,
// worker-2 takes lock-B then wants lock-A. It returns the cycle the monitor saw, or nil if
// none was seen before timeout. Either way every worker has given up and released its locks
// by the time RunDemo returns.
func RunDemo(ctx context.Context, m *Monitor, timeout time.Duration) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	lockA, lockB := m.NewLock("lock-A"), m.NewLock("lock-B")
	plans := []struct {
		worker        string
		first, second *Lock
	}{
		{"worker-1", lockA, lockB},
		{"worker-2", lockB, lockA},
	}
	var registered []string
	defer func() {
		for _, w := range registered {
			m.Deregister(w)
		}
	}()
	for _, p := range plans {
		if err := m.Register(p.worker); err != nil {
			return nil, err
		}
		registered = append(registered, p.worker)
	}

	var holding, done sync.WaitGroup
	holding.Add(len(plans))
	errs := make([]error, len(plans))
	for i, p := range plans {
		done.Add(1)
		go func(i int, worker string, first, second *Lock) {
			defer done.Done()
			if err := first.Acquire(ctx, worker); err != nil {
				holding.Done()
				errs[i] = err
				return
			}
			defer first.Release(worker)
			holding.Done()
			holding.Wait()
			if err := second.Acquire(ctx, worker); err != nil {
				if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
					errs[i] = err
				}
				return
			}
			second.Release(worker)
		}(i, p.worker, p.first, p.second)
	}

	var cycle []string
	watchCtx, stop := context.WithCancel(ctx)
	m.Watch(watchCtx, DEMO_POLL_INTERVAL, func(c []string) {
		if cycle == nil {
			cycle = c
			stop()
		}
	})
	stop()
	cancel()
	done.Wait()
	return cycle, errors.Join(errs...)
}
