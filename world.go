package deadsched

import (
	"log/slog"

	"deadsched/internal/logging"
)

// World holds one ledger together with the results last computed from it: the deadlocked
// set, the last resolution and the last schedule. It is not safe for concurrent use.
type World struct {
	ledger     *Ledger
	deadlocked []*Process
	resolution *Resolution
	schedule   *Schedule
	log        *slog.Logger
}

type Option func(w *World)

func WithLogger(log *slog.Logger) Option {
	return func(w *World) {
		w.log = log
	}
}

func NewWorld(l *Ledger, opts ...Option) *World {
	w := &World{
		ledger: l,
		log:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *World) String() string {
	str := w.ledger.String()
	if len(w.deadlocked) > 0 {
		str += "deadlocked: "
		for _, p := range w.deadlocked {
			str += p.Pid.String() + " "
		}
		str += "\n"
	}
	if w.resolution != nil {
		str += "last resolution: " + w.resolution.String() + "\n"
	}
	return str
}

func (w *World) Ledger() *Ledger {
	return w.ledger
}

func (w *World) Snapshot() *LedgerSnapshot {
	return w.ledger.Snapshot()
}

// processes found by the last Detect or Resolve; a granted request or release clears it
func (w *World) Deadlocked() []*Process {
	return w.deadlocked
}

func (w *World) LastResolution() *Resolution {
	return w.resolution
}

func (w *World) Schedule() *Schedule {
	return w.schedule
}

func (w *World) Request(pid Tpid, req Tvec) error {
	if err := w.ledger.Request(pid, req); err != nil {
		w.log.Debug("request rejected", "pid", int(pid), "request", req.String(), logging.ErrAttr(err))
		return err
	}
	w.deadlocked = nil
	w.log.Debug("request granted", "pid", int(pid), "request", req.String(), "available", w.ledger.available.String())
	return nil
}

func (w *World) Release(pid Tpid, rel Tvec) error {
	if err := w.ledger.Release(pid, rel); err != nil {
		w.log.Debug("release rejected", "pid", int(pid), "release", rel.String(), logging.ErrAttr(err))
		return err
	}
	w.deadlocked = nil
	w.log.Debug("released", "pid", int(pid), "release", rel.String(), "available", w.ledger.available.String())
	return nil
}

func (w *World) Detect() []*Process {
	w.deadlocked = Detect(w.ledger)
	if len(w.deadlocked) > 0 {
		w.log.Info("deadlock detected", "pids", pidsOf(w.deadlocked))
	}
	return w.deadlocked
}

// Resolve runs strategy against the last detected deadlock set (detecting first when there
// is none) and refreshes the deadlock set afterwards.
func (w *World) Resolve(strategy Strategy) (*Resolution, error) {
	res, err := Resolve(w.ledger, strategy, w.deadlocked)
	if res != nil {
		w.resolution = res
	}
	w.deadlocked = Detect(w.ledger)
	if err != nil {
		w.log.Error("resolution failed", "strategy", strategy.String(), logging.ErrAttr(err))
		return res, err
	}
	w.log.Info("resolved", "strategy", strategy.String(), "affected", res.AffectedPids(), "success", res.Success)
	return res, nil
}

// BuildSchedule schedules copies of the ledger's live processes. For the banker's-gated
// variant the ledger's available vector is used unless params names another ledger.
func (w *World) BuildSchedule(alg Algorithm, params SchedParams) (*Schedule, error) {
	if params.Ledger == nil {
		params.Ledger = w.ledger
	}
	if params.Logger == nil {
		params.Logger = w.log
	}
	sched, err := BuildSchedule(w.ledger.CopyProcs(), alg, params)
	if err != nil {
		return nil, err
	}
	w.schedule = sched
	if sched.Status == StatusDiverged {
		w.log.Warn("simulation diverged", "algorithm", alg.String(), "steps", len(sched.History), "finished", sched.Stats.Finished)
	} else {
		w.log.Info("schedule built", "algorithm", alg.String(), "id", sched.ID, "ticks", len(sched.History))
	}
	return sched, nil
}
