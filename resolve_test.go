package deadsched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	for _, s := range Strategies() {
		got, err := ParseStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	got, err := ParseStrategy(" Banker ")
	require.NoError(t, err)
	assert.Equal(t, StrategySafeSequence, got)

	_, err = ParseStrategy("ostrich")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestResolveUnknownStrategy(t *testing.T) {
	l := circularWait(t)
	before := stateOf(l)
	_, err := Resolve(l, Strategy(99), nil)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
	assert.Equal(t, before, stateOf(l))
}

func TestTerminationCircularWait(t *testing.T) {
	l := circularWait(t)
	total := l.Total()
	deadlocked := Detect(l)
	require.Len(t, deadlocked, 3)

	res, err := Resolve(l, StrategyTermination, deadlocked)
	require.NoError(t, err)
	assert.True(t, res.Success)
	// equal holdings keep ledger order
	assert.Equal(t, []Tpid{1}, res.AffectedPids())
	assert.Equal(t, Tvec{1, 0, 0}, res.Preempted[1])
	assert.Empty(t, Detect(l))
	assert.Equal(t, total, l.Total())

	p1, _ := l.Proc(1)
	assert.True(t, p1.Terminated)
	assert.Equal(t, Tvec{0, 0, 0}, p1.Allocated)
	assert.Equal(t, p1.Max, p1.Need)
}

func TestTerminationPicksLargestHolderFirst(t *testing.T) {
	l := mkLedger(t, Tvec{0, 0},
		NewProcess(1, Tvec{1, 1}, Tvec{1, 0}, Tvec{0, 1}),
		NewProcess(2, Tvec{1, 3}, Tvec{0, 3}, Tvec{1, 0}),
	)
	res, err := Resolve(l, StrategyTermination, nil)
	require.NoError(t, err)
	assert.Equal(t, []Tpid{2}, res.AffectedPids())
	assert.Equal(t, Tvec{0, 3}, l.Available())
}

func TestPreemptionMutualWait(t *testing.T) {
	l := mutualWait(t)
	deadlocked := Detect(l)
	require.Equal(t, []Tpid{1, 2}, pidsOf(deadlocked))

	res, err := Resolve(l, StrategyPreemption, deadlocked)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []Tpid{1, 2}, res.AffectedPids())
	assert.Equal(t, Tvec{1, 1}, l.Available())
	for _, pid := range []Tpid{1, 2} {
		p, _ := l.Proc(pid)
		assert.Equal(t, Tvec{0, 0}, p.Allocated)
		assert.False(t, p.Terminated)
	}
	p1, _ := l.Proc(1)
	assert.Equal(t, Tvec{1, 1}, p1.Need)
	assert.Empty(t, Detect(l))
}

func TestMinCostPreemption(t *testing.T) {
	l := mkLedger(t, Tvec{0, 0},
		NewProcess(1, Tvec{3, 1}, Tvec{3, 0}, Tvec{0, 1}),
		NewProcess(2, Tvec{1, 1}, Tvec{0, 1}, Tvec{1, 0}),
	)
	res, err := Resolve(l, StrategyMinCostPreemption, nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []Tpid{2}, res.AffectedPids())
	assert.Equal(t, Tvec{0, 1}, res.Preempted[2])
	p1, _ := l.Proc(1)
	assert.Equal(t, Tvec{3, 0}, p1.Allocated)
}

func TestPreemptionStripsWholeSet(t *testing.T) {
	// stripping P2 alone would do, as min-cost shows, but every deadlocked process loses all
	l := mkLedger(t, Tvec{0, 0},
		NewProcess(1, Tvec{3, 1}, Tvec{3, 0}, Tvec{0, 1}),
		NewProcess(2, Tvec{1, 1}, Tvec{0, 1}, Tvec{1, 0}),
	)
	res, err := Resolve(l, StrategyPreemption, nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []Tpid{1, 2}, res.AffectedPids())
	assert.Equal(t, Tvec{3, 0}, res.Preempted[1])
	assert.Equal(t, Tvec{3, 1}, l.Available())
}

func TestPriorityPreemption(t *testing.T) {
	p1 := NewProcess(1, Tvec{2, 1}, Tvec{2, 0}, Tvec{0, 1})
	p1.Priority = 5
	p2 := NewProcess(2, Tvec{2, 1}, Tvec{0, 1}, Tvec{2, 0})
	p2.Priority = 1
	l := mkLedger(t, Tvec{0, 0}, p1, p2)
	total := l.Total()

	res, err := Resolve(l, StrategyPriorityPreemption, nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	// P2 goes first and gives up its only unit of R1, which P1 was waiting for
	assert.Equal(t, []Tpid{2}, res.AffectedPids())
	assert.Equal(t, Tvec{0, 1}, res.Preempted[2])
	assert.Equal(t, total, l.Total())
	assert.Empty(t, Detect(l))
}

func TestPriorityPreemptionTakesOneUnitPerPass(t *testing.T) {
	// P1 holds two units of R0 that P2 needs; the cycle only clears on the second pass
	p1 := NewProcess(1, Tvec{2, 1}, Tvec{2, 0}, Tvec{0, 1})
	p2 := NewProcess(2, Tvec{2, 1}, Tvec{0, 1}, Tvec{2, 0})
	l := mkLedger(t, Tvec{0, 0}, p1, p2)

	res, err := Resolve(l, StrategyPriorityPreemption, []*Process{p1})
	require.NoError(t, err)
	assert.Equal(t, []Tpid{1}, res.AffectedPids())
	assert.Equal(t, Tvec{2, 0}, res.Preempted[1])
	assert.Equal(t, Tvec{2, 0}, l.Available())
	assert.Equal(t, Tvec{2, 1}, p1.Need)
}

func TestSafeSequenceResolution(t *testing.T) {
	l := circularWait(t)
	total := l.Total()
	res, err := Resolve(l, StrategySafeSequence, nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []Tpid{1, 2, 3}, res.SafeSequence)
	assert.Equal(t, total, l.Available())
	for _, p := range l.CopyProcs() {
		assert.Equal(t, Tvec{0, 0, 0}, p.Allocated)
		assert.Equal(t, p.Max, p.Need)
	}
	assert.Empty(t, Detect(l))
}

func TestSafeSequenceResolutionFails(t *testing.T) {
	l := mkLedger(t, Tvec{1}, NewProcess(1, Tvec{2}, nil, nil), NewProcess(2, Tvec{1}, nil, nil))
	res, err := Resolve(l, StrategySafeSequence, nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, []Tpid{2}, res.SafeSequence)
}

func TestResolveWithoutDeadlock(t *testing.T) {
	l := textbookLedger(t)
	before := stateOf(l)
	for _, s := range []Strategy{StrategyTermination, StrategyPreemption, StrategyMinCostPreemption, StrategyPriorityPreemption} {
		res, err := Resolve(l, s, nil)
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Empty(t, res.Affected)
	}
	assert.Equal(t, before, stateOf(l))
}

func TestResolveStaleDeadlockedSet(t *testing.T) {
	l := mutualWait(t)
	deadlocked := Detect(l)
	require.Len(t, deadlocked, 2)
	require.NoError(t, l.Release(1, Tvec{1, 0}))
	before := stateOf(l)

	for _, s := range []Strategy{StrategyTermination, StrategyPreemption, StrategyMinCostPreemption, StrategyPriorityPreemption} {
		res, err := Resolve(l, s, deadlocked)
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Empty(t, res.Affected)
	}
	assert.Equal(t, before, stateOf(l))
	for _, p := range l.CopyProcs() {
		assert.False(t, p.Terminated)
	}
}

func TestResolveAcceptsCopies(t *testing.T) {
	l := mutualWait(t)
	copies := []*Process{}
	for _, p := range Detect(l) {
		copies = append(copies, p.Copy())
	}
	res, err := Resolve(l, StrategyPreemption, copies)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, Tvec{1, 1}, l.Available())
}

func TestResolveExhausted(t *testing.T) {
	// handing over the wrong victim leaves the real cycle untouched
	l := mkLedger(t, Tvec{0, 0, 1},
		NewProcess(1, Tvec{1, 1, 0}, Tvec{1, 0, 0}, Tvec{0, 1, 0}),
		NewProcess(2, Tvec{1, 1, 0}, Tvec{0, 1, 0}, Tvec{1, 0, 0}),
		NewProcess(3, Tvec{0, 0, 1}, Tvec{0, 0, 1}, Tvec{0, 0, 0}),
	)
	p3, _ := l.Proc(3)
	res, err := Resolve(l, StrategyTermination, []*Process{p3})
	assert.ErrorIs(t, err, ErrResolutionExhausted)
	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Equal(t, []Tpid{3}, res.AffectedPids())
}

func TestResolutionString(t *testing.T) {
	l := mutualWait(t)
	res, err := Resolve(l, StrategyPreemption, nil)
	require.NoError(t, err)
	assert.Equal(t, "preemption: resolved, affected [P1 P2]", res.String())
}
