package deadsched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkLedger(t *testing.T, available Tvec, procs ...*Process) *Ledger {
	t.Helper()
	l, err := NewLedger(available, procs...)
	require.NoError(t, err)
	return l
}

// the usual five-process, three-resource banker's example, pids 1-5
func textbookLedger(t *testing.T) *Ledger {
	return mkLedger(t, Tvec{3, 3, 2},
		NewProcess(1, Tvec{7, 5, 3}, Tvec{0, 1, 0}, nil),
		NewProcess(2, Tvec{3, 2, 2}, Tvec{2, 0, 0}, nil),
		NewProcess(3, Tvec{9, 0, 2}, Tvec{3, 0, 2}, nil),
		NewProcess(4, Tvec{2, 2, 2}, Tvec{2, 1, 1}, nil),
		NewProcess(5, Tvec{4, 3, 3}, Tvec{0, 0, 2}, nil),
	)
}

type ledgerState struct {
	available Tvec
	procs     []*Process
}

func stateOf(l *Ledger) ledgerState {
	return ledgerState{available: l.Available(), procs: l.CopyProcs()}
}

func TestNewProcessDefaults(t *testing.T) {
	p := NewProcess(7, Tvec{3, 2}, nil, nil)
	assert.Equal(t, Tvec{0, 0}, p.Allocated)
	assert.Equal(t, Tvec{3, 2}, p.Need)
	assert.Equal(t, Ttick(-1), p.StartTime)

	q := NewProcess(8, Tvec{3, 2}, Tvec{1, 1}, nil)
	assert.Equal(t, Tvec{2, 1}, q.Need)
}

func TestNewLedgerValidation(t *testing.T) {
	tests := []struct {
		name  string
		avail Tvec
		procs []*Process
	}{
		{"negative available", Tvec{-1}, nil},
		{"short vector", Tvec{1, 1}, []*Process{NewProcess(1, Tvec{1}, nil, nil)}},
		{"allocation above max", Tvec{1}, []*Process{NewProcess(1, Tvec{1}, Tvec{2}, Tvec{0})}},
		{"negative need", Tvec{1}, []*Process{NewProcess(1, Tvec{1}, Tvec{0}, Tvec{-1})}},
		{"duplicate pid", Tvec{1}, []*Process{NewProcess(1, Tvec{1}, nil, nil), NewProcess(1, Tvec{1}, nil, nil)}},
		{"nil process", Tvec{1}, []*Process{nil}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLedger(tc.avail, tc.procs...)
			assert.ErrorIs(t, err, ErrInvalidScenario)
		})
	}
}

func TestSafeSequenceTextbook(t *testing.T) {
	l := textbookLedger(t)
	seq, ok := SafeSequence(l)
	assert.True(t, ok)
	assert.Equal(t, []Tpid{2, 4, 1, 3, 5}, seq)
	assert.True(t, IsSafe(l))
}

func TestUnsafeState(t *testing.T) {
	l := mkLedger(t, Tvec{1},
		NewProcess(1, Tvec{3}, Tvec{1}, nil),
		NewProcess(2, Tvec{3}, Tvec{1}, nil),
	)
	seq, ok := SafeSequence(l)
	assert.False(t, ok)
	assert.Empty(t, seq)
}

func TestRequestGrantedAndRejected(t *testing.T) {
	l := textbookLedger(t)
	total := l.Total()

	require.NoError(t, l.Request(2, Tvec{1, 0, 2}))
	assert.Equal(t, Tvec{2, 3, 0}, l.Available())
	p2, _ := l.Proc(2)
	assert.Equal(t, Tvec{3, 0, 2}, p2.Allocated)
	assert.Equal(t, Tvec{0, 2, 0}, p2.Need)
	assert.Equal(t, total, l.Total())

	before := stateOf(l)
	err := l.Request(1, Tvec{0, 2, 0})
	assert.ErrorIs(t, err, ErrUnsafeRequest)
	assert.Equal(t, before, stateOf(l))

	err = l.Request(5, Tvec{3, 3, 0})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, before, stateOf(l))
}

func TestRequestAtomicRejection(t *testing.T) {
	tests := []struct {
		name string
		pid  Tpid
		req  Tvec
		want error
	}{
		{"beyond need", 4, Tvec{0, 2, 0}, ErrInvalidRequest},
		{"beyond available", 3, Tvec{6, 0, 0}, ErrInvalidRequest},
		{"wrong length", 1, Tvec{1, 0}, ErrInvalidRequest},
		{"negative entry", 1, Tvec{-1, 0, 0}, ErrInvalidRequest},
		{"unknown pid", 42, Tvec{0, 0, 0}, ErrUnknownProcess},
		{"unsafe", 1, Tvec{0, 2, 0}, ErrUnsafeRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := textbookLedger(t)
			if tc.want == ErrUnsafeRequest {
				require.NoError(t, l.Request(2, Tvec{1, 0, 2}))
			}
			before := stateOf(l)
			err := l.Request(tc.pid, tc.req)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, before, stateOf(l))
		})
	}
}

func TestRequestBeyondMax(t *testing.T) {
	// need can run ahead of max - allocated in hand-written scenarios
	l := mkLedger(t, Tvec{2}, NewProcess(1, Tvec{1}, Tvec{1}, Tvec{1}))
	before := stateOf(l)
	assert.ErrorIs(t, l.Request(1, Tvec{1}), ErrInvalidRequest)
	assert.Equal(t, before, stateOf(l))
}

func TestRequestTerminated(t *testing.T) {
	l := mkLedger(t, Tvec{2}, NewProcess(1, Tvec{2}, nil, nil))
	l.terminate(l.find(1))
	assert.ErrorIs(t, l.Request(1, Tvec{1}), ErrInvalidRequest)
}

func TestRelease(t *testing.T) {
	l := textbookLedger(t)
	total := l.Total()

	require.NoError(t, l.Release(3, Tvec{1, 0, 1}))
	assert.Equal(t, Tvec{4, 3, 3}, l.Available())
	p3, _ := l.Proc(3)
	assert.Equal(t, Tvec{2, 0, 1}, p3.Allocated)
	assert.Equal(t, Tvec{7, 0, 1}, p3.Need)
	assert.Equal(t, total, l.Total())

	before := stateOf(l)
	assert.ErrorIs(t, l.Release(3, Tvec{3, 0, 0}), ErrInvalidRelease)
	assert.ErrorIs(t, l.Release(3, Tvec{1}), ErrInvalidRelease)
	assert.ErrorIs(t, l.Release(3, Tvec{-1, 0, 0}), ErrInvalidRelease)
	assert.ErrorIs(t, l.Release(9, Tvec{0, 0, 0}), ErrUnknownProcess)
	assert.Equal(t, before, stateOf(l))
}

func TestConservationAcrossOperations(t *testing.T) {
	l := textbookLedger(t)
	total := l.Total()
	ops := []struct {
		request bool
		pid     Tpid
		vec     Tvec
	}{
		{true, 2, Tvec{1, 0, 2}},
		{true, 1, Tvec{0, 2, 0}},
		{false, 4, Tvec{2, 1, 1}},
		{true, 5, Tvec{3, 3, 0}},
		{true, 2, Tvec{0, 2, 0}},
		{false, 2, Tvec{3, 2, 2}},
		{true, 1, Tvec{7, 4, 3}},
		{false, 9, Tvec{0, 0, 0}},
	}
	for _, op := range ops {
		if op.request {
			_ = l.Request(op.pid, op.vec)
		} else {
			_ = l.Release(op.pid, op.vec)
		}
		assert.Equal(t, total, l.Total())
		assert.False(t, l.Available().hasNegative())
		for _, p := range l.procs {
			assert.True(t, p.Allocated.leq(p.Max), "%v", p)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	l := textbookLedger(t)
	c := l.Clone()
	require.NoError(t, c.Request(2, Tvec{1, 0, 2}))
	assert.Equal(t, Tvec{3, 3, 2}, l.Available())
	p2, _ := l.Proc(2)
	assert.Equal(t, Tvec{2, 0, 0}, p2.Allocated)

	p2.Allocated[0] = 99
	again, _ := l.Proc(2)
	assert.Equal(t, 2, again.Allocated[0])
}

func TestSnapshot(t *testing.T) {
	l := textbookLedger(t)
	s := l.Snapshot()
	assert.Equal(t, []Tpid{1, 2, 3, 4, 5}, s.Pids)
	rows, cols := s.Allocation.Dims()
	assert.Equal(t, 5, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 3.0, s.Allocation.At(2, 0))
	assert.Equal(t, 9.0, s.Max.At(2, 0))
	assert.Equal(t, 6.0, s.Need.At(2, 0))

	held := s.Held()
	expect := s.Total.Clone()
	expect.sub(s.Available)
	assert.Equal(t, expect, held)
	assert.Contains(t, s.String(), "allocation")

	empty := mkLedger(t, Tvec{1}).Snapshot()
	assert.Nil(t, empty.Allocation)
	assert.Equal(t, Tvec{0}, empty.Held())
}

func TestParseVec(t *testing.T) {
	v, err := ParseVec("1,0, 2")
	require.NoError(t, err)
	assert.Equal(t, Tvec{1, 0, 2}, v)

	v, err = ParseVec("[3 4]")
	require.NoError(t, err)
	assert.Equal(t, Tvec{3, 4}, v)

	_, err = ParseVec("1,x")
	assert.Error(t, err)
}
