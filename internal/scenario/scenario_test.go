package scenario

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deadsched"
)

const circularYAML = `
name: circular-wait
available: [0, 0, 0]
processes:
  - pid: 1
    max: [1, 0, 0]
    allocated: [1, 0, 0]
    need: [0, 1, 0]
    burst: 5
  - pid: 2
    max: [0, 1, 0]
    allocated: [0, 1, 0]
    need: [0, 0, 1]
    priority: 3
  - pid: 3
    max: [0, 0, 1]
    allocated: [0, 0, 1]
    need: [1, 0, 0]
    arrival: 2
`

func TestDecodeBuild(t *testing.T) {
	sc, err := Decode([]byte(circularYAML))
	require.NoError(t, err)
	assert.Equal(t, "circular-wait", sc.Name)
	require.Len(t, sc.Processes, 3)

	l, err := sc.Build()
	require.NoError(t, err)
	assert.Equal(t, []deadsched.Tpid{1, 2, 3}, l.Pids())

	p1, _ := l.Proc(1)
	assert.Equal(t, deadsched.Ttick(5), p1.BurstTime)
	assert.Equal(t, 1, p1.Priority)
	p2, _ := l.Proc(2)
	assert.Equal(t, 3, p2.Priority)
	p3, _ := l.Proc(3)
	assert.Equal(t, deadsched.Ttick(2), p3.ArrivalTime)

	assert.Len(t, deadsched.Detect(l), 3)
}

func TestBuildDefaultsNeed(t *testing.T) {
	sc := &Scenario{
		Name:      "defaults",
		Available: []int{3, 2},
		Processes: []Proc{{Pid: 1, Max: []int{2, 2}, Allocated: []int{1, 0}}, {Pid: 2, Max: []int{1, 1}}},
	}
	l, err := sc.Build()
	require.NoError(t, err)
	p1, _ := l.Proc(1)
	assert.Equal(t, deadsched.Tvec{1, 2}, p1.Need)
	p2, _ := l.Proc(2)
	assert.Equal(t, deadsched.Tvec{0, 0}, p2.Allocated)
	assert.Equal(t, deadsched.Tvec{1, 1}, p2.Need)
}

func TestBuildRejectsInvalid(t *testing.T) {
	tests := map[string]*Scenario{
		"no max":          {Available: []int{1}, Processes: []Proc{{Pid: 1}}},
		"short vector":    {Available: []int{1, 1}, Processes: []Proc{{Pid: 1, Max: []int{1}}}},
		"alloc above max": {Available: []int{1}, Processes: []Proc{{Pid: 1, Max: []int{1}, Allocated: []int{2}}}},
		"duplicate pid":   {Available: []int{1}, Processes: []Proc{{Pid: 1, Max: []int{1}}, {Pid: 1, Max: []int{1}}}},
		"negative avail":  {Available: []int{-1}},
	}
	for name, sc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := sc.Build()
			assert.ErrorIs(t, err, deadsched.ErrInvalidScenario)
		})
	}
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode([]byte("available: [1, 2\nprocesses: {"))
	assert.ErrorIs(t, err, deadsched.ErrInvalidScenario)
}

func TestBuiltins(t *testing.T) {
	// scenario 6 has processes queued on a resource nobody holds, which is not a cycle
	wantDeadlocked := map[int][]deadsched.Tpid{
		1: {1, 2, 3},
		2: {1, 2},
		3: {1, 2, 3, 4},
		4: {1, 2, 3},
		5: {1, 2, 3, 4},
		6: nil,
		7: {1, 2, 3, 4, 5},
		8: {1, 2, 3},
		9: {1, 2, 3, 4, 5, 6},
	}
	for id := 1; id <= NUM_BUILTIN; id++ {
		sc, err := Builtin(id)
		require.NoError(t, err, id)
		l, err := sc.Build()
		require.NoError(t, err, id)

		var got []deadsched.Tpid
		for _, p := range deadsched.Detect(l) {
			got = append(got, p.Pid)
		}
		assert.Equal(t, wantDeadlocked[id], got, "builtin %d", id)
	}

	_, err := Builtin(0)
	assert.Error(t, err)
	_, err = Builtin(NUM_BUILTIN + 1)
	assert.Error(t, err)
}

func TestBuiltinReturnsCopies(t *testing.T) {
	a, _ := Builtin(1)
	a.Processes[0].Allocated[0] = 99
	b, _ := Builtin(1)
	assert.Equal(t, 1, b.Processes[0].Allocated[0])
}

func TestGenerateIsConsistent(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		sc := Generate(r, 1+r.Intn(6), 1+r.Intn(4))
		l, err := sc.Build()
		require.NoError(t, err)
		for j, total := range l.Total() {
			assert.LessOrEqual(t, total, MAX_UNITS, "resource %d", j)
		}
		for _, p := range sc.Processes {
			assert.GreaterOrEqual(t, p.Burst, MIN_BURST)
			assert.LessOrEqual(t, p.Burst, MAX_BURST)
			assert.GreaterOrEqual(t, p.Priority, 1)
		}
	}
}

func TestRoundTripThroughFile(t *testing.T) {
	ctx := context.Background()
	URL := filepath.Join(t.TempDir(), "circular.yaml")

	sc, err := Builtin(1)
	require.NoError(t, err)
	require.NoError(t, Save(ctx, URL, sc))

	loaded, err := Load(ctx, URL)
	require.NoError(t, err)
	assert.Equal(t, sc, loaded)

	_, err = Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFromLedger(t *testing.T) {
	sc, _ := Builtin(2)
	l, err := sc.Build()
	require.NoError(t, err)
	_, err = deadsched.Resolve(l, deadsched.StrategyTermination, nil)
	require.NoError(t, err)

	snap := FromLedger("after", l)
	assert.Equal(t, "after", snap.Name)
	require.Len(t, snap.Processes, 1)
	rebuilt, err := snap.Build()
	require.NoError(t, err)
	assert.Equal(t, l.Total(), rebuilt.Total())
	assert.Empty(t, deadsched.Detect(rebuilt))
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, filepath.Join(t.TempDir(), "scenarios"))
	require.NoError(t, err)

	for _, id := range []int{1, 2} {
		sc, _ := Builtin(id)
		require.NoError(t, store.Save(ctx, sc))
	}
	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"builtin-1", "builtin-2"}, names)

	sc, err := store.Load(ctx, "builtin-2")
	require.NoError(t, err)
	assert.Len(t, sc.Processes, 2)

	require.NoError(t, store.Delete(ctx, "builtin-1"))
	assert.Error(t, store.Delete(ctx, "builtin-1"))
	names, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"builtin-2"}, names)

	assert.Error(t, store.Save(ctx, &Scenario{}))
}
