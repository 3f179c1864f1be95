package deadsched

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LedgerSnapshot is a point-in-time copy of a ledger laid out as matrices: one row per
// process in ledger order, one column per resource type. Matrices are nil when the ledger
// has no processes or no resource types.
type LedgerSnapshot struct {
	Available  Tvec
	Total      Tvec
	Pids       []Tpid
	Terminated []Tpid
	Allocation *mat.Dense
	Max        *mat.Dense
	Need       *mat.Dense
}

func (l *Ledger) Snapshot() *LedgerSnapshot {
	s := &LedgerSnapshot{
		Available: l.Available(),
		Total:     l.Total(),
		Pids:      l.Pids(),
	}
	for _, p := range l.procs {
		if p.Terminated {
			s.Terminated = append(s.Terminated, p.Pid)
		}
	}
	rows, cols := len(l.procs), len(l.available)
	if rows == 0 || cols == 0 {
		return s
	}
	s.Allocation = mat.NewDense(rows, cols, nil)
	s.Max = mat.NewDense(rows, cols, nil)
	s.Need = mat.NewDense(rows, cols, nil)
	for i, p := range l.procs {
		for j := 0; j < cols; j++ {
			s.Allocation.Set(i, j, float64(p.Allocated[j]))
			s.Max.Set(i, j, float64(p.Max[j]))
			s.Need.Set(i, j, float64(p.Need[j]))
		}
	}
	return s
}

// column sums of the allocation matrix
func (s *LedgerSnapshot) Held() Tvec {
	held := NewVec(len(s.Available))
	if s.Allocation == nil {
		return held
	}
	ones := mat.NewVecDense(len(s.Pids), nil)
	for i := 0; i < len(s.Pids); i++ {
		ones.SetVec(i, 1)
	}
	var colSums mat.VecDense
	colSums.MulVec(s.Allocation.T(), ones)
	for j := range held {
		held[j] = int(colSums.AtVec(j))
	}
	return held
}

func (s *LedgerSnapshot) String() string {
	str := fmt.Sprintf("pids %v\navailable %v total %v\n", s.Pids, s.Available, s.Total)
	if len(s.Terminated) > 0 {
		str += fmt.Sprintf("terminated %v\n", s.Terminated)
	}
	if s.Allocation == nil {
		return str
	}
	for _, m := range []struct {
		name string
		m    *mat.Dense
	}{{"allocation", s.Allocation}, {"max", s.Max}, {"need", s.Need}} {
		str += fmt.Sprintf("%s =\n%v\n", m.name, mat.Formatted(m.m, mat.Prefix(""), mat.Squeeze()))
	}
	return str
}

func rowsOf(m *mat.Dense) [][]int {
	if m == nil {
		return nil
	}
	r, c := m.Dims()
	out := make([][]int, r)
	for i := 0; i < r; i++ {
		out[i] = make([]int, c)
		for j := 0; j < c; j++ {
			out[i][j] = int(m.At(i, j))
		}
	}
	return out
}

func (s *LedgerSnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Available  Tvec    `json:"available"`
		Total      Tvec    `json:"total"`
		Pids       []Tpid  `json:"pids"`
		Terminated []Tpid  `json:"terminated,omitempty"`
		Allocation [][]int `json:"allocation"`
		Max        [][]int `json:"max"`
		Need       [][]int `json:"need"`
	}{s.Available, s.Total, s.Pids, s.Terminated, rowsOf(s.Allocation), rowsOf(s.Max), rowsOf(s.Need)})
}
