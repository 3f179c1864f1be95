package deadsched

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

type Tpid int
type Ttick int

func (p Tpid) String() string {
	return "P" + strconv.Itoa(int(p))
}

// one entry per resource type
type Tvec []int

func NewVec(n int) Tvec {
	return make(Tvec, n)
}

func (v Tvec) Clone() Tvec {
	if v == nil {
		return nil
	}
	out := make(Tvec, len(v))
	copy(out, v)
	return out
}

func (v Tvec) String() string {
	str := "["
	for i, x := range v {
		if i > 0 {
			str += " "
		}
		str += strconv.Itoa(x)
	}
	return str + "]"
}

func (v Tvec) Total() int {
	return sum(v)
}

func (v Tvec) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// component-wise v <= o; vectors of different length never compare
func (v Tvec) leq(o Tvec) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] > o[i] {
			return false
		}
	}
	return true
}

func (v Tvec) add(o Tvec) {
	for i := range v {
		v[i] += o[i]
	}
}

func (v Tvec) sub(o Tvec) {
	for i := range v {
		v[i] -= o[i]
	}
}

func (v Tvec) hasNegative() bool {
	for _, x := range v {
		if x < 0 {
			return true
		}
	}
	return false
}

// ParseVec reads a comma or space separated vector such as "1,0,2".
func ParseVec(s string) (Tvec, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '[' || r == ']'
	})
	v := make(Tvec, 0, len(fields))
	for _, f := range fields {
		x, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("bad vector entry %q: %w", f, err)
		}
		v = append(v, x)
	}
	return v, nil
}

type Number interface {
	constraints.Integer | constraints.Float
}

func sum[T Number](list []T) T {
	var total T
	for _, val := range list {
		total += val
	}
	return total
}

func avg[T Number](list []T) float64 {
	if len(list) == 0 {
		return 0
	}
	return float64(sum(list)) / float64(len(list))
}

func toFloats[T Number](list []T) []float64 {
	out := make([]float64, len(list))
	for i, val := range list {
		out[i] = float64(val)
	}
	return out
}
