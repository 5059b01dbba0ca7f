// Package interval implements closed-interval arithmetic over int64
// scalars. A RangeSet is the canonical representation of "the set of
// values a symbol may still take": an ordered list of disjoint,
// non-adjacent closed ranges. Every operation returns a canonical set,
// so adjacency and overlap never survive past a single call.
package interval

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Range is a closed interval [Lo, Hi]. Lo <= Hi always holds for
// ranges produced by this package.
type Range struct {
	Lo int64
	Hi int64
}

// Full covers the whole int64 domain.
var Full = Range{Lo: math.MinInt64, Hi: math.MaxInt64}

// NewRange returns the closed interval [lo, hi].
// The bounds are swapped when given in reverse order.
func NewRange(lo, hi int64) Range {
	if lo > hi {
		lo, hi = hi, lo
	}
	return Range{Lo: lo, Hi: hi}
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v int64) bool {
	return r.Lo <= v && v <= r.Hi
}

func (r Range) String() string {
	if r.Lo == r.Hi {
		return fmt.Sprintf("{%d}", r.Lo)
	}
	lo := strconv64(r.Lo)
	hi := strconv64(r.Hi)
	return fmt.Sprintf("[%s, %s]", lo, hi)
}

func strconv64(v int64) string {
	switch v {
	case math.MinInt64:
		return "-inf"
	case math.MaxInt64:
		return "+inf"
	default:
		return fmt.Sprintf("%d", v)
	}
}

// RangeSet is an ordered set of pairwise disjoint, non-adjacent
// ranges. The zero value is the empty set.
type RangeSet struct {
	ranges []Range
}

// Empty is the set containing no values.
func Empty() RangeSet {
	return RangeSet{}
}

// NewRangeSet builds a canonical set from arbitrary ranges:
// sorted, merged, non-adjacent.
func NewRangeSet(ranges ...Range) RangeSet {
	if len(ranges) == 0 {
		return RangeSet{}
	}
	rs := make([]Range, len(ranges))
	copy(rs, ranges)
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Lo != rs[j].Lo {
			return rs[i].Lo < rs[j].Lo
		}
		return rs[i].Hi < rs[j].Hi
	})
	merged := rs[:1]
	for _, r := range rs[1:] {
		last := &merged[len(merged)-1]
		if adjacentOrOverlap(*last, r) {
			if r.Hi > last.Hi {
				last.Hi = r.Hi
			}
			continue
		}
		merged = append(merged, r)
	}
	out := make([]Range, len(merged))
	copy(out, merged)
	return RangeSet{ranges: out}
}

// adjacentOrOverlap reports whether a (which sorts before b) touches b.
func adjacentOrOverlap(a, b Range) bool {
	if b.Lo <= a.Hi {
		return true
	}
	// adjacency: [1,2] and [3,4] coalesce into [1,4]
	return a.Hi != math.MaxInt64 && a.Hi+1 == b.Lo
}

// Single returns the set covering exactly [lo, hi].
func Single(lo, hi int64) RangeSet {
	return RangeSet{ranges: []Range{NewRange(lo, hi)}}
}

// Point returns the singleton set {v}.
func Point(v int64) RangeSet {
	return Single(v, v)
}

// AtLeast returns [v, +inf].
func AtLeast(v int64) RangeSet {
	return Single(v, math.MaxInt64)
}

// AtMost returns [-inf, v].
func AtMost(v int64) RangeSet {
	return Single(math.MinInt64, v)
}

// IsEmpty reports whether the set contains no values. It is the sole
// feasibility oracle: an empty set means the associated program path
// cannot be realized.
func (s RangeSet) IsEmpty() bool {
	return len(s.ranges) == 0
}

// Contains reports whether v is a member of the set.
func (s RangeSet) Contains(v int64) bool {
	i := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].Hi >= v
	})
	return i < len(s.ranges) && s.ranges[i].Contains(v)
}

// Ranges returns a copy of the underlying ranges in ascending order.
func (s RangeSet) Ranges() []Range {
	out := make([]Range, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// Min returns the least member, or false for the empty set.
func (s RangeSet) Min() (int64, bool) {
	if s.IsEmpty() {
		return 0, false
	}
	return s.ranges[0].Lo, true
}

// Max returns the greatest member, or false for the empty set.
func (s RangeSet) Max() (int64, bool) {
	if s.IsEmpty() {
		return 0, false
	}
	return s.ranges[len(s.ranges)-1].Hi, true
}

// Intersect returns the set of values present in both s and other.
func (s RangeSet) Intersect(other RangeSet) RangeSet {
	var out []Range
	i, j := 0, 0
	for i < len(s.ranges) && j < len(other.ranges) {
		a, b := s.ranges[i], other.ranges[j]
		lo := a.Lo
		if b.Lo > lo {
			lo = b.Lo
		}
		hi := a.Hi
		if b.Hi < hi {
			hi = b.Hi
		}
		if lo <= hi {
			out = append(out, Range{Lo: lo, Hi: hi})
		}
		if a.Hi < b.Hi {
			i++
		} else {
			j++
		}
	}
	// both inputs are canonical and intersection never creates
	// adjacency, so out is already canonical
	return RangeSet{ranges: out}
}

// Union returns the set of values present in either s or other.
func (s RangeSet) Union(other RangeSet) RangeSet {
	return NewRangeSet(append(s.Ranges(), other.Ranges()...)...)
}

// Complement returns every value of domain not present in s.
func (s RangeSet) Complement(domain Range) RangeSet {
	var out []Range
	next := domain.Lo
	exhausted := false
	for _, r := range s.ranges {
		if r.Hi < domain.Lo {
			continue
		}
		if r.Lo > domain.Hi {
			break
		}
		if r.Lo > next {
			out = append(out, Range{Lo: next, Hi: r.Lo - 1})
		}
		if r.Hi == math.MaxInt64 || r.Hi >= domain.Hi {
			exhausted = true
			break
		}
		if r.Hi+1 > next {
			next = r.Hi + 1
		}
	}
	if !exhausted && next <= domain.Hi {
		out = append(out, Range{Lo: next, Hi: domain.Hi})
	}
	return RangeSet{ranges: out}
}

// Equal reports whether both sets contain exactly the same values.
func (s RangeSet) Equal(other RangeSet) bool {
	if len(s.ranges) != len(other.ranges) {
		return false
	}
	for i, r := range s.ranges {
		if other.ranges[i] != r {
			return false
		}
	}
	return true
}

// Subset reports whether every value of s is also in other.
func (s RangeSet) Subset(other RangeSet) bool {
	return s.Intersect(other).Equal(s)
}

// Disjoint reports whether s and other share no values.
func (s RangeSet) Disjoint(other RangeSet) bool {
	return s.Intersect(other).IsEmpty()
}

func (s RangeSet) String() string {
	if s.IsEmpty() {
		return "{}"
	}
	parts := make([]string, len(s.ranges))
	for i, r := range s.ranges {
		parts[i] = r.String()
	}
	return strings.Join(parts, " u ")
}
