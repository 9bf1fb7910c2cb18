package searchspace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type countKind uint8

const (
	countUnset countKind = iota
	countExact
	countRange
)

// CountSpace is the quantity of a countable resource (nodes, cores, memory,
// NICs, GPUs). It is either unset, an exact value, or an inclusive range whose
// upper bound may be open.
//
// The zero value is unset. An exact value n compares like the range [n, n].
//
// +kubebuilder:validation:Schemaless
// +kubebuilder:pruning:PreserveUnknownFields
type CountSpace struct {
	kind    countKind
	min     int
	max     int
	bounded bool
}

// Exact returns a CountSpace holding exactly n.
func Exact(n int) CountSpace {
	return CountSpace{kind: countExact, min: n, max: n, bounded: true}
}

// Range returns the inclusive range [min, max].
func Range(min, max int) CountSpace {
	return CountSpace{kind: countRange, min: min, max: max, bounded: true}
}

// AtLeast returns the range [min, +inf).
func AtLeast(min int) CountSpace {
	return CountSpace{kind: countRange, min: min}
}

// IsSet reports whether a value was declared.
func (c CountSpace) IsSet() bool {
	return c.kind != countUnset
}

// IsExact reports whether c holds a single exact value.
func (c CountSpace) IsExact() bool {
	return c.kind == countExact
}

// IsEmpty reports whether c is unset or exactly zero.
func (c CountSpace) IsEmpty() bool {
	return c.kind == countUnset || (c.kind == countExact && c.min == 0)
}

// Value returns the exact value, if c is exact.
func (c CountSpace) Value() (int, bool) {
	if c.kind != countExact {
		return 0, false
	}
	return c.min, true
}

// Min returns the lower bound. It is 0 for an unset space.
func (c CountSpace) Min() int {
	return c.min
}

// Max returns the upper bound and whether it is bounded.
func (c CountSpace) Max() (int, bool) {
	return c.max, c.bounded
}

// Equal compares the declared bounds, so Exact(n) equals Range(n, n).
func (c CountSpace) Equal(other CountSpace) bool {
	if c.IsSet() != other.IsSet() {
		return false
	}
	if !c.IsSet() {
		return true
	}
	if c.min != other.min || c.bounded != other.bounded {
		return false
	}
	return !c.bounded || c.max == other.max
}

func (c CountSpace) String() string {
	switch {
	case c.kind == countUnset:
		return "<unset>"
	case c.kind == countExact:
		return strconv.Itoa(c.min)
	case c.bounded:
		return fmt.Sprintf("[%d, %d]", c.min, c.max)
	default:
		return fmt.Sprintf("[%d, inf)", c.min)
	}
}

func (c CountSpace) contains(n int) bool {
	if n < c.min {
		return false
	}
	return !c.bounded || n <= c.max
}

// covers reports whether every value of other is also a value of c.
func (c CountSpace) covers(other CountSpace) bool {
	if c.min > other.min {
		return false
	}
	if !c.bounded {
		return true
	}
	return other.bounded && c.max >= other.max
}

type countRangeJSON struct {
	Min int  `json:"min"`
	Max *int `json:"max,omitempty"`
}

// MarshalJSON writes an exact value as a number and a range as
// {"min": n, "max": m}; an open range omits max.
func (c CountSpace) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case countUnset:
		return []byte("null"), nil
	case countExact:
		return []byte(strconv.Itoa(c.min)), nil
	}
	out := countRangeJSON{Min: c.min}
	if c.bounded {
		max := c.max
		out.Max = &max
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts a non-negative integer or a {"min", "max"} object.
func (c *CountSpace) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = CountSpace{}
		return nil
	}
	if data[0] != '{' {
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("count space: expected integer or range object: %w", err)
		}
		if n < 0 {
			return fmt.Errorf("count space: %d must not be negative", n)
		}
		*c = Exact(n)
		return nil
	}

	var raw countRangeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("count space: %w", err)
	}
	if raw.Min < 0 {
		return fmt.Errorf("count space: min %d must not be negative", raw.Min)
	}
	if raw.Max == nil {
		*c = AtLeast(raw.Min)
		return nil
	}
	if *raw.Max < raw.Min {
		return fmt.Errorf("count space: max %d is smaller than min %d", *raw.Max, raw.Min)
	}
	*c = Range(raw.Min, *raw.Max)
	return nil
}

// CheckCount reports whether capability can satisfy requirement.
//
//   - exact vs exact passes when capability >= requirement;
//   - an exact capability must lie inside a range requirement;
//   - a range capability must cover the requirement value or range.
//
// An unset requirement always passes; an unset capability fails any set
// requirement.
func CheckCount(requirement, capability CountSpace) ResultReason {
	var result ResultReason
	if !requirement.IsSet() {
		return result
	}
	if !capability.IsSet() {
		result.AddReasonf("capability shouldn't be empty, requirement is %s", requirement)
		return result
	}

	switch {
	case requirement.IsExact() && capability.IsExact():
		if capability.min < requirement.min {
			result.AddReasonf("capability %d must be more than requirement %d", capability.min, requirement.min)
		}
	case capability.IsExact():
		// An exact capability is one concrete value, so it only has to fall
		// inside the requirement.
		if !requirement.contains(capability.min) {
			result.AddReasonf("capability %s is out of requirement %s", capability, requirement)
		}
	default:
		if !capability.covers(requirement) {
			result.AddReasonf("capability %s doesn't cover requirement %s", capability, requirement)
		}
	}
	return result
}

// GenerateMinCount returns the tightest CountSpace that lies within capability
// and satisfies requirement.
//
// Two exact values return the capability unchanged, so a capability larger
// than the requirement is kept as is. An unset requirement returns the
// capability.
func GenerateMinCount(requirement, capability CountSpace) (CountSpace, error) {
	if err := CheckCount(requirement, capability).Err(); err != nil {
		return CountSpace{}, err
	}
	if !requirement.IsSet() {
		return capability, nil
	}
	if requirement.IsExact() && capability.IsExact() {
		return capability, nil
	}
	return intersect(requirement, capability), nil
}

func intersect(a, b CountSpace) CountSpace {
	lo := a.min
	if b.min > lo {
		lo = b.min
	}

	var hi int
	switch {
	case a.bounded && b.bounded:
		hi = a.max
		if b.max < hi {
			hi = b.max
		}
	case a.bounded:
		hi = a.max
	case b.bounded:
		hi = b.max
	default:
		return AtLeast(lo)
	}

	if hi == lo {
		return Exact(lo)
	}
	return Range(lo, hi)
}
