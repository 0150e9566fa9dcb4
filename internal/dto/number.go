package dto

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ======================================================
// NUMBERS
// ======================================================

// maxExactInt is the largest integer a float64 (and the SPA) holds exactly.
const maxExactInt = 1 << 53

// Number accepts a JSON number, a numeric string, "" or null. The SPA
// posts form values as strings.
type Number[T int | uint | float64] struct {
	Value T
	Set   bool
}

func (n *Number[T]) UnmarshalJSON(b []byte) error {
	*n = Number[T]{}

	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
		if s == "" {
			return nil
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	// ParseFloat accepts "Inf" and "NaN", which JSON cannot encode back.
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Errorf("not a finite number: %q", s)
	}

	var zero, one T = 0, 1
	unsigned := zero-one > zero
	if unsigned && f < 0 {
		return fmt.Errorf("must not be negative: %q", s)
	}

	half := 0.5
	integer := T(half) == zero
	if integer && math.Abs(f) > maxExactInt {
		return fmt.Errorf("out of range: %q", s)
	}

	v := T(f)
	if float64(v) != f {
		return fmt.Errorf("out of range: %q", s)
	}

	n.Value, n.Set = v, true
	return nil
}

// Ptr returns nil when the value was absent.
func (n Number[T]) Ptr() *T {
	if !n.Set {
		return nil
	}
	v := n.Value
	return &v
}
