package tidemark

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidemark-io/tidemark/errors"
)

// String returns a human readable rate representation.
func (r *Rate) String() string {
	if r == nil {
		return "nil"
	}
	if r.Numerator == 0 {
		return "0"
	}
	if r.Denominator == 1 {
		return fmt.Sprint(r.Numerator)
	}
	return fmt.Sprintf("%d/%d", r.Numerator, r.Denominator)
}

func (r Rate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Numerator   uint32 `json:"numerator"`
		Denominator uint32 `json:"denominator"`
	}{
		Numerator:   r.Numerator,
		Denominator: r.Denominator,
	})
}

func (r *Rate) UnmarshalJSON(raw []byte) error {
	// Prioritize human readable format.
	var human string
	if err := json.Unmarshal(raw, &human); err == nil {
		rate, err := ParseRateString(human)
		if err != nil {
			return errors.Wrap(err, "rate string")
		}
		*r = *rate
		return nil
	}

	var rate struct {
		Numerator   uint32
		Denominator uint32
	}
	if err := json.Unmarshal(raw, &rate); err != nil {
		return err
	}
	r.Numerator = rate.Numerator
	r.Denominator = rate.Denominator
	return nil
}

// Validate returns an error if this rate represents an invalid value.
func (r Rate) Validate() error {
	if r.Denominator == 0 && r.Numerator != 0 {
		return errors.Wrap(errors.ErrState, "zero division")
	}
	return nil
}

// IsZero returns true if this rate pays no interest.
func (r Rate) IsZero() bool {
	return r.Numerator == 0
}

// Equals returns true if both rates represent the same value, even if
// their notation differs (ie. 1/2 and 2/4).
func (r Rate) Equals(o Rate) bool {
	return r.Compare(o) == 0
}

// Compare returns 1 if r is the greater rate, -1 if o is greater and 0 when
// both represent the same value. Rates of different notation are compared by
// value (ie. 1/2 equals 2/4).
func (r Rate) Compare(o Rate) int {
	// Cross multiplication does not overflow as both sides fit in uint64.
	left := uint64(r.Numerator) * uint64(o.Denominator)
	right := uint64(o.Numerator) * uint64(r.Denominator)
	switch {
	case left > right:
		return 1
	case left < right:
		return -1
	default:
		return 0
	}
}

// Normalize returns a new rate instance that has its numerator and
// denominator reduced to the smallest possible representation.
func (r Rate) Normalize() Rate {
	div := uintGcd(r.Numerator, r.Denominator)
	return Rate{
		Numerator:   r.Numerator / div,
		Denominator: r.Denominator / div,
	}
}

func uintGcd(a, b uint32) uint32 {
	for b != 0 {
		t := b
		b = a % b
		a = t
	}
	return a
}

// ParseRateString returns a rate value that is represented by given
// string. This function fails if given string does not represent a rate
// value.
// This function does not fail if representation format is correct but the
// value is invalid (i.e. value of "2/0").
func ParseRateString(raw string) (*Rate, error) {
	chunks := strings.SplitN(raw, "/", 2)
	n, err := strconv.ParseUint(chunks[0], 10, 32)
	if err != nil {
		return nil, errors.Wrap(err, "numerator")
	}
	if len(chunks) == 1 {
		return &Rate{Numerator: uint32(n), Denominator: 1}, nil
	}
	d, err := strconv.ParseUint(chunks[1], 10, 32)
	if err != nil {
		return nil, errors.Wrap(err, "denominator")
	}
	return &Rate{Numerator: uint32(n), Denominator: uint32(d)}, nil
}
