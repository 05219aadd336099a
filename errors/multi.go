package errors

import (
	"fmt"
	"strings"
)

// Append combines given errors into a single one. Nil errors are ignored.
// An already combined error is flattened so that the result is never
// nested. When all given errors are nil, nil is returned.
func Append(errs ...error) error {
	var collection multiError
	for _, err := range errs {
		switch e := err.(type) {
		case nil:
			continue
		case multiError:
			collection = append(collection, e...)
		default:
			collection = append(collection, e)
		}
	}

	switch len(collection) {
	case 0:
		return nil
	case 1:
		return collection[0]
	default:
		return collection
	}
}

// multiError is a collection of at least two non-nil errors. It is mostly
// used to collect field validation errors.
type multiError []error

func (m multiError) Error() string {
	points := make([]string, len(m))
	for i, err := range m {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s", len(m), strings.Join(points, "\n\t"))
}

// ABCICode returns the code of the first member, fail-fast style.
func (m multiError) ABCICode() uint32 {
	if len(m) == 0 {
		return 1
	}
	return ABCICode(m[0])
}

// contains returns true if any member of this collection is of given kind.
func (m multiError) contains(kind *Error) bool {
	for _, err := range m {
		if kind.Is(err) {
			return true
		}
	}
	return false
}
