package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Field returns an error instance that wraps the original error with
// additional information. It returns `nil` if provided error is `nil`.
// Use this function to create an error instance describing a field/attribute
// error.
//
// Use Go naming for the field name. For example, LockedRate or Amount. When
// the error is for a nested field, use dot notation to construct the path,
// for example Envelope.Recipient.
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}

	// If this error does not carry the stacktrace information yet, attach
	// one. This should be done only once per error at the lowest frame
	// possible (most inner wrap).
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}

	return &fieldError{
		parent: err,
		field:  fieldName,
		desc:   description,
	}
}

// AppendField is a shortcut function to club together error(s) with a given
// field error.
func AppendField(errsOrNil error, fieldName string, fieldErrOrNil error) error {
	return Append(errsOrNil, Field(fieldName, fieldErrOrNil, ""))
}

// FieldErrors returns the list of all errors that are created for the given
// field name.
func FieldErrors(err error, fieldName string) []error {
	switch e := err.(type) {
	case nil:
		return nil
	case *fieldError:
		if e.field == fieldName {
			return []error{e}
		}
		return nil
	case multiError:
		var res []error
		for _, member := range e {
			res = append(res, FieldErrors(member, fieldName)...)
		}
		return res
	default:
		return nil
	}
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (e *fieldError) Error() string {
	if e.desc == "" {
		return fmt.Sprintf("field %q: %s", e.field, e.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", e.field, e.desc, e.parent)
}

func (e *fieldError) Cause() error {
	return e.parent
}

// Field returns the name of the field this error describes.
func (e *fieldError) Field() string {
	return e.field
}

func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	// Reflect usage is necessary to correctly compare with a nil
	// implementation of an error.
	v := reflect.ValueOf(err)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
