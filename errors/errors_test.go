package errors

import (
	"fmt"
	"testing"

	pkgerrors "github.com/pkg/errors"
)

func TestErrorsIs(t *testing.T) {
	cases := map[string]struct {
		kind      *Error
		err       error
		wantMatch bool
	}{
		"instance of the same root": {
			kind:      ErrNotFound,
			err:       ErrNotFound,
			wantMatch: true,
		},
		"wrapped instance": {
			kind:      ErrNotFound,
			err:       Wrap(ErrNotFound, "gone"),
			wantMatch: true,
		},
		"deeply wrapped instance": {
			kind:      ErrNotFound,
			err:       Wrap(Wrap(ErrNotFound, "gone"), "sorry"),
			wantMatch: true,
		},
		"different root": {
			kind:      ErrNotFound,
			err:       Wrap(ErrState, "broken"),
			wantMatch: false,
		},
		"stdlib error": {
			kind:      ErrNotFound,
			err:       fmt.Errorf("not found"),
			wantMatch: false,
		},
		"nil kind matches nil error": {
			kind:      nil,
			err:       nil,
			wantMatch: true,
		},
		"combined error containing the kind": {
			kind:      ErrOverflow,
			err:       Append(ErrCurrency, Wrap(ErrOverflow, "too big")),
			wantMatch: true,
		},
		"combined error without the kind": {
			kind:      ErrOverflow,
			err:       Append(ErrCurrency, ErrState),
			wantMatch: false,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.kind.Is(tc.err); got != tc.wantMatch {
				t.Fatalf("unexpected match result: %v", got)
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, "description"); err != nil {
		t.Fatalf("wrapping nil must return nil, got %+v", err)
	}
}

func TestWrapAttachesStackTraceOnce(t *testing.T) {
	err := Wrap(ErrInput, "one")
	if stackTrace(err) == nil {
		t.Fatal("wrapped error must carry a stack trace")
	}

	// A second wrap must reuse the existing trace and not shadow it with
	// a more shallow one.
	again := Wrap(err, "two")
	if fmt.Sprintf("%v", stackTrace(again)) != fmt.Sprintf("%v", stackTrace(err)) {
		t.Fatal("wrapping again must not replace the stack trace")
	}
}

func TestABCICode(t *testing.T) {
	cases := map[string]struct {
		err  error
		want uint32
	}{
		"nil":             {err: nil, want: 0},
		"root":            {err: ErrUnauthorized, want: 2},
		"wrapped":         {err: Wrap(ErrNotFound, "gone"), want: 3},
		"stdlib":          {err: fmt.Errorf("boom"), want: 1},
		"wrapped stdlib":  {err: Wrap(pkgerrors.New("boom"), "ctx"), want: 1},
		"combined errors": {err: Append(ErrState, ErrInput), want: 10},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := ABCICode(tc.err); got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}

func TestRegisterPanicsOnDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	Register(2, "duplicate of unauthorized")
}

func TestAppend(t *testing.T) {
	if err := Append(nil, nil); err != nil {
		t.Fatalf("combining nils must return nil, got %+v", err)
	}

	single := Wrap(ErrInput, "one")
	if err := Append(nil, single); err != single {
		t.Fatalf("a single error must be returned as is, got %+v", err)
	}

	combined := Append(Append(ErrInput, ErrState), ErrOverflow)
	m, ok := combined.(multiError)
	if !ok {
		t.Fatalf("want a flattened multiError, got %T", combined)
	}
	if len(m) != 3 {
		t.Fatalf("want 3 members, got %d", len(m))
	}
}

func TestFieldErrors(t *testing.T) {
	err := Append(
		Field("Amount", ErrAmount, "negative"),
		Field("Recipient", ErrEmpty, ""),
	)

	if errs := FieldErrors(err, "Amount"); len(errs) != 1 || !ErrAmount.Is(errs[0]) {
		t.Fatalf("unexpected amount errors: %v", errs)
	}
	if errs := FieldErrors(err, "Memo"); len(errs) != 0 {
		t.Fatalf("unexpected memo errors: %v", errs)
	}
	if errs := FieldErrors(nil, "Amount"); errs != nil {
		t.Fatalf("nil error must produce no field errors: %v", errs)
	}
}

func TestRecover(t *testing.T) {
	var err error
	func() {
		defer Recover(&err)
		panic("totally unexpected")
	}()
	if !ErrPanic.Is(err) {
		t.Fatalf("want a panic error, got %+v", err)
	}
}
