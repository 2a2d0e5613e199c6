// Package require is mint's own hand-rolled test-assertion helper. The teacher
// (tetratelabs/wazero) carries its own `internal/testing/require` for exactly
// this purpose instead of calling `testify` directly from every `_test.go` —
// one-line assertions (`require.Equal(t, want, got)`) with compact failure
// messages, and no import of `testing` from production code. `mint` copies
// that shape package-for-package; see DESIGN.md for why the pack's only real
// third-party test dependency (testify, wazero's go.mod) has no home here: it
// is only ever imported by wazero's legacy, pre-refactor `wasm/` tree, which
// this module doesn't carry forward.
package require

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// TestingT is the subset of *testing.T this package needs, so callers can
// pass a mock in their own tests of this package.
type TestingT interface {
	Fatal(args ...interface{})
}

func fail(t TestingT, msg, expected string, formatWithArgs ...interface{}) {
	failure := msg
	if len(formatWithArgs) > 0 {
		if format, ok := formatWithArgs[0].(string); ok && strings.Contains(format, "%") {
			failure += ": " + fmt.Sprintf(format, formatWithArgs[1:]...)
		} else {
			parts := make([]string, len(formatWithArgs))
			for i, arg := range formatWithArgs {
				parts[i] = fmt.Sprint(arg)
			}
			failure += ": " + strings.Join(parts, " ")
		}
	}
	if expected != "" {
		failure += "\n" + expected
	}
	t.Fatal(failure)
}

// CapturePanic runs fn and returns the recovered panic value as an error, or
// nil if fn didn't panic.
func CapturePanic(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", r)
			}
		}
	}()
	fn()
	return
}

func describe(v interface{}) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return fmt.Sprintf("%#v", v)
	}
	return fmt.Sprintf("%T(%v)", v, v)
}

// Equal fails unless want and got are reflect.DeepEqual, formatting both
// sides on failure. Two nils of differing static type are never equal here,
// matching "expected X, but was nil"/"but was Y(v)" wording used throughout
// mint's tests.
func Equal(t TestingT, want, got interface{}, formatWithArgs ...interface{}) {
	if want == nil && got == nil {
		return
	}
	if reflect.DeepEqual(want, got) {
		return
	}
	if got == nil || want == nil {
		fail(t, fmt.Sprintf("expected %s, but was %s", describeShort(want), describeShort(got)), "", formatWithArgs...)
		return
	}
	if reflect.TypeOf(want) != reflect.TypeOf(got) {
		fail(t, fmt.Sprintf("expected %s, but was %T(%v)", describe(want), got, got), "", formatWithArgs...)
		return
	}
	if s, ok := want.(string); ok {
		fail(t, fmt.Sprintf("expected %q, but was %q", s, got), "", formatWithArgs...)
		return
	}
	if reflect.TypeOf(want).Kind() < reflect.Array {
		fail(t, fmt.Sprintf("expected %v, but was %v", want, got), "", formatWithArgs...)
		return
	}
	fail(t, "unexpected value", fmt.Sprintf("expected:\n\t%#v\nwas:\n\t%#v\n", want, got), formatWithArgs...)
}

func describeShort(v interface{}) string {
	if v == nil {
		return "nil"
	}
	switch vv := v.(type) {
	case string:
		return fmt.Sprintf("%q", vv)
	}
	return fmt.Sprintf("%#v", v)
}

// NotEqual fails if want and got are reflect.DeepEqual.
func NotEqual(t TestingT, want, got interface{}, formatWithArgs ...interface{}) {
	if reflect.DeepEqual(want, got) {
		fail(t, fmt.Sprintf("expected to not equal %#v", want), "", formatWithArgs...)
	}
}

// Same fails unless want and got are the identical pointer.
func Same(t TestingT, want, got interface{}, formatWithArgs ...interface{}) {
	if reflect.ValueOf(want).Pointer() != reflect.ValueOf(got).Pointer() {
		fail(t, fmt.Sprintf("expected %v to point to the same object as %v", got, want), "", formatWithArgs...)
	}
}

// NotSame fails if want and got are the identical pointer.
func NotSame(t TestingT, want, got interface{}, formatWithArgs ...interface{}) {
	if reflect.ValueOf(want).Pointer() == reflect.ValueOf(got).Pointer() {
		fail(t, fmt.Sprintf("expected %v to point to a different object", got), "", formatWithArgs...)
	}
}

// Nil fails unless v is nil (including a nil value behind a non-nil interface).
func Nil(t TestingT, v interface{}, formatWithArgs ...interface{}) {
	if !isNil(v) {
		fail(t, fmt.Sprintf("expected nil, but was %v", v), "", formatWithArgs...)
	}
}

// NotNil fails if v is nil.
func NotNil(t TestingT, v interface{}, formatWithArgs ...interface{}) {
	if isNil(v) {
		fail(t, "expected to not be nil", "", formatWithArgs...)
	}
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// Zero fails unless v is the zero value of its type.
func Zero(t TestingT, v interface{}, formatWithArgs ...interface{}) {
	if !isNil(v) && !reflect.DeepEqual(v, reflect.Zero(reflect.TypeOf(v)).Interface()) {
		fail(t, fmt.Sprintf("expected zero, but was %v", v), "", formatWithArgs...)
	}
}

// True fails unless v is true.
func True(t TestingT, v bool, formatWithArgs ...interface{}) {
	if !v {
		fail(t, "expected true, but was false", "", formatWithArgs...)
	}
}

// False fails unless v is false.
func False(t TestingT, v bool, formatWithArgs ...interface{}) {
	if v {
		fail(t, "expected false, but was true", "", formatWithArgs...)
	}
}

// Contains fails unless s contains substr.
func Contains(t TestingT, s, substr string, formatWithArgs ...interface{}) {
	found := false
	if len(substr) == 0 {
		found = true
	} else {
		for i := 0; i+len(substr) <= len(s); i++ {
			if s[i:i+len(substr)] == substr {
				found = true
				break
			}
		}
	}
	if !found {
		fail(t, fmt.Sprintf("expected %q to contain %q", s, substr), "", formatWithArgs...)
	}
}

// Error fails if err is nil.
func Error(t TestingT, err error, formatWithArgs ...interface{}) {
	if err == nil {
		fail(t, "expected an error, but was nil", "", formatWithArgs...)
	}
}

// NoError fails unless err is nil.
func NoError(t TestingT, err error, formatWithArgs ...interface{}) {
	if err != nil {
		fail(t, fmt.Sprintf("expected no error, but was %v", err), "", formatWithArgs...)
	}
}

// EqualError fails unless err's message equals msg.
func EqualError(t TestingT, err error, msg string, formatWithArgs ...interface{}) {
	if err == nil {
		fail(t, "expected an error, but was nil", "", formatWithArgs...)
		return
	}
	if err.Error() != msg {
		fail(t, fmt.Sprintf("expected error %q, but was %q", msg, err.Error()), "", formatWithArgs...)
	}
}

// ErrorIs fails unless errors.Is(err, target).
func ErrorIs(t TestingT, err, target error, formatWithArgs ...interface{}) {
	if !errors.Is(err, target) {
		fail(t, fmt.Sprintf("expected errors.Is(%v, %v), but it wasn't", err, target), "", formatWithArgs...)
	}
}
