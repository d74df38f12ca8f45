package apierr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessagePrecedence(t *testing.T) {
	base := errors.New("boom")
	cases := []struct {
		err  *Error
		want string
	}{
		{&Error{Status: 400, Code: CodeMalformed, Message: "bad input", Err: base}, "bad input"},
		{New(500, CodeReadFailed, base), "boom"},
		{&Error{Code: CodeNotFound}, "api error 40401"},
		{&Error{Status: 502}, "api error (502)"},
		{&Error{}, "api error"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("want=%q got=%q", tc.want, got)
		}
	}
}

func TestAsUnwrapsChain(t *testing.T) {
	inner := Newf(404, CodeNotFound, "card %s not found", "abc")
	wrapped := fmt.Errorf("handler: %w", inner)
	got, ok := As(wrapped)
	if !ok || got != inner {
		t.Fatalf("want=%v got=%v ok=%v", inner, got, ok)
	}
	if _, ok := As(errors.New("plain")); ok {
		t.Fatalf("plain error should not match")
	}
}
