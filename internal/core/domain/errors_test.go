package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapErrorKeepsKindAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapError(ErrTemporary, "save upload", cause)

	if !IsKind(err, ErrTemporary) || !errors.Is(err, cause) {
		t.Fatalf("wrapped error lost its kind or cause: %v", err)
	}
	if !strings.HasPrefix(err.Error(), "save upload: temporary failure: disk full") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if WrapError(ErrTemporary, "noop", nil) != nil {
		t.Fatalf("wrapping nil must stay nil")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{err: WrapError(ErrSubmissionNotFound, "get", errors.New("no rows")), want: ErrSubmissionNotFound},
		{err: WrapError(ErrExtraction, "read pdf", errors.New("eof")), want: ErrExtraction},
		{err: WrapError(ErrTemporary, "outer", WrapError(ErrInvalidInput, "inner", errors.New("x"))), want: ErrInvalidInput},
		{err: errors.New("plain"), want: nil},
		{err: nil, want: nil},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Fatalf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
