package errorutil

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      int
		retryable bool
	}{
		{"retriable", Retriable("db down"), CodeInternal, true},
		{"non retriable", NonRetriable("bad payload"), CodeBadRequest, false},
		{"not found", NotFound("unit missing"), CodeNotFound, false},
		{"wrapped error type", fmt.Errorf("load: %w", Retriable("db down")), CodeInternal, true},
		{"deadline", fmt.Errorf("assemble: %w", context.DeadlineExceeded), CodeInternal, true},
		{"plain", errors.New("boom"), CodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.err)
			if got.Code != tt.code || got.Retryable != tt.retryable {
				t.Errorf("Wrap() = {code:%d retryable:%v}, want {code:%d retryable:%v}",
					got.Code, got.Retryable, tt.code, tt.retryable)
			}
			if IsRetryable(tt.err) != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", !tt.retryable, tt.retryable)
			}
		})
	}

	if Wrap(nil) != nil || UnWrapResponse(nil) != nil || IsRetryable(nil) {
		t.Error("nil error must stay nil")
	}
}

func TestWithDetails(t *testing.T) {
	e := NonRetriableWithDetails("invalid job", "missing org_id")
	if e.DevDetails != "missing org_id" || e.Error() != "invalid job" {
		t.Errorf("unexpected error: %+v", e)
	}
	r := RetriableWithDetails("store", "timeout")
	if !r.Retryable || r.DevDetails != "timeout" {
		t.Errorf("unexpected error: %+v", r)
	}
}
