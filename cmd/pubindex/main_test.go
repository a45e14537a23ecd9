package main

import (
	"context"
	"fmt"
	"testing"

	apperr "PublicationIndex/internal/errors"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.Validation("bad sort key"), 2},
		{"wrapped not found", fmt.Errorf("start: %w", apperr.NotFoundf("no author %q", "x")), 3},
		{"constraint", apperr.ConstraintViolation("insert", fmt.Errorf("CHECK constraint failed")), 4},
		{"connection", apperr.ConnectionFailure("open store", fmt.Errorf("no such dir")), 5},
		{"internal", apperr.Internal("query rows", fmt.Errorf("disk I/O error")), 1},
		{"plain", context.Canceled, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Fatalf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
