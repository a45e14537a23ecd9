package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	apperr "PublicationIndex/internal/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps a domain error code to the process exit status.
func exitCode(err error) int {
	var domainErr *apperr.Error
	if !apperr.As(err, &domainErr) {
		return 1
	}
	switch domainErr.Code {
	case apperr.CodeValidation, apperr.CodeParseRejection:
		return 2
	case apperr.CodeNotFound:
		return 3
	case apperr.CodeConstraintViolation:
		return 4
	case apperr.CodeConnectionFailure:
		return 5
	case apperr.CodeInternal:
		return 1
	default:
		return 1
	}
}
