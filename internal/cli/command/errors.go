package command

import (
	"errors"

	"github.com/yndnr/cricket-go/internal/core/domain"
)

// Exit codes returned by cricket-cli.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitUsage        = 2
	ExitUnauthorized = 3
	ExitUnavailable  = 4
)

// commandError carries the message shown to the user for err.
type commandError struct {
	err      error
	fallback string
}

func (e *commandError) Error() string {
	return domain.UserMessage(e.err, e.fallback)
}

func (e *commandError) Unwrap() error {
	return e.err
}

// fail wraps err so that it prints as the user-facing message, using
// fallback when the backend gave none.
func fail(err error, fallback string) error {
	if err == nil {
		return nil
	}
	var ce *commandError
	if errors.As(err, &ce) {
		return err
	}
	return &commandError{err: err, fallback: fallback}
}

// ExitCode maps an error returned by App to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		valErr  *domain.ValidationError
		httpErr *domain.HTTPError
		netErr  *domain.NetworkError
	)
	switch {
	case errors.As(err, &valErr), errors.Is(err, domain.ErrConfigInvalid):
		return ExitUsage
	case errors.Is(err, domain.ErrNotAuthenticated):
		return ExitUnauthorized
	case errors.As(err, &httpErr) && httpErr.Unauthorized():
		return ExitUnauthorized
	case errors.As(err, &netErr), errors.Is(err, domain.ErrRequestTimeout):
		return ExitUnavailable
	default:
		return ExitFailure
	}
}
