package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"store-feedback/internal/config"
	"store-feedback/internal/geo"
)

var unknownCommandPattern = regexp.MustCompile(`unknown command "([^"]+)"`)

// LocationClient fetches a geolocation result from a running widget server.
type LocationClient interface {
	Get(ctx context.Context) (geo.Result, error)
}

// Dependencies wires runtime services.
type Dependencies struct {
	Config *config.Config
	// NewLocationClient builds the client used by nearest --remote.
	NewLocationClient func(baseURL string) LocationClient
	Version           string
}

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// Execute runs the command tree and returns a process exit code.
func Execute(ctx context.Context, args []string, deps Dependencies, stdout io.Writer, stderr io.Writer) int {
	cmd := NewRootCommand(deps)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var controlled *exitError
	if errors.As(err, &controlled) {
		if msg := controlled.Error(); msg != "" {
			_, _ = fmt.Fprintln(stderr, msg)
		}
		return controlled.code
	}

	if matches := unknownCommandPattern.FindStringSubmatch(err.Error()); len(matches) > 1 {
		_, _ = fmt.Fprintf(stderr, "No such command '%s'\n", matches[1])
		return 2
	}

	_, _ = fmt.Fprintln(stderr, err.Error())
	return 1
}

func usageError(format string, args ...any) error {
	return &exitError{code: 2, err: fmt.Errorf(format, args...)}
}
