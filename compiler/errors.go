package compiler

import (
	"errors"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// listFormat renders aggregated diagnostics one per line.
func listFormat(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}
	return strings.Join(lines, "\n")
}

// Errors returns the individual diagnostics held by an error returned from
// Compile. Any other non-nil error is returned as a one-element slice.
func Errors(err error) []error {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return merr.WrappedErrors()
	}
	return []error{err}
}
