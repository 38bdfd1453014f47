package catalog

import (
	"errors"
	"fmt"
)

var ErrMissingBaseURL = errors.New("catalog base url is required")

// StatusError is returned when the catalog answers with an unexpected status.
// Body is kept for diagnostics only.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status: %d", e.Op, e.StatusCode)
}

// IsStatusError reports whether the catalog was reached but rejected the request.
func IsStatusError(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr)
}
