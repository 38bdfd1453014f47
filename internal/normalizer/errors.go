package normalizer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownLayout = errors.New("unknown layout preset")
	ErrMissingColumn = errors.New("required column not mapped")
	ErrInvalidColumn = errors.New("invalid column mapping")
)

// RejectedError reports a row dropped by the required-field gate.
type RejectedError struct {
	Row     int
	Missing []string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("row %d rejected: missing %s", e.Row, strings.Join(e.Missing, ", "))
}

// IsRejected reports whether err is a row rejection.
func IsRejected(err error) bool {
	var rejected *RejectedError
	return errors.As(err, &rejected)
}
