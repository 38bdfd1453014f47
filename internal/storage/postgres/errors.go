package postgres

import "errors"

var ErrRunNotFound = errors.New("import run not found")
