package store

import "errors"

// Sentinel errors surfaced by store operations. Callers match with
// errors.Is and map them onto HTTP responses.
var (
	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a uniqueness guarantee (username, email) was violated.
	ErrConflict = errors.New("already taken")
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
