package repository

import "errors"

// ErrStaleVersion is returned by versioned updates that matched no row:
// either the row is gone or another writer bumped its version first.
var ErrStaleVersion = errors.New("repository: stale version")
