// Package repository defines error types shared by the store adapters.
// Callers match them with errors.Is; the wrapped driver error stays
// attached for logging but must not reach a client.
package repository

import "errors"

// ErrNotFound is returned when no record matches the lookup key.
var ErrNotFound = errors.New("not found")

// ErrStoreUnavailable marks every failure other than "no row": the
// connection could not be acquired, the query failed or the row is
// unusable.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrConnection narrows ErrStoreUnavailable to failures acquiring a
// connection from the pool.  Errors carrying it also match
// ErrStoreUnavailable.
var ErrConnection = &connErr{}

type connErr struct{}

func (*connErr) Error() string        { return "store connection failed" }
func (*connErr) Is(target error) bool { return target == ErrStoreUnavailable }
