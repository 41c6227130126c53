package iterator

import "errors"

// ErrPathNotFound is returned when the configured root does not exist.
var ErrPathNotFound = errors.New("iterator: path not found")

// ErrPermissionDenied marks a subtree the walk could not read. It is
// never returned to the caller of Walk; it is logged and the affected
// subtree is skipped (spec §4.1 "Failure").
var ErrPermissionDenied = errors.New("iterator: permission denied")
