package codegraph

import "errors"

// Fatal errors per spec §7. These abort a build; they are never
// accumulated as warnings.
var (
	// ErrPathNotFound is returned when a configured root path does not
	// exist.
	ErrPathNotFound = errors.New("codegraph: root path not found")

	// ErrInputInvalid covers malformed configuration (e.g. an empty Root
	// or EntityID, or an empty diff list passed to a diff build).
	ErrInputInvalid = errors.New("codegraph: invalid input configuration")

	// ErrHashCollision indicates two distinct (environment, path) pairs
	// produced the same NodeID, which the hash function's size makes
	// vanishingly unlikely; the assembler treats it as corruption per
	// spec §7.
	ErrHashCollision = errors.New("codegraph: node_id hash collision")

	// ErrInvariantViolation indicates a duplicate node_id was inserted
	// with different attributes, violating invariant 6 of spec §3.
	ErrInvariantViolation = errors.New("codegraph: assembler invariant violation")
)
