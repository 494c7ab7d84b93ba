package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: row or record does not exist
//   - ErrConflict: a uniqueness or version check rejected the write
//   - ErrInsufficient: a counted resource would go negative
//
// For validation errors use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInsufficient = errors.New("insufficient")
)
