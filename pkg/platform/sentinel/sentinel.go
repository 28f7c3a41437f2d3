package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and remote clients return
// these (optionally wrapped) so services can translate them into domain
// errors without string matching.
//
// These represent factual states about resources, not validation failures:
//   - ErrNotFound: entity does not exist in the store
//   - ErrUserNotFound: the attribute store has no such user (distinguishable
//     from a missing attribute on an existing user)
//   - ErrConflict: a uniqueness or lock constraint was violated
//   - ErrLockHeld: the per-identity initiation lock is already held
//   - ErrUnavailable: service or resource temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrUserNotFound = errors.New("user not found")
	ErrConflict     = errors.New("conflict")
	ErrLockHeld     = errors.New("lock held")
	ErrUnavailable  = errors.New("unavailable")
)
