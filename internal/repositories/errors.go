package repositories

import "errors"

// Sentinel errors shared by repository implementations. Handlers map these
// onto HTTP statuses.
var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrUpdateConflict  = errors.New("post update conflict")
)
