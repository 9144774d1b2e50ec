// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios without inspecting
// driver-specific errors.
package repository

import "errors"

// ErrEmailExists is returned when a registration collides with an existing
// user's email.  Handlers translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when a user id or email resolves to no row.
var ErrUserNotFound = errors.New("user not found")

// ErrJobNotFound is returned when a job id does not exist for the given
// owner.  A job owned by another user yields the same error so that
// cross-user existence is never revealed.  Handlers translate this into an
// HTTP 404 response.
var ErrJobNotFound = errors.New("job not found")
