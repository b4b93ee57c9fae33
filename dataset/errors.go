package dataset

import (
	"errors"
	"fmt"
)

// ErrResourceUnavailable is returned (wrapped) whenever a named CSV resource
// cannot be read or parsed.
var ErrResourceUnavailable = errors.New("resource unavailable")

// ErrUnknownResource is returned for resource names outside train/test/submission.
var ErrUnknownResource = errors.New("unknown resource")

// ResourceError describes why a resource could not be loaded.
type ResourceError struct {
	Resource Resource
	Path     string
	Err      error
}

func (e *ResourceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v: %v", e.Resource, ErrResourceUnavailable, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v: %v", e.Resource, e.Path, ErrResourceUnavailable, e.Err)
}

func (e *ResourceError) Unwrap() []error { return []error{ErrResourceUnavailable, e.Err} }

func unavailable(res Resource, path string, err error) error {
	return &ResourceError{Resource: res, Path: path, Err: err}
}
