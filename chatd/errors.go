package chatd

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("chatd: not found")
	ErrValidation = errors.New("chatd: validation failed")
	ErrStorage    = errors.New("chatd: storage unavailable")
)

// NotFoundError reports a missing stored resource.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ErrNotFound.Error()
	}
	if e.Key != "" {
		return fmt.Sprintf("%s: %s %s", ErrNotFound.Error(), e.Resource, e.Key)
	}
	return fmt.Sprintf("%s: %s", ErrNotFound.Error(), e.Resource)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError reports a rejected request value outside the struct
// validation path.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ErrValidation.Error()
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// StorageError wraps a storage backend failure with the failing operation.
// The cause is folded into the message; classification happens through the
// ErrStorage sentinel.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e == nil {
		return ErrStorage.Error()
	}
	return fmt.Sprintf("%s: %s: %v", ErrStorage.Error(), e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return ErrStorage }
