package repositories

import (
	"errors"
	"fmt"
)

type ErrNotFound struct {
}

func (e *ErrNotFound) Error() string {
	return "not found"
}

func IsNotFound(err error) bool {
	var target *ErrNotFound
	return errors.As(err, &target)
}

// StorageError reports an I/O failure in a backend.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: failed to %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func IsStorageError(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}

func storageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
