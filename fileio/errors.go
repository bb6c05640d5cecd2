package fileio

import (
	"errors"
	"fmt"
)

// PathNotFoundError is returned when a location is absent where
// presence was required.
type PathNotFoundError struct {
	Path string
}

func (err PathNotFoundError) Error() string {
	return fmt.Sprintf("path not found: %s", err.Path)
}

// PathAlreadyExistsError is returned by Create without overwrite when
// the location already exists.
type PathAlreadyExistsError struct {
	Path string
}

func (err PathAlreadyExistsError) Error() string {
	return fmt.Sprintf("path already exists: %s", err.Path)
}

// PermissionError is returned when the storage layer refuses access to
// a location.
type PermissionError struct {
	Path   string
	Detail error
}

func (err PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s: %v", err.Path, err.Detail)
}

func (err PermissionError) Unwrap() error {
	return err.Detail
}

// UnsupportedSchemeError is returned by FSByScheme for schemes a
// backend does not serve. It is consumed by the backend selector's
// fallback logic and is not expected to surface to end callers.
type UnsupportedSchemeError struct {
	Scheme string
	FileIO string
}

func (err UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("uri scheme %q is not supported by %s", err.Scheme, err.FileIO)
}

// Error is a catch-all wrapper reported by a backend, conveying the
// backend name along with the underlying detail.
type Error struct {
	FileIO string
	Detail error
}

func (err Error) Error() string {
	return fmt.Sprintf("%s: %v", err.FileIO, err.Detail)
}

func (err Error) Unwrap() error {
	return err.Detail
}

// IsNotFound reports whether err is a PathNotFoundError.
func IsNotFound(err error) bool {
	var e PathNotFoundError
	return errors.As(err, &e)
}

// IsAlreadyExists reports whether err is a PathAlreadyExistsError.
func IsAlreadyExists(err error) bool {
	var e PathAlreadyExistsError
	return errors.As(err, &e)
}

// IsPermission reports whether err is a PermissionError.
func IsPermission(err error) bool {
	var e PermissionError
	return errors.As(err, &e)
}

// IsUnsupportedScheme reports whether err is an UnsupportedSchemeError.
func IsUnsupportedScheme(err error) bool {
	var e UnsupportedSchemeError
	return errors.As(err, &e)
}
