package trace

import "errors"

var (
	// ErrAlreadyRegistered indicates a handle that is already in the root set.
	ErrAlreadyRegistered = errors.New("trace: handle already registered as root")

	// ErrNotRegistered indicates a handle that is not in the root set.
	ErrNotRegistered = errors.New("trace: handle not registered as root")

	// ErrDanglingRef indicates an object that references an ID with no live handle.
	ErrDanglingRef = errors.New("trace: reference to unknown object")
)
