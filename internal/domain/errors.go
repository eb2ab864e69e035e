package domain

import "errors"

var (
	// ErrParseEmpty means an import produced zero valid line items.
	ErrParseEmpty = errors.New("no valid items found")

	// ErrStorageUnavailable means the local store could not commit a write.
	ErrStorageUnavailable = errors.New("local storage unavailable")

	// ErrRemoteUnavailable means the sync server could not be reached or
	// rejected the request for a non-domain reason.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrListLocked means the list is already in progress under a
	// different user.
	ErrListLocked = errors.New("list in use by another user")

	// ErrListCompleted means the list already reached its terminal
	// status and cannot be picked again.
	ErrListCompleted = errors.New("list already completed")

	// ErrNotFound means the referenced list or item does not exist.
	ErrNotFound = errors.New("not found")
)
