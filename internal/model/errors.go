package model

import "errors"

// Error kinds produced by the core services. NotFound and OwnershipDenied
// stay distinct internally for logging; the transport layer renders them
// with the same message so a non-owner cannot confirm that a note exists.
var (
	ErrNotFound           = errors.New("not found")
	ErrOwnershipDenied    = errors.New("ownership denied")
	ErrConflict           = errors.New("conflict")
	ErrUploadFailed       = errors.New("upload failed")
	ErrIdentityResolution = errors.New("identity resolution failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
