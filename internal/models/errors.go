package models

import (
	"errors"
	"fmt"
)

var (
	ErrNoRecord            = errors.New("models: no matching record found")
	ErrStorageUnavailable  = errors.New("models: storage unavailable")
	ErrInvalidCredentials  = errors.New("models: invalid credentials")
	ErrDuplicateEmail      = errors.New("models: duplicate email")
	ErrUserNotFound        = errors.New("models: user not found")
	ErrInvalidAdminCode    = errors.New("models: invalid admin access code")
	ErrAccountNotVerified  = errors.New("models: account not verified")
	ErrInvalidOTP          = errors.New("models: invalid or expired code")
	ErrOTPAttemptsExceeded = errors.New("models: too many code attempts")
)

// ValidationError reports missing or malformed caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// DeliveryStage names the collaborator that failed during delivery.
type DeliveryStage string

const (
	StageRender DeliveryStage = "render"
	StageSend   DeliveryStage = "send"
)

// DeliveryError wraps a renderer or transport failure.
type DeliveryError struct {
	Stage DeliveryStage
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery: could not %s invoice: %v", e.Stage, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// StorageError wraps a failure of the record store or the sequence counter.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorageUnavailable }
