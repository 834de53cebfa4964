package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is the base of every validation error; its wrapped
	// message is safe to return to clients.
	ErrInvalidInput = errors.New("invalid input")

	ErrDuplicateIdentity  = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStorageFailure     = errors.New("storage failure")
	ErrNoUpdates          = invalid("no updates provided")
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

func storageFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageFailure, op, err)
}
