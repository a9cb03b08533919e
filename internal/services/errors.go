package services

import (
	"errors"
	"strings"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrPostNotFound = errors.New("post not found")
	ErrEmailExists  = errors.New("email already exists")
)

// ValidationError carries every rule a payload broke, in field order.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}
