package services

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrContentRejected = errors.New("content rejected")

	ErrWrongQuestion   = errors.New("question is not today's trivia")
	ErrInvalidChoice   = errors.New("choice is out of range")
	ErrAlreadyAnswered = errors.New("today's trivia has already been answered")
)

// ErrUnavailable marks a feature whose external service is not configured.
var ErrUnavailable = errors.New("service not configured")
