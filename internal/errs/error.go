package errs

import (
	"errors"
)

var (
	ErrNotFound   = errors.New("no user found with the provided email address")
	ErrForbidden  = errors.New("book not found or does not belong to user")
	ErrDuplicate  = errors.New("book already in current user library")
	ErrEmailTaken = errors.New("email already registered")
	ErrEmptyEmail = errors.New("email is required")
	ErrRating     = errors.New("rating must be between 1 and 5")
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewErrorResponse(kind string, err error) ErrorResponse {
	return ErrorResponse{
		Error:   kind,
		Message: err.Error(),
	}
}
