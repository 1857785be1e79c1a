package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrDataUnavailable = errors.New("property data unavailable")
	ErrInvalidCriteria = errors.New("invalid search criteria")
)
