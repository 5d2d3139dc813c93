package rental

import "errors"

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("rent request not found")
	ErrCarNotFound     = errors.New("car not found")
	ErrForbidden       = errors.New("actor may not answer this request")
	ErrAlreadyResolved = errors.New("rent request already resolved")
	ErrCarUnavailable  = errors.New("car already rented for an overlapping period")
)
