package fleet

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("car not found")
	ErrForbidden  = errors.New("actor may not manage this car")
	ErrCarRented  = errors.New("car is currently rented")
)
