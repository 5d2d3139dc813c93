package staffmgmt

import "errors"

var (
	ErrValidation    = errors.New("validation error")
	ErrForbidden     = errors.New("actor may not manage staff")
	ErrNotFound      = errors.New("staff member not found")
	ErrUsernameTaken = errors.New("username already taken")
)
