package domain

import "errors"

var (
	ErrInvalidOrder       = errors.New("invalid order")
	ErrDuplicateOrder     = errors.New("order already exists")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleMismatch       = errors.New("user does not have the expected role")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrForbidden          = errors.New("access forbidden")
	ErrUnknownAction      = errors.New("unknown action")
	ErrInvalidInput       = errors.New("invalid input")
)
