package terminal

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/lab67/orderdesk/internal/core/domain"
)

// Message maps err to the text shown to the user. Known domain errors get a
// deterministic message; anything else is logged and reported generically.
func Message(err error, log zerolog.Logger) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidOrder):
		return err.Error()
	case errors.Is(err, domain.ErrDuplicateOrder):
		return "an order with this id already exists"
	case errors.Is(err, domain.ErrOrderNotFound):
		return "order not found"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid username or credential"
	case errors.Is(err, domain.ErrRoleMismatch):
		return "this account does not have the requested role"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "log in first"
	case errors.Is(err, domain.ErrForbidden):
		return "you are not allowed to do that"
	case errors.Is(err, domain.ErrUnknownAction):
		return err.Error()
	case errors.Is(err, domain.ErrUserNotFound):
		return "user not found"
	case errors.Is(err, errUsage):
		return err.Error()
	}

	log.Error().Err(err).Msg("unhandled error")
	return "internal error"
}
