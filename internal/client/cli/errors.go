package cli

import (
	"errors"

	"github.com/dmitrijs2005/gophnotes/internal/client/api"
)

var errUsage = errors.New("usage")

// usageError carries the usage line of a command called with bad arguments.
type usageError string

func (e usageError) Error() string { return "usage: " + string(e) }

func (e usageError) Is(target error) bool { return target == errUsage }

// errorText turns a command error into what the user sees. Session expiry
// is announced by the expiry hook, so it maps to "".
func errorText(err error) string {
	var (
		ae *api.APIError
		me *api.MalformedResponseError
	)
	switch {
	case errors.Is(err, api.ErrSessionExpired):
		return ""
	case errors.Is(err, api.ErrUnavailable):
		return "server unavailable, try again later"
	case errors.As(err, &ae):
		return ae.Message
	case errors.As(err, &me):
		return "unexpected response from server"
	}
	return err.Error()
}
