package domain

import "errors"

// ErrRelayGone signals that the messaging boundary to the relay daemon has
// been invalidated. Its text doubles as the user-facing remedy.
var ErrRelayGone = errors.New("analysis service is unreachable: reload the page and try again")

// IsRelayGone reports whether err stems from an invalidated relay boundary.
func IsRelayGone(err error) bool {
	return errors.Is(err, ErrRelayGone)
}
