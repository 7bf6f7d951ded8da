//go:build !rtmidi

package midirtmidi

import (
	"errors"

	"gitlab.com/gomidi/midi/v2/drivers"
)

// ErrDriverUnavailable is returned when the binary was built without the
// rtmidi tag.
var ErrDriverUnavailable = errors.New("rtmidi driver not compiled in (build with -tags rtmidi)")

func newDriver() (drivers.Driver, error) {
	return nil, ErrDriverUnavailable
}
