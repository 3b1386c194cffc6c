package channels

import (
	"fmt"

	"github.com/go-errors/errors"

	"github.com/USA-RedDragon/ota-server/internal/version"
)

var (
	ErrInvalidVersionFormat = version.ErrInvalidVersionFormat
	ErrChannelNotFound      = errors.New("channel not found")
	ErrBundleNotFound       = errors.New("bundle not found")
	ErrOverrideNotPermitted = errors.New("channel override not permitted")
	ErrStoreUnavailable     = errors.New("channel store unavailable")
)

// Kind names the taxonomy entry err belongs to, for responses and metric labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidVersionFormat):
		return "invalid_version_format"
	case errors.Is(err, ErrChannelNotFound):
		return "channel_not_found"
	case errors.Is(err, ErrBundleNotFound):
		return "bundle_not_found"
	case errors.Is(err, ErrOverrideNotPermitted):
		return "override_not_permitted"
	default:
		return "store_unavailable"
	}
}

// storeError folds every failure coming out of a store call, timeouts included,
// into ErrStoreUnavailable.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
