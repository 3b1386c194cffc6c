package channels

import "context"

// Store is the persistent home of apps, channels, devices, overrides and bundles.
//
// Find methods return a nil record and a nil error when nothing matches.
// Any other failure is returned as is and surfaces from the engine as
// ErrStoreUnavailable.
// Upserts are single atomic operations keyed by (appID, deviceID).
type Store interface {
	FindDevice(ctx context.Context, appID, deviceID string) (*Device, error)
	UpsertDevice(ctx context.Context, device Device) error
	// FindOverride returns the override joined with its target channel's current flags.
	FindOverride(ctx context.Context, appID, deviceID string) (*Override, error)
	UpsertOverride(ctx context.Context, appID, deviceID string, channelID uint, createdBy string) error
	DeleteOverride(ctx context.Context, appID, deviceID string) error
	FindChannelByName(ctx context.Context, appID, name string) (*Channel, error)
	// FindPublicChannel returns the public channel with the lowest ID.
	FindPublicChannel(ctx context.Context, appID string) (*Channel, error)
	FindBundleByName(ctx context.Context, appID, name string) (*Bundle, error)
}
