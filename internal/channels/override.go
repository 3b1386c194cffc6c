package channels

import (
	"context"
	"fmt"
	"log/slog"
)

// OverrideResolver looks up a device's channel override and decides whether
// a device may bind itself to a new channel.
type OverrideResolver struct {
	store Store
	calls caller
}

func NewOverrideResolver(store Store, opts ...Option) *OverrideResolver {
	o := newOptions(opts)
	return &OverrideResolver{store: store, calls: caller{timeout: o.storeTimeout}}
}

// Resolve returns the device's override, or nil when it has none.
// An existing override is authoritative whatever its channel's current
// allow_device_self_set flag is.
func (r *OverrideResolver) Resolve(ctx context.Context, appID, deviceID string) (*Override, error) {
	ctx, cancel := r.calls.read(ctx)
	defer cancel()
	override, err := r.store.FindOverride(ctx, appID, deviceID)
	if err != nil {
		return nil, storeError("find override", err)
	}
	return override, nil
}

// Authorize checks that the device may bind itself to the named channel and
// returns that channel. The channel currently bound by an existing override
// must allow self-set for the device to leave it, and the requested channel
// must allow self-set for the device to join it.
func (r *OverrideResolver) Authorize(ctx context.Context, appID, deviceID, channelName string) (*Channel, error) {
	current, err := r.Resolve(ctx, appID, deviceID)
	if err != nil {
		return nil, err
	}
	if current != nil && !current.Channel.Policy.AllowDeviceSelfSet {
		return nil, fmt.Errorf("%w: device %s is bound to channel %q", ErrOverrideNotPermitted, deviceID, current.Channel.Name)
	}

	readCtx, cancel := r.calls.read(ctx)
	defer cancel()
	channel, err := r.store.FindChannelByName(readCtx, appID, channelName)
	if err != nil {
		return nil, storeError("find channel", err)
	}
	if channel == nil {
		return nil, fmt.Errorf("%w: %q", ErrChannelNotFound, channelName)
	}
	if !channel.Policy.AllowDeviceSelfSet {
		return nil, fmt.Errorf("%w: %q does not allow device self set", ErrChannelNotFound, channelName)
	}
	return channel, nil
}

// Set authorizes the request and then binds the device to the channel with a
// single upsert. Concurrent sets for one device resolve to the last writer.
func (r *OverrideResolver) Set(ctx context.Context, appID, deviceID, channelName string) (*Channel, error) {
	channel, err := r.Authorize(ctx, appID, deviceID, channelName)
	if err != nil {
		return nil, err
	}

	writeCtx, cancel := r.calls.write(ctx)
	defer cancel()
	if err := r.store.UpsertOverride(writeCtx, appID, deviceID, channel.ID, channel.CreatedBy); err != nil {
		return nil, storeError("upsert override", err)
	}
	slog.Debug("Channel override set", "app_id", appID, "device_id", deviceID, "channel", channel.Name)
	return channel, nil
}

// Unset removes the device's override. A device without an override is left as is.
func (r *OverrideResolver) Unset(ctx context.Context, appID, deviceID string) error {
	current, err := r.Resolve(ctx, appID, deviceID)
	if err != nil {
		return err
	}
	if current == nil {
		return nil
	}
	if !current.Channel.Policy.AllowDeviceSelfSet {
		return fmt.Errorf("%w: device %s is bound to channel %q", ErrOverrideNotPermitted, deviceID, current.Channel.Name)
	}

	writeCtx, cancel := r.calls.write(ctx)
	defer cancel()
	if err := r.store.DeleteOverride(writeCtx, appID, deviceID); err != nil {
		return storeError("delete override", err)
	}
	return nil
}
