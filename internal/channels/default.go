package channels

import (
	"context"
	"fmt"
)

// DefaultSelector finds the channel governing devices without an override.
type DefaultSelector struct {
	store Store
	calls caller
}

func NewDefaultSelector(store Store, opts ...Option) *DefaultSelector {
	o := newOptions(opts)
	return &DefaultSelector{store: store, calls: caller{timeout: o.storeTimeout}}
}

// Select returns the app's public channel. When several channels are flagged
// public the store's lowest ID choice is used, so repeated calls agree.
func (s *DefaultSelector) Select(ctx context.Context, appID string) (*Channel, error) {
	ctx, cancel := s.calls.read(ctx)
	defer cancel()
	channel, err := s.store.FindPublicChannel(ctx, appID)
	if err != nil {
		return nil, storeError("find public channel", err)
	}
	if channel == nil {
		return nil, fmt.Errorf("%w: app %s has no public channel", ErrChannelNotFound, appID)
	}
	return channel, nil
}
