// Package memstore is an in-memory channels.Store used to exercise the
// resolution engine deterministically.
package memstore

import (
	"context"
	"sync/atomic"

	"github.com/USA-RedDragon/ota-server/internal/channels"
	"github.com/puzpuzpuz/xsync/v3"
)

// Hook runs before every store operation. A non-nil error fails the operation.
type Hook func(ctx context.Context, op string) error

type key struct {
	appID string
	id    string
}

type channelRow struct {
	channel  channels.Channel
	bundleID uint
}

type overrideRow struct {
	channelID uint
	createdBy string
}

type Store struct {
	devices   *xsync.MapOf[key, channels.Device]
	overrides *xsync.MapOf[key, overrideRow]
	channels  *xsync.MapOf[uint, channelRow]
	bundles   *xsync.MapOf[uint, channels.Bundle]
	nextID    atomic.Uint64
	hook      atomic.Pointer[Hook]
}

var _ channels.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		devices:   xsync.NewMapOf[key, channels.Device](),
		overrides: xsync.NewMapOf[key, overrideRow](),
		channels:  xsync.NewMapOf[uint, channelRow](),
		bundles:   xsync.NewMapOf[uint, channels.Bundle](),
	}
}

// SetHook installs h, or removes the current hook when h is nil.
func (s *Store) SetHook(h Hook) {
	if h == nil {
		s.hook.Store(nil)
		return
	}
	s.hook.Store(&h)
}

func (s *Store) before(ctx context.Context, op string) error {
	if h := s.hook.Load(); h != nil {
		if err := (*h)(ctx, op); err != nil {
			return err
		}
	}
	return ctx.Err()
}

func (s *Store) id() uint {
	return uint(s.nextID.Add(1))
}

// PutBundle stores b, assigning an ID when it has none.
func (s *Store) PutBundle(b channels.Bundle) channels.Bundle {
	if b.ID == 0 {
		b.ID = s.id()
	}
	s.bundles.Store(b.ID, b)
	return b
}

// PutChannel stores c bound to bundleID (0 for no bundle), assigning an ID when it has none.
func (s *Store) PutChannel(c channels.Channel, bundleID uint) channels.Channel {
	if c.ID == 0 {
		c.ID = s.id()
	}
	c.Bundle = nil
	s.channels.Store(c.ID, channelRow{channel: c, bundleID: bundleID})
	out, _ := s.channel(c.ID)
	return out
}

// Override returns the channel ID a device is bound to.
func (s *Store) Override(appID, deviceID string) (uint, bool) {
	row, ok := s.overrides.Load(key{appID, deviceID})
	return row.channelID, ok
}

func (s *Store) channel(id uint) (channels.Channel, bool) {
	row, ok := s.channels.Load(id)
	if !ok {
		return channels.Channel{}, false
	}
	c := row.channel
	if row.bundleID != 0 {
		if b, ok := s.bundles.Load(row.bundleID); ok {
			c.Bundle = &b
		}
	}
	return c, true
}

func (s *Store) FindDevice(ctx context.Context, appID, deviceID string) (*channels.Device, error) {
	if err := s.before(ctx, "FindDevice"); err != nil {
		return nil, err
	}
	device, ok := s.devices.Load(key{appID, deviceID})
	if !ok {
		return nil, nil
	}
	return &device, nil
}

func (s *Store) UpsertDevice(ctx context.Context, device channels.Device) error {
	if err := s.before(ctx, "UpsertDevice"); err != nil {
		return err
	}
	s.devices.Store(key{device.AppID, device.DeviceID}, device)
	return nil
}

func (s *Store) FindOverride(ctx context.Context, appID, deviceID string) (*channels.Override, error) {
	if err := s.before(ctx, "FindOverride"); err != nil {
		return nil, err
	}
	row, ok := s.overrides.Load(key{appID, deviceID})
	if !ok {
		return nil, nil
	}
	c, ok := s.channel(row.channelID)
	if !ok {
		// The channel was deleted out from under the override.
		return nil, nil
	}
	return &channels.Override{AppID: appID, DeviceID: deviceID, Channel: c, CreatedBy: row.createdBy}, nil
}

func (s *Store) UpsertOverride(ctx context.Context, appID, deviceID string, channelID uint, createdBy string) error {
	if err := s.before(ctx, "UpsertOverride"); err != nil {
		return err
	}
	s.overrides.Compute(key{appID, deviceID}, func(overrideRow, bool) (overrideRow, bool) {
		return overrideRow{channelID: channelID, createdBy: createdBy}, false
	})
	return nil
}

func (s *Store) DeleteOverride(ctx context.Context, appID, deviceID string) error {
	if err := s.before(ctx, "DeleteOverride"); err != nil {
		return err
	}
	s.overrides.Delete(key{appID, deviceID})
	return nil
}

func (s *Store) FindChannelByName(ctx context.Context, appID, name string) (*channels.Channel, error) {
	if err := s.before(ctx, "FindChannelByName"); err != nil {
		return nil, err
	}
	var found uint
	s.channels.Range(func(id uint, row channelRow) bool {
		if row.channel.AppID == appID && row.channel.Name == name {
			found = id
			return false
		}
		return true
	})
	if found == 0 {
		return nil, nil
	}
	c, ok := s.channel(found)
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *Store) FindPublicChannel(ctx context.Context, appID string) (*channels.Channel, error) {
	if err := s.before(ctx, "FindPublicChannel"); err != nil {
		return nil, err
	}
	var lowest uint
	s.channels.Range(func(id uint, row channelRow) bool {
		if row.channel.AppID == appID && row.channel.Policy.Public && (lowest == 0 || id < lowest) {
			lowest = id
		}
		return true
	})
	if lowest == 0 {
		return nil, nil
	}
	c, ok := s.channel(lowest)
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *Store) FindBundleByName(ctx context.Context, appID, name string) (*channels.Bundle, error) {
	if err := s.before(ctx, "FindBundleByName"); err != nil {
		return nil, err
	}
	var found *channels.Bundle
	s.bundles.Range(func(_ uint, b channels.Bundle) bool {
		if b.AppID == appID && b.Name == name {
			found = &b
			return false
		}
		return true
	})
	return found, nil
}
