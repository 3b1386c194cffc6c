package db

import (
	"context"
	"errors"
	"time"

	"github.com/USA-RedDragon/ota-server/internal/channels"
	"github.com/USA-RedDragon/ota-server/internal/db/models"
	"github.com/mattn/go-nulltype"
	"gorm.io/gorm"
)

// Store implements channels.Store on top of gorm.
type Store struct {
	db *gorm.DB
}

var _ channels.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// found turns gorm's record-not-found into an absent result.
func found(err error) (bool, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) FindDevice(ctx context.Context, appID, deviceID string) (*channels.Device, error) {
	device, err := models.FindDevice(s.db.WithContext(ctx), appID, deviceID)
	if ok, err := found(err); !ok {
		return nil, err
	}
	return &channels.Device{
		AppID:         device.AppID,
		DeviceID:      device.DeviceID,
		CustomID:      device.CustomID.StringValue(),
		Platform:      channels.Platform(device.Platform),
		PluginVersion: device.PluginVersion.StringValue(),
		VersionName:   device.VersionName,
		NativeVersion: device.VersionBuild,
		OSVersion:     device.OSVersion.StringValue(),
		IsEmulator:    device.IsEmulator,
		IsProd:        device.IsProd,
		UpdatedAt:     device.UpdatedAt,
	}, nil
}

func (s *Store) UpsertDevice(ctx context.Context, device channels.Device) error {
	updatedAt := device.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	return models.UpsertDevice(s.db.WithContext(ctx), &models.Device{
		AppID:         device.AppID,
		DeviceID:      device.DeviceID,
		CustomID:      optional(device.CustomID),
		Platform:      string(device.Platform),
		PluginVersion: optional(device.PluginVersion),
		VersionName:   device.VersionName,
		VersionBuild:  device.NativeVersion,
		OSVersion:     optional(device.OSVersion),
		IsEmulator:    device.IsEmulator,
		IsProd:        device.IsProd,
		UpdatedAt:     updatedAt,
	})
}

func (s *Store) FindOverride(ctx context.Context, appID, deviceID string) (*channels.Override, error) {
	override, err := models.FindChannelOverride(s.db.WithContext(ctx), appID, deviceID)
	if ok, err := found(err); !ok {
		return nil, err
	}
	if override.Channel.ID == 0 {
		return nil, nil
	}
	return &channels.Override{
		AppID:     override.AppID,
		DeviceID:  override.DeviceID,
		Channel:   ToChannel(override.Channel),
		CreatedBy: override.CreatedBy,
	}, nil
}

func (s *Store) UpsertOverride(ctx context.Context, appID, deviceID string, channelID uint, createdBy string) error {
	return models.UpsertChannelOverride(s.db.WithContext(ctx), &models.ChannelOverride{
		AppID:     appID,
		DeviceID:  deviceID,
		ChannelID: channelID,
		CreatedBy: createdBy,
	})
}

func (s *Store) DeleteOverride(ctx context.Context, appID, deviceID string) error {
	_, err := models.DeleteChannelOverride(s.db.WithContext(ctx), appID, deviceID)
	return err
}

func (s *Store) FindChannelByName(ctx context.Context, appID, name string) (*channels.Channel, error) {
	channel, err := models.FindChannelByName(s.db.WithContext(ctx), appID, name)
	if ok, err := found(err); !ok {
		return nil, err
	}
	c := ToChannel(channel)
	return &c, nil
}

func (s *Store) FindPublicChannel(ctx context.Context, appID string) (*channels.Channel, error) {
	channel, err := models.FindPublicChannel(s.db.WithContext(ctx), appID)
	if ok, err := found(err); !ok {
		return nil, err
	}
	c := ToChannel(channel)
	return &c, nil
}

func (s *Store) FindBundleByName(ctx context.Context, appID, name string) (*channels.Bundle, error) {
	bundle, err := models.FindBundleByName(s.db.WithContext(ctx), appID, name)
	if ok, err := found(err); !ok {
		return nil, err
	}
	b := ToBundle(bundle)
	return &b, nil
}

func ToBundle(bundle models.Bundle) channels.Bundle {
	return channels.Bundle{
		ID:      bundle.ID,
		AppID:   bundle.AppID,
		Name:    bundle.Name,
		Deleted: bundle.Deleted,
	}
}

func ToChannel(channel models.Channel) channels.Channel {
	c := channels.Channel{
		ID:        channel.ID,
		AppID:     channel.AppID,
		Name:      channel.Name,
		CreatedBy: channel.CreatedBy,
		Policy: channels.ChannelPolicy{
			Public:                       channel.Public,
			AllowDeviceSelfSet:           channel.AllowDeviceSelfSet,
			AllowEmulator:                channel.AllowEmulator,
			AllowDev:                     channel.AllowDev,
			DisableAutoUpdateUnderNative: channel.DisableAutoUpdateUnderNative,
			DisableAutoUpdateToMajor:     channel.DisableAutoUpdateToMajor,
			IOS:                          channel.IOS,
			Android:                      channel.Android,
		},
	}
	if channel.Bundle != nil {
		b := ToBundle(*channel.Bundle)
		c.Bundle = &b
	}
	return c
}

// ApplyPolicy copies policy onto the channel's columns.
func ApplyPolicy(channel *models.Channel, policy channels.ChannelPolicy) {
	channel.Public = policy.Public
	channel.AllowDeviceSelfSet = policy.AllowDeviceSelfSet
	channel.AllowEmulator = policy.AllowEmulator
	channel.AllowDev = policy.AllowDev
	channel.DisableAutoUpdateUnderNative = policy.DisableAutoUpdateUnderNative
	channel.DisableAutoUpdateToMajor = policy.DisableAutoUpdateToMajor
	channel.IOS = policy.IOS
	channel.Android = policy.Android
}

func optional(s string) nulltype.NullString {
	if s == "" {
		return nulltype.NullString{}
	}
	return nulltype.NullStringOf(s)
}
