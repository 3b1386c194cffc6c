package apimodels

import (
	"github.com/USA-RedDragon/ota-server/internal/channels"
	"github.com/USA-RedDragon/ota-server/internal/db/models"
)

const PageSize = 50

type ChannelQuery struct {
	AppID   string `form:"app_id" json:"app_id" binding:"required"`
	Channel string `form:"channel" json:"channel"`
	Page    int    `form:"page" json:"page" binding:"min=0"`
}

// ChannelUpsert creates or updates a channel. Policy fields left out keep the
// channel's current value, or the default for a new channel.
type ChannelUpsert struct {
	AppID   string `json:"app_id" binding:"required"`
	Channel string `json:"channel" binding:"required"`
	// Version names the bundle to serve. Empty unassigns the bundle.
	Version string `json:"version"`
	channels.ChannelPolicyPatch
}

type ChannelDelete struct {
	AppID   string `form:"app_id" json:"app_id" binding:"required"`
	Channel string `form:"channel" json:"channel" binding:"required"`
}

type BundleQuery struct {
	AppID string `form:"app_id" json:"app_id" binding:"required"`
	Page  int    `form:"page" json:"page" binding:"min=0"`
}

type BundleCreate struct {
	AppID   string `json:"app_id" binding:"required"`
	Version string `json:"version" binding:"required"`
}

// BundleDelete deletes one bundle, or every bundle of the app when Version is empty.
type BundleDelete struct {
	AppID   string `form:"app_id" json:"app_id" binding:"required"`
	Version string `form:"version" json:"version"`
}

type AppCreate struct {
	AppID string `json:"app_id" binding:"required"`
	Name  string `json:"name"`
}

// DeviceOverride pins a device to a channel on behalf of the app owner.
type DeviceOverride struct {
	AppID    string `form:"app_id" json:"app_id" binding:"required"`
	DeviceID string `form:"device_id" json:"device_id" binding:"required"`
	Channel  string `form:"channel" json:"channel"`
}

type ChannelsResponse struct {
	Channels []models.Channel `json:"channels"`
	Page     int              `json:"page"`
}

type BundlesResponse struct {
	Bundles []models.Bundle `json:"bundles"`
	Page    int             `json:"page"`
}
