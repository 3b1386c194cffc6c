package apimodels

import (
	"github.com/USA-RedDragon/ota-server/internal/channels"
)

// DeviceRequest is the body native clients send on check-in and channel changes.
type DeviceRequest struct {
	AppID         string `json:"app_id" binding:"required"`
	DeviceID      string `json:"device_id" binding:"required"`
	VersionName   string `json:"version_name"`
	VersionBuild  string `json:"version_build" binding:"required"`
	VersionOS     string `json:"version_os"`
	Platform      string `json:"platform" binding:"required,oneof=ios android electron"`
	PluginVersion string `json:"plugin_version"`
	CustomID      string `json:"custom_id"`
	Channel       string `json:"channel"`
	IsEmulator    bool   `json:"is_emulator"`
	IsProd        bool   `json:"is_prod"`
}

func (r DeviceRequest) ToRequest() channels.Request {
	return channels.Request{
		AppID:         r.AppID,
		DeviceID:      r.DeviceID,
		CustomID:      r.CustomID,
		Platform:      channels.Platform(r.Platform),
		NativeVersion: r.VersionBuild,
		BundleName:    r.VersionName,
		Channel:       r.Channel,
		PluginVersion: r.PluginVersion,
		OSVersion:     r.VersionOS,
		IsEmulator:    r.IsEmulator,
		IsProd:        r.IsProd,
	}
}

type ChannelSetResponse struct {
	Status   string `json:"status"`
	Channel  string `json:"channel"`
	AllowSet bool   `json:"allowSet"`
}

// UpdatesResponse carries the bound bundle whenever there is one. Version is
// set only when that bundle differs from the one the device runs.
type UpdatesResponse struct {
	Channel string                 `json:"channel"`
	Status  channels.Status        `json:"status"`
	Bundle  *channels.BundleRef    `json:"bundle,omitempty"`
	Version string                 `json:"version,omitempty"`
	Message string                 `json:"message,omitempty"`
	Policy  channels.ChannelPolicy `json:"policy"`
}
