package channels

import "time"

type Platform string

const (
	PlatformIOS      Platform = "ios"
	PlatformAndroid  Platform = "android"
	PlatformElectron Platform = "electron"
)

type Status string

const (
	StatusOverride Status = "override"
	StatusDefault  Status = "default"
)

type Bundle struct {
	ID      uint
	AppID   string
	Name    string
	Deleted bool
}

type Channel struct {
	ID    uint
	AppID string
	Name  string
	// Bundle is nil when no bundle is assigned to the channel.
	Bundle    *Bundle
	Policy    ChannelPolicy
	CreatedBy string
}

type Device struct {
	AppID         string
	DeviceID      string
	CustomID      string
	Platform      Platform
	PluginVersion string
	VersionName   string
	NativeVersion string
	OSVersion     string
	IsEmulator    bool
	IsProd        bool
	UpdatedAt     time.Time
}

// Override binds one device of an app to a channel, superseding the app's default channel.
type Override struct {
	AppID     string
	DeviceID  string
	Channel   Channel
	CreatedBy string
}
