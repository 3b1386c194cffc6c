package channels

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/USA-RedDragon/ota-server/internal/metrics"
	"github.com/USA-RedDragon/ota-server/internal/telemetry"
	"github.com/USA-RedDragon/ota-server/internal/version"
)

// Request describes one device check-in or channel switch.
type Request struct {
	AppID         string
	DeviceID      string
	CustomID      string
	Platform      Platform
	NativeVersion string
	// BundleName is the bundle the device runs. Empty or "builtin" means the
	// bundle shipped with the native binary.
	BundleName    string
	Channel       string
	PluginVersion string
	OSVersion     string
	IsEmulator    bool
	IsProd        bool
}

type BundleRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Resolution is the channel and bundle that govern a device.
type Resolution struct {
	Channel            string        `json:"channel"`
	ChannelID          uint          `json:"-"`
	Status             Status        `json:"status"`
	AllowDeviceSelfSet bool          `json:"allowSet"`
	Bundle             *BundleRef    `json:"version,omitempty"`
	Policy             ChannelPolicy `json:"policy"`
	// DeviceBundle is the bundle name the device reported, after defaulting.
	DeviceBundle  string `json:"-"`
	NativeVersion string `json:"-"`
}

// Engine answers which channel and bundle apply to a device, and whether a
// device may move itself to another channel. It holds no per-request state.
type Engine struct {
	store     Store
	overrides *OverrideResolver
	defaults  *DefaultSelector
	calls     caller
	emitter   telemetry.Emitter
	metrics   *metrics.Metrics
	opts      options
}

func NewEngine(store Store, opts ...Option) *Engine {
	o := newOptions(opts)
	return &Engine{
		store:     store,
		overrides: NewOverrideResolver(store, WithStoreTimeout(o.storeTimeout)),
		defaults:  NewDefaultSelector(store, WithStoreTimeout(o.storeTimeout)),
		calls:     caller{timeout: o.storeTimeout},
		emitter:   o.emitter,
		metrics:   o.metrics,
		opts:      o,
	}
}

// Query resolves the governing channel for a check-in. When the request names
// a channel the device is first bound to it, exactly as Set would.
func (e *Engine) Query(ctx context.Context, req Request) (Resolution, error) {
	res, err := e.query(ctx, req)
	e.metrics.ObserveResolution(string(res.Status), Kind(err))
	return res, err
}

func (e *Engine) query(ctx context.Context, req Request) (Resolution, error) {
	native, err := version.Normalize(req.NativeVersion)
	if err != nil {
		return Resolution{}, err
	}
	bundleName := version.BundleName(req.BundleName, native)

	if req.Channel != "" {
		if _, err := e.overrides.Set(ctx, req.AppID, req.DeviceID, req.Channel); err != nil {
			e.metrics.ObserveOverrideSet(Kind(err))
			return Resolution{}, err
		}
		e.metrics.ObserveOverrideSet("ok")
	}

	res, err := e.resolve(ctx, req.AppID, req.DeviceID)
	if err != nil {
		return Resolution{}, err
	}
	res.DeviceBundle = bundleName
	res.NativeVersion = native

	if err := e.recordDevice(ctx, req, native, bundleName); err != nil {
		return Resolution{}, err
	}
	e.emit(telemetry.KindGetChannel, req, res)
	return res, nil
}

func (e *Engine) resolve(ctx context.Context, appID, deviceID string) (Resolution, error) {
	override, err := e.overrides.Resolve(ctx, appID, deviceID)
	if err != nil {
		return Resolution{}, err
	}
	if override != nil {
		return newResolution(override.Channel, StatusOverride), nil
	}

	channel, err := e.defaults.Select(ctx, appID)
	if err != nil {
		return Resolution{}, err
	}
	return newResolution(*channel, StatusDefault), nil
}

// Set binds the device to the requested channel.
func (e *Engine) Set(ctx context.Context, req Request) (Resolution, error) {
	res, err := e.set(ctx, req)
	if err != nil {
		e.metrics.ObserveOverrideSet(Kind(err))
	} else {
		e.metrics.ObserveOverrideSet("ok")
	}
	return res, err
}

func (e *Engine) set(ctx context.Context, req Request) (Resolution, error) {
	native, err := version.Normalize(req.NativeVersion)
	if err != nil {
		return Resolution{}, err
	}
	bundleName := version.BundleName(req.BundleName, native)
	if req.Channel == "" {
		return Resolution{}, fmt.Errorf("%w: no channel requested", ErrChannelNotFound)
	}

	if explicitBundle(req.BundleName) {
		if err := e.checkBundle(ctx, req.AppID, bundleName); err != nil {
			return Resolution{}, err
		}
	}

	channel, err := e.overrides.Set(ctx, req.AppID, req.DeviceID, req.Channel)
	if err != nil {
		return Resolution{}, err
	}
	res := newResolution(*channel, StatusOverride)
	res.DeviceBundle = bundleName
	res.NativeVersion = native

	if err := e.recordDevice(ctx, req, native, bundleName); err != nil {
		return Resolution{}, err
	}
	e.emit(telemetry.KindSetChannel, req, res)
	return res, nil
}

// Unset removes the device's override so it falls back to the default channel.
func (e *Engine) Unset(ctx context.Context, req Request) error {
	native, err := version.Normalize(req.NativeVersion)
	if err != nil {
		return err
	}
	if err := e.overrides.Unset(ctx, req.AppID, req.DeviceID); err != nil {
		return err
	}
	e.emit(telemetry.KindUnsetChannel, req, Resolution{NativeVersion: native})
	return nil
}

func explicitBundle(name string) bool {
	return version.BundleName(name, "") != ""
}

func (e *Engine) checkBundle(ctx context.Context, appID, name string) error {
	ctx, cancel := e.calls.read(ctx)
	defer cancel()
	bundle, err := e.store.FindBundleByName(ctx, appID, name)
	if err != nil {
		return storeError("find bundle", err)
	}
	if bundle == nil || bundle.Deleted {
		return fmt.Errorf("%w: %q", ErrBundleNotFound, name)
	}
	return nil
}

func (e *Engine) recordDevice(ctx context.Context, req Request, native, bundleName string) error {
	ctx, cancel := e.calls.write(ctx)
	defer cancel()
	err := e.store.UpsertDevice(ctx, Device{
		AppID:         req.AppID,
		DeviceID:      req.DeviceID,
		CustomID:      req.CustomID,
		Platform:      req.Platform,
		PluginVersion: req.PluginVersion,
		VersionName:   bundleName,
		NativeVersion: native,
		OSVersion:     req.OSVersion,
		IsEmulator:    req.IsEmulator,
		IsProd:        req.IsProd,
		UpdatedAt:     e.opts.now(),
	})
	if err != nil {
		slog.Warn("Failed to record device check-in", "app_id", req.AppID, "device_id", req.DeviceID, "error", err)
		return storeError("upsert device", err)
	}
	return nil
}

func (e *Engine) emit(kind telemetry.Kind, req Request, res Resolution) {
	event := telemetry.Event{
		Kind:          kind,
		Platform:      string(req.Platform),
		DeviceID:      req.DeviceID,
		AppID:         req.AppID,
		NativeVersion: res.NativeVersion,
		Channel:       res.Channel,
	}
	if res.Bundle != nil {
		event.BundleID = res.Bundle.ID
		event.BundleName = res.Bundle.Name
	}
	e.emitter.Emit(event)
}

func newResolution(channel Channel, status Status) Resolution {
	res := Resolution{
		Channel:            channel.Name,
		ChannelID:          channel.ID,
		Status:             status,
		AllowDeviceSelfSet: channel.Policy.AllowDeviceSelfSet,
		Policy:             channel.Policy,
	}
	if channel.Bundle != nil && !channel.Bundle.Deleted {
		res.Bundle = &BundleRef{ID: channel.Bundle.ID, Name: channel.Bundle.Name}
	}
	return res
}
