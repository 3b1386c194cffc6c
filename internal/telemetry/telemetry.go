// Package telemetry ships channel resolution outcomes to analytics sinks
// without ever holding up the device that caused them.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindGetChannel   Kind = "get_channel"
	KindSetChannel   Kind = "set_channel"
	KindUnsetChannel Kind = "unset_channel"
)

type Event struct {
	ID            uuid.UUID `json:"id"`
	Kind          Kind      `json:"kind"`
	Platform      string    `json:"platform"`
	DeviceID      string    `json:"device_id"`
	AppID         string    `json:"app_id"`
	NativeVersion string    `json:"native_version"`
	BundleID      uint      `json:"bundle_id"`
	BundleName    string    `json:"bundle_name,omitempty"`
	Channel       string    `json:"channel,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Emitter accepts events fire-and-forget. Emit must not block and never fails.
type Emitter interface {
	Emit(event Event)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Emit(Event) {}

// Sink delivers a single event somewhere durable.
type Sink interface {
	Name() string
	Send(ctx context.Context, event Event) error
	Close() error
}
