package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/USA-RedDragon/ota-server/internal/config"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

const redisStreamMaxLen = 100_000

// NewSink builds the sink selected by the telemetry config. The none driver has no sink.
func NewSink(cfg *config.Config) (Sink, error) {
	switch cfg.Telemetry.Driver {
	case config.TelemetryDriverLog:
		return LogSink{}, nil
	case config.TelemetryDriverNATS:
		conn, err := nats.Connect(cfg.Telemetry.NATS.URL,
			nats.Name("ota-server"),
			nats.Timeout(cfg.Telemetry.Timeout),
			nats.MaxReconnects(-1),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		return NewNATSSink(conn, cfg.Telemetry.NATS.Subject), nil
	case config.TelemetryDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Telemetry.Redis.Address,
			Username: cfg.Telemetry.Redis.Username,
			Password: cfg.Telemetry.Redis.Password,
			DB:       cfg.Telemetry.Redis.Database,
		})
		return NewRedisSink(client, cfg.Telemetry.Redis.Stream), nil
	case config.TelemetryDriverNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown telemetry driver: %s", cfg.Telemetry.Driver)
	}
}

// LogSink writes events to the structured log.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Send(ctx context.Context, event Event) error {
	slog.InfoContext(ctx, "Telemetry event",
		"id", event.ID.String(),
		"kind", event.Kind,
		"platform", event.Platform,
		"device_id", event.DeviceID,
		"app_id", event.AppID,
		"native_version", event.NativeVersion,
		"bundle_id", event.BundleID,
		"channel", event.Channel,
	)
	return nil
}

func (LogSink) Close() error { return nil }

type NATSSink struct {
	conn    *nats.Conn
	subject string
}

func NewNATSSink(conn *nats.Conn, subject string) *NATSSink {
	return &NATSSink{conn: conn, subject: subject}
}

func (s *NATSSink) Name() string { return "nats" }

// Send publishes the event as JSON on the configured subject, suffixed with the app ID.
func (s *NATSSink) Send(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return s.conn.Publish(s.subject+"."+event.AppID, data)
}

func (s *NATSSink) Close() error {
	return s.conn.Drain()
}

type RedisSink struct {
	client *redis.Client
	stream string
}

func NewRedisSink(client *redis.Client, stream string) *RedisSink {
	return &RedisSink{client: client, stream: stream}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Send(ctx context.Context, event Event) error {
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: redisStreamMaxLen,
		Approx: true,
		Values: redisValues(event),
	}).Err()
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}

func redisValues(event Event) map[string]any {
	return map[string]any{
		"id":             event.ID.String(),
		"kind":           string(event.Kind),
		"platform":       event.Platform,
		"device_id":      event.DeviceID,
		"app_id":         event.AppID,
		"native_version": event.NativeVersion,
		"bundle_id":      strconv.FormatUint(uint64(event.BundleID), 10),
		"bundle_name":    event.BundleName,
		"channel":        event.Channel,
		"timestamp":      event.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}
