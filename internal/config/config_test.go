package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/USA-RedDragon/ota-server/cmd"
	"github.com/USA-RedDragon/ota-server/internal/config"
)

//nolint:golint,gochecknoglobals
var requiredFlags = []string{
	"--jwt.secret", "changeme",
}

func TestExampleConfig(t *testing.T) {
	t.Parallel()
	cmd := cmd.NewCommand("testing", "deadbeef")
	cmd.SetContext(context.Background())
	err := cmd.ParseFlags([]string{"--config", "../../config.example.yaml"})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	testConfig, err := config.LoadConfig(cmd)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := testConfig.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if testConfig.Engine.StoreTimeout != 5*time.Second {
		t.Errorf("unexpected store timeout: %s", testConfig.Engine.StoreTimeout)
	}
	if testConfig.Telemetry.Timeout != 2*time.Second {
		t.Errorf("unexpected telemetry timeout: %s", testConfig.Telemetry.Timeout)
	}
	if !testConfig.HTTP.Metrics.Enabled || testConfig.HTTP.Metrics.Port != 8081 {
		t.Errorf("unexpected metrics config: %+v", testConfig.HTTP.Metrics)
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	cmd := cmd.NewCommand("testing", "deadbeef")
	cmd.SetContext(context.Background())
	err := cmd.ParseFlags(requiredFlags)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	testConfig, err := config.LoadConfig(cmd)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := testConfig.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if testConfig.Persistence.Database.Driver != config.DatabaseDriverSQLite {
		t.Errorf("unexpected database driver: %s", testConfig.Persistence.Database.Driver)
	}
	if testConfig.Engine.StoreTimeout != config.DefaultEngineStoreTimeout {
		t.Errorf("unexpected store timeout: %s", testConfig.Engine.StoreTimeout)
	}
	if testConfig.Telemetry.Driver != config.TelemetryDriverLog {
		t.Errorf("unexpected telemetry driver: %s", testConfig.Telemetry.Driver)
	}
	if testConfig.Telemetry.Workers != config.DefaultTelemetryWorkers {
		t.Errorf("unexpected telemetry workers: %d", testConfig.Telemetry.Workers)
	}
}

func TestMissingOLTPEndpoint(t *testing.T) {
	t.Parallel()

	cmd := cmd.NewCommand("testing", "deadbeef")
	cmd.SetContext(context.Background())
	err := cmd.ParseFlags(append([]string{"--http.tracing.enabled", "true"}, requiredFlags...))
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	testConfig, err := config.LoadConfig(cmd)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := testConfig.Validate(); !errors.Is(err, config.ErrOTLPEndpointRequired) {
		t.Errorf("unexpected error: %v", err)
	}

	err = cmd.ParseFlags(append([]string{"--http.tracing.enabled", "true", "--http.tracing.otlp_endpoint", "dummy"}, requiredFlags...))
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	testConfig, err = config.LoadConfig(cmd)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := testConfig.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMissingJWTSecret(t *testing.T) {
	t.Parallel()
	cmd := cmd.NewCommand("testing", "deadbeef")
	cmd.SetContext(context.Background())
	err := cmd.ParseFlags([]string{})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	testConfig, err := config.LoadConfig(cmd)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := testConfig.Validate(); !errors.Is(err, config.ErrJWTSecretRequired) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTelemetryValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		flags []string
		want  error
	}{
		{"nats without url", []string{"--telemetry.driver", "nats"}, config.ErrTelemetryNATSURLRequired},
		{"nats with url", []string{"--telemetry.driver", "nats", "--telemetry.nats.url", "nats://localhost:4222"}, nil},
		{"redis without address", []string{"--telemetry.driver", "redis"}, config.ErrTelemetryRedisRequired},
		{"redis with address", []string{"--telemetry.driver", "redis", "--telemetry.redis.address", "localhost:6379"}, nil},
		{"unknown driver", []string{"--telemetry.driver", "kafka"}, config.ErrTelemetryDriverInvalid},
		{"none", []string{"--telemetry.driver", "NONE"}, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cmd := cmd.NewCommand("testing", "deadbeef")
			cmd.SetContext(context.Background())
			if err := cmd.ParseFlags(append(tt.flags, requiredFlags...)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testConfig, err := config.LoadConfig(cmd)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			err = testConfig.Validate()
			if tt.want == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDatabaseValidation(t *testing.T) {
	t.Parallel()
	cmd := cmd.NewCommand("testing", "deadbeef")
	cmd.SetContext(context.Background())
	err := cmd.ParseFlags(append([]string{"--persistence.database.driver", "postgres"}, requiredFlags...))
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	testConfig, err := config.LoadConfig(cmd)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := testConfig.Validate(); !errors.Is(err, config.ErrDBHostRequired) {
		t.Errorf("unexpected error: %v", err)
	}
}

// Parallel tests are not allowed with t.Setenv
//
//nolint:golint,paralleltest
func TestEnvConfig(t *testing.T) {
	cmd := cmd.NewCommand("testing", "deadbeef")
	cmd.SetContext(context.Background())
	t.Setenv("HTTP__PORT", "8087")
	t.Setenv("HTTP__METRICS__PORT", "8088")
	t.Setenv("HTTP__METRICS__IPV4_HOST", "0.0.0.0")
	t.Setenv("HTTP__METRICS__IPV6_HOST", "::0")
	t.Setenv("HTTP__IPV4_HOST", "127.0.0.1")
	t.Setenv("HTTP__IPV6_HOST", "::1")
	t.Setenv("HTTP__PPROF__ENABLED", "true")
	t.Setenv("HTTP__TRUSTED_PROXIES", "127.0.0.1,127.0.0.2")
	t.Setenv("HTTP__METRICS__ENABLED", "true")
	t.Setenv("HTTP__TRACING__ENABLED", "true")
	t.Setenv("HTTP__TRACING__OTLP_ENDPOINT", "http://localhost:4317")
	t.Setenv("HTTP__CORS_HOSTS", "http://localhost:8080,http://localhost:8081")
	t.Setenv("PERSISTENCE__DATABASE__DRIVER", "postgres")
	t.Setenv("PERSISTENCE__DATABASE__DATABASE", "test.sqlite3")
	t.Setenv("PERSISTENCE__DATABASE__HOST", "host")
	t.Setenv("PERSISTENCE__DATABASE__PORT", "5432")
	t.Setenv("PERSISTENCE__DATABASE__USERNAME", "user")
	t.Setenv("PERSISTENCE__DATABASE__PASSWORD", "password")
	t.Setenv("PERSISTENCE__DATABASE__EXTRA_PARAMETERS", "sslmode=require")
	t.Setenv("JWT__SECRET", "envsecret")
	t.Setenv("ENGINE__STORE_TIMEOUT", "750ms")
	t.Setenv("TELEMETRY__DRIVER", "redis")
	t.Setenv("TELEMETRY__QUEUE_DEPTH", "50")
	t.Setenv("TELEMETRY__WORKERS", "2")
	t.Setenv("TELEMETRY__TIMEOUT", "1s")
	t.Setenv("TELEMETRY__NATS__URL", "nats://localhost:4222")
	t.Setenv("TELEMETRY__NATS__SUBJECT", "devices")
	t.Setenv("TELEMETRY__REDIS__ADDRESS", "localhost:6379")
	t.Setenv("TELEMETRY__REDIS__USERNAME", "user123")
	t.Setenv("TELEMETRY__REDIS__PASSWORD", "password")
	t.Setenv("TELEMETRY__REDIS__DATABASE", "3")
	t.Setenv("TELEMETRY__REDIS__STREAM", "events")

	config, err := config.LoadConfig(cmd)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if config.HTTP.Port != 8087 {
		t.Errorf("unexpected HTTP port: %d", config.HTTP.Port)
	}
	if config.HTTP.Metrics.Port != 8088 {
		t.Errorf("unexpected HTTP metrics port: %d", config.HTTP.Metrics.Port)
	}
	if config.HTTP.Metrics.IPV4Host != "0.0.0.0" {
		t.Errorf("unexpected HTTP metrics IPv4 host: %s", config.HTTP.Metrics.IPV4Host)
	}
	if config.HTTP.Metrics.IPV6Host != "::0" {
		t.Errorf("unexpected HTTP metrics IPv6 host: %s", config.HTTP.Metrics.IPV6Host)
	}
	if config.HTTP.IPV4Host != "127.0.0.1" {
		t.Errorf("unexpected HTTP IPv4 host: %s", config.HTTP.IPV4Host)
	}
	if config.HTTP.IPV6Host != "::1" {
		t.Errorf("unexpected HTTP IPv6 host: %s", config.HTTP.IPV6Host)
	}
	if !config.HTTP.PProf.Enabled {
		t.Error("unexpected HTTP pprof enabled")
	}
	if len(config.HTTP.TrustedProxies) != 2 {
		t.Errorf("unexpected HTTP trusted proxies: %v", config.HTTP.TrustedProxies)
	}
	if !config.HTTP.Metrics.Enabled {
		t.Error("unexpected HTTP metrics enabled")
	}
	if !config.HTTP.Tracing.Enabled {
		t.Error("unexpected HTTP tracing enabled")
	}
	if config.HTTP.Tracing.OTLPEndpoint != "http://localhost:4317" {
		t.Errorf("unexpected HTTP tracing OTLP endpoint: %s", config.HTTP.Tracing.OTLPEndpoint)
	}
	if len(config.HTTP.CORSHosts) != 2 {
		t.Errorf("unexpected HTTP CORS hosts: %v", config.HTTP.CORSHosts)
	}
	if config.Persistence.Database.Database != "test.sqlite3" {
		t.Errorf("unexpected persistence database: %s", config.Persistence.Database.Database)
	}
	if config.Persistence.Database.Driver != "postgres" {
		t.Errorf("unexpected persistence driver: %s", config.Persistence.Database.Driver)
	}
	if config.Persistence.Database.Host != "host" {
		t.Errorf("unexpected persistence host: %s", config.Persistence.Database.Host)
	}
	if config.Persistence.Database.Port != 5432 {
		t.Errorf("unexpected persistence port: %d", config.Persistence.Database.Port)
	}
	if config.Persistence.Database.Username != "user" {
		t.Errorf("unexpected persistence username: %s", config.Persistence.Database.Username)
	}
	if config.Persistence.Database.Password != "password" {
		t.Errorf("unexpected persistence password: %s", config.Persistence.Database.Password)
	}
	if config.Persistence.Database.ExtraParameters != "sslmode=require" {
		t.Errorf("unexpected persistence extra parameters: %s", config.Persistence.Database.ExtraParameters)
	}
	if config.JWT.Secret != "envsecret" {
		t.Errorf("unexpected JWT secret: %s", config.JWT.Secret)
	}
	if config.Engine.StoreTimeout != 750*time.Millisecond {
		t.Errorf("unexpected store timeout: %s", config.Engine.StoreTimeout)
	}
	if config.Telemetry.Driver != "redis" {
		t.Errorf("unexpected telemetry driver: %s", config.Telemetry.Driver)
	}
	if config.Telemetry.QueueDepth != 50 {
		t.Errorf("unexpected telemetry queue depth: %d", config.Telemetry.QueueDepth)
	}
	if config.Telemetry.Workers != 2 {
		t.Errorf("unexpected telemetry workers: %d", config.Telemetry.Workers)
	}
	if config.Telemetry.Timeout != time.Second {
		t.Errorf("unexpected telemetry timeout: %s", config.Telemetry.Timeout)
	}
	if config.Telemetry.NATS.URL != "nats://localhost:4222" {
		t.Errorf("unexpected NATS URL: %s", config.Telemetry.NATS.URL)
	}
	if config.Telemetry.NATS.Subject != "devices" {
		t.Errorf("unexpected NATS subject: %s", config.Telemetry.NATS.Subject)
	}
	if config.Telemetry.Redis.Address != "localhost:6379" {
		t.Errorf("unexpected Redis address: %s", config.Telemetry.Redis.Address)
	}
	if config.Telemetry.Redis.Username != "user123" {
		t.Errorf("unexpected Redis username: %s", config.Telemetry.Redis.Username)
	}
	if config.Telemetry.Redis.Password != "password" {
		t.Errorf("unexpected Redis password: %s", config.Telemetry.Redis.Password)
	}
	if config.Telemetry.Redis.Database != 3 {
		t.Errorf("unexpected Redis database: %d", config.Telemetry.Redis.Database)
	}
	if config.Telemetry.Redis.Stream != "events" {
		t.Errorf("unexpected Redis stream: %s", config.Telemetry.Redis.Stream)
	}
}
