package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP        HTTP        `json:"http"`
	Persistence Persistence `json:"persistence"`
	JWT         JWT         `json:"jwt"`
	Engine      Engine      `json:"engine"`
	Telemetry   Telemetry   `json:"telemetry"`
}

type JWT struct {
	Secret string `json:"secret"`
}

type Engine struct {
	// StoreTimeout bounds every individual store call made while resolving a channel.
	StoreTimeout time.Duration `json:"store_timeout" yaml:"store_timeout"`
}

type TelemetryDriver string

const (
	TelemetryDriverNone  TelemetryDriver = "none"
	TelemetryDriverLog   TelemetryDriver = "log"
	TelemetryDriverNATS  TelemetryDriver = "nats"
	TelemetryDriverRedis TelemetryDriver = "redis"
)

type Telemetry struct {
	Driver     TelemetryDriver `json:"driver"`
	QueueDepth uint            `json:"queue_depth" yaml:"queue_depth"`
	Workers    uint            `json:"workers"`
	Timeout    time.Duration   `json:"timeout"`
	NATS       NATS            `json:"nats"`
	Redis      Redis           `json:"redis"`
}

type NATS struct {
	URL     string `json:"url"`
	Subject string `json:"subject"`
}

type Redis struct {
	Address  string `json:"address"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database int    `json:"database"`
	Stream   string `json:"stream"`
}

type Persistence struct {
	Database Database `json:"database"`
}

type DatabaseDriver string

const (
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"
	DatabaseDriverMySQL    DatabaseDriver = "mysql"
	DatabaseDriverPostgres DatabaseDriver = "postgres"
)

type Database struct {
	Driver          DatabaseDriver `json:"driver"`
	Database        string         `json:"database"`
	Username        string         `json:"username"`
	Password        string         `json:"password"`
	Host            string         `json:"host"`
	Port            uint16         `json:"port"`
	ExtraParameters string         `json:"extra_parameters" yaml:"extra_parameters"`
}

type HTTPListener struct {
	IPV4Host string `json:"ipv4_host" yaml:"ipv4_host"`
	IPV6Host string `json:"ipv6_host" yaml:"ipv6_host"`
	Port     uint16 `json:"port"`
}

type Tracing struct {
	Enabled      bool   `json:"enabled"`
	OTLPEndpoint string `json:"otlp_endpoint" yaml:"otlp_endpoint"`
}

type PProf struct {
	Enabled bool `json:"enabled"`
}

type Metrics struct {
	HTTPListener `yaml:",inline"`
	Enabled      bool `json:"enabled"`
}

type HTTP struct {
	HTTPListener   `yaml:",inline"`
	Tracing        Tracing  `json:"tracing"`
	PProf          PProf    `json:"pprof"`
	TrustedProxies []string `json:"trusted_proxies" yaml:"trusted_proxies"`
	Metrics        Metrics  `json:"metrics"`
	CORSHosts      []string `json:"cors_hosts" yaml:"cors_hosts"`
}

//nolint:golint,gochecknoglobals
var (
	ConfigFileKey                         = "config"
	HTTPIPV4HostKey                       = "http.ipv4_host"
	HTTPIPV6HostKey                       = "http.ipv6_host"
	HTTPPortKey                           = "http.port"
	HTTPTracingEnabledKey                 = "http.tracing.enabled"
	HTTPTracingOTLPEndKey                 = "http.tracing.otlp_endpoint"
	HTTPPProfEnabledKey                   = "http.pprof.enabled"
	HTTPTrustedProxiesKey                 = "http.trusted_proxies"
	HTTPMetricsEnabledKey                 = "http.metrics.enabled"
	HTTPMetricsIPV4HostKey                = "http.metrics.ipv4_host"
	HTTPMetricsIPV6HostKey                = "http.metrics.ipv6_host"
	HTTPMetricsPortKey                    = "http.metrics.port"
	HTTPCORSHostsKey                      = "http.cors_hosts"
	PersistenceDatabaseDriverKey          = "persistence.database.driver"
	PersistenceDatabaseDatabaseKey        = "persistence.database.database"
	PersistenceDatabaseUsernameKey        = "persistence.database.username"
	PersistenceDatabasePasswordKey        = "persistence.database.password"
	PersistenceDatabaseHostKey            = "persistence.database.host"
	PersistenceDatabasePortKey            = "persistence.database.port"
	PersistenceDatabaseExtraParametersKey = "persistence.database.extra_parameters"
	JWTSecretKey                          = "jwt.secret"
	EngineStoreTimeoutKey                 = "engine.store_timeout"
	TelemetryDriverKey                    = "telemetry.driver"
	TelemetryQueueDepthKey                = "telemetry.queue_depth"
	TelemetryWorkersKey                   = "telemetry.workers"
	TelemetryTimeoutKey                   = "telemetry.timeout"
	TelemetryNATSURLKey                   = "telemetry.nats.url"
	TelemetryNATSSubjectKey               = "telemetry.nats.subject"
	TelemetryRedisAddressKey              = "telemetry.redis.address"
	TelemetryRedisUsernameKey             = "telemetry.redis.username"
	//nolint:golint,gosec
	TelemetryRedisPasswordKey = "telemetry.redis.password"
	TelemetryRedisDatabaseKey = "telemetry.redis.database"
	TelemetryRedisStreamKey   = "telemetry.redis.stream"
)

const (
	DefaultConfigPath                  = "config.yaml"
	DefaultHTTPIPV4Host                = "0.0.0.0"
	DefaultHTTPIPV6Host                = "::"
	DefaultHTTPPort                    = 8080
	DefaultHTTPMetricsIPV4Host         = "127.0.0.1"
	DefaultHTTPMetricsIPV6Host         = "::1"
	DefaultHTTPMetricsPort             = 8081
	DefaultPersistenceDatabaseDriver   = DatabaseDriverSQLite
	DefaultPersistenceDatabaseDatabase = "ota.db"
	DefaultEngineStoreTimeout          = 5 * time.Second
	DefaultTelemetryDriver             = TelemetryDriverLog
	DefaultTelemetryQueueDepth         = 1000
	DefaultTelemetryWorkers            = 4
	DefaultTelemetryTimeout            = 2 * time.Second
	DefaultTelemetryNATSSubject        = "ota.telemetry"
	DefaultTelemetryRedisStream        = "ota:telemetry"
)

func RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(ConfigFileKey, "c", DefaultConfigPath, "Config file path")
	cmd.Flags().String(HTTPIPV4HostKey, DefaultHTTPIPV4Host, "HTTP server IPv4 host")
	cmd.Flags().String(HTTPIPV6HostKey, DefaultHTTPIPV6Host, "HTTP server IPv6 host")
	cmd.Flags().Uint16(HTTPPortKey, DefaultHTTPPort, "HTTP server port")
	cmd.Flags().Bool(HTTPTracingEnabledKey, false, "Enable Open Telemetry tracing")
	cmd.Flags().String(HTTPTracingOTLPEndKey, "", "Open Telemetry endpoint")
	cmd.Flags().Bool(HTTPPProfEnabledKey, false, "Enable pprof")
	cmd.Flags().StringSlice(HTTPTrustedProxiesKey, []string{}, "Comma-separated list of trusted proxies")
	cmd.Flags().Bool(HTTPMetricsEnabledKey, false, "Enable metrics server")
	cmd.Flags().String(HTTPMetricsIPV4HostKey, DefaultHTTPMetricsIPV4Host, "Metrics server IPv4 host")
	cmd.Flags().String(HTTPMetricsIPV6HostKey, DefaultHTTPMetricsIPV6Host, "Metrics server IPv6 host")
	cmd.Flags().Uint16(HTTPMetricsPortKey, DefaultHTTPMetricsPort, "Metrics server port")
	cmd.Flags().StringSlice(HTTPCORSHostsKey, []string{}, "Comma-separated list of CORS hosts")
	cmd.Flags().String(PersistenceDatabaseDriverKey, string(DefaultPersistenceDatabaseDriver), "Database driver")
	cmd.Flags().String(PersistenceDatabaseDatabaseKey, DefaultPersistenceDatabaseDatabase, "Database path")
	cmd.Flags().String(PersistenceDatabaseUsernameKey, "", "Database username")
	cmd.Flags().String(PersistenceDatabasePasswordKey, "", "Database password")
	cmd.Flags().String(PersistenceDatabaseHostKey, "", "Database host")
	cmd.Flags().Uint16(PersistenceDatabasePortKey, 0, "Database port")
	cmd.Flags().String(PersistenceDatabaseExtraParametersKey, "", "Database extra parameters")
	cmd.Flags().String(JWTSecretKey, "", "API key signing secret")
	cmd.Flags().Duration(EngineStoreTimeoutKey, DefaultEngineStoreTimeout, "Timeout for a single store call")
	cmd.Flags().String(TelemetryDriverKey, string(DefaultTelemetryDriver), "Telemetry sink (none, log, nats, redis)")
	cmd.Flags().Uint(TelemetryQueueDepthKey, DefaultTelemetryQueueDepth, "Telemetry queue depth")
	cmd.Flags().Uint(TelemetryWorkersKey, DefaultTelemetryWorkers, "Telemetry worker count")
	cmd.Flags().Duration(TelemetryTimeoutKey, DefaultTelemetryTimeout, "Timeout for a single telemetry send")
	cmd.Flags().String(TelemetryNATSURLKey, "", "NATS server URL")
	cmd.Flags().String(TelemetryNATSSubjectKey, DefaultTelemetryNATSSubject, "NATS subject for telemetry events")
	cmd.Flags().String(TelemetryRedisAddressKey, "", "Redis address")
	cmd.Flags().String(TelemetryRedisUsernameKey, "", "Redis username")
	cmd.Flags().String(TelemetryRedisPasswordKey, "", "Redis password")
	cmd.Flags().Int(TelemetryRedisDatabaseKey, 0, "Redis database")
	cmd.Flags().String(TelemetryRedisStreamKey, DefaultTelemetryRedisStream, "Redis stream for telemetry events")
}

var (
	ErrJWTSecretRequired        = errors.New("JWT secret is required")
	ErrOTLPEndpointRequired     = errors.New("OTLP endpoint is required when tracing is enabled")
	ErrDBHostRequired           = errors.New("Database host is required")
	ErrDBDatabaseRequired       = errors.New("Database name is required")
	ErrDatabaseDriverRequired   = errors.New("Database driver is required")
	ErrDatabaseDriverInvalid    = errors.New("Database driver must be one of sqlite, postgres, mysql")
	ErrStoreTimeoutInvalid      = errors.New("Store timeout must be positive")
	ErrTelemetryDriverInvalid   = errors.New("Telemetry driver must be one of none, log, nats, redis")
	ErrTelemetryNATSURLRequired = errors.New("NATS URL is required when telemetry driver is nats")
	ErrTelemetryRedisRequired   = errors.New("Redis address is required when telemetry driver is redis")
	ErrTelemetryWorkersInvalid  = errors.New("Telemetry workers must be at least 1")
)

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return ErrJWTSecretRequired
	}
	if c.HTTP.Tracing.Enabled && c.HTTP.Tracing.OTLPEndpoint == "" {
		return ErrOTLPEndpointRequired
	}
	if c.Persistence.Database.Driver == "" {
		return ErrDatabaseDriverRequired
	}
	switch c.Persistence.Database.Driver {
	case DatabaseDriverSQLite, DatabaseDriverPostgres, DatabaseDriverMySQL:
	default:
		return ErrDatabaseDriverInvalid
	}
	if c.Persistence.Database.Driver != DatabaseDriverSQLite && c.Persistence.Database.Host == "" {
		return ErrDBHostRequired
	}
	if c.Persistence.Database.Database == "" {
		return ErrDBDatabaseRequired
	}
	if c.Engine.StoreTimeout <= 0 {
		return ErrStoreTimeoutInvalid
	}
	switch c.Telemetry.Driver {
	case TelemetryDriverNone, TelemetryDriverLog:
	case TelemetryDriverNATS:
		if c.Telemetry.NATS.URL == "" {
			return ErrTelemetryNATSURLRequired
		}
	case TelemetryDriverRedis:
		if c.Telemetry.Redis.Address == "" {
			return ErrTelemetryRedisRequired
		}
	default:
		return ErrTelemetryDriverInvalid
	}
	if c.Telemetry.Driver != TelemetryDriverNone && c.Telemetry.Workers == 0 {
		return ErrTelemetryWorkersInvalid
	}

	return nil
}

func LoadConfig(cmd *cobra.Command) (*Config, error) {
	var config Config

	// Load flags from envs
	ctx, cancel := context.WithCancelCause(cmd.Context())
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if ctx.Err() != nil {
			return
		}
		optName := strings.ReplaceAll(strings.ReplaceAll(strings.ToUpper(f.Name), "-", "_"), ".", "__")
		if val, ok := os.LookupEnv(optName); !f.Changed && ok {
			if err := f.Value.Set(val); err != nil {
				cancel(err)
			}
			f.Changed = true
		}
	})
	if ctx.Err() != nil {
		return &config, fmt.Errorf("failed to load env: %w", context.Cause(ctx))
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return &config, fmt.Errorf("failed to get config path: %w", err)
	}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return &config, fmt.Errorf("failed to read config: %w", err)
		} else if err == nil {
			if err := yaml.Unmarshal(data, &config); err != nil {
				return &config, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	err = overrideFlags(&config, cmd)
	if err != nil {
		return &config, fmt.Errorf("failed to override flags: %w", err)
	}

	// Defaults
	if config.HTTP.IPV4Host == "" {
		config.HTTP.IPV4Host = DefaultHTTPIPV4Host
	}
	if config.HTTP.IPV6Host == "" {
		config.HTTP.IPV6Host = DefaultHTTPIPV6Host
	}
	if config.HTTP.Port == 0 {
		config.HTTP.Port = DefaultHTTPPort
	}
	if config.HTTP.Metrics.IPV4Host == "" {
		config.HTTP.Metrics.IPV4Host = DefaultHTTPMetricsIPV4Host
	}
	if config.HTTP.Metrics.IPV6Host == "" {
		config.HTTP.Metrics.IPV6Host = DefaultHTTPMetricsIPV6Host
	}
	if config.HTTP.Metrics.Port == 0 {
		config.HTTP.Metrics.Port = DefaultHTTPMetricsPort
	}
	if config.Persistence.Database.Driver == "" {
		config.Persistence.Database.Driver = DefaultPersistenceDatabaseDriver
	}
	if config.Persistence.Database.Database == "" {
		config.Persistence.Database.Database = DefaultPersistenceDatabaseDatabase
	}
	if config.Engine.StoreTimeout == 0 {
		config.Engine.StoreTimeout = DefaultEngineStoreTimeout
	}
	if config.Telemetry.Driver == "" {
		config.Telemetry.Driver = DefaultTelemetryDriver
	}
	if config.Telemetry.QueueDepth == 0 {
		config.Telemetry.QueueDepth = DefaultTelemetryQueueDepth
	}
	if config.Telemetry.Workers == 0 {
		config.Telemetry.Workers = DefaultTelemetryWorkers
	}
	if config.Telemetry.Timeout == 0 {
		config.Telemetry.Timeout = DefaultTelemetryTimeout
	}
	if config.Telemetry.NATS.Subject == "" {
		config.Telemetry.NATS.Subject = DefaultTelemetryNATSSubject
	}
	if config.Telemetry.Redis.Stream == "" {
		config.Telemetry.Redis.Stream = DefaultTelemetryRedisStream
	}

	return &config, nil
}

func overrideFlags(config *Config, cmd *cobra.Command) error {
	var err error
	if cmd.Flags().Changed(HTTPIPV4HostKey) {
		config.HTTP.IPV4Host, err = cmd.Flags().GetString(HTTPIPV4HostKey)
		if err != nil {
			return fmt.Errorf("failed to get HTTP IPv4 host: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPIPV6HostKey) {
		config.HTTP.IPV6Host, err = cmd.Flags().GetString(HTTPIPV6HostKey)
		if err != nil {
			return fmt.Errorf("failed to get HTTP IPv6 host: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPPortKey) {
		config.HTTP.Port, err = cmd.Flags().GetUint16(HTTPPortKey)
		if err != nil {
			return fmt.Errorf("failed to get HTTP port: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPPProfEnabledKey) {
		config.HTTP.PProf.Enabled, err = cmd.Flags().GetBool(HTTPPProfEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get pprof enabled: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPTrustedProxiesKey) {
		config.HTTP.TrustedProxies, err = cmd.Flags().GetStringSlice(HTTPTrustedProxiesKey)
		if err != nil {
			return fmt.Errorf("failed to get trusted proxies: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPMetricsEnabledKey) {
		config.HTTP.Metrics.Enabled, err = cmd.Flags().GetBool(HTTPMetricsEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get metrics enabled: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPMetricsIPV4HostKey) {
		config.HTTP.Metrics.IPV4Host, err = cmd.Flags().GetString(HTTPMetricsIPV4HostKey)
		if err != nil {
			return fmt.Errorf("failed to get metrics IPv4 host: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPMetricsIPV6HostKey) {
		config.HTTP.Metrics.IPV6Host, err = cmd.Flags().GetString(HTTPMetricsIPV6HostKey)
		if err != nil {
			return fmt.Errorf("failed to get metrics IPv6 host: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPMetricsPortKey) {
		config.HTTP.Metrics.Port, err = cmd.Flags().GetUint16(HTTPMetricsPortKey)
		if err != nil {
			return fmt.Errorf("failed to get metrics port: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPTracingEnabledKey) {
		config.HTTP.Tracing.Enabled, err = cmd.Flags().GetBool(HTTPTracingEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get tracing enabled: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPTracingOTLPEndKey) {
		config.HTTP.Tracing.OTLPEndpoint, err = cmd.Flags().GetString(HTTPTracingOTLPEndKey)
		if err != nil {
			return fmt.Errorf("failed to get tracing OTLP endpoint: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPCORSHostsKey) {
		config.HTTP.CORSHosts, err = cmd.Flags().GetStringSlice(HTTPCORSHostsKey)
		if err != nil {
			return fmt.Errorf("failed to get CORS hosts: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabaseDriverKey) {
		drvr, err := cmd.Flags().GetString(PersistenceDatabaseDriverKey)
		if err != nil {
			return fmt.Errorf("failed to get database driver: %w", err)
		}
		config.Persistence.Database.Driver = DatabaseDriver(strings.ToLower(drvr))
	}

	if cmd.Flags().Changed(PersistenceDatabaseDatabaseKey) {
		config.Persistence.Database.Database, err = cmd.Flags().GetString(PersistenceDatabaseDatabaseKey)
		if err != nil {
			return fmt.Errorf("failed to get database name: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabaseUsernameKey) {
		config.Persistence.Database.Username, err = cmd.Flags().GetString(PersistenceDatabaseUsernameKey)
		if err != nil {
			return fmt.Errorf("failed to get database username: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabasePasswordKey) {
		config.Persistence.Database.Password, err = cmd.Flags().GetString(PersistenceDatabasePasswordKey)
		if err != nil {
			return fmt.Errorf("failed to get database password: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabaseHostKey) {
		config.Persistence.Database.Host, err = cmd.Flags().GetString(PersistenceDatabaseHostKey)
		if err != nil {
			return fmt.Errorf("failed to get database host: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabasePortKey) {
		config.Persistence.Database.Port, err = cmd.Flags().GetUint16(PersistenceDatabasePortKey)
		if err != nil {
			return fmt.Errorf("failed to get database port: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabaseExtraParametersKey) {
		config.Persistence.Database.ExtraParameters, err = cmd.Flags().GetString(PersistenceDatabaseExtraParametersKey)
		if err != nil {
			return fmt.Errorf("failed to get database extra parameters: %w", err)
		}
	}

	if cmd.Flags().Changed(JWTSecretKey) {
		config.JWT.Secret, err = cmd.Flags().GetString(JWTSecretKey)
		if err != nil {
			return fmt.Errorf("failed to get JWT secret: %w", err)
		}
	}

	if cmd.Flags().Changed(EngineStoreTimeoutKey) {
		config.Engine.StoreTimeout, err = cmd.Flags().GetDuration(EngineStoreTimeoutKey)
		if err != nil {
			return fmt.Errorf("failed to get store timeout: %w", err)
		}
	}

	if cmd.Flags().Changed(TelemetryDriverKey) {
		drvr, err := cmd.Flags().GetString(TelemetryDriverKey)
		if err != nil {
			return fmt.Errorf("failed to get telemetry driver: %w", err)
		}
		config.Telemetry.Driver = TelemetryDriver(strings.ToLower(drvr))
	}

	if cmd.Flags().Changed(TelemetryQueueDepthKey) {
		config.Telemetry.QueueDepth, err = cmd.Flags().GetUint(TelemetryQueueDepthKey)
		if err != nil {
			return fmt.Errorf("failed to get telemetry queue depth: %w", err)
		}
	}

	if cmd.Flags().Changed(TelemetryWorkersKey) {
		config.Telemetry.Workers, err = cmd.Flags().GetUint(TelemetryWorkersKey)
		if err != nil {
			return fmt.Errorf("failed to get telemetry workers: %w", err)
		}
	}

	if cmd.Flags().Changed(TelemetryTimeoutKey) {
		config.Telemetry.Timeout, err = cmd.Flags().GetDuration(TelemetryTimeoutKey)
		if err != nil {
			return fmt.Errorf("failed to get telemetry timeout: %w", err)
		}
	}

	if cmd.Flags().Changed(TelemetryNATSURLKey) {
		config.Telemetry.NATS.URL, err = cmd.Flags().GetString(TelemetryNATSURLKey)
		if err != nil {
			return fmt.Errorf("failed to get NATS URL: %w", err)
		}
	}

	if cmd.Flags().Changed(TelemetryNATSSubjectKey) {
		config.Telemetry.NATS.Subject, err = cmd.Flags().GetString(TelemetryNATSSubjectKey)
		if err != nil {
			return fmt.Errorf("failed to get NATS subject: %w", err)
		}
	}

	if cmd.Flags().Changed(TelemetryRedisAddressKey) {
		config.Telemetry.Redis.Address, err = cmd.Flags().GetString(TelemetryRedisAddressKey)
		if err != nil {
			return fmt.Errorf("failed to get Redis address: %w", err)
		}
	}

	if cmd.Flags().Changed(TelemetryRedisUsernameKey) {
		config.Telemetry.Redis.Username, err = cmd.Flags().GetString(TelemetryRedisUsernameKey)
		if err != nil {
			return fmt.Errorf("failed to get Redis username: %w", err)
		}
	}

	if cmd.Flags().Changed(TelemetryRedisPasswordKey) {
		config.Telemetry.Redis.Password, err = cmd.Flags().GetString(TelemetryRedisPasswordKey)
		if err != nil {
			return fmt.Errorf("failed to get Redis password: %w", err)
		}
	}

	if cmd.Flags().Changed(TelemetryRedisDatabaseKey) {
		config.Telemetry.Redis.Database, err = cmd.Flags().GetInt(TelemetryRedisDatabaseKey)
		if err != nil {
			return fmt.Errorf("failed to get Redis database: %w", err)
		}
	}

	if cmd.Flags().Changed(TelemetryRedisStreamKey) {
		config.Telemetry.Redis.Stream, err = cmd.Flags().GetString(TelemetryRedisStreamKey)
		if err != nil {
			return fmt.Errorf("failed to get Redis stream: %w", err)
		}
	}

	return nil
}
