package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Session backends understood by the kiosk.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

type Config struct {
	Addr         string `env:"HTTP_ADDR,     default=127.0.0.1:8080"`
	Env          string `env:"ENV,           default=development"`
	LogLevel     string `env:"LOG_LEVEL,     default=info"`
	LogPretty    bool   `env:"LOG_PRETTY,    default=false"`
	ControlToken string `env:"CONTROL_TOKEN"`
	OperatorID   string `env:"OPERATOR_ID"`

	Gateway  GatewayConfig
	Session  SessionConfig
	Workflow WorkflowConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

// GatewayConfig points at the remote authentication and attendance service.
type GatewayConfig struct {
	BaseURL     string        `env:"API_BASE_URL,   default=http://localhost:3000/api"`
	IPLookupURL string        `env:"IP_LOOKUP_URL,  default=https://api.ipify.org?format=json"`
	Timeout     time.Duration `env:"API_TIMEOUT,    default=15s"`
}

type SessionConfig struct {
	Backend  string `env:"SESSION_BACKEND,  default=file"`
	FilePath string `env:"SESSION_FILE"`
	FileKey  string `env:"SESSION_FILE_KEY"`
	Key      string `env:"SESSION_KEY,      default=kiosk"`
}

// WorkflowConfig holds the timing knobs of the attendance workflow.
type WorkflowConfig struct {
	LocationTimeout   time.Duration `env:"LOCATION_TIMEOUT,     default=10s"`
	LocationMaxAge    time.Duration `env:"LOCATION_MAX_AGE,     default=5m"`
	HighAccuracy      bool          `env:"LOCATION_HIGH_ACCURACY, default=true"`
	AutoLocate        bool          `env:"AUTO_LOCATE,          default=false"`
	CameraFailureHold time.Duration `env:"CAMERA_FAILURE_HOLD,  default=2s"`
	ScanRejectHold    time.Duration `env:"SCAN_REJECT_HOLD,     default=3s"`
	NoticeTTL         time.Duration `env:"NOTICE_TTL,           default=5s"`
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=attendance_kiosk"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=5s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
	// Timeout bounds dialling and each command.
	Timeout time.Duration `env:"REDIS_TIMEOUT, default=2s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from the given lookuper and validates it.
func LoadWith(l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Session.Backend {
	case BackendFile, BackendRedis, BackendMongo:
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend)
	}
	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL must not be empty")
	}
	if c.Workflow.LocationTimeout <= 0 {
		return fmt.Errorf("LOCATION_TIMEOUT must be positive")
	}
	return nil
}
