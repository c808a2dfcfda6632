package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/boxlax/fantasy-core/internal/domain/fantasy"
	"github.com/boxlax/fantasy-core/internal/platform/logging"
	"github.com/boxlax/fantasy-core/internal/platform/resilience"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	LogLevel       logging.Level

	DBURL string

	CacheEnabled bool

	// RosterUnlockBuffer is added to the last game start to derive a week's
	// unlock time when no explicit window is configured.
	RosterUnlockBuffer time.Duration
	DrawBonusPolicy    fantasy.DrawPolicy

	ProviderBaseURL    string
	ProviderToken      string
	ProviderTimeout    time.Duration
	ProviderMaxRetries int
	ProviderCircuit    resilience.CircuitBreakerConfig

	SyncFetchTimeout time.Duration
	SyncWorkerCount  int

	InternalJobToken string

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration

	CORSAllowedOrigins []string
}

func Load() (Config, error) {
	var cfg Config

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}
	cfg.AppEnv = appEnv
	cfg.ServiceName = getEnv("SERVICE_NAME", "fantasy-core")
	cfg.ServiceVersion = getEnv("SERVICE_VERSION", "dev")
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.DBURL = strings.TrimSpace(getEnv("DB_URL", ""))
	cfg.LogLevel = parseLogLevel(getEnv("APP_LOG_LEVEL", "info"))
	cfg.InternalJobToken = strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", ""))
	cfg.CORSAllowedOrigins = splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*"))

	cfg.ReadTimeout, err = getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.WriteTimeout, err = getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, err
	}

	cfg.CacheEnabled, err = getEnvAsBool("CACHE_ENABLED", true)
	if err != nil {
		return Config{}, err
	}

	cfg.RosterUnlockBuffer, err = getEnvAsDuration("ROSTER_UNLOCK_BUFFER", 3*time.Hour)
	if err != nil {
		return Config{}, err
	}
	if cfg.RosterUnlockBuffer <= 0 {
		return Config{}, fmt.Errorf("ROSTER_UNLOCK_BUFFER must be > 0")
	}

	cfg.DrawBonusPolicy, err = fantasy.ParseDrawPolicy(getEnv("DRAW_BONUS_POLICY", "none"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DRAW_BONUS_POLICY: %w", err)
	}

	cfg.ProviderBaseURL = strings.TrimSpace(getEnv("PROVIDER_BASE_URL", ""))
	cfg.ProviderToken = strings.TrimSpace(getEnv("PROVIDER_TOKEN", ""))
	cfg.ProviderTimeout, err = getEnvAsDuration("PROVIDER_TIMEOUT", 20*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.ProviderMaxRetries, err = getEnvAsInt("PROVIDER_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_MAX_RETRIES: %w", err)
	}
	if cfg.ProviderMaxRetries < 0 {
		return Config{}, fmt.Errorf("PROVIDER_MAX_RETRIES must be >= 0")
	}

	circuitEnabled, err := getEnvAsBool("PROVIDER_CIRCUIT_ENABLED", true)
	if err != nil {
		return Config{}, err
	}
	circuitFailures, err := getEnvAsInt("PROVIDER_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	circuitOpenTimeout, err := getEnvAsDuration("PROVIDER_CIRCUIT_OPEN_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, err
	}
	circuitHalfOpenMaxReq, err := getEnvAsInt("PROVIDER_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	cfg.ProviderCircuit = resilience.CircuitBreakerConfig{
		Enabled:          circuitEnabled,
		FailureThreshold: circuitFailures,
		OpenTimeout:      circuitOpenTimeout,
		HalfOpenMaxReq:   circuitHalfOpenMaxReq,
	}

	cfg.SyncFetchTimeout, err = getEnvAsDuration("SYNC_FETCH_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.SyncWorkerCount, err = getEnvAsInt("SYNC_WORKER_COUNT", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_WORKER_COUNT: %w", err)
	}
	if cfg.SyncWorkerCount < 1 {
		return Config{}, fmt.Errorf("SYNC_WORKER_COUNT must be >= 1")
	}

	cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", false)
	if err != nil {
		return Config{}, err
	}
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false)
	if err != nil {
		return Config{}, err
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", false)
	if err != nil {
		return Config{}, err
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName)
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeUploadRate, err = getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", 15*time.Second)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	return strconv.Atoi(value)
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	out, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	out, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
