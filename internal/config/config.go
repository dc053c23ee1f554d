package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// StaticDir is the absolute path to the directory served at /static/.
	// Set via STATIC_DIR (relative paths are resolved against the process working directory at startup).
	StaticDir string

	// CORSAllowedOrigins lists origins allowed by the CORS middleware; "*" allows any.
	CORSAllowedOrigins []string

	SQLiteDriver          string
	SQLiteDSN             string
	SQLitePath            string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration
	SQLiteLogSQL          bool

	// Location is the zone whose wall clock is written into reading timestamps.
	Location *time.Location

	VisitsFile string

	// RedisAddr non-empty stores visits in Redis instead of VisitsFile.
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisVisitsKey string

	ForecastThreshold   float64
	ChartMatchTolerance time.Duration
	ChartWindow         time.Duration
	HistoryLimit        int

	// MQTTBroker empty disables MQTT ingestion.
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	MQTTTopic    string

	// InfluxURL empty disables the InfluxDB mirror.
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string

	// KafkaBrokers empty disables the Kafka mirror.
	KafkaBrokers []string
	KafkaTopic   string
}

// LoadDotEnv loads variables from the given files (".env" when none) into the
// process environment without overriding variables that are already set.
// Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func LoadFromEnv() (Config, error) {
	appEnv := envString("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(envString("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	staticDir := envString("STATIC_DIR", "static")
	staticDir, err = filepath.Abs(staticDir)
	if err != nil {
		return Config{}, fmt.Errorf("STATIC_DIR %q: %w", staticDir, err)
	}

	origins := envList("CORS_ALLOWED_ORIGINS", "*")

	maxOpenConns, err := envInt("DB_MAX_OPEN_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := envInt("DB_MAX_IDLE_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := envDuration("DB_CONN_MAX_LIFETIME", 0)
	if err != nil {
		return Config{}, err
	}
	logSQL, err := envBool("DB_LOG_SQL", false)
	if err != nil {
		return Config{}, err
	}

	tzName := envString("APP_TIMEZONE", "Local")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return Config{}, fmt.Errorf("invalid APP_TIMEZONE %q: %w", tzName, err)
	}

	forecastThreshold, err := envFloat("FORECAST_THRESHOLD", 2.0)
	if err != nil {
		return Config{}, err
	}
	if forecastThreshold <= 0 {
		return Config{}, fmt.Errorf("FORECAST_THRESHOLD must be positive, got %v", forecastThreshold)
	}
	tolerance, err := envDuration("CHART_MATCH_TOLERANCE", 10*time.Minute)
	if err != nil {
		return Config{}, err
	}
	if tolerance <= 0 {
		return Config{}, fmt.Errorf("CHART_MATCH_TOLERANCE must be positive, got %v", tolerance)
	}
	window, err := envDuration("CHART_WINDOW", 2*time.Hour)
	if err != nil {
		return Config{}, err
	}
	if window <= 0 {
		return Config{}, fmt.Errorf("CHART_WINDOW must be positive, got %v", window)
	}
	historyLimit, err := envInt("HISTORY_LIMIT", 24)
	if err != nil {
		return Config{}, err
	}
	if historyLimit <= 0 {
		return Config{}, fmt.Errorf("HISTORY_LIMIT must be positive, got %d", historyLimit)
	}

	redisDB, err := envInt("REDIS_DB", 0)
	if err != nil {
		return Config{}, err
	}

	mqttPort, err := envInt("MQTT_PORT", 1883)
	if err != nil {
		return Config{}, err
	}
	mqttClientID := envString("MQTT_CLIENT_ID", "")
	if mqttClientID == "" {
		mqttClientID = "meteo-server-" + uuid.NewString()[:8]
	}

	return Config{
		AppEnv:                appEnv,
		LogLevel:              level,
		HTTPAddr:              envString("HTTP_ADDR", ":5000"),
		StaticDir:             staticDir,
		CORSAllowedOrigins:    origins,
		SQLiteDriver:          envString("DB_DRIVER", "sqlite3"),
		SQLiteDSN:             envString("DB_DSN", ""),
		SQLitePath:            envString("SQLITE_PATH", "data/meteo.db"),
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,
		SQLiteLogSQL:          logSQL,
		Location:              loc,
		VisitsFile:            envString("VISITS_FILE", "data/visits.txt"),
		RedisAddr:             envString("REDIS_ADDR", ""),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               redisDB,
		RedisVisitsKey:        envString("REDIS_VISITS_KEY", "meteo:visits"),
		ForecastThreshold:     forecastThreshold,
		ChartMatchTolerance:   tolerance,
		ChartWindow:           window,
		HistoryLimit:          historyLimit,
		MQTTBroker:            envString("MQTT_BROKER", ""),
		MQTTPort:              mqttPort,
		MQTTClientID:          mqttClientID,
		MQTTTopic:             envString("MQTT_TOPIC", "meteo/readings"),
		InfluxURL:             envString("INFLUX_URL", ""),
		InfluxToken:           envString("INFLUX_TOKEN", ""),
		InfluxOrg:             envString("INFLUX_ORG", ""),
		InfluxBucket:          envString("INFLUX_BUCKET", "meteo"),
		KafkaBrokers:          envList("KAFKA_BROKERS", ""),
		KafkaTopic:            envString("KAFKA_TOPIC", "meteo.readings"),
	}, nil
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// envList splits a comma-separated variable, dropping empty items.
func envList(key, def string) []string {
	var out []string
	for _, item := range strings.Split(envString(key, def), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envInt(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return f, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func envBool(key string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return b, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
