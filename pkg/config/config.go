package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Admin     AdminConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Sync      SyncConfig
	Exports   ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// AdminConfig holds the bcrypt hash guarding the admin token endpoint. Empty disables admin login.
type AdminConfig struct {
	PasswordHash string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig tunes the assignment engine and undo history.
type SchedulerConfig struct {
	HistoryDepth            int
	GeneralistClassType     string
	SpecialistBonus         bool
	LoadRatioTolerance      float64
	SeedTemplateOnEmptyBoot bool
}

// SyncConfig controls persistence of the schedule state.
type SyncConfig struct {
	Enabled       bool
	Debounce      time.Duration
	StateID       string
	BackupDir     string
	CacheTTL      time.Duration
	WorkerRetries int
	// SnapshotRetention bounds how long dated state backups are kept.
	SnapshotRetention time.Duration
}

// ExportsConfig gates the CSV/PDF schedule export endpoint.
type ExportsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
	}

	cfg.Admin = AdminConfig{PasswordHash: v.GetString("ADMIN_PASSWORD_HASH")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		HistoryDepth:            v.GetInt("SCHEDULER_HISTORY_DEPTH"),
		GeneralistClassType:     v.GetString("SCHEDULER_GENERALIST_CLASS_TYPE"),
		SpecialistBonus:         v.GetBool("SCHEDULER_SPECIALIST_BONUS"),
		LoadRatioTolerance:      v.GetFloat64("SCHEDULER_LOAD_RATIO_TOLERANCE"),
		SeedTemplateOnEmptyBoot: v.GetBool("SCHEDULER_SEED_ON_BOOT"),
	}

	cfg.Sync = SyncConfig{
		Enabled:       v.GetBool("ENABLE_SYNC"),
		Debounce:      parseDuration(v.GetString("SYNC_DEBOUNCE"), time.Second),
		StateID:       v.GetString("SYNC_STATE_ID"),
		BackupDir:     v.GetString("SYNC_BACKUP_DIR"),
		CacheTTL:      parseDuration(v.GetString("SYNC_CACHE_TTL"), 24*time.Hour),
		WorkerRetries: v.GetInt("SYNC_WORKER_RETRIES"),

		SnapshotRetention: parseDuration(v.GetString("SYNC_SNAPSHOT_RETENTION"), 7*24*time.Hour),
	}

	cfg.Exports = ExportsConfig{Enabled: v.GetBool("ENABLE_EXPORTS")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "tempo_schedule")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_HISTORY_DEPTH", 10)
	v.SetDefault("SCHEDULER_GENERALIST_CLASS_TYPE", "Lagree")
	v.SetDefault("SCHEDULER_SPECIALIST_BONUS", true)
	v.SetDefault("SCHEDULER_LOAD_RATIO_TOLERANCE", 0.1)
	v.SetDefault("SCHEDULER_SEED_ON_BOOT", false)

	v.SetDefault("ENABLE_SYNC", true)
	v.SetDefault("SYNC_DEBOUNCE", "1s")
	v.SetDefault("SYNC_STATE_ID", "default")
	v.SetDefault("SYNC_BACKUP_DIR", "./state")
	v.SetDefault("SYNC_CACHE_TTL", "24h")
	v.SetDefault("SYNC_WORKER_RETRIES", 3)
	v.SetDefault("SYNC_SNAPSHOT_RETENTION", "168h")

	v.SetDefault("ENABLE_EXPORTS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
