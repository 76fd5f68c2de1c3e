package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Model    ModelConfig
	Provider ProviderConfig
	Calendar CalendarConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type CORSConfig struct {
	AllowedOrigins string
}

type ModelConfig struct {
	ArtifactPath string
	CorpusSize   int
	TreeCount    int
	SplitSeed    int64
}

type ProviderConfig struct {
	BaseURL string
	Timeout time.Duration
}

type CalendarConfig struct {
	// HolidayDates holds ISO dates (2006-01-02) treated as travel holidays.
	// Empty means no date is ever a holiday.
	HolidayDates []string
}

func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func LoadConfig() (*Config, error) {
	serverPort, err := getIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := getIntEnv("DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	redisPort, err := getIntEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}

	redisDB, err := getIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	jwtExpiry, err := getIntEnv("JWT_EXPIRY_HOURS", 24)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY_HOURS: %w", err)
	}

	corpusSize, err := getIntEnv("MODEL_CORPUS_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("invalid MODEL_CORPUS_SIZE: %w", err)
	}

	treeCount, err := getIntEnv("MODEL_TREE_COUNT", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid MODEL_TREE_COUNT: %w", err)
	}

	splitSeed, err := getIntEnv("MODEL_SPLIT_SEED", 42)
	if err != nil {
		return nil, fmt.Errorf("invalid MODEL_SPLIT_SEED: %w", err)
	}

	providerTimeout, err := getIntEnv("PROVIDER_TIMEOUT_SEC", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_TIMEOUT_SEC: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: serverPort,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "railwl"),
			Password: getEnv("DB_PASSWORD", "railwl_dev_password"),
			Name:     getEnv("DB_NAME", "railwl"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     redisPort,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "railwl_dev_secret"),
			ExpiryHours: jwtExpiry,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Model: ModelConfig{
			ArtifactPath: getEnv("MODEL_ARTIFACT_PATH", "wl_model.json"),
			CorpusSize:   corpusSize,
			TreeCount:    treeCount,
			SplitSeed:    int64(splitSeed),
		},
		Provider: ProviderConfig{
			BaseURL: getEnv("PROVIDER_BASE_URL", "https://erail.in/train-enquiry"),
			Timeout: time.Duration(providerTimeout) * time.Second,
		},
		Calendar: CalendarConfig{
			HolidayDates: getListEnv("HOLIDAY_DATES"),
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
