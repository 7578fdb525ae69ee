package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

// Storage backends accepted by storage.backend.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

type TLSListener struct {
	Port      string `mapstructure:"port"`
	CertFile  string `mapstructure:"certFile"`
	KeyFile   string `mapstructure:"keyFile"`
	EnableTLS bool   `mapstructure:"enableTLS"`
}

type Provider struct {
	BaseURL     string        `mapstructure:"baseURL"`
	Host        string        `mapstructure:"host"`
	APIKey      string        `mapstructure:"apiKey"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"maxAttempts"`
	RatePerSec  float64       `mapstructure:"ratePerSecond"`
	Burst       int           `mapstructure:"burst"`
}

type Gemini struct {
	APIKey      string  `mapstructure:"apiKey"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
}

type Config struct {
	Mode     string `mapstructure:"mode"`
	Dotenv   string `mapstructure:"dotenv"`
	Handlers struct {
		ExternalAPI TLSListener `mapstructure:"externalAPI"`
		Prometheus  TLSListener `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
		Redis struct {
			Addr     string `mapstructure:"addr"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"repositories"`
	Storage struct {
		Backend string `mapstructure:"backend"`
	} `mapstructure:"storage"`
	Server struct {
		HTTPPort       string        `mapstructure:"HTTPPort"`
		Timeout        time.Duration `mapstructure:"HTTPTimeout"`
		AllowedOrigins []string      `mapstructure:"allowedOrigins"`
	} `mapstructure:"server"`
	Planner struct {
		MaxTripDays          int     `mapstructure:"maxTripDays"`
		RecommendedMaxBudget float64 `mapstructure:"recommendedMaxBudget"`
		CityName             string  `mapstructure:"cityName"`
		CityLat              float64 `mapstructure:"cityLat"`
		CityLng              float64 `mapstructure:"cityLng"`
		SearchRadiusMeters   int     `mapstructure:"searchRadiusMeters"`
		ForecastDays         int     `mapstructure:"forecastDays"`
		TimeZone             string  `mapstructure:"timeZone"`
	} `mapstructure:"planner"`
	Routing struct {
		LegTimeout        time.Duration `mapstructure:"legTimeout"`
		MaxConcurrentLegs int           `mapstructure:"maxConcurrentLegs"`
		TravelMode        string        `mapstructure:"travelMode"`
		CacheTTL          time.Duration `mapstructure:"cacheTTL"`
	} `mapstructure:"routing"`
	Providers struct {
		Maps    Provider `mapstructure:"maps"`
		Weather Provider `mapstructure:"weather"`
		Booking Provider `mapstructure:"booking"`
		Lazada  Provider `mapstructure:"lazada"`
		Gemini  Gemini   `mapstructure:"gemini"`
	} `mapstructure:"providers"`
	Session struct {
		Secret string        `mapstructure:"secret"`
		TTL    time.Duration `mapstructure:"ttl"`
		Issuer string        `mapstructure:"issuer"`
	} `mapstructure:"session"`
	RateLimit struct {
		RequestsPerMinute int `mapstructure:"requestsPerMinute"`
	} `mapstructure:"rateLimit"`
}

// secretEnv maps config keys to the environment variables that carry them.
// Secrets never live in config.yml.
var secretEnv = map[string]string{
	"providers.maps.apiKey":          "GOOGLE_MAPS_API_KEY",
	"providers.gemini.apiKey":        "GOOGLE_GEMINI_API_KEY",
	"providers.weather.apiKey":       "RAPIDAPI_KEY",
	"providers.booking.apiKey":       "RAPIDAPI_KEY",
	"providers.lazada.apiKey":        "RAPIDAPI_KEY",
	"session.secret":                 "SESSION_JWT_SECRET",
	"repositories.postgres.password": "POSTGRES_PASSWORD",
	"repositories.redis.password":    "REDIS_PASSWORD",
	"storage.backend":                "STORAGE_BACKEND",
	"mode":                           "APP_ENV",
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")
	v.AddConfigPath("/usr/local/bin")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range secretEnv {
		if err = v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	if err = config.validate(); err != nil {
		return Config{}, err
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

func (c Config) validate() error {
	switch c.Storage.Backend {
	case BackendPostgres, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Planner.MaxTripDays <= 0 {
		return fmt.Errorf("planner.maxTripDays must be positive")
	}
	if c.Routing.MaxConcurrentLegs <= 0 {
		return fmt.Errorf("routing.maxConcurrentLegs must be positive")
	}
	return nil
}

// IsDevelopment reports whether the process runs with developer defaults.
func (c Config) IsDevelopment() bool {
	return c.Mode == "" || c.Mode == "development" || c.Mode == "dev"
}
