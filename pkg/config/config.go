package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"brandPulse/domain"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Engine   EngineDefaults
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	SecretKey string
}

// EngineDefaults are the process-wide fallbacks for every per-tenant
// knob. Tenants override them through the engine config repository.
type EngineDefaults struct {
	Strategy string
	Epsilon  float64

	Weights domain.ScoringWeights

	LowStockThreshold  int
	HighStockThreshold int
	LowStockPenalty    float64
	HighStockBonus     float64
	PromotedBonus      float64

	NewUserDoseCeiling float64

	AnomalyThreshold     float64
	EWMAAlpha            float64
	MinAnomalyHistory    int
	MinExperimentSamples int

	// Maturity thresholds and the blend ratio per stage.
	WarmingThreshold int64
	LearnedThreshold int64
	MatureThreshold  int64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "BrandPulse Decision Engine"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "brandpulse"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Engine: EngineDefaults{
			Strategy: getEnv("ENGINE_STRATEGY", domain.StrategyThompson),
			Epsilon:  getEnvFloat("ENGINE_EPSILON", 0.1),
			Weights: domain.ScoringWeights{
				EffectMatch:   getEnvFloat("ENGINE_W_EFFECT", 0.3),
				ProfileMatch:  getEnvFloat("ENGINE_W_PROFILE", 0.25),
				BusinessScore: getEnvFloat("ENGINE_W_BUSINESS", 0.25),
				RiskPenalty:   getEnvFloat("ENGINE_W_RISK", 0.2),
			},
			LowStockThreshold:    getEnvInt("ENGINE_LOW_STOCK_THRESHOLD", 5),
			HighStockThreshold:   getEnvInt("ENGINE_HIGH_STOCK_THRESHOLD", 50),
			LowStockPenalty:      getEnvFloat("ENGINE_LOW_STOCK_PENALTY", 0.15),
			HighStockBonus:       getEnvFloat("ENGINE_HIGH_STOCK_BONUS", 0.1),
			PromotedBonus:        getEnvFloat("ENGINE_PROMOTED_BONUS", 0.15),
			NewUserDoseCeiling:   getEnvFloat("ENGINE_NEW_USER_DOSE_CEILING", 20),
			AnomalyThreshold:     getEnvFloat("ENGINE_ANOMALY_THRESHOLD", 25),
			EWMAAlpha:            getEnvFloat("ENGINE_EWMA_ALPHA", 0.3),
			MinAnomalyHistory:    getEnvInt("ENGINE_MIN_ANOMALY_HISTORY", 5),
			MinExperimentSamples: getEnvInt("ENGINE_MIN_EXPERIMENT_SAMPLES", 100),
			WarmingThreshold:     int64(getEnvInt("ENGINE_WARMING_THRESHOLD", 50)),
			LearnedThreshold:     int64(getEnvInt("ENGINE_LEARNED_THRESHOLD", 500)),
			MatureThreshold:      int64(getEnvInt("ENGINE_MATURE_THRESHOLD", 5000)),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}

	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}

	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}

	return defaultVal
}
