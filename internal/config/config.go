package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr  string
	JWTSecret string

	// storage
	StoreBackend string // sqlite | mysql | redis
	DBDSN        string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// AI provider
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string

	MockMinDelay time.Duration
	MockMaxDelay time.Duration

	PaymentDelay time.Duration
}

func Load() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	backend := os.Getenv("STORE_BACKEND")
	if backend == "" {
		backend = "sqlite"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("API_KEY")
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return Config{
		HTTPAddr:  addr,
		JWTSecret: secret,

		StoreBackend: backend,
		DBDSN:        os.Getenv("DB_DSN"),

		RedisAddr:     redisAddr,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		GeminiAPIKey:  apiKey,
		GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),
		GeminiModel:   model,

		MockMinDelay: durationEnv("MOCK_MIN_DELAY", 500*time.Millisecond),
		MockMaxDelay: durationEnv("MOCK_MAX_DELAY", 2*time.Second),

		PaymentDelay: durationEnv("PAYMENT_DELAY", 2*time.Second),
	}
}

func durationEnv(name string, def time.Duration) time.Duration {
	if v := os.Getenv(name); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
