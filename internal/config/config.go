package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
)

type BackendConfig struct {
	URL      string        `env:"URL" envDefault:"http://localhost:8080/api"`
	Email    string        `env:"EMAIL"`
	Password string        `env:"PASSWORD"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type R2Config struct {
	AccountID       string `env:"CLOUDFLARE_ACCOUNT_ID"`
	AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"R2_ACCESS_KEY_SECRET"`
	Bucket          string `env:"R2_BUCKET_NAME"`
	CDNBaseURL      string `env:"CDN_BASE_URL"`
}

// Enabled reports whether enough credentials are present to talk to R2.
func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.AccessKeySecret != "" && c.Bucket != ""
}

// Config is the full process configuration, read once at startup.
type Config struct {
	Port        string   `env:"PORT" envDefault:"3333"`
	DatabaseURL string   `env:"DATABASE_URL,required,notEmpty"`
	RedisURL    string   `env:"REDIS_URL"`
	Origins     []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	ClerkSecretKey     string `env:"CLERK_SECRET_KEY,required,notEmpty"`
	ClerkWebhookSecret string `env:"CLERK_WEBHOOK_SECRET"`

	Backend BackendConfig `envPrefix:"NUSAKALA_BACKEND_"`
	R2      R2Config

	GeminiAPIKey       string `env:"GEMINI_API_KEY"`
	GeminiModel        string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	TranslateAPIKey    string `env:"GOOGLE_TRANSLATE_API_KEY"`
	BatikClassifierURL string `env:"BATIK_CLASSIFIER_URL" envDefault:"http://localhost:3001/api/predict/batik"`

	FCMServiceAccountJSON string `env:"FCM_SERVICE_ACCOUNT_JSON"`
	FCMCredentialsFile    string `env:"FCM_CREDENTIALS_FILE" envDefault:"./serviceAccountKey.json"`

	TriviaTimezone    string `env:"TRIVIA_TIMEZONE" envDefault:"Asia/Jakarta"`
	EventShareBaseURL string `env:"EVENT_SHARE_BASE_URL" envDefault:"https://nusakala.id"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Location resolves the timezone used for trivia day boundaries.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TriviaTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TRIVIA_TIMEZONE %q: %w", c.TriviaTimezone, err)
	}
	return loc, nil
}
