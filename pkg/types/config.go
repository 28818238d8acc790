package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Token signing
	TokenSecret string `envconfig:"TOKEN_SECRET"`
	TokenTTLHrs uint   `envconfig:"TOKEN_TTL_HOURS" default:"24"`

	// Image storage (S3)
	ImageBucket  string `envconfig:"IMAGE_BUCKET"`
	ImageBaseURL string `envconfig:"IMAGE_BASE_URL"`

	// Comma separated list of origins allowed to call the API
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:3001"`
}

// Development reports whether detailed error messages may be surfaced to
// clients.
func (c *Config) Development() bool {
	return c.Environment == "development"
}
