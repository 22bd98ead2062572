package config

import (
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Remote lead sink selections.
const (
	RemoteSinkAuto     = "auto"
	RemoteSinkPostgres = "postgres"
	RemoteSinkDynamoDB = "dynamodb"
	RemoteSinkNone     = "none"
)

// Config holds application configuration
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string
	Timezone  string

	DatabaseURL       string
	RemoteLeadSink    string
	RemoteSinkTimeout time.Duration
	LeadsDynamoTable  string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	SessionTTL    time.Duration

	HandoffPath            string
	ContactSuccessRedirect string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SendGridSandbox   bool
	SESFromEmail      string
	SESConfigSet      string
	OfficeEmail       string

	AdminJWTSecret     string
	CORSAllowedOrigins []string
	LeadRatePerSecond  float64
	LeadRateBurst      int
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		Timezone:  getEnv("TIMEZONE", "Europe/Berlin"),

		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RemoteLeadSink:    strings.ToLower(strings.TrimSpace(getEnv("REMOTE_LEAD_SINK", RemoteSinkAuto))),
		RemoteSinkTimeout: getEnvAsDuration("REMOTE_SINK_TIMEOUT", 5*time.Second),
		LeadsDynamoTable:  getEnv("LEADS_DYNAMO_TABLE", ""),

		AWSRegion:           getEnv("AWS_REGION", "eu-central-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 24*time.Hour),

		HandoffPath:            getEnv("HANDOFF_PATH", "/contact"),
		ContactSuccessRedirect: getEnv("CONTACT_SUCCESS_REDIRECT", "/contact?sent=1"),

		// SendGrid Email Configuration
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Hausservice Terminbuchung"),
		SendGridSandbox:   getEnvAsBool("SENDGRID_SANDBOX", false),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESConfigSet:      getEnv("SES_CONFIGURATION_SET", ""),
		OfficeEmail:       getEnv("OFFICE_EMAIL", ""),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		LeadRatePerSecond:  getEnvAsFloat("LEAD_RATE_PER_SECOND", 0.2),
		LeadRateBurst:      getEnvAsInt("LEAD_RATE_BURST", 5),
	}
}

// IsProduction reports whether secure cookies and strict settings apply.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping empty entries.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
