package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// MinJWTSecretLength is the key size HS512 needs.
const MinJWTSecretLength = 64

type Config struct {
	Port     string
	MongoURI string
	DBName   string

	S3Bucket      string
	S3Region      string
	S3AccessKeyID string
	S3SecretKey   string
	S3Endpoint    string
	S3PathStyle   bool

	JWTSecret        string
	JWTTTL           time.Duration
	MaxUploadMB      int64
	PresignTTL       time.Duration
	OwnerOnlySharing bool

	CORSAllowedOrigins []string
	AuthRateLimit      int

	LogLevel  string
	LogFormat string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// Load reads the configuration from the environment. Malformed numbers and
// durations are errors; unset values fall back to defaults.
func Load() (*Config, error) {
	c := &Config{
		Port:          getEnv("PORT", "8080"),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:        getEnv("MONGODB_DB", "docshare"),
		S3Bucket:      getEnv("AWS_S3_BUCKET", ""),
		S3Region:      getEnv("AWS_REGION", "us-east-1"),
		S3AccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		S3Endpoint:    getEnv("AWS_S3_ENDPOINT", ""),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:      getEnv("SMTP_FROM", ""),
		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}

	var err error
	if c.S3PathStyle, err = getBool("AWS_S3_PATH_STYLE", false); err != nil {
		return nil, err
	}
	if c.OwnerOnlySharing, err = getBool("OWNER_ONLY_SHARING", true); err != nil {
		return nil, err
	}
	if c.JWTTTL, err = getDuration("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if c.PresignTTL, err = getDuration("PRESIGN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	maxMB, err := getInt("MAX_UPLOAD_MB", 25)
	if err != nil {
		return nil, err
	}
	c.MaxUploadMB = int64(maxMB)
	if c.AuthRateLimit, err = getInt("AUTH_RATE_LIMIT", 20); err != nil {
		return nil, err
	}
	if c.SMTPPort, err = getInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if c.SMTPFrom == "" {
		c.SMTPFrom = c.SMTPUser
	}
	for _, o := range strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			c.CORSAllowedOrigins = append(c.CORSAllowedOrigins, o)
		}
	}
	return c, nil
}

// MaxUploadBytes is the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// MailEnabled reports whether share notifications are sent.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	var problems []string
	if c.S3Bucket == "" {
		problems = append(problems, "AWS_S3_BUCKET is required")
	}
	if len(c.JWTSecret) < MinJWTSecretLength {
		problems = append(problems, fmt.Sprintf("JWT_SECRET must be at least %d bytes (generate with: openssl rand -base64 64)", MinJWTSecretLength))
	}
	if c.JWTTTL <= 0 {
		problems = append(problems, "JWT_TTL must be positive")
	}
	if c.PresignTTL <= 0 || c.PresignTTL > 7*24*time.Hour {
		problems = append(problems, "PRESIGN_TTL must be between 1s and 168h")
	}
	if c.MaxUploadMB <= 0 {
		problems = append(problems, "MAX_UPLOAD_MB must be positive")
	}
	if c.AuthRateLimit <= 0 {
		problems = append(problems, "AUTH_RATE_LIMIT must be positive")
	}
	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		problems = append(problems, "ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// secretEnvVars are reported as loaded without their value.
var secretEnvVars = map[string]bool{
	"JWT_SECRET":            true,
	"AWS_ACCESS_KEY_ID":     true,
	"AWS_SECRET_ACCESS_KEY": true,
	"SMTP_PASSWORD":         true,
	"ADMIN_PASSWORD":        true,
}

// LoggedEnvVars are reported at startup so you can confirm they are loaded when set.
var LoggedEnvVars = []string{
	"PORT", "MONGODB_URI", "MONGODB_DB",
	"AWS_S3_BUCKET", "AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_S3_ENDPOINT",
	"JWT_SECRET", "JWT_TTL", "MAX_UPLOAD_MB", "PRESIGN_TTL", "OWNER_ONLY_SHARING",
	"SMTP_HOST", "SMTP_PASSWORD", "ADMIN_USERNAME", "ADMIN_PASSWORD",
}

// LogEnv reports which variables are set. Secret values are never logged.
func LogEnv(log zerolog.Logger) {
	for _, key := range LoggedEnvVars {
		v := strings.TrimSpace(os.Getenv(key))
		switch {
		case v == "":
			log.Debug().Str("env", key).Msg("not set, using default")
		case secretEnvVars[key]:
			log.Info().Str("env", key).Msg("loaded")
		default:
			log.Info().Str("env", key).Str("value", v).Msg("loaded")
		}
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
