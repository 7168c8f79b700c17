// Package config loads all service configuration once at startup into an
// immutable value. Components never read environment variables directly; main
// builds a Config and passes the pieces down.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// BucketLimit configures one rate limit bucket: how many attempts fit in a
// sliding window, and how long a tripped key stays blocked.
type BucketLimit struct {
	TTL      time.Duration
	Limit    int
	BlockTTL time.Duration
}

// Config is the full service configuration. Built once by FromEnv and treated
// as read-only afterwards.
type Config struct {
	Addr string

	RedisURL    string
	PostgresDSN string

	KafkaBrokers []string
	AuditTopic   string

	// Pepper salts every identifier, phone number and cache key hash.
	Pepper string

	// Posture flags alter which operations flows permit.
	ExternalMatcher     bool
	QualityCheckEnabled bool
	JITWalletEnabled    bool
	SMSEnabled          bool

	// TokenAlgorithm is the single signature algorithm accepted by the token
	// verification flow.
	TokenAlgorithm string

	MatcherURL     string
	KeyProviderURL string
	SMSGatewayURL  string
	OnboardingURL  string

	SendOTPLimit   BucketLimit
	VerifyOTPLimit BucketLimit

	UpstreamTimeout time.Duration
	UpstreamRetries int
}

// FromEnv builds a Config from environment variables. It fails fast on
// missing required values so misconfiguration surfaces at boot, not at first
// use.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:                envOr("CUSTODIA_ADDR", ":8080"),
		RedisURL:            os.Getenv("CUSTODIA_REDIS_URL"),
		PostgresDSN:         os.Getenv("CUSTODIA_POSTGRES_DSN"),
		AuditTopic:          envOr("CUSTODIA_AUDIT_TOPIC", "custodia.verification.audit"),
		Pepper:              os.Getenv("CUSTODIA_HASH_PEPPER"),
		ExternalMatcher:     envBool("CUSTODIA_EXTERNAL_MATCHER"),
		QualityCheckEnabled: envBool("CUSTODIA_QUALITY_CHECK_ENABLED"),
		JITWalletEnabled:    envBool("CUSTODIA_JIT_WALLET_ENABLED"),
		SMSEnabled:          envBool("CUSTODIA_SMS_ENABLED"),
		TokenAlgorithm:      envOr("CUSTODIA_TOKEN_ALGORITHM", "RS256"),
		MatcherURL:          os.Getenv("CUSTODIA_MATCHER_URL"),
		KeyProviderURL:      os.Getenv("CUSTODIA_KEY_PROVIDER_URL"),
		SMSGatewayURL:       os.Getenv("CUSTODIA_SMS_GATEWAY_URL"),
		OnboardingURL:       os.Getenv("CUSTODIA_ONBOARDING_URL"),
		UpstreamTimeout:     envDuration("CUSTODIA_UPSTREAM_TIMEOUT", 10*time.Second),
		UpstreamRetries:     envInt("CUSTODIA_UPSTREAM_RETRIES", 2),
	}

	if brokers := os.Getenv("CUSTODIA_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	cfg.SendOTPLimit = BucketLimit{
		TTL:      envDuration("CUSTODIA_SEND_OTP_TTL", time.Minute),
		Limit:    envInt("CUSTODIA_SEND_OTP_LIMIT", 3),
		BlockTTL: envDuration("CUSTODIA_SEND_OTP_BLOCK_TTL", 5*time.Minute),
	}
	cfg.VerifyOTPLimit = BucketLimit{
		TTL:      envDuration("CUSTODIA_VERIFY_OTP_TTL", time.Minute),
		Limit:    envInt("CUSTODIA_VERIFY_OTP_LIMIT", 5),
		BlockTTL: envDuration("CUSTODIA_VERIFY_OTP_BLOCK_TTL", 5*time.Minute),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Pepper == "" {
		return fmt.Errorf("CUSTODIA_HASH_PEPPER is required")
	}
	for name, b := range map[string]BucketLimit{
		"SEND_OTP":   c.SendOTPLimit,
		"VERIFY_OTP": c.VerifyOTPLimit,
	} {
		if b.TTL <= 0 || b.Limit <= 0 || b.BlockTTL <= 0 {
			return fmt.Errorf("rate limit bucket %s: ttl, limit and block ttl must be positive", name)
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	return os.Getenv(key) == "true"
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
