package config

import (
	"log"
	"strings"
	"time"

	"github.com/SscSPs/access_exchange/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// LedgerPolicy holds the tax parameters injected into the ledger and tax services.
type LedgerPolicy struct {
	DailyTaxTicks               int64
	MaxUserMultiplier           decimal.Decimal
	VelocityTaxEnabled          bool
	VelocityTaxThresholdTicks   int64
	VelocityTaxRate             decimal.Decimal
	VelocityTaxExemptEntryTypes []domain.EntryType
}

// ExchangePolicy holds the matching engine parameters.
type ExchangePolicy struct {
	MaxFillsPerDrain int
}

// RewardPolicy holds issuance parameters.
type RewardPolicy struct {
	SignupBonusTicks        int64
	LessonRewardMaxAN       decimal.Decimal
	LessonRewardHalfMinutes decimal.Decimal
	CurriculumBonusRate     decimal.Decimal
}

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	Port               string
	IsProduction       bool
	EnableDBCheck      bool
	JWTSecret          string
	LockTimeout        time.Duration
	KafkaBrokers       []string
	PosthogAPIKey      string
	PosthogEndpoint    string
	RateLimit          string
	CORSAllowedOrigins []string
	DaemonInterval     time.Duration

	Ledger   LedgerPolicy
	Exchange ExchangePolicy
	Rewards  RewardPolicy
}

// DefaultLedgerPolicy returns the production tax schedule: 1 AN daily, 50% above 100 AN spent per UTC day.
func DefaultLedgerPolicy() LedgerPolicy {
	return LedgerPolicy{
		DailyTaxTicks:               1 * domain.CurrencyScale,
		MaxUserMultiplier:           decimal.NewFromInt(10),
		VelocityTaxEnabled:          true,
		VelocityTaxThresholdTicks:   100 * domain.CurrencyScale,
		VelocityTaxRate:             decimal.RequireFromString("0.50"),
		VelocityTaxExemptEntryTypes: []domain.EntryType{domain.EntryTypeEscrow},
	}
}

// DefaultExchangePolicy returns the default matching bound.
func DefaultExchangePolicy() ExchangePolicy {
	return ExchangePolicy{MaxFillsPerDrain: 50}
}

// DefaultRewardPolicy returns the default issuance parameters.
func DefaultRewardPolicy() RewardPolicy {
	return RewardPolicy{
		SignupBonusTicks:        10 * domain.CurrencyScale,
		LessonRewardMaxAN:       decimal.NewFromInt(10),
		LessonRewardHalfMinutes: decimal.NewFromInt(15),
		CurriculumBonusRate:     decimal.RequireFromString("0.10"),
	}
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	ledgerDefaults := DefaultLedgerPolicy()
	exchangeDefaults := DefaultExchangePolicy()
	rewardDefaults := DefaultRewardPolicy()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("LOCK_TIMEOUT", "5s")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("DAEMON_INTERVAL", "60s")
	viper.SetDefault("DAILY_TAX_TICKS", ledgerDefaults.DailyTaxTicks)
	viper.SetDefault("MAX_USER_MULTIPLIER", ledgerDefaults.MaxUserMultiplier.String())
	viper.SetDefault("VELOCITY_TAX_ENABLED", ledgerDefaults.VelocityTaxEnabled)
	viper.SetDefault("VELOCITY_TAX_THRESHOLD_TICKS", ledgerDefaults.VelocityTaxThresholdTicks)
	viper.SetDefault("VELOCITY_TAX_RATE", ledgerDefaults.VelocityTaxRate.String())
	viper.SetDefault("VELOCITY_TAX_EXEMPT_ENTRY_TYPES", string(domain.EntryTypeEscrow))
	viper.SetDefault("MAX_FILLS_PER_DRAIN", exchangeDefaults.MaxFillsPerDrain)
	viper.SetDefault("SIGNUP_BONUS_TICKS", rewardDefaults.SignupBonusTicks)
	viper.SetDefault("LESSON_REWARD_MAX_AN", rewardDefaults.LessonRewardMaxAN.String())
	viper.SetDefault("LESSON_REWARD_HALF_MINUTES", rewardDefaults.LessonRewardHalfMinutes.String())
	viper.SetDefault("CURRICULUM_BONUS_RATE", rewardDefaults.CurriculumBonusRate.String())

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.LockTimeout = durationOr("LOCK_TIMEOUT", 5*time.Second)
	cfg.DaemonInterval = durationOr("DAEMON_INTERVAL", time.Minute)
	cfg.KafkaBrokers = splitList(viper.GetString("KAFKA_BROKERS"))
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = viper.GetString("POSTHOG_ENDPOINT")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))

	cfg.Ledger = LedgerPolicy{
		DailyTaxTicks:             viper.GetInt64("DAILY_TAX_TICKS"),
		MaxUserMultiplier:         decimalOr("MAX_USER_MULTIPLIER", ledgerDefaults.MaxUserMultiplier),
		VelocityTaxEnabled:        viper.GetBool("VELOCITY_TAX_ENABLED"),
		VelocityTaxThresholdTicks: viper.GetInt64("VELOCITY_TAX_THRESHOLD_TICKS"),
		VelocityTaxRate:           decimalOr("VELOCITY_TAX_RATE", ledgerDefaults.VelocityTaxRate),
	}
	for _, t := range splitList(viper.GetString("VELOCITY_TAX_EXEMPT_ENTRY_TYPES")) {
		cfg.Ledger.VelocityTaxExemptEntryTypes = append(cfg.Ledger.VelocityTaxExemptEntryTypes, domain.EntryType(t))
	}

	cfg.Exchange = ExchangePolicy{MaxFillsPerDrain: viper.GetInt("MAX_FILLS_PER_DRAIN")}
	if cfg.Exchange.MaxFillsPerDrain <= 0 {
		log.Printf("Warning: MAX_FILLS_PER_DRAIN must be positive. Defaulting to %d.\n", exchangeDefaults.MaxFillsPerDrain)
		cfg.Exchange.MaxFillsPerDrain = exchangeDefaults.MaxFillsPerDrain
	}

	cfg.Rewards = RewardPolicy{
		SignupBonusTicks:        viper.GetInt64("SIGNUP_BONUS_TICKS"),
		LessonRewardMaxAN:       decimalOr("LESSON_REWARD_MAX_AN", rewardDefaults.LessonRewardMaxAN),
		LessonRewardHalfMinutes: decimalOr("LESSON_REWARD_HALF_MINUTES", rewardDefaults.LessonRewardHalfMinutes),
		CurriculumBonusRate:     decimalOr("CURRICULUM_BONUS_RATE", rewardDefaults.CurriculumBonusRate),
	}

	return cfg, nil
}

func durationOr(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}

func decimalOr(key string, def decimal.Decimal) decimal.Decimal {
	raw := viper.GetString(key)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
