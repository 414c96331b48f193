package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port               string
	DBUrl              string
	JWTSecret          string
	AppEnv             string
	SupabaseURL        string
	SupabaseBucket     string
	SupabaseServiceKey string
	ResendAPIKey       string
	EmailFrom          string
	MidtransServerKey  string
	MidtransProduction bool
	CertificateSecret  string
	PublicBaseURL      string
	PDFRendererEnabled bool
	Policy             Policy
}

// Policy holds the scheduling and certification rules. Values can be
// overridden from a YAML file named by POLICY_FILE.
type Policy struct {
	SlotDuration          time.Duration `yaml:"slot_duration"`
	CancelLeadTime        time.Duration `yaml:"cancel_lead_time"`
	RescheduleLeadTime    time.Duration `yaml:"reschedule_lead_time"`
	MaxReschedules        int           `yaml:"max_reschedules"`
	EligibilityThreshold  float64       `yaml:"eligibility_threshold"`
	AllowFutureAttendance bool          `yaml:"allow_future_attendance"`
	Timezone              string        `yaml:"timezone"`
}

func DefaultPolicy() Policy {
	return Policy{
		SlotDuration:          2 * time.Hour,
		CancelLeadTime:        2 * time.Hour,
		RescheduleLeadTime:    24 * time.Hour,
		MaxReschedules:        1,
		EligibilityThreshold:  75,
		AllowFutureAttendance: false,
		Timezone:              "UTC",
	}
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	policy := DefaultPolicy()
	if path := getEnv("POLICY_FILE", ""); path != "" {
		loaded, err := LoadPolicyFile(path, policy)
		if err != nil {
			return nil, err
		}
		policy = loaded
	}
	policy.SlotDuration = getEnvDuration("SLOT_DURATION", policy.SlotDuration)
	policy.AllowFutureAttendance = getEnvBool("ALLOW_FUTURE_ATTENDANCE", policy.AllowFutureAttendance)
	policy.Timezone = getEnv("TIMEZONE", policy.Timezone)
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	certificateSecret := getEnv("CERTIFICATE_SECRET", "")
	if certificateSecret == "" {
		certificateSecret = jwtSecret
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DBUrl:              getEnv("DB_URL", ""),
		JWTSecret:          jwtSecret,
		AppEnv:             normalizeEnv(getEnv("APP_ENV", "production")),
		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseBucket:     getEnv("SUPABASE_BUCKET", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),
		ResendAPIKey:       getEnv("RESEND_API_KEY", ""),
		EmailFrom:          getEnv("EMAIL_FROM", "Coach Academy <noreply@coachacademy.dev>"),
		MidtransServerKey:  getEnv("MIDTRANS_SERVER_KEY", ""),
		MidtransProduction: getEnvBool("MIDTRANS_PRODUCTION", false),
		CertificateSecret:  certificateSecret,
		PublicBaseURL:      strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		PDFRendererEnabled: getEnvBool("PDF_RENDERER_ENABLED", true),
		Policy:             policy,
	}, nil
}

// LoadPolicyFile overlays the YAML file at path on top of base.
func LoadPolicyFile(path string, base Policy) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read policy file: %w", err)
	}
	policy := base
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return base, fmt.Errorf("parse policy file: %w", err)
	}
	return policy, nil
}

func (p Policy) Validate() error {
	if p.SlotDuration <= 0 {
		return fmt.Errorf("slot duration must be positive")
	}
	if p.CancelLeadTime < 0 || p.RescheduleLeadTime < 0 {
		return fmt.Errorf("lead times must not be negative")
	}
	if p.MaxReschedules < 0 {
		return fmt.Errorf("max reschedules must not be negative")
	}
	if p.EligibilityThreshold <= 0 || p.EligibilityThreshold > 100 {
		return fmt.Errorf("eligibility threshold must be in (0, 100]")
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", p.Timezone, err)
	}
	return nil
}

// Location returns the academy timezone. Validate guarantees it loads.
func (p Policy) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}

// DBMaxConns lets deployments size the pool without a code change.
func DBMaxConns() int {
	return getEnvInt("DB_MAX_CONNS", 10)
}
