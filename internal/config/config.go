// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	RefreshPolicyTodayOnly = "today_only"
	RefreshPolicyAlways    = "always"

	CalendarModeWeek    = "week"
	CalendarModeRolling = "rolling"

	PlatformKindShopee = "shopee"
	PlatformKindTikTok = "tiktok"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Name     string `yaml:"name"`
	Password string `yaml:"-"` // Loaded from environment
}

type StorageConfig struct {
	Bucket          string        `yaml:"bucket"`
	Region          string        `yaml:"region"`
	Endpoint        string        `yaml:"endpoint,omitempty"`
	SignedURLTTL    time.Duration `yaml:"signed_url_ttl"`
	AccessKeyID     string        `yaml:"-"`
	SecretAccessKey string        `yaml:"-"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	DB       int    `yaml:"db"`
	Password string `yaml:"-"`
}

type LocalUser struct {
	Email        string `yaml:"email"`
	PasswordHash string `yaml:"password_hash"`
}

type AuthConfig struct {
	SessionStore        string        `yaml:"session_store"`
	SessionTTL          time.Duration `yaml:"session_ttl"`
	TrustProxy          bool          `yaml:"trust_proxy"`
	Redis               RedisConfig   `yaml:"redis"`
	LocalUsers          []LocalUser   `yaml:"local_users"`
	ClerkPublishableKey string        `yaml:"clerk_publishable_key"`
	ClerkSecretKey      string        `yaml:"-"`
}

type EmailConfig struct {
	Region string `yaml:"region"`
	Sender string `yaml:"sender"`
}

type FetchConfig struct {
	Timeout  time.Duration `yaml:"timeout"`
	Attempts int           `yaml:"attempts"`
	Delay    time.Duration `yaml:"delay"`
}

type RefreshConfig struct {
	Cron   string `yaml:"cron"`
	Policy string `yaml:"policy"`
}

// PlatformConfig describes one account-health tab: its metric set and the
// weekday keyed data endpoints.
type PlatformConfig struct {
	Key       string            `yaml:"key"`
	Label     string            `yaml:"label"`
	Kind      string            `yaml:"kind"`
	Endpoints map[string]string `yaml:"endpoints"`
}

type DashboardsConfig struct {
	Fetch        FetchConfig      `yaml:"fetch"`
	Refresh      RefreshConfig    `yaml:"refresh"`
	CalendarMode string           `yaml:"calendar_mode"`
	Timezone     string           `yaml:"timezone"`
	Shops        []string         `yaml:"shops"`
	Platforms    []PlatformConfig `yaml:"platforms"`
}

type ShipmentSource struct {
	Key      string `yaml:"key"`
	Label    string `yaml:"label"`
	Kind     string `yaml:"kind"`
	Endpoint string `yaml:"endpoint"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		StaticDir   string `yaml:"static_dir"`
		SecretKey   string `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
	Email    EmailConfig    `yaml:"email"`

	Dashboards DashboardsConfig `yaml:"dashboards"`

	Shipments struct {
		Sources []ShipmentSource `yaml:"sources"`
	} `yaml:"shipments"`

	LowRatings struct {
		Endpoint string `yaml:"endpoint"`
	} `yaml:"low_ratings"`

	Stock struct {
		Endpoint  string `yaml:"endpoint"`
		PageLimit int    `yaml:"page_limit"`
	} `yaml:"stock"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Load sensitive values from environment
	cfg.App.SecretKey = os.Getenv("APP_SECRET_KEY")
	cfg.Database.Password = os.Getenv("DATABASE_PASSWORD")
	cfg.Storage.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	cfg.Storage.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	cfg.Auth.ClerkSecretKey = os.Getenv("CLERK_SECRET_KEY")
	cfg.Auth.Redis.Password = os.Getenv("REDIS_PASSWORD")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML and fills defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.App.StaticDir == "" {
		c.App.StaticDir = "web/static"
	}
	if c.Storage.SignedURLTTL == 0 {
		c.Storage.SignedURLTTL = 7 * 24 * time.Hour
	}
	if c.Auth.SessionStore == "" {
		c.Auth.SessionStore = "memory"
	}
	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = 24 * time.Hour
	}

	d := &c.Dashboards
	if d.Fetch.Timeout == 0 {
		d.Fetch.Timeout = 15 * time.Second
	}
	if d.Fetch.Attempts == 0 {
		d.Fetch.Attempts = 3
	}
	if d.Fetch.Delay == 0 {
		d.Fetch.Delay = 2 * time.Second
	}
	if d.Refresh.Cron == "" {
		d.Refresh.Cron = "*/5 * * * *"
	}
	if d.Refresh.Policy == "" {
		d.Refresh.Policy = RefreshPolicyTodayOnly
	}
	if d.CalendarMode == "" {
		d.CalendarMode = CalendarModeWeek
	}
	if c.Stock.PageLimit == 0 {
		c.Stock.PageLimit = 100
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	// Validate based on database driver
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	case "mysql":
		if c.Database.Host == "" || c.Database.Name == "" || c.Database.User == "" {
			return fmt.Errorf("database host, name and user are required for mysql")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	switch c.Auth.SessionStore {
	case "memory":
	case "redis":
		if c.Auth.Redis.Address == "" {
			return fmt.Errorf("redis address is required for redis session store")
		}
	default:
		return fmt.Errorf("unsupported session store: %s", c.Auth.SessionStore)
	}

	return c.Dashboards.Validate()
}

func (d *DashboardsConfig) Validate() error {
	if d.Fetch.Attempts < 1 {
		return fmt.Errorf("dashboards fetch attempts must be at least 1")
	}
	if d.Fetch.Timeout <= 0 {
		return fmt.Errorf("dashboards fetch timeout must be positive")
	}
	if d.Fetch.Delay < 0 {
		return fmt.Errorf("dashboards fetch delay must not be negative")
	}

	switch d.Refresh.Policy {
	case RefreshPolicyTodayOnly, RefreshPolicyAlways:
	default:
		return fmt.Errorf("unsupported refresh policy: %s", d.Refresh.Policy)
	}
	if _, err := cron.ParseStandard(d.Refresh.Cron); err != nil {
		return fmt.Errorf("invalid refresh cron %q: %w", d.Refresh.Cron, err)
	}

	switch d.CalendarMode {
	case CalendarModeWeek, CalendarModeRolling:
	default:
		return fmt.Errorf("unsupported calendar mode: %s", d.CalendarMode)
	}

	if d.Timezone != "" {
		if _, err := time.LoadLocation(d.Timezone); err != nil {
			return fmt.Errorf("invalid dashboards timezone %q: %w", d.Timezone, err)
		}
	}

	seen := make(map[string]bool, len(d.Platforms))
	for _, p := range d.Platforms {
		if strings.TrimSpace(p.Key) == "" {
			return fmt.Errorf("platform key is required")
		}
		if seen[p.Key] {
			return fmt.Errorf("duplicate platform key: %s", p.Key)
		}
		seen[p.Key] = true
		switch p.Kind {
		case PlatformKindShopee, PlatformKindTikTok:
		default:
			return fmt.Errorf("platform %s: unsupported kind %q", p.Key, p.Kind)
		}
		for day := range p.Endpoints {
			if !isWeekdayName(day) {
				return fmt.Errorf("platform %s: %q is not a weekday name", p.Key, day)
			}
		}
	}
	return nil
}

// Location returns the configured dashboard timezone, falling back to local time.
func (d *DashboardsConfig) Location() *time.Location {
	if d.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func isWeekdayName(name string) bool {
	for day := time.Sunday; day <= time.Saturday; day++ {
		if day.String() == name {
			return true
		}
	}
	return false
}
