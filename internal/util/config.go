// Package util provides common utilities for fleetwatch.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	DataDir  string `mapstructure:"data_dir"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	// Inventory API
	APIBaseURL   string   `mapstructure:"api_base_url"`
	APIUsername  string   `mapstructure:"api_username"`
	APIPassword  string   `mapstructure:"api_password"`
	APIClientKey string   `mapstructure:"api_client_key"`
	Page         int      `mapstructure:"page"`
	Limit        int      `mapstructure:"limit"`
	Orders       []string `mapstructure:"orders"`

	// Geolocation lookup
	GeoBaseURL string `mapstructure:"geo_base_url"`
	GeoToken   string `mapstructure:"geo_token"`

	// Export outputs
	CSVOutputFile  string `mapstructure:"csv_output_file"`
	XLSXOutputFile string `mapstructure:"xlsx_output_file"`
	ReportDir      string `mapstructure:"report_dir"`

	// Email delivery
	SendEmail     bool     `mapstructure:"send_email"`
	SMTPServer    string   `mapstructure:"smtp_server"`
	SMTPPort      int      `mapstructure:"smtp_port"`
	SMTPStartTLS  bool     `mapstructure:"smtp_starttls"`
	SMTPLogin     bool     `mapstructure:"smtp_login"`
	EmailUsername string   `mapstructure:"email_username"`
	EmailPassword string   `mapstructure:"email_password"`
	EmailTo       []string `mapstructure:"email_to"`
	EmailSubject  string   `mapstructure:"email_subject"`

	// Daemon scheduling
	SyncInterval time.Duration `mapstructure:"sync_interval"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".fleetwatch")

	return &Config{
		DataDir:  dataDir,
		LogLevel: "info",
		LogFile:  filepath.Join(dataDir, "fleetwatch.log"),

		APIBaseURL: "https://www.krms.openview.co.za",
		Page:       1,
		Limit:      10000000,
		Orders:     []string{"syncTime DESC"},

		GeoBaseURL: "https://ipinfo.io",

		CSVOutputFile:  filepath.Join(dataDir, "devices.csv"),
		XLSXOutputFile: filepath.Join(dataDir, "devices.xlsx"),
		ReportDir:      filepath.Join(dataDir, "reports"),

		SendEmail:    false,
		SMTPPort:     587,
		SMTPStartTLS: true,
		SMTPLogin:    true,
		EmailSubject: "Fleet Devices Report",

		SyncInterval: 24 * time.Hour,
	}
}

// LoadConfig loads configuration from file and environment.
// Secrets (API password, client key, geo token, SMTP password) can be
// supplied via FLEETWATCH_* environment variables.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	// Ensure config directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(cfg.DataDir)
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("fleetwatch")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// AutomaticEnv only surfaces keys viper already knows about, and
	// the secret keys have no defaults. Bind them so FLEETWATCH_*
	// values survive Unmarshal.
	for _, key := range []string{
		"api_username", "api_password", "api_client_key",
		"geo_token", "email_username", "email_password",
	} {
		viper.BindEnv(key)
	}

	// Set defaults in viper
	viper.SetDefault("data_dir", cfg.DataDir)
	viper.SetDefault("log_level", cfg.LogLevel)
	viper.SetDefault("api_base_url", cfg.APIBaseURL)
	viper.SetDefault("page", cfg.Page)
	viper.SetDefault("limit", cfg.Limit)
	viper.SetDefault("orders", cfg.Orders)
	viper.SetDefault("geo_base_url", cfg.GeoBaseURL)
	viper.SetDefault("csv_output_file", cfg.CSVOutputFile)
	viper.SetDefault("xlsx_output_file", cfg.XLSXOutputFile)
	viper.SetDefault("report_dir", cfg.ReportDir)
	viper.SetDefault("smtp_port", cfg.SMTPPort)
	viper.SetDefault("smtp_starttls", cfg.SMTPStartTLS)
	viper.SetDefault("smtp_login", cfg.SMTPLogin)
	viper.SetDefault("email_subject", cfg.EmailSubject)
	viper.SetDefault("sync_interval", cfg.SyncInterval)

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Unmarshal into config struct
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// EnsureDir ensures a directory exists.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}
