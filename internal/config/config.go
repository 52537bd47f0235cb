package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/extractor"
)

// Config holds all user-facing configuration for the dashboard service.
type Config struct {
	Data    DataConfig    `toml:"data"`
	Source  SourceConfig  `toml:"source"`
	Server  ServerConfig  `toml:"server"`
	Auth    AuthConfig    `toml:"auth"`
	History HistoryConfig `toml:"history"`
}

type DataConfig struct {
	Dir string `toml:"dir"`
}

type SourceConfig struct {
	Path          string `toml:"path"`
	CasesSheet    string `toml:"cases_sheet"`
	SuspectsSheet string `toml:"suspects_sheet"`
	SeizuresSheet string `toml:"seizures_sheet"`
	LookupsSheet  string `toml:"lookups_sheet"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// ReloadRateLimit is forced reloads per second; 0 disables the limit.
	ReloadRateLimit float64 `toml:"reload_rate_limit"`
	ReloadBurst     int     `toml:"reload_burst"`
}

// AuthConfig enables HTTP Basic auth when both fields are set.
type AuthConfig struct {
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type HistoryConfig struct {
	Enabled bool `toml:"enabled"`
}

// Defaults returns a Config populated with built-in default values.
func Defaults() *Config {
	return &Config{
		Data: DataConfig{Dir: "data"},
		Source: SourceConfig{
			Path:          "data/cases.xlsx",
			CasesSheet:    extractor.DefaultSheetNames.Cases,
			SuspectsSheet: extractor.DefaultSheetNames.Suspects,
			SeizuresSheet: extractor.DefaultSheetNames.Seizures,
			LookupsSheet:  extractor.DefaultSheetNames.Lookups,
		},
		Server:  ServerConfig{Host: "0.0.0.0", Port: 8000, ReloadRateLimit: 0.2, ReloadBurst: 1},
		History: HistoryConfig{Enabled: true},
	}
}

// Load reads a TOML config file, then applies a .env file and environment
// overrides. If the config file does not exist, built-in defaults are used.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	cfg.applyEnv()

	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Source.Path, "EXCEL_PATH")
	setString(&c.Data.Dir, "DATA_DIR")
	setString(&c.Server.Host, "HOST")
	setString(&c.Auth.User, "APP_USER")
	setString(&c.Auth.Password, "APP_PASS")
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// SheetNames returns the configured worksheet names.
func (c *Config) SheetNames() extractor.SheetNames {
	return extractor.SheetNames{
		Cases:    c.Source.CasesSheet,
		Suspects: c.Source.SuspectsSheet,
		Seizures: c.Source.SeizuresSheet,
		Lookups:  c.Source.LookupsSheet,
	}
}

// AuthEnabled reports whether Basic auth credentials are configured.
func (c *Config) AuthEnabled() bool {
	return c.Auth.User != "" && c.Auth.Password != ""
}
