package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultConfigFile is read when no path is given
const DefaultConfigFile = "config.yaml"

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	LogLevel   string `yaml:"log_level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// CSVConfig represents CSV export configuration
type CSVConfig struct {
	FilenameFormat string `yaml:"filename_format"`
	OutputDir      string `yaml:"output_dir"`
}

// DataConfig says where the screener payload comes from
type DataConfig struct {
	ResultsFile         string `yaml:"results_file"`
	URL                 string `yaml:"url"`
	FetchTimeoutSeconds int    `yaml:"fetch_timeout_seconds"`
}

// ReloadConfig controls the scheduled payload reload
type ReloadConfig struct {
	Schedule string `yaml:"schedule"` // cron spec, empty disables
	Timezone string `yaml:"timezone"`
}

// TableConfig holds view defaults
type TableConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
}

type Config struct {
	// Server settings
	Port string `yaml:"port"`

	Data    DataConfig    `yaml:"data"`
	Reload  ReloadConfig  `yaml:"reload"`
	Table   TableConfig   `yaml:"table"`
	Logging LoggingConfig `yaml:"logging"`
	CSV     CSVConfig     `yaml:"csv"`
}

// Load reads .env and config.yaml from the working directory
func Load() *Config {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom builds defaults from the environment and overlays the YAML file at
// path. A missing or unreadable file leaves the defaults in place.
func LoadFrom(path string) *Config {
	// .env never overrides variables that are already set
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Data: DataConfig{
			ResultsFile:         getEnv("RESULTS_FILE", "data/results.json"),
			URL:                 getEnv("DATA_URL", ""),
			FetchTimeoutSeconds: getEnvInt("FETCH_TIMEOUT_SECONDS", 15),
		},
		Reload: ReloadConfig{
			Schedule: getEnv("RELOAD_SCHEDULE", "0 20 * * *"),
			Timezone: getEnv("RELOAD_TIMEZONE", "Asia/Taipei"),
		},
		Table: TableConfig{
			DefaultPageSize: getEnvInt("DEFAULT_PAGE_SIZE", 10),
		},
		Logging: LoggingConfig{
			LogLevel:   getEnv("LOG_LEVEL", "info"),
			LogFile:    getEnv("LOG_FILE", "mtts.log"),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),
		},
		CSV: CSVConfig{
			FilenameFormat: "{time}_{filter}_{rows}rows.csv",
			OutputDir:      ".",
		},
	}

	if yamlCfg := loadYAMLConfig(path); yamlCfg != nil {
		overlay(cfg, yamlCfg)
	}
	if getEnvBool("RELOAD_DISABLED", false) {
		cfg.Reload.Schedule = ""
	}
	return cfg
}

// overlay copies every non-empty YAML value over the defaults.
func overlay(cfg, y *Config) {
	if y.Port != "" {
		cfg.Port = y.Port
	}
	if y.Data.ResultsFile != "" {
		cfg.Data.ResultsFile = y.Data.ResultsFile
	}
	if y.Data.URL != "" {
		cfg.Data.URL = y.Data.URL
	}
	if y.Data.FetchTimeoutSeconds > 0 {
		cfg.Data.FetchTimeoutSeconds = y.Data.FetchTimeoutSeconds
	}
	if y.Reload.Schedule != "" {
		cfg.Reload.Schedule = y.Reload.Schedule
	}
	if y.Reload.Timezone != "" {
		cfg.Reload.Timezone = y.Reload.Timezone
	}
	if y.Table.DefaultPageSize > 0 {
		cfg.Table.DefaultPageSize = y.Table.DefaultPageSize
	}

	// Logging configuration from YAML
	if y.Logging.LogLevel != "" {
		cfg.Logging.LogLevel = y.Logging.LogLevel
	}
	if y.Logging.LogFile != "" {
		cfg.Logging.LogFile = y.Logging.LogFile
	}
	if y.Logging.MaxSizeMB > 0 {
		cfg.Logging.MaxSizeMB = y.Logging.MaxSizeMB
	}
	if y.Logging.MaxBackups > 0 {
		cfg.Logging.MaxBackups = y.Logging.MaxBackups
	}
	if y.Logging.MaxAgeDays > 0 {
		cfg.Logging.MaxAgeDays = y.Logging.MaxAgeDays
	}

	if y.CSV.FilenameFormat != "" {
		cfg.CSV.FilenameFormat = y.CSV.FilenameFormat
	}
	if y.CSV.OutputDir != "" {
		cfg.CSV.OutputDir = y.CSV.OutputDir
	}
}

func loadYAMLConfig(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		// Could not read config file - silently return nil
		return nil
	}

	var yamlCfg Config
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		// Could not parse config file - silently return nil
		return nil
	}

	return &yamlCfg
}

// Source is the payload location the CLI reads by default: the URL when set,
// otherwise the results file.
func (c *Config) Source() string {
	if c.Data.URL != "" {
		return c.Data.URL
	}
	return c.Data.ResultsFile
}

// FetchTimeout returns the HTTP fetch timeout
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Data.FetchTimeoutSeconds) * time.Second
}

// CronSpec prefixes the schedule with its time zone for robfig/cron.
func (c *Config) CronSpec() string {
	if c.Reload.Schedule == "" || c.Reload.Timezone == "" {
		return c.Reload.Schedule
	}
	return "CRON_TZ=" + c.Reload.Timezone + " " + c.Reload.Schedule
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// FormatExportFilename formats CSV filenames using the configured template
func FormatExportFilename(format, timestamp, filter string, rows int) string {
	result := format
	result = strings.ReplaceAll(result, "{time}", timestamp)
	result = strings.ReplaceAll(result, "{filter}", filter)
	result = strings.ReplaceAll(result, "{rows}", strconv.Itoa(rows))
	return result
}
