package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Jira    JiraConfig    `toml:"jira" json:"jira"`
	Report  ReportConfig  `toml:"report" json:"report"`
	Server  ServerConfig  `toml:"server" json:"server"`
	Cache   CacheConfig   `toml:"cache" json:"cache"`
	Logging LoggingConfig `toml:"logging" json:"logging"`

	// Environment is set from the -mode flag, never from the file.
	Environment string `toml:"-"`
}

type JiraConfig struct {
	Server          string  `toml:"server" json:"server"`
	Username        string  `toml:"username" json:"username"`
	APIKey          string  `toml:"api_key" json:"-"`
	HoursPerDay     float64 `toml:"hours_per_day" json:"hours_per_day"`
	SprintFieldName string  `toml:"sprint_field_name" json:"sprint_field_name"`
	TimeoutSeconds  int     `toml:"timeout_seconds" json:"timeout_seconds"`
	PageSize        int     `toml:"page_size" json:"page_size"`
}

// ReportConfig holds the default filters, each can be overridden on the command line.
type ReportConfig struct {
	Project       string `toml:"project" json:"project"`
	WorklogAuthor string `toml:"worklog_author" json:"worklog_author"`
	Days          int    `toml:"days" json:"days"`
	LoopSeconds   int    `toml:"loop_seconds" json:"loop_seconds"`
}

type ServerConfig struct {
	Port int `toml:"port" json:"port"`
}

type CacheConfig struct {
	Enabled      bool   `toml:"enabled" json:"enabled"`
	DatabasePath string `toml:"database_path" json:"database_path"`
}

type LoggingConfig struct {
	Level      string `toml:"level" json:"level"`
	Format     string `toml:"format" json:"format"`
	Output     string `toml:"output" json:"output"`
	MaxSize    int    `toml:"max_size" json:"max_size"`
	MaxBackups int    `toml:"max_backups" json:"max_backups"`
}

func DefaultConfig() *Config {
	execDir, execName := executableLocation()

	return &Config{
		Jira: JiraConfig{
			HoursPerDay:     8,
			SprintFieldName: "customfield_10020",
			TimeoutSeconds:  30,
			PageSize:        100,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Cache: CacheConfig{
			Enabled:      false,
			DatabasePath: filepath.Join(execDir, "data", execName+".db"),
		},
		Logging:     *DefaultLoggingConfig(),
		Environment: "development",
	}
}

func executableLocation() (string, string) {
	execPath, _ := os.Executable()
	execDir := filepath.Dir(execPath)
	execName := filepath.Base(execPath)
	execName = execName[:len(execName)-len(filepath.Ext(execName))]
	return execDir, execName
}

func LoadConfig(configFile string) (*Config, error) {
	config := DefaultConfig()

	if configFile == "" {
		execDir, execName := executableLocation()

		possiblePaths := []string{
			filepath.Join(execDir, execName+".toml"),
			filepath.Join(execDir, "config.toml"),
			"config.toml",
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}
	}

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, WrapError(err, ErrorTypeConfiguration, "CONFIG_READ", fmt.Sprintf("failed to read config file %s", configFile))
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, WrapError(err, ErrorTypeConfiguration, "CONFIG_PARSE", "failed to parse config file")
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func applyEnvOverrides(config *Config) {
	if server := os.Getenv("JIRA_SERVER"); server != "" {
		config.Jira.Server = server
	}
	if username := os.Getenv("JIRA_USERNAME"); username != "" {
		config.Jira.Username = username
	}
	if apiKey := os.Getenv("JIRA_API_KEY"); apiKey != "" {
		config.Jira.APIKey = apiKey
	}

	if dbPath := os.Getenv("CACHE_DATABASE_PATH"); dbPath != "" {
		config.Cache.DatabasePath = dbPath
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.Logging.Level = logLevel
	}
	if logOutput := os.Getenv("LOG_OUTPUT"); logOutput != "" {
		config.Logging.Output = logOutput
	}

	if port := os.Getenv("SERVER_PORT"); port != "" {
		if portNum, err := strconv.Atoi(port); err == nil {
			config.Server.Port = portNum
		}
	}
}

func (c *Config) Validate() error {
	if c.Jira.Server == "" {
		return NewValidationError("JIRA_SERVER", "jira server is required")
	}
	if c.Jira.Username == "" {
		return NewValidationError("JIRA_USERNAME", "jira username is required")
	}
	if c.Jira.APIKey == "" {
		return NewValidationError("JIRA_API_KEY", "jira api_key is required")
	}
	if c.Jira.SprintFieldName == "" {
		return NewValidationError("JIRA_SPRINT_FIELD", "jira sprint_field_name is required")
	}
	if c.Jira.HoursPerDay <= 0 {
		return NewValidationError("JIRA_HOURS_PER_DAY", fmt.Sprintf("hours_per_day must be positive, got %v", c.Jira.HoursPerDay))
	}

	if c.Jira.TimeoutSeconds <= 0 {
		c.Jira.TimeoutSeconds = 30
	}
	if c.Jira.PageSize <= 0 {
		c.Jira.PageSize = 100
	}
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}

	if c.Report.Days < 0 {
		return NewValidationError("REPORT_DAYS", "report days must not be negative")
	}
	if c.Report.LoopSeconds < 0 {
		return NewValidationError("REPORT_LOOP", "report loop_seconds must not be negative")
	}

	if c.Cache.Enabled && c.Cache.DatabasePath == "" {
		return NewValidationError("CACHE_PATH", "cache database_path is required when the cache is enabled")
	}

	validLogLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	validLevel := false
	for _, level := range validLogLevels {
		if c.Logging.Level == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return NewValidationError("LOG_LEVEL", fmt.Sprintf("invalid log level: %s", c.Logging.Level))
	}

	validOutputs := []string{"console", "file", "both"}
	validOutput := false
	for _, output := range validOutputs {
		if c.Logging.Output == output {
			validOutput = true
			break
		}
	}
	if !validOutput {
		return NewValidationError("LOG_OUTPUT", fmt.Sprintf("invalid log output: %s", c.Logging.Output))
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
