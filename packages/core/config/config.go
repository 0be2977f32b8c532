package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitfwd/packages/http"
	"gopkg.in/yaml.v3"
)

// Config represents the hitfwd configuration
type Config struct {
	BaseURL         string            `yaml:"baseURL,omitempty"`
	Timeout         int               `yaml:"timeout,omitempty"` // milliseconds
	FollowRedirects *bool             `yaml:"followRedirects,omitempty"`
	MaxRedirects    int               `yaml:"maxRedirects,omitempty"`
	ValidateSSL     *bool             `yaml:"validateSSL,omitempty"`
	Proxy           string            `yaml:"proxy,omitempty"`
	Headers         map[string]string `yaml:"headers,omitempty"`   // Default headers for all requests
	RateLimit       float64           `yaml:"rateLimit,omitempty"` // requests per second
	RequestIDHeader string            `yaml:"requestIdHeader,omitempty"`
	Verbose         *bool             `yaml:"verbose,omitempty"`
	NoColor         *bool             `yaml:"noColor,omitempty"`
}

// EnvPrefix is the prefix of environment variables read by ApplyEnv
const EnvPrefix = "HITFWD_"

// BoolPtr returns a pointer to a bool value
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// TimeoutDuration returns Timeout as a time.Duration
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".hitfwd.yaml",
	"hitfwd.yaml",
	".hitfwd.yml",
	".hitfwd.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file. JSON files
// are read by the YAML decoder as well.
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.BaseURL != "" {
		result.BaseURL = other.BaseURL
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.RateLimit > 0 {
		result.RateLimit = other.RateLimit
	}
	if other.RequestIDHeader != "" {
		result.RequestIDHeader = other.RequestIDHeader
	}

	// Boolean flags - only override if explicitly set in other config
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(c.Headers)+len(other.Headers))
		for k, v := range c.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	return &result
}

// ApplyEnv overlays HITFWD_* variables (prefix already stripped) onto the
// config. Unknown keys are ignored.
func (c *Config) ApplyEnv(vars map[string]any) (*Config, error) {
	overlay := &Config{}
	for key, raw := range vars {
		value := fmt.Sprint(raw)
		switch strings.ToUpper(key) {
		case "BASE_URL":
			overlay.BaseURL = value
		case "TIMEOUT":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
			}
			overlay.Timeout = n
		case "PROXY":
			overlay.Proxy = value
		case "RATE_LIMIT":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("%sRATE_LIMIT: %w", EnvPrefix, err)
			}
			overlay.RateLimit = f
		case "REQUEST_ID_HEADER":
			overlay.RequestIDHeader = value
		case "VALIDATE_SSL":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("%sVALIDATE_SSL: %w", EnvPrefix, err)
			}
			overlay.ValidateSSL = BoolPtr(b)
		case "VERBOSE":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("%sVERBOSE: %w", EnvPrefix, err)
			}
			overlay.Verbose = BoolPtr(b)
		case "NO_COLOR":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("%sNO_COLOR: %w", EnvPrefix, err)
			}
			overlay.NoColor = BoolPtr(b)
		}
	}
	return c.Merge(overlay), nil
}

// ClientOptions converts the config into options for http.NewClient
func (c *Config) ClientOptions() []http.ClientOption {
	opts := []http.ClientOption{
		http.WithFollowRedirects(c.GetFollowRedirects()),
		http.WithValidateSSL(c.GetValidateSSL()),
	}
	if c.BaseURL != "" {
		opts = append(opts, http.WithBaseURL(c.BaseURL))
	}
	if c.Timeout > 0 {
		opts = append(opts, http.WithTimeout(c.TimeoutDuration()))
	}
	if c.MaxRedirects > 0 {
		opts = append(opts, http.WithMaxRedirects(c.MaxRedirects))
	}
	if c.Proxy != "" {
		opts = append(opts, http.WithProxy(c.Proxy))
	}
	if len(c.Headers) > 0 {
		opts = append(opts, http.WithDefaultHeaders(c.Headers))
	}
	if c.RateLimit > 0 {
		opts = append(opts, http.WithRateLimit(c.RateLimit))
	}
	if c.RequestIDHeader != "" {
		opts = append(opts, http.WithRequestID(c.RequestIDHeader))
	}
	return opts
}

// SaveConfig saves the configuration to a file as YAML
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
