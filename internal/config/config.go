package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	GithubToken   string        `mapstructure:"github_token"`
	AzureToken    string        `mapstructure:"azure_token"`
	AzureEndpoint string        `mapstructure:"azure_endpoint"`
	GitToken      string        `mapstructure:"git_token"`
	CacheDir      string        `mapstructure:"cache_dir"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	Concurrency   int           `mapstructure:"concurrency"`
	LogLevel      string        `mapstructure:"log_level"`
	LogFormat     string        `mapstructure:"log_format"`
}

const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
	maxConcurrency   = 32
)

// ErrAzureTokenRequired is returned when Azure DevOps reads are attempted without a token.
var ErrAzureTokenRequired = errors.New("azure_token is required for Azure DevOps operations")

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		CacheDir:    ".changelog-cache",
		CacheTTL:    time.Minute,
		Concurrency: 1,
		LogLevel:    "info",
		LogFormat:   LogFormatConsole,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// GitHub token is optional - only validate if provided
	if c.GithubToken != "" {
		if err := ValidateGitHubToken(c.GithubToken); err != nil {
			return fmt.Errorf("invalid github_token: %w", err)
		}
	}
	if c.AzureEndpoint != "" {
		if err := ValidateAzureEndpoint(c.AzureEndpoint); err != nil {
			return fmt.Errorf("invalid azure_endpoint: %w", err)
		}
	}
	if c.CacheDir == "" {
		return fmt.Errorf("cache_dir cannot be empty")
	}
	// Check for path traversal in cache directory
	if strings.Contains(c.CacheDir, "..") {
		return fmt.Errorf("cache_dir contains invalid path traversal")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl cannot be negative")
	}
	if c.Concurrency < 1 || c.Concurrency > maxConcurrency {
		return fmt.Errorf("concurrency must be between 1 and %d", maxConcurrency)
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	if c.LogFormat != LogFormatConsole && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("invalid log_format: %s", c.LogFormat)
	}
	return nil
}

// ValidateForAzureOperations validates that an Azure token is present for tree and blob reads
func (c *Config) ValidateForAzureOperations() error {
	if c.AzureToken == "" {
		return ErrAzureTokenRequired
	}
	return c.Validate()
}

// ValidateGitHubToken validates GitHub token format (exported for reuse)
func ValidateGitHubToken(token string) error {
	token = strings.TrimSpace(token)
	if len(token) < 40 {
		return fmt.Errorf("token too short: expected at least 40 characters")
	}
	classicPAT := regexp.MustCompile(`^[a-fA-F0-9]{40}$`)
	fineGrainedPAT := regexp.MustCompile(`^github_pat_[a-zA-Z0-9_]{82}$`)
	appToken := regexp.MustCompile(`^ghs_[a-zA-Z0-9]{36}$`)
	oauthToken := regexp.MustCompile(`^gho_[a-zA-Z0-9]{36}$`)
	if !classicPAT.MatchString(token) &&
		!fineGrainedPAT.MatchString(token) &&
		!appToken.MatchString(token) &&
		!oauthToken.MatchString(token) {
		return fmt.Errorf("invalid token format")
	}
	return nil
}

// ValidateAzureEndpoint checks that endpoint is an absolute https organization URL
func ValidateAzureEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return err
	}
	if u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("expected an https organization URL, got %q", endpoint)
	}
	if strings.Trim(u.Path, "/") == "" {
		return fmt.Errorf("organization missing from %q", endpoint)
	}
	return nil
}

// AzureEndpointFor derives the organization URL of an Azure DevOps source
// when no endpoint is configured: https://dev.azure.com/<org>.
func (c *Config) AzureEndpointFor(sourceURL string) (string, error) {
	if c.AzureEndpoint != "" {
		return strings.TrimSuffix(c.AzureEndpoint, "/"), nil
	}
	u, err := url.Parse(sourceURL)
	if err != nil {
		return "", err
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if u.Host == "" || segments[0] == "" {
		return "", fmt.Errorf("cannot derive Azure organization from %q", sourceURL)
	}
	return fmt.Sprintf("%s://%s/%s", u.Scheme, u.Host, segments[0]), nil
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".compozy-changelog")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	// Configure environment variables
	viper.SetEnvPrefix("COMPOZY_CHANGELOG")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// BindEnv checks the listed variables in order
	bindings := []struct {
		key  string
		envs []string
	}{
		{"github_token", []string{"GITHUB_TOKEN", "COMPOZY_CHANGELOG_GITHUB_TOKEN"}},
		{"azure_token", []string{"AZURE_DEVOPS_TOKEN", "COMPOZY_CHANGELOG_AZURE_TOKEN"}},
		{"azure_endpoint", []string{"AZURE_DEVOPS_ENDPOINT", "COMPOZY_CHANGELOG_AZURE_ENDPOINT"}},
		{"git_token", []string{"GIT_TOKEN", "COMPOZY_CHANGELOG_GIT_TOKEN"}},
		{"cache_dir", []string{"COMPOZY_CHANGELOG_CACHE_DIR"}},
		{"cache_ttl", []string{"COMPOZY_CHANGELOG_CACHE_TTL"}},
		{"concurrency", []string{"COMPOZY_CHANGELOG_CONCURRENCY"}},
		{"log_level", []string{"COMPOZY_CHANGELOG_LOG_LEVEL"}},
		{"log_format", []string{"COMPOZY_CHANGELOG_LOG_FORMAT"}},
	}
	for _, b := range bindings {
		input := append([]string{b.key}, b.envs...)
		if err := viper.BindEnv(input...); err != nil {
			return nil, fmt.Errorf("failed to bind %s env: %w", b.key, err)
		}
	}
	defaults := DefaultConfig()
	viper.SetDefault("cache_dir", defaults.CacheDir)
	viper.SetDefault("cache_ttl", defaults.CacheTTL)
	viper.SetDefault("concurrency", defaults.Concurrency)
	viper.SetDefault("log_level", defaults.LogLevel)
	viper.SetDefault("log_format", defaults.LogFormat)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}

// GitCredential returns the token used to clone plain git remotes. The
// GitHub token is used when no git token is configured.
func (c *Config) GitCredential() string {
	if c.GitToken != "" {
		return c.GitToken
	}
	return c.GithubToken
}
