package gemini

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the configuration for the Gemini generator.
type Config struct {
	BaseURL         string   `yaml:"base_url"`
	Temperature     *float64 `yaml:"temperature"`
	MaxOutputTokens int      `yaml:"max_output_tokens"`
	TopK            int      `yaml:"top_k"`
	TopP            *float64 `yaml:"top_p"`
	Timeout         string   `yaml:"timeout"`

	// SafetyThreshold applies to every harm category in HarmCategories.
	SafetyThreshold string   `yaml:"safety_threshold"`
	HarmCategories  []string `yaml:"harm_categories"`
}

const (
	defaultBaseURL         = "https://generativelanguage.googleapis.com/v1beta"
	defaultTemperature     = 0.9
	defaultMaxOutputTokens = 1024
	defaultTopK            = 40
	defaultTopP            = 0.95
	defaultSafetyThreshold = "BLOCK_MEDIUM_AND_ABOVE"
)

var defaultHarmCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

// Defaults fills zero-valued fields with sensible defaults.
func (c *Config) Defaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Temperature == nil {
		t := defaultTemperature
		c.Temperature = &t
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = defaultMaxOutputTokens
	}
	if c.TopK <= 0 {
		c.TopK = defaultTopK
	}
	if c.TopP == nil {
		p := defaultTopP
		c.TopP = &p
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.SafetyThreshold == "" {
		c.SafetyThreshold = defaultSafetyThreshold
	}
	if len(c.HarmCategories) == 0 {
		c.HarmCategories = append([]string(nil), defaultHarmCategories...)
	}
}

// parsedTimeout returns the timeout as a time.Duration.
// Assumes the value has been validated by Validate.
func (c *Config) parsedTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Validate checks that the timeout string is a valid positive duration and
// that the base URL is absolute. Called after Defaults.
func (c *Config) Validate() error {
	if u, err := url.Parse(c.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("provider.gemini: base_url must be an http(s) URL, got %q", c.BaseURL)
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("provider.gemini: invalid timeout %q: %w", c.Timeout, err)
	}
	if d <= 0 {
		return fmt.Errorf("provider.gemini: timeout must be positive, got %q", c.Timeout)
	}
	return nil
}
