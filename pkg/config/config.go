// Package config defines the runtime configuration for the provenance tool:
// the Bee gateway endpoint, default postage stamp sizing, stamp readiness
// polling knobs, debug mode, and per-operation HTTP timeouts. It also
// provides validation/defaulting helpers and loaders for .env and YAML files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied by Validate when the corresponding field is zero.
const (
	// DefaultGatewayURL is the Bee node API endpoint of a local node.
	DefaultGatewayURL = "http://localhost:1633"
	// DefaultDepth is the postage batch depth (capacity exponent).
	DefaultDepth = 17
	// DefaultAmount is the postage batch amount in PLUR per chunk.
	DefaultAmount = 1000000000
	// DefaultPollRetries bounds how many times a fresh stamp is checked
	// for usability before the upload is abandoned.
	DefaultPollRetries = 12
	// DefaultPollInterval is the fixed wait between stamp status checks.
	DefaultPollInterval = 20 * time.Second
)

// Config holds all settings required to run uploads and downloads.
// Use Validate to fill implicit defaults.
type Config struct {
	// GatewayURL is the base URL of the Bee gateway API.
	// Default: http://localhost:1633
	GatewayURL string `json:"gateway_url" yaml:"gateway_url"`
	// Depth is the postage batch depth used when purchasing a stamp.
	Depth int `json:"depth" yaml:"depth"`
	// Amount is the postage batch amount (PLUR per chunk) used when
	// purchasing a stamp.
	Amount int64 `json:"amount" yaml:"amount"`
	// PollRetries is the maximum number of stamp usability checks.
	PollRetries int `json:"poll_retries" yaml:"poll_retries"`
	// PollInterval is the fixed wait between usability checks.
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`
	// Debug enables verbose logging.
	Debug bool `json:"debug" yaml:"debug"`
	// Timeouts configures per-operation HTTP timeouts. See
	// Timeouts.WithDefaults for defaults.
	Timeouts Timeouts `json:"timeouts" yaml:"timeouts"`
}

// Timeouts controls HTTP deadlines per gateway operation.
// Zero values will be replaced by sane defaults in WithDefaults.
type Timeouts struct {
	// StampPurchase covers the batch purchase call. Payment provisioning
	// on the node can be slow, so this is the longest deadline.
	StampPurchase time.Duration `json:"stamp_purchase" yaml:"stamp_purchase"`
	// StampStatus covers a single status query. Cheap and frequently
	// repeated by the poller, so it stays short.
	StampStatus time.Duration `json:"stamp_status" yaml:"stamp_status"`
	// Upload covers the envelope upload.
	Upload time.Duration `json:"upload" yaml:"upload"`
	// Download covers fetching an envelope by reference.
	Download time.Duration `json:"download" yaml:"download"`
}

// Validate normalizes the configuration by applying implicit defaults for the
// gateway URL, stamp sizing, and polling knobs. All fields have workable
// defaults, so it currently never fails; the error return is kept so callers
// do not need to change when stricter checks are added.
func (c *Config) Validate() error {

	if c.GatewayURL == "" {
		c.GatewayURL = DefaultGatewayURL
	}

	if c.Depth == 0 {
		c.Depth = DefaultDepth
	}

	if c.Amount == 0 {
		c.Amount = DefaultAmount
	}

	if c.PollRetries == 0 {
		c.PollRetries = DefaultPollRetries
	}

	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}

	return nil
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	StampPurchase: 90s
//	StampStatus:   5s
//	Upload:        60s
//	Download:      60s
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.StampPurchase == 0 {
		tt.StampPurchase = 90 * time.Second
	}
	if tt.StampStatus == 0 {
		tt.StampStatus = 5 * time.Second
	}
	if tt.Upload == 0 {
		tt.Upload = 60 * time.Second
	}
	if tt.Download == 0 {
		tt.Download = 60 * time.Second
	}
	return tt
}

// LoadEnv builds a Config from the process environment, first merging in a
// .env file from the working directory when one exists (variables already set
// in the environment win). Recognized variables:
//
//	BEE_GATEWAY_URL
//	DEFAULT_POSTAGE_DEPTH
//	DEFAULT_POSTAGE_AMOUNT
//	STAMP_POLL_RETRIES
//	STAMP_POLL_INTERVAL_SECONDS
//	SWARMPROV_DEBUG
//
// Unset or unparseable numeric variables fall back to the package defaults
// via Validate.
func LoadEnv() *Config {
	// A missing .env is fine; the environment alone is a valid source.
	_ = godotenv.Load()

	cfg := &Config{
		GatewayURL: os.Getenv("BEE_GATEWAY_URL"),
		Debug:      boolEnv("SWARMPROV_DEBUG"),
	}
	cfg.Depth = intEnv("DEFAULT_POSTAGE_DEPTH")
	cfg.Amount = int64(intEnv("DEFAULT_POSTAGE_AMOUNT"))
	cfg.PollRetries = intEnv("STAMP_POLL_RETRIES")
	cfg.PollInterval = time.Duration(intEnv("STAMP_POLL_INTERVAL_SECONDS")) * time.Second

	_ = cfg.Validate()
	return cfg
}

// LoadFile reads a YAML configuration file and applies defaults to any field
// it leaves unset.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := new(Config)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	_ = cfg.Validate()
	return cfg, nil
}

// intEnv parses an integer environment variable, returning 0 (meaning "use
// the default") when the variable is unset or not a number.
func intEnv(name string) int {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// boolEnv reports whether a boolean environment variable is set to a truthy
// value ("1" or "true").
func boolEnv(name string) bool {
	v := os.Getenv(name)
	return v == "1" || v == "true"
}
