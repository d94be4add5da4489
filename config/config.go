// Package config loads service configuration from defaults, a YAML file,
// and LINKOPS_-prefixed environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/mcuadros/go-defaults"
)

// envPrefix is the environment variable prefix for all settings
const envPrefix = "LINKOPS_"

// Config holds service configuration
type Config struct {
	// Server holds the HTTP server settings
	Server Server `koanf:"server" json:"server"`
	// ADB holds the Android Debug Bridge settings
	ADB ADB `koanf:"adb" json:"adb"`
	// Validator holds the trust file validator settings
	Validator Validator `koanf:"validator" json:"validator"`
	// RDAP holds the domain registration probe settings
	RDAP RDAP `koanf:"rdap" json:"rdap"`
	// Slack holds the webhook notification settings
	Slack Slack `koanf:"slack" json:"slack"`
	// Favorites holds the tracked-package store settings
	Favorites Favorites `koanf:"favorites" json:"favorites"`
}

// Server holds the HTTP server settings
type Server struct {
	// Listen is the address the API server binds to
	Listen string `koanf:"listen" json:"listen" default:":8080"`
	// ReadTimeout is the maximum duration for reading a request
	ReadTimeout time.Duration `koanf:"readtimeout" json:"readtimeout" default:"30s"`
	// WriteTimeout is the maximum duration for writing a response
	WriteTimeout time.Duration `koanf:"writetimeout" json:"writetimeout" default:"180s"`
	// ShutdownGracePeriod is how long in-flight requests get to finish on shutdown
	ShutdownGracePeriod time.Duration `koanf:"shutdowngraceperiod" json:"shutdowngraceperiod" default:"10s"`
	// RequestTimeout bounds each request handled by the router
	RequestTimeout time.Duration `koanf:"requesttimeout" json:"requesttimeout" default:"120s"`
	// MaxBodySize is the maximum request body size in bytes
	MaxBodySize int64 `koanf:"maxbodysize" json:"maxbodysize" default:"102400"`
	// Debug enables debug logging
	Debug bool `koanf:"debug" json:"debug"`
	// Pretty enables human readable logging output
	Pretty bool `koanf:"pretty" json:"pretty"`
}

// ADB holds the Android Debug Bridge settings
type ADB struct {
	// Path is the adb binary to invoke
	Path string `koanf:"path" json:"path" default:"adb"`
	// CommandTimeout bounds each shell command issued to a device
	CommandTimeout time.Duration `koanf:"commandtimeout" json:"commandtimeout" default:"15s"`
}

// Validator holds the trust file validator settings
type Validator struct {
	// RequestTimeout bounds each assetlinks.json fetch
	RequestTimeout time.Duration `koanf:"requesttimeout" json:"requesttimeout" default:"15s"`
	// DNSServer is the resolver used for failure sub-classification and CDN lookups
	DNSServer string `koanf:"dnsserver" json:"dnsserver" default:"8.8.8.8:53"`
	// MaxRedirects is how many redirect hops are followed before giving up
	MaxRedirects int `koanf:"maxredirects" json:"maxredirects" default:"5"`
}

// RDAP holds the domain registration probe settings
type RDAP struct {
	// Enabled toggles RDAP enrichment of DNS failures
	Enabled bool `koanf:"enabled" json:"enabled" default:"true"`
	// RequestTimeout bounds each RDAP lookup
	RequestTimeout time.Duration `koanf:"requesttimeout" json:"requesttimeout" default:"10s"`
}

// Slack holds the webhook notification settings
type Slack struct {
	// WebhookURL is the incoming webhook for diagnostics notifications
	WebhookURL string `koanf:"webhookurl" json:"webhookurl" sensitive:"true"`
	// RequestTimeout bounds each webhook delivery
	RequestTimeout time.Duration `koanf:"requesttimeout" json:"requesttimeout" default:"10s"`
}

// Favorites holds the tracked-package store settings
type Favorites struct {
	// Path is the JSON file favorites persist to; empty disables the store
	Path string `koanf:"path" json:"path" default:"./favorites.json"`
}

// Load builds configuration from defaults, then an optional YAML file, then
// environment variables. A missing config file is not an error.
func Load(cfgFile *string) (*Config, error) {
	k := koanf.New(".")

	cfg := &Config{}
	defaults.SetDefaults(cfg)

	if cfgFile != nil && *cfgFile != "" {
		if _, err := os.Stat(*cfgFile); err == nil {
			if err := k.Load(file.Provider(*cfgFile), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrConfigFileRead, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envToPath), nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigFileRead, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigUnmarshal, err)
	}

	return cfg, nil
}

// envToPath maps LINKOPS_SERVER_LISTEN to server.listen.
func envToPath(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, envPrefix)), "_", ".")
}
