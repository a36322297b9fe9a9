// Package config holds the product proxy configuration.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/abgdnv/productproxy/pkg/config"
	"github.com/abgdnv/productproxy/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer  config.HTTPConfig        `koanf:"server"`
	RecordStore config.RecordStoreConfig `koanf:"recordstore"`
	Log         config.LogConfig         `koanf:"log"`
	PProf       config.PProfConfig       `koanf:"pprof"`
	GRPC        config.GrpcServerConfig  `koanf:"grpc"`
	NATS        config.NATSConfig        `koanf:"nats"`
	Telemetry   config.TelemetryConfig   `koanf:"telemetry"`
	Shutdown    config.ShutdownConfig    `koanf:"shutdown"`
}

// Defaults returns the built-in configuration, overridden by config.yaml, .env and PRODUCT_* variables.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":               3000,
		"server.maxheaderbytes":     1 << 20,
		"server.timeout.read":       "10s",
		"server.timeout.write":      "10s",
		"server.timeout.idle":       "60s",
		"server.timeout.readheader": "5s",

		"recordstore.mode":    config.RecordStoreModeHTTP,
		"recordstore.url":     "http://localhost:3150",
		"recordstore.timeout": "5s",

		"recordstore.circuitbreaker.enabled":             false,
		"recordstore.circuitbreaker.consecutivefailures": 5,
		"recordstore.circuitbreaker.errorratepercent":    50,
		"recordstore.circuitbreaker.opentimeout":         "30s",
		"recordstore.circuitbreaker.halfopenrequests":    1,

		"log.level":        "info",
		"nats.url":         "nats://localhost:4222",
		"nats.timeout":     "5s",
		"shutdown.timeout": "15s",

		"telemetry.traces.otlphttp.endpoint": "localhost:4318",
		"telemetry.traces.otlphttp.insecure": true,
		"telemetry.traces.otlphttp.timeout":  "5s",
	}
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString(c.HTTPServer.String())

	b.WriteString("\n--- Record Store ---\n")
	b.WriteString(fmt.Sprintf("  recordstore.mode: %s\n", c.RecordStore.Mode))
	b.WriteString(fmt.Sprintf("  recordstore.url: %s\n", maskURL(c.RecordStore.URL)))
	b.WriteString(fmt.Sprintf("  recordstore.timeout: %s\n", c.RecordStore.Timeout))
	b.WriteString(fmt.Sprintf("  recordstore.circuitbreaker.enabled: %t\n", c.RecordStore.CircuitBreaker.Enabled))

	b.WriteString(c.GRPC.String())

	b.WriteString("\n--- NATS ---\n")
	b.WriteString(fmt.Sprintf("  nats.enabled: %t\n", c.NATS.Enabled))
	b.WriteString(fmt.Sprintf("  nats.url: %s\n", maskURL(c.NATS.Url)))

	b.WriteString("\n--- Observability & Logging ---\n")
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))
	b.WriteString(fmt.Sprintf("  pprof.enabled: %t\n", c.PProf.Enabled))
	b.WriteString(fmt.Sprintf("  pprof.address: %s\n", c.PProf.Addr))
	b.WriteString(fmt.Sprintf("  telemetry.enabled: %t\n", c.Telemetry.Enabled))
	b.WriteString(fmt.Sprintf("  telemetry.traces.otlphttp.endpoint: %s\n", c.Telemetry.Traces.OtlpHttp.Endpoint))

	b.WriteString("\n--- Application Behavior ---\n")
	b.WriteString(fmt.Sprintf("  shutdown.timeout: %s\n", c.Shutdown.Timeout))

	return b.String()
}

// maskURL hides the user info of u.
func maskURL(u string) string {
	if u == "" {
		return "<not configured>"
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return "****"
	}
	if parsed.User == nil {
		return parsed.String()
	}
	parsed.User = nil
	return strings.Replace(parsed.String(), "://", "://****@", 1)
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.RecordStore.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.GRPC.Validate(); err != nil {
		return err
	}
	if err := c.NATS.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	return nil
}
