package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	RecordStoreModeHTTP   = "http"
	RecordStoreModeMemory = "memory"
)

// RecordStoreConfig describes how the proxy reaches the external record store.
type RecordStoreConfig struct {
	Mode           string               `koanf:"mode"`
	URL            string               `koanf:"url"`
	Timeout        time.Duration        `koanf:"timeout"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

// String returns a string representation of the record store configuration.
func (c *RecordStoreConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Record Store ---\n")
	b.WriteString(fmt.Sprintf("  mode: %s\n", c.Mode))
	b.WriteString(fmt.Sprintf("  url: %s\n", c.URL))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	b.WriteString(c.CircuitBreaker.String())
	return b.String()
}

func (c *RecordStoreConfig) Validate() error {
	switch c.Mode {
	case "":
		c.Mode = RecordStoreModeHTTP
	case RecordStoreModeHTTP, RecordStoreModeMemory:
	default:
		return fmt.Errorf("record store mode must be %q or %q: %s", RecordStoreModeHTTP, RecordStoreModeMemory, c.Mode)
	}
	if c.Mode == RecordStoreModeMemory {
		return nil
	}
	if c.URL == "" {
		return fmt.Errorf("record store URL is not configured")
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("record store URL must be an absolute http(s) URL: %s", c.URL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("record store timeout is not configured")
	}
	return c.CircuitBreaker.Validate()
}
