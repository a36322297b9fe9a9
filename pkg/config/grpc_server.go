package config

import (
	"fmt"
	"strconv"
	"strings"
)

// GrpcServerConfig configures the gRPC health endpoint. An empty port disables it.
type GrpcServerConfig struct {
	Port              string `koanf:"port"`
	ReflectionEnabled bool   `koanf:"reflection"`
}

// String returns a string representation of the gRPC server configuration.
func (c *GrpcServerConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- gRPC ---\n")
	b.WriteString(fmt.Sprintf("  port: %s\n", c.Port))
	b.WriteString(fmt.Sprintf("  reflection: %t\n", c.ReflectionEnabled))
	return b.String()
}

// Enabled reports whether the gRPC server should be started.
func (c *GrpcServerConfig) Enabled() bool {
	return c.Port != ""
}

func (c *GrpcServerConfig) Validate() error {
	if c.Port == "" {
		return nil
	}
	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("invalid gRPC port: %s", c.Port)
	}
	return nil
}
