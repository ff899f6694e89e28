// Package config holds process configuration for the beacon service,
// loaded through Viper from defaults, beacon.toml, and BEACON_* environment
// variables.
package config

import "time"

// Config represents the beacon service configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// ServerConfig configures the beacon HTTP server
type ServerConfig struct {
	Port              int     `mapstructure:"port"`                // Listen port (default: 5050)
	RequestsPerSecond float64 `mapstructure:"requests_per_second"` // Rate limit per client (default: 20)
	RequestBurst      int     `mapstructure:"request_burst"`       // Rate limit burst (default: 40)
}

// DatabaseConfig configures the SQLite dataset catalogue
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// AuthConfig configures credential and visa verification.
//
// Audiences is a deliberate escape hatch: an empty list disables audience
// checking entirely. This mirrors the deployment reality that many beacon
// networks issue tokens without a beacon-specific audience.
type AuthConfig struct {
	TrustedIssuers     []string `mapstructure:"trusted_issuers"`      // Issuer allow-list for the primary credential
	Audiences          []string `mapstructure:"audiences"`            // Audience allow-list; empty disables the check
	UserinfoURL        string   `mapstructure:"userinfo_url"`         // Identity-provider visa endpoint
	JWKSURL            string   `mapstructure:"jwks_url"`             // Primary issuer key endpoint
	StaticKeyPEM       string   `mapstructure:"static_key_pem"`       // Operator-supplied PEM public key; bypasses JWKS fetch when set
	JWKSTTLMinutes     int      `mapstructure:"jwks_ttl_minutes"`     // Key cache TTL (default: 60)
	VisaTimeoutSeconds int      `mapstructure:"visa_timeout_seconds"` // Per-request visa validation budget (default: 10)
	HTTPTimeoutSeconds int      `mapstructure:"http_timeout_seconds"` // Egress HTTP timeout (default: 15)
}

// JWKSTTL returns the key cache TTL as a duration.
func (c AuthConfig) JWKSTTL() time.Duration {
	return time.Duration(c.JWKSTTLMinutes) * time.Minute
}

// VisaTimeout returns the per-request visa validation budget as a duration.
func (c AuthConfig) VisaTimeout() time.Duration {
	return time.Duration(c.VisaTimeoutSeconds) * time.Second
}

// HTTPTimeout returns the egress HTTP timeout as a duration.
func (c AuthConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}
