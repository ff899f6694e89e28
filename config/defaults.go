package config

import "github.com/spf13/viper"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 5050)
	v.SetDefault("server.requests_per_second", 20.0)
	v.SetDefault("server.request_burst", 40)

	// Database defaults
	v.SetDefault("database.path", "beacon.db")

	// Auth defaults
	v.SetDefault("auth.trusted_issuers", []string{})
	v.SetDefault("auth.audiences", []string{}) // empty = audience check disabled
	v.SetDefault("auth.jwks_ttl_minutes", 60)
	v.SetDefault("auth.visa_timeout_seconds", 10)
	v.SetDefault("auth.http_timeout_seconds", 15)
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to environment variables
func BindSensitiveEnvVars(v *viper.Viper) {
	// Operator-supplied key material never belongs in a config file on disk
	v.BindEnv("auth.static_key_pem", "BEACON_AUTH_STATIC_KEY_PEM")
}
