// Package config resolves flowctl's runtime configuration from CLI
// flags, environment variables, and layered config files (spec §6), using
// the same knadh/koanf precedence-chain pattern this repo's reference
// pack uses for multi-source config loading.
package config

import "time"

// Config is the fully resolved, read-only configuration snapshot passed
// explicitly to every component at startup (spec: "isolate in a read-only
// configuration value created at startup and passed explicitly to
// components. No ambient mutable state.").
type Config struct {
	Host              string        `koanf:"host" validate:"required,url"`
	APIKey            string        `koanf:"apiKey" validate:"required"`
	Timeout           time.Duration `koanf:"timeout" validate:"gt=0"`
	Debug             bool          `koanf:"debug"`
	Profile           string        `koanf:"profile"`
	StrictPermissions bool          `koanf:"strictPermissions"`
	NoColor           bool          `koanf:"noColor"`
}

// Defaults returns the baseline Config loaded before any file, env, or
// flag source is applied.
func Defaults() Config {
	return Config{
		Timeout:           30 * time.Second,
		StrictPermissions: false,
		NoColor:           false,
	}
}

// fileProfiles is the shape of a structured (multi-profile) config file:
//
//	default: prod
//	profiles:
//	  prod:
//	    host: https://prod.example.com
//	    apiKey: ${PROD_KEY}
//	  staging:
//	    host: https://staging.example.com
//
// A config file lacking a top-level "profiles" key is treated as flat
// key=value configuration instead (spec §6: "Files may be flat key=value
// or a structured form with named profiles and a default profile
// pointer").
type fileProfiles struct {
	Default  string                 `koanf:"default"`
	Profiles map[string]map[string]any `koanf:"profiles"`
}
