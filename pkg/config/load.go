package config

import (
	"fmt"
	"os"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/go-playground/validator/v10"

	"github.com/flowctl/flowctl/pkg/apperr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// envVars is the fixed, explicitly named set of environment variables
// spec §6 honors — deliberately not a wildcard env.Provider sweep, since
// the spec names these seven and no others.
var envVars = map[string]string{
	"HOST":               "host",
	"API_KEY":            "apiKey",
	"TIMEOUT":            "timeout",
	"DEBUG":              "debug",
	"PROFILE":            "profile",
	"STRICT_PERMISSIONS": "strictPermissions",
	"NO_COLOR":           "noColor",
}

// Overrides carries CLI-flag values that should win over every other
// source. Only keys the caller actually set (per cobra's Flag.Changed)
// belong here — Load must never see a flag's zero value as an intentional
// override.
type Overrides map[string]any

// LoadOptions parameters a single Load call.
type LoadOptions struct {
	// Overrides holds already-parsed CLI flag values, highest precedence.
	Overrides Overrides
}

// Load resolves Config per the precedence chain in spec §6 (highest
// wins): CLI flags → environment variables → project-local config file →
// user-home config file → XDG config directory file → struct defaults.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, apperr.Wrap(apperr.KindConfig, apperr.CodeConfigInvalid, "load config defaults", err)
	}

	profile := requestedProfile(opts.Overrides)

	for _, loc := range []func() (string, bool){xdgConfigPath, userHomeConfigPath, projectLocalConfigPath} {
		path, ok := loc()
		if !ok {
			continue
		}
		resolved, err := mergeConfigFile(k, path, profile)
		if err != nil {
			return nil, err
		}
		if resolved != "" {
			profile = resolved
		}
	}

	envMap := map[string]any{}
	for env, key := range envVars {
		if v, ok := os.LookupEnv(env); ok {
			envMap[key] = v
		}
	}
	if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
		return nil, apperr.Wrap(apperr.KindConfig, apperr.CodeConfigInvalid, "load environment configuration", err)
	}

	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, apperr.Wrap(apperr.KindConfig, apperr.CodeConfigInvalid, "load flag configuration", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, apperr.Wrap(apperr.KindConfig, apperr.CodeConfigInvalid, "unmarshal configuration", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, apperr.Wrap(apperr.KindConfig, apperr.CodeConfigInvalid, "validate configuration", err)
	}

	return &cfg, nil
}

// requestedProfile returns the profile name explicitly named on the
// command line, if any, before any config file is read.
func requestedProfile(overrides Overrides) string {
	if v, ok := overrides["profile"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return os.Getenv("PROFILE")
}

// mergeConfigFile loads path and merges it into k. Structured (multi-
// profile) files contribute only their selected profile's values;
// profile, if empty, falls back to the file's own "default" pointer,
// whose value is returned so later (higher-precedence) files can inherit
// it. Flat files merge directly.
func mergeConfigFile(k *koanf.Koanf, path, profile string) (string, error) {
	raw := koanf.New(".")
	if err := raw.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
		return "", apperr.Wrap(apperr.KindConfig, apperr.CodeConfigInvalid, fmt.Sprintf("load config file %s", path), err)
	}

	if !raw.Exists("profiles") {
		if err := k.Load(confmap.Provider(raw.Raw(), "."), nil); err != nil {
			return "", apperr.Wrap(apperr.KindConfig, apperr.CodeConfigInvalid, fmt.Sprintf("merge config file %s", path), err)
		}
		return "", nil
	}

	var parsed fileProfiles
	if err := raw.Unmarshal("", &parsed); err != nil {
		return "", apperr.Wrap(apperr.KindConfig, apperr.CodeConfigInvalid, fmt.Sprintf("parse profiles in %s", path), err)
	}

	selected := profile
	if selected == "" {
		selected = parsed.Default
	}
	if selected == "" {
		return parsed.Default, nil
	}

	profileMap, ok := parsed.Profiles[selected]
	if !ok {
		return parsed.Default, apperr.New(apperr.KindConfig, apperr.CodeConfigInvalid, fmt.Sprintf("profile %q not found in %s", selected, path))
	}
	if err := k.Load(confmap.Provider(profileMap, "."), nil); err != nil {
		return parsed.Default, apperr.Wrap(apperr.KindConfig, apperr.CodeConfigInvalid, fmt.Sprintf("merge profile %q from %s", selected, path), err)
	}
	return parsed.Default, nil
}

// CheckFileMode verifies path is not group/world-readable, returning an
// error in strict-permissions mode (spec §6: "Config files containing
// secrets must be mode 0600 in strict-permissions mode").
func CheckFileMode(path string, strict bool) error {
	if !strict {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return apperr.Wrap(apperr.KindIO, apperr.CodeIOError, fmt.Sprintf("stat config file %s", path), err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		return apperr.New(apperr.KindPermission, apperr.CodePermissionDenied,
			fmt.Sprintf("config file %s is mode %04o; must be 0600 or stricter in strict-permissions mode", path, info.Mode().Perm()))
	}
	return nil
}
