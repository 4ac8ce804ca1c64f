package config

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

const (
	configFileName = "config.yaml"
	appDirName     = "flowctl"
)

// projectLocalConfigPath returns the config file in the current working
// directory, e.g. ./.flowctl/config.yaml, when it exists.
func projectLocalConfigPath() (string, bool) {
	wd, err := os.Getwd()
	if err != nil {
		return "", false
	}
	return existingPath(filepath.Join(wd, ".flowctl", configFileName))
}

// userHomeConfigPath returns ~/.flowctl/config.yaml, when it exists.
func userHomeConfigPath() (string, bool) {
	home, err := homedir.Dir()
	if err != nil {
		return "", false
	}
	return existingPath(filepath.Join(home, ".flowctl", configFileName))
}

// xdgConfigPath returns $XDG_CONFIG_HOME/flowctl/config.yaml, falling back
// to ~/.config/flowctl/config.yaml per the XDG base directory spec, when
// it exists.
func xdgConfigPath() (string, bool) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return existingPath(filepath.Join(dir, appDirName, configFileName))
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", false
	}
	return existingPath(filepath.Join(home, ".config", appDirName, configFileName))
}

// DataDir resolves the directory pkg/store and pkg/kb use for their
// SQLite databases: $XDG_DATA_HOME/flowctl, falling back to
// ~/.flowctl/data (spec §4.F "the user data directory resolved by
// pkg/config (XDG data home, falling back to ~/.flowctl)").
func DataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appDirName), nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".flowctl", "data"), nil
}

func existingPath(path string) (string, bool) {
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
