package util

import (
	"github.com/BurntSushi/toml"
)

type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`

	LogLevel  string `toml:"log_level"`
	LogFile   string `toml:"log_file"`
	NoResolve bool   `toml:"no_resolve"`
}

// LoadConfigFile merges values from a TOML file into cfg. Keys absent from
// the file leave the existing values alone; flag handling in cmd/app applies
// explicit flags on top afterwards.
func LoadConfigFile(path string, cfg *Configuration) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}
