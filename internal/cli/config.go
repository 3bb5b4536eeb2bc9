package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/slotview/pkg/render"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// envPrefix prefixes environment overrides, e.g. SLOTVIEW_OUTPUT.
	envPrefix = "SLOTVIEW"
)

// Config keys.
const (
	cfgKeyDataDir    = "data_dir"
	cfgKeyOutput     = "output"
	cfgKeySlotFormat = "slot_format"
	cfgKeyColor      = "color"
	cfgKeyLogLevel   = "log_level"
)

// configFile is the structure init writes to config.yaml.
type configFile struct {
	DataDir    string `yaml:"data_dir,omitempty"`
	Output     string `yaml:"output"`
	SlotFormat string `yaml:"slot_format"`
	Color      bool   `yaml:"color"`
	LogLevel   string `yaml:"log_level"`
}

func defaultConfig() configFile {
	return configFile{
		Output:     string(render.ModeAuto),
		SlotFormat: string(render.SlotDecimal),
		Color:      true,
		LogLevel:   "warn",
	}
}

// loadConfig reads config.yaml from configDir. Precedence per key is
// flag > SLOTVIEW_<KEY> env > config.yaml > default. data_dir takes no env
// override here; paths.ResolveDataDir applies SLOTVIEW_DATA_DIR after it.
// A missing config.yaml is not an error.
func loadConfig(configDir string, flags *pflag.FlagSet) (*viper.Viper, error) {
	def := defaultConfig()

	v := viper.New()
	v.SetDefault(cfgKeyOutput, def.Output)
	v.SetDefault(cfgKeySlotFormat, def.SlotFormat)
	v.SetDefault(cfgKeyColor, def.Color)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	for _, key := range []string{cfgKeyOutput, cfgKeySlotFormat, cfgKeyColor, cfgKeyLogLevel} {
		if err := v.BindEnv(key); err != nil {
			return nil, systemError(fmt.Errorf("bind env %s: %w", key, err))
		}
	}
	if flags != nil {
		for key, name := range map[string]string{cfgKeyOutput: "output", cfgKeySlotFormat: "slot-format"} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, systemError(fmt.Errorf("bind flag %s: %w", name, err))
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml with default values. An existing
// file is left alone and reported with written == false.
func writeConfigIfMissing(path, dataDir string) (written bool, err error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := defaultConfig()
	cfg.DataDir = dataDir
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
