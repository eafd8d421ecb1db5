package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Waziup/single_chan_radio/logger"
	"github.com/Waziup/single_chan_radio/lora"
)

const defaultConfigFile = "global_conf.json"

// GlobalConfig represents a "global_conf.json" (or .yaml) file.
type GlobalConfig struct {
	SX127XConf *lora.Config `json:"SX127X_conf" yaml:"SX127X_conf"`
	LogLevel   string       `json:"log_level" yaml:"log_level"`
}

// LoadGlobalConfig reads path on top of the defaults. A missing default
// config file is not an error.
func LoadGlobalConfig(path string) (*GlobalConfig, error) {
	cfg := &GlobalConfig{
		SX127XConf: lora.DefaultConfig(),
		LogLevel:   logger.LevelNormal,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == defaultConfigFile {
			return cfg, nil
		}
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("can not parse %q: %v", path, err)
	}
	if cfg.SX127XConf == nil {
		return nil, fmt.Errorf("no SX127X_conf in %q", path)
	}
	return cfg, nil
}
