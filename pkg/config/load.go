package config

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/id88/urlspider/pkg/utils"
)

// LoadFile reads an AppConfig from a YAML file. Unknown keys are rejected so
// typos surface as configuration errors instead of silently ignored options.
func LoadFile(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.WrapErrorf(utils.ErrConfigValidation, "reading config file %s: %v", path, err)
	}

	var cfg AppConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, utils.WrapErrorf(utils.ErrConfigValidation, "parsing config file %s: %v", path, err)
	}
	return &cfg, nil
}
