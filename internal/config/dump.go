package config

import (
	"gopkg.in/yaml.v3"
)

const redacted = "<redacted>"

// Dump renders cfg as YAML with secrets redacted.
func Dump(cfg *Config) ([]byte, error) {
	c := *cfg
	if c.Anthropic.APIKey != "" {
		c.Anthropic.APIKey = redacted
	}
	return yaml.Marshal(&c)
}
