package timeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML timeline config. Missing sections keep their defaults.
func LoadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read timeline file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse timeline file: %w", err)
	}
	if cfg.WindowEnd < cfg.WindowStart {
		return Config{}, fmt.Errorf("window_end_days %d before window_start_days %d", cfg.WindowEnd, cfg.WindowStart)
	}
	for locale, entries := range cfg.Templates {
		if len(entries) == 0 {
			return Config{}, fmt.Errorf("template %q has no entries", locale)
		}
	}
	return cfg, nil
}
