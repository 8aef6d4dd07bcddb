package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/relaybot/internal/security"
)

// Dump renders cfg as YAML with every secret replaced by the redaction
// placeholder.
func Dump(cfg *Config) ([]byte, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}

	var generic map[string]any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("config: re-parse: %w", err)
	}

	r := security.NewRedactor()
	r.AddLiteral(cfg.Secrets()...)
	r.RedactMap(generic)

	out, err := yaml.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}
	return out, nil
}
