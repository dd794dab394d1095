package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every environment variable read by ledgerdesk
// processes. Struct tags omit it.
const EnvPrefix = "LEDGERDESK_"

// ParseEnv loads configuration from LEDGERDESK_-prefixed environment
// variables.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
