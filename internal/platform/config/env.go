// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseEnvWithLookup loads configuration using lookup instead of the process
// environment. A nil lookup behaves like an empty environment.
func ParseEnvWithLookup(target any, lookup func(string) (string, bool)) error {
	environment := map[string]string{}
	if lookup != nil {
		resolved, err := lookupEnvironment(target, lookup)
		if err != nil {
			return fmt.Errorf("parse env: %w", err)
		}
		environment = resolved
	}
	if err := env.ParseWithOptions(target, env.Options{Environment: environment}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func lookupEnvironment(target any, lookup func(string) (string, bool)) (map[string]string, error) {
	params, err := env.GetFieldParams(target)
	if err != nil {
		return nil, err
	}
	environment := make(map[string]string)
	for _, key := range params {
		name := strings.TrimSpace(key.Key)
		if name == "" {
			continue
		}
		if value, ok := lookup(name); ok {
			environment[name] = value
		}
	}
	return environment, nil
}
