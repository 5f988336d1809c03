package config

import "fmt"

// ConfigurationError reports an invalid or missing configuration value
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error: '%s' %s", e.Field, e.Message)
}
