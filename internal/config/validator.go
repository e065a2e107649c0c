package config

import (
	"os"
	"strings"
)

// insecureExamples maps env vars to the placeholder values shipped in .env.example
var insecureExamples = map[string]string{
	"DB_PASSWORD": "change_this_secure_password",
	"API_KEY":     "generate_with_openssl_rand_hex_32",
}

// Warnings lists settings that work but should not reach production
func (c *Config) Warnings() []string {
	var warnings []string
	for key, example := range insecureExamples {
		if os.Getenv(key) == example {
			warnings = append(warnings, key+" appears to be using the example value")
		}
	}
	if c.Storage == StorageMemory && strings.EqualFold(c.Environment, "production") {
		warnings = append(warnings, "STORAGE=memory loses all state on restart")
	}
	if len(c.APIKey) > 0 && len(c.APIKey) < 16 {
		warnings = append(warnings, "API_KEY is shorter than 16 characters")
	}
	return warnings
}
