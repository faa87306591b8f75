package props

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/vvka-141/pgscan/pkg/pgscan"
)

// LoadEnvFile reads a .env file into a property map. godotenv expands
// $VAR references in unquoted and double-quoted values, so ${key:default}
// expressions meant for a Resolver must be single-quoted.
func LoadEnvFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read env file %s: %w", pgscan.ErrInvalidConfig, path, err)
	}
	return values, nil
}

// ParseKeyValuePairs converts "key=value" strings into a map.
//
// Example:
//
//	pairs, err := ParseKeyValuePairs([]string{"env=prod", "app.name=demo"})
//	// Returns: map[string]string{"env": "prod", "app.name": "demo"}
func ParseKeyValuePairs(pairs []string) (map[string]string, error) {
	result := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%w: property %q is not in key=value format (example: --property env=production)", pgscan.ErrInvalidConfig, pair)
		}
		if key == "" {
			return nil, fmt.Errorf("%w: property has empty key: %q", pgscan.ErrInvalidConfig, pair)
		}
		result[key] = value
	}

	return result, nil
}
