package utils

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// LoadTOMLFile loads and parses a TOML file into the provided struct
func LoadTOMLFile(configPath string, config any) error {
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		log.Warnf("TOML parsing error in config file %s: %v. Attempting partial recovery...", configPath, err)
		return err
	}
	return nil
}

// ParseTOMLWithRecovery attempts to parse a TOML file with partial recovery
func ParseTOMLWithRecovery(configPath string) (map[string]any, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v", configPath, err)
		return nil, err
	}
	return raw, nil
}

func extract[T any](data map[string]any, key string) (T, bool) {
	val, ok := data[key].(T)
	return val, ok
}

// ExtractSection returns a table of parsed TOML data
func ExtractSection(data map[string]any, sectionName string) (map[string]any, bool) {
	return extract[map[string]any](data, sectionName)
}

// ExtractInt64 returns a TOML integer as an int
func ExtractInt64(data map[string]any, key string) (int, bool) {
	val, ok := extract[int64](data, key)
	return int(val), ok
}

// ExtractBool returns a TOML boolean
func ExtractBool(data map[string]any, key string) (bool, bool) {
	return extract[bool](data, key)
}

// ExtractFloat safely extracts a float value from a map, accepting integers
func ExtractFloat(data map[string]any, key string) (float64, bool) {
	switch val := data[key].(type) {
	case float64:
		return val, true
	case int64:
		return float64(val), true
	}
	return 0, false
}

// ExtractString returns a TOML string
func ExtractString(data map[string]any, key string) (string, bool) {
	return extract[string](data, key)
}

// ExtractStrings extracts a string array from a map.
// Arrays holding anything but strings are rejected as a whole.
func ExtractStrings(data map[string]any, key string) ([]string, bool) {
	switch list := data[key].(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
