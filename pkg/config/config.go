/*
Package config manages TOML config for sylla.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bastiangx/sylla/internal/utils"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Engine     EngineConfig     `toml:"engine"`
	Translator TranslatorConfig `toml:"translator"`
	Server     ServerConfig     `toml:"server"`
	Dict       DictConfig       `toml:"dict"`
}

// EngineConfig controls how input is syllabified.
type EngineConfig struct {
	Delimiters         string   `toml:"delimiters"`
	EnableCompletion   bool     `toml:"enable_completion"`
	EnableCorrection   bool     `toml:"enable_correction"`
	StrictSpelling     bool     `toml:"strict_spelling"`
	EnableAbbreviation bool     `toml:"enable_abbreviation"`
	Fuzzy              []string `toml:"fuzzy"`
}

// TranslatorConfig controls candidate generation.
type TranslatorConfig struct {
	MaxCandidates    int     `toml:"max_candidates"`
	MaxSyllables     int     `toml:"max_syllables"`
	PrefetchSize     int     `toml:"prefetch_size"`
	PrefetchLowWater int     `toml:"prefetch_low_water"`
	HistoryWeight    float64 `toml:"history_weight"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit int `toml:"max_limit"`
	MinInput int `toml:"min_input"`
	MaxInput int `toml:"max_input"`
}

// DictConfig holds dictionary options.
type DictConfig struct {
	Path string `toml:"path"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Delimiters:         "'",
			EnableCompletion:   true,
			EnableCorrection:   false,
			StrictSpelling:     false,
			EnableAbbreviation: true,
			Fuzzy:              []string{},
		},
		Translator: TranslatorConfig{
			MaxCandidates:    24,
			MaxSyllables:     8,
			PrefetchSize:     8,
			PrefetchLowWater: 2,
			HistoryWeight:    1.0,
		},
		Server: ServerConfig{
			MaxLimit: 64,
			MinInput: 1,
			MaxInput: 60,
		},
		Dict: DictConfig{
			Path: "data/",
		},
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if c.Translator.MaxCandidates < 0 {
		return fmt.Errorf("translator.max_candidates must not be negative, got %d", c.Translator.MaxCandidates)
	}
	if c.Translator.MaxSyllables < 1 {
		return fmt.Errorf("translator.max_syllables must be positive, got %d", c.Translator.MaxSyllables)
	}
	if c.Translator.HistoryWeight < 0 {
		return fmt.Errorf("translator.history_weight must not be negative, got %v", c.Translator.HistoryWeight)
	}
	if c.Server.MinInput > c.Server.MaxInput {
		return fmt.Errorf("server.min_input %d exceeds server.max_input %d", c.Server.MinInput, c.Server.MaxInput)
	}
	return nil
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/sylla
// 2. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err == nil {
		primaryPath := filepath.Join(homeDir, ".config", utils.AppName)
		if result := utils.CheckDirStatus(primaryPath); result.Writable {
			return primaryPath, nil
		}
	} else {
		log.Errorf("Failed to get home directory: %v", err)
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/sylla/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file. Settings that fail to parse or
// validate fall back to their defaults section by section.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	if err := config.Validate(); err != nil {
		log.Warnf("Invalid config in %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// tryPartialParse recovers every well-typed value of a config file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "engine"); ok {
		extractEngineConfig(section, &config.Engine)
	}
	if section, ok := utils.ExtractSection(tempConfig, "translator"); ok {
		extractTranslatorConfig(section, &config.Translator)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		extractDictConfig(section, &config.Dict)
	}
	if err := config.Validate(); err != nil {
		log.Warnf("Invalid config in %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	if val, ok := utils.ExtractString(data, "delimiters"); ok {
		engine.Delimiters = val
	}
	if val, ok := utils.ExtractBool(data, "enable_completion"); ok {
		engine.EnableCompletion = val
	}
	if val, ok := utils.ExtractBool(data, "enable_correction"); ok {
		engine.EnableCorrection = val
	}
	if val, ok := utils.ExtractBool(data, "strict_spelling"); ok {
		engine.StrictSpelling = val
	}
	if val, ok := utils.ExtractBool(data, "enable_abbreviation"); ok {
		engine.EnableAbbreviation = val
	}
	if val, ok := utils.ExtractStrings(data, "fuzzy"); ok {
		engine.Fuzzy = val
	}
}

func extractTranslatorConfig(data map[string]any, translator *TranslatorConfig) {
	if val, ok := utils.ExtractInt64(data, "max_candidates"); ok {
		translator.MaxCandidates = val
	}
	if val, ok := utils.ExtractInt64(data, "max_syllables"); ok {
		translator.MaxSyllables = val
	}
	if val, ok := utils.ExtractInt64(data, "prefetch_size"); ok {
		translator.PrefetchSize = val
	}
	if val, ok := utils.ExtractInt64(data, "prefetch_low_water"); ok {
		translator.PrefetchLowWater = val
	}
	if val, ok := utils.ExtractFloat(data, "history_weight"); ok {
		translator.HistoryWeight = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "min_input"); ok {
		server.MinInput = val
	}
	if val, ok := utils.ExtractInt64(data, "max_input"); ok {
		server.MaxInput = val
	}
}

func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		dict.Path = val
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}
