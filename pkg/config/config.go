package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by every command.
type Config struct {
	// Charset is the character encoding handed to the tokenizer.
	Charset string
	// TokenizerRetries bounds the retries after a tokenizer init failure.
	TokenizerRetries int
	// Cache enables the per-document analysis cache.
	Cache bool
	// DBPath is the SQLite glossary. Empty disables recording.
	DBPath string
	// DictionaryPath is a jmdict-simplified JSON file used for glosses.
	DictionaryPath string
	// FetchDictionary downloads the dictionary when DictionaryPath is missing.
	FetchDictionary bool
	// BatchSize is the number of glossary writes per transaction.
	BatchSize int

	Log LogConfig
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment, after loading envFilePath
// when it is set and exists.
func Load(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// A missing .env file is fine; the environment alone is enough.
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		Charset:          getEnv("NICHIEI_CHARSET", "UTF-8"),
		TokenizerRetries: getEnvAsInt("NICHIEI_TOKENIZER_RETRIES", 10),
		Cache:            getEnvAsBool("NICHIEI_CACHE", true),
		DBPath:           getEnv("NICHIEI_DB", ""),
		DictionaryPath:   getEnv("NICHIEI_DICTIONARY", ""),
		FetchDictionary:  getEnvAsBool("NICHIEI_FETCH_DICTIONARY", false),
		BatchSize:        getEnvAsInt("NICHIEI_BATCH_SIZE", 200),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
	return cfg, nil
}

// getEnv returns the environment value of key, or defaultValue when unset.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
