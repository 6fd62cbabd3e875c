package config

import (
	"os"
	"strconv"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	OCR    OCRConfig
	Export ExportConfig
	Log    LogConfig
}

// OCRConfig configures the external text-recognition collaborators.
type OCRConfig struct {
	TesseractPath string
	PdftoppmPath  string
	PdftotextPath string
	Language      string
	DPI           int
	Threshold     int
}

type ExportConfig struct {
	DefaultFormat string
}

type LogConfig struct {
	File    string
	Verbose bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		OCR: OCRConfig{
			TesseractPath: getEnv("TESSERACT_PATH", "tesseract"),
			PdftoppmPath:  getEnv("PDFTOPPM_PATH", "pdftoppm"),
			PdftotextPath: getEnv("PDFTOTEXT_PATH", "pdftotext"),
			Language:      getEnv("OCR_LANGUAGE", "eng"),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			Threshold:     getEnvAsInt("OCR_THRESHOLD", 150),
		},
		Export: ExportConfig{
			DefaultFormat: getEnv("EXPORT_FORMAT", "xlsx"),
		},
		Log: LogConfig{
			File:    getEnv("LOG_FILE", ""),
			Verbose: getEnvAsBool("LOG_VERBOSE", false),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
