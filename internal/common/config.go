package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	OCR        OCRConfig
	Preprocess PreprocessConfig
	AI         AIConfig
	Cache      CacheConfig
	Pipeline   PipelineConfig
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Engine        string // "exec" | "gosseract"
	Language      string // tesseract language set, e.g. "fra+eng"
	DPI           int    // rasterization DPI for scanned PDFs
	MaxPages      int    // page cap for PDF extraction
	MinNativeChars int   // below this, a PDF text layer is treated as scanned

	TessdataDir         string
	EnableTSVConfidence bool
	EnablePreprocessing bool
}

// PreprocessConfig holds image preprocessing toggles and factors.
type PreprocessConfig struct {
	MinWidth  int     // upscale below this narrow-dimension width
	Sharpness float64 // sharpen amount
	Contrast  float64 // contrast factor

	DisableUpscale   bool
	DisableEnhance   bool
	DisableGrayscale bool
	DisableDenoise   bool
	DisableBinarize  bool
	DisableDeskew    bool
}

// AIConfig holds analysis-provider configuration
type AIConfig struct {
	Provider    string // default provider name: "openai" | "ollama"
	Model       string
	BaseURL     string
	APIKey      string
	OllamaHost  string
	Temperature float32
	Timeout     time.Duration

	MaxChars         int    // truncate analysis input beyond this
	BaselineLanguage string // language fallback of last resort
}

// CacheConfig holds the optional extraction cache location.
type CacheConfig struct {
	Path string // sqlite file; empty disables the cache
}

// PipelineConfig holds cross-stage thresholds.
type PipelineConfig struct {
	MaxFileSizeMB       int64
	StructuredThreshold float64 // min extraction confidence to attach structured data
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Pdftotext:           getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:            getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:           getEnv("TESSERACT_BIN", "tesseract"),
			Engine:              getEnv("OCR_ENGINE", "exec"),
			Language:            getEnv("OCR_LANGUAGE", "fra+eng"),
			DPI:                 getEnvAsInt("OCR_DPI", 300),
			MaxPages:            getEnvAsInt("OCR_MAX_PAGES", 50),
			MinNativeChars:      getEnvAsInt("OCR_MIN_NATIVE_CHARS", 100),
			TessdataDir:         getEnv("TESSDATA_PREFIX", ""),
			EnableTSVConfidence: getEnvAsBool("OCR_TSV_CONFIDENCE", false),
			EnablePreprocessing: getEnvAsBool("OCR_PREPROCESS", true),
		},
		Preprocess: PreprocessConfig{
			MinWidth:  getEnvAsInt("PREPROCESS_MIN_WIDTH", 1000),
			Sharpness: getEnvAsFloat64("PREPROCESS_SHARPNESS", 2.0),
			Contrast:  getEnvAsFloat64("PREPROCESS_CONTRAST", 1.5),
		},
		AI: AIConfig{
			Provider:         getEnv("AI_PROVIDER", "openai"),
			Model:            getEnv("AI_MODEL", "gpt-4o-mini"),
			BaseURL:          getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			APIKey:           getEnv("OPENAI_API_KEY", ""),
			OllamaHost:       getEnv("OLLAMA_HOST", ""),
			Temperature:      getEnvAsFloat32("AI_TEMPERATURE", 0.0),
			Timeout:          getEnvAsDuration("AI_TIMEOUT", 45*time.Second),
			MaxChars:         getEnvAsInt("AI_MAX_CHARS", 4000),
			BaselineLanguage: getEnv("AI_BASELINE_LANGUAGE", "fr"),
		},
		Cache: CacheConfig{
			Path: getEnv("EXTRACTION_CACHE_PATH", ""),
		},
		Pipeline: PipelineConfig{
			MaxFileSizeMB:       int64(getEnvAsInt("MAX_FILE_SIZE_MB", 25)),
			StructuredThreshold: getEnvAsFloat64("STRUCTURED_THRESHOLD", 0.5),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.OCR.DPI < 72 || c.OCR.DPI > 600 {
		return NewConfigurationError("OCR_DPI must be between 72 and 600", nil)
	}
	if c.OCR.MaxPages <= 0 {
		return NewConfigurationError("OCR_MAX_PAGES must be positive", nil)
	}
	if c.AI.Provider == "openai" && c.AI.APIKey == "" {
		return NewConfigurationError("OPENAI_API_KEY is required for the openai provider", nil)
	}
	if c.AI.Provider == "ollama" && c.AI.OllamaHost == "" {
		return NewConfigurationError("OLLAMA_HOST is required for the ollama provider", nil)
	}
	return nil
}
