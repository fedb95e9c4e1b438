package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Extractor   ExtractorConfig
	Recognition RecognitionConfig
	Database    DatabaseConfig
	Gallery     GalleryConfig
}

type ExtractorConfig struct {
	URL     string // defaults to http://localhost:8000
	Timeout int    // request timeout in seconds (default 30)
}

type RecognitionConfig struct {
	Tolerance float64 `yaml:"tolerance"` // max accepted probe-to-reference distance
	Dim       int     `yaml:"dim"`       // embedding dimension
	MaxFaces  int     `yaml:"max_faces"` // cap on faces per submitted photo
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type GalleryConfig struct {
	Path      string // file-backed gallery path, used when no database is configured
	ImagesDir string // enrollment images directory for train/rebuild
}

// recognitionDefaults mirrors the embedded defaults.yaml layout.
type recognitionDefaults struct {
	Recognition RecognitionConfig `yaml:"recognition"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var defaults recognitionDefaults
	if err := yaml.Unmarshal(defaultsYAML, &defaults); err != nil {
		// Embedded file, should never happen in practice.
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	return &Config{
		Extractor: ExtractorConfig{
			URL:     os.Getenv("EXTRACTOR_URL"),
			Timeout: envInt("EXTRACTOR_TIMEOUT", 30),
		},
		Recognition: RecognitionConfig{
			Tolerance: envFloat("RECOGNITION_TOLERANCE", defaults.Recognition.Tolerance),
			Dim:       envInt("EMBEDDING_DIM", defaults.Recognition.Dim),
			MaxFaces:  envInt("RECOGNITION_MAX_FACES", defaults.Recognition.MaxFaces),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Gallery: GalleryConfig{
			Path:      envString("GALLERY_PATH", "gallery.json"),
			ImagesDir: envString("TRAINING_IMAGES_DIR", "training_images"),
		},
	}
}
