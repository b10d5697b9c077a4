package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aletheialabs/aletheia/internal/core"
)

// ManifestEntry maps one source file to its human title and content type.
type ManifestEntry struct {
	File        string `yaml:"file"`
	Title       string `yaml:"title"`
	ContentType string `yaml:"content_type"`
}

// Manifest lists the documents of a batch ingestion run. Core-config
// documents live in the config directory, everything else in the data
// directory.
type Manifest struct {
	DataDir   string          `yaml:"data_dir"`
	ConfigDir string          `yaml:"config_dir"`
	Documents []ManifestEntry `yaml:"documents"`
}

// LoadManifest reads an ingestion manifest from a YAML file and applies
// directory defaults.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.DataDir == "" {
		m.DataDir = "data"
	}
	if m.ConfigDir == "" {
		m.ConfigDir = "configs"
	}
	return &m, nil
}

// PathFor resolves an entry's file against the manifest directories.
func (m *Manifest) PathFor(e ManifestEntry) string {
	if e.ContentType == string(core.ContentCoreConfig) {
		return filepath.Join(m.ConfigDir, e.File)
	}
	return filepath.Join(m.DataDir, e.File)
}

// GetEnv returns an environment variable or a default when unset.
func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
