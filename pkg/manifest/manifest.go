package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Filename is the manifest marker at every Lando project root.
const Filename = ".lando.yml"

// Manifest is the subset of a .lando.yml file the panel cares about.
type Manifest struct {
	Name     string              `yaml:"name"`
	Recipe   string              `yaml:"recipe,omitempty"`
	Config   *Config             `yaml:"config,omitempty"`
	Services map[string]Service  `yaml:"services,omitempty"`
	Proxy    map[string][]string `yaml:"proxy,omitempty"`
}

// Config holds recipe-level settings.
type Config struct {
	Webroot  string `yaml:"webroot,omitempty"`
	PHP      string `yaml:"php,omitempty"`
	Database string `yaml:"database,omitempty"`
}

// Service is one service definition in the manifest.
type Service struct {
	Type  string   `yaml:"type"`
	Port  int      `yaml:"port,omitempty"`
	Build []string `yaml:"build,omitempty"`
}

// Parse decodes manifest YAML.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// Load reads and parses the manifest at path. If path is a directory, the
// manifest file inside it is loaded.
func Load(path string) (*Manifest, error) {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, Filename)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Save writes the manifest as YAML to path.
func Save(m *Manifest, path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
