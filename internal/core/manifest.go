package core

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

const ManifestFile = "manifest.yaml"

// Manifest describes an artifact that was exported outside this service.
type Manifest struct {
	Type        ModelType `yaml:"type" json:"type"`
	File        string    `yaml:"file" json:"file"`
	Features    []string  `yaml:"features" json:"features,omitempty"`
	Version     string    `yaml:"version" json:"version,omitempty"`
	Description string    `yaml:"description" json:"description,omitempty"`
}

func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("error reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.UnmarshalStrict(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("error parsing manifest %s: %w", path, err)
	}

	if m.File == "" {
		return Manifest{}, fmt.Errorf("manifest %s does not name an artifact file", path)
	}
	if len(m.Features) != 0 && len(m.Features) != FeatureCount {
		return Manifest{}, fmt.Errorf("%w: manifest lists features %v", ErrFeatureCountInvalid, m.Features)
	}

	return m, nil
}

// ArtifactPath resolves the manifest's file relative to the manifest directory.
func (m Manifest) ArtifactPath(manifestPath string) string {
	if filepath.IsAbs(m.File) {
		return m.File
	}
	return filepath.Join(filepath.Dir(manifestPath), m.File)
}
