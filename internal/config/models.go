package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ModelCatalog is the YAML shape of ANALYSIS_MODELS_FILE.
//
//	preferred: deepseek/deepseek-r1-0528:free
//	fallbacks:
//	  - meta-llama/llama-3.3-8b-instruct:free
//	  - qwen/qwen3-8b
type ModelCatalog struct {
	Preferred string   `yaml:"preferred"`
	Fallbacks []string `yaml:"fallbacks"`
}

// Candidates returns the preferred model followed by its fallbacks, blanks removed.
func (m ModelCatalog) Candidates() []string {
	out := make([]string, 0, len(m.Fallbacks)+1)
	if p := strings.TrimSpace(m.Preferred); p != "" {
		out = append(out, p)
	}
	for _, f := range m.Fallbacks {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// LoadModelCatalog reads a model catalog from a YAML file.
func LoadModelCatalog(path string) (ModelCatalog, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return ModelCatalog{}, fmt.Errorf("failed to get absolute path: %w", err)
	}
	// #nosec G304 -- path comes from operator configuration
	content, err := os.ReadFile(absPath)
	if err != nil {
		return ModelCatalog{}, fmt.Errorf("failed to read model catalog: %w", err)
	}
	var catalog ModelCatalog
	if err := yaml.Unmarshal(content, &catalog); err != nil {
		return ModelCatalog{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(catalog.Candidates()) == 0 {
		return ModelCatalog{}, fmt.Errorf("no models found in catalog: %s", path)
	}
	return catalog, nil
}
