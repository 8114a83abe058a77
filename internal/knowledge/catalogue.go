package knowledge

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalogue.yaml
var embeddedCatalogue []byte

// Item is a single knowledge snippet.
type Item struct {
	ID      string   `yaml:"id" json:"id"`
	Content string   `yaml:"content" json:"content"`
	Metrics []string `yaml:"metrics" json:"metrics"`
}

// Namespace describes one knowledge domain and its ordered items.
type Namespace struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Metrics     []string `yaml:"metrics" json:"metrics"`
	Items       []Item   `yaml:"items" json:"-"`
}

// Principle is one of the core strategic principles.
type Principle struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Catalogue is the static knowledge configuration.
type Catalogue struct {
	Namespaces []Namespace `yaml:"namespaces"`
	Principles []Principle `yaml:"principles"`
}

// DefaultCatalogue parses the catalogue compiled into the binary.
func DefaultCatalogue() (*Catalogue, error) {
	return ParseCatalogue(embeddedCatalogue)
}

// LoadCatalogue reads a catalogue from path, or the embedded one when path is
// empty.
func LoadCatalogue(path string) (*Catalogue, error) {
	if path == "" {
		return DefaultCatalogue()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge catalogue: %w", err)
	}
	cat, err := ParseCatalogue(data)
	if err != nil {
		return nil, fmt.Errorf("knowledge catalogue %s: %w", path, err)
	}
	return cat, nil
}

// ParseCatalogue decodes YAML and checks namespace ids are present and unique.
func ParseCatalogue(data []byte) (*Catalogue, error) {
	var cat Catalogue
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}
	if len(cat.Namespaces) == 0 {
		return nil, errors.New("catalogue defines no namespaces")
	}
	seen := make(map[string]bool, len(cat.Namespaces))
	for _, ns := range cat.Namespaces {
		if ns.ID == "" {
			return nil, errors.New("namespace without id")
		}
		if seen[ns.ID] {
			return nil, fmt.Errorf("duplicate namespace %q", ns.ID)
		}
		seen[ns.ID] = true
	}
	return &cat, nil
}
