package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonas-oms/hygrotwin/internal/core/domain"

	"gopkg.in/yaml.v3"
)

// Schema declares, per document type, which fields must be present at
// creation and which defaults to seed. Validation checks presence only:
// the attribute set stays open and nothing is enforced on later updates.
type Schema struct {
	Type     string              `yaml:"type"`
	Required map[string][]string `yaml:"required"`
	Defaults Defaults            `yaml:"defaults"`
}

type Defaults struct {
	Status  string         `yaml:"status"`
	Profile map[string]any `yaml:"profile"`
	Data    map[string]any `yaml:"data"`
}

type Registry struct {
	schemas map[string]*Schema
}

func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]*Schema),
	}
}

func (r *Registry) LoadSchema(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var s Schema
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("parse template %s: %w", path, err)
	}
	if s.Type == "" {
		return fmt.Errorf("template %s declares no type", path)
	}
	r.schemas[s.Type] = &s
	return nil
}

// LoadDir loads every *.yaml template in dir, keyed by the declared type.
func (r *Registry) LoadDir(dir string) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no templates found in %s", dir)
	}
	for _, p := range paths {
		if err := r.LoadSchema(p); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) Schema(docType string) (*Schema, bool) {
	s, ok := r.schemas[docType]
	return s, ok
}

// Validate checks that every declared required field is present in the
// matching document zone.
func (r *Registry) Validate(docType string, doc *domain.Document) error {
	s, ok := r.schemas[docType]
	if !ok {
		return domain.ValidationError{Message: fmt.Sprintf("unknown document type: %s", docType)}
	}
	zones := map[string]map[string]any{
		"profile": doc.Profile,
		"data":    doc.Data,
	}
	for zone, fields := range s.Required {
		for _, field := range fields {
			if _, ok := zones[zone][field]; !ok {
				return domain.ValidationError{
					Message: fmt.Sprintf("missing required field %s.%s for %s", zone, field, docType),
				}
			}
		}
	}
	return nil
}
