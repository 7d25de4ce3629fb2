package schema

import (
	"time"

	"github.com/jonas-oms/hygrotwin/internal/core/domain"

	"github.com/google/uuid"
)

// Factory builds digital replicas from templates: defaults are seeded,
// required fields validated, ids generated, metadata stamped.
type Factory struct {
	registry *Registry
}

func NewFactory(registry *Registry) *Factory {
	return &Factory{registry: registry}
}

func (f *Factory) NewDocument(docType string, profile, data map[string]any) (*domain.Document, error) {
	s, ok := f.registry.Schema(docType)
	if !ok {
		return nil, domain.ValidationError{Message: "unknown document type: " + docType}
	}

	now := time.Now().UTC()
	status := s.Defaults.Status
	if status == "" {
		status = domain.DOC_STATUS_ACTIVE
	}
	doc := &domain.Document{
		ID:      uuid.NewString(),
		Profile: mergeDefaults(s.Defaults.Profile, profile),
		Data:    mergeDefaults(s.Defaults.Data, data),
		Metadata: map[string]any{
			"status":     status,
			"created_at": now,
			"updated_at": now,
		},
	}

	if err := f.registry.Validate(docType, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// mergeDefaults seeds template defaults, then overlays the caller's values.
func mergeDefaults(defaults, values map[string]any) map[string]any {
	out := make(map[string]any, len(defaults)+len(values))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range values {
		out[k] = v
	}
	return out
}
