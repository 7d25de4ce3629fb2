package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonas-oms/hygrotwin/internal/core/domain"
)

const roomTemplate = `type: room
required:
  profile:
    - name
    - floor
  data:
    - house_id
defaults:
  status: active
  data:
    measurements: []
    devices: []
    users: []
`

func writeTemplate(t *testing.T, dir, name, body string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644)
	assert.NoError(t, err)
}

func loadedRegistry(t *testing.T) *Registry {
	t.Helper()
	dir := t.TempDir()
	writeTemplate(t, dir, "room.yaml", roomTemplate)

	r := NewRegistry()
	assert.NoError(t, r.LoadDir(dir))
	return r
}

func TestLoadDirEmpty(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.LoadDir(t.TempDir()))
}

func TestLoadSchemaWithoutType(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "broken.yaml", "required:\n  profile:\n    - name\n")

	r := NewRegistry()
	assert.Error(t, r.LoadSchema(filepath.Join(dir, "broken.yaml")))
}

func TestValidatePresence(t *testing.T) {
	r := loadedRegistry(t)

	ok := &domain.Document{
		Profile: map[string]any{"name": "kitchen", "floor": 1},
		Data:    map[string]any{"house_id": "h1"},
	}
	assert.NoError(t, r.Validate("room", ok))

	missing := &domain.Document{
		Profile: map[string]any{"name": "kitchen"},
		Data:    map[string]any{"house_id": "h1"},
	}
	err := r.Validate("room", missing)
	assert.Error(t, err)
	assert.IsType(t, domain.ValidationError{}, err)
}

func TestValidateUnknownType(t *testing.T) {
	r := loadedRegistry(t)
	err := r.Validate("spaceship", &domain.Document{})
	assert.Error(t, err)
}

func TestFactorySeedsDefaultsAndMetadata(t *testing.T) {
	f := NewFactory(loadedRegistry(t))

	doc, err := f.NewDocument("room",
		map[string]any{"name": "kitchen", "floor": 1},
		map[string]any{"house_id": "h1"})
	assert.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "active", doc.Metadata["status"])
	assert.NotNil(t, doc.Metadata["created_at"])
	// defaults seeded alongside caller data
	assert.Contains(t, doc.Data, "measurements")
	assert.Contains(t, doc.Data, "devices")
	assert.Equal(t, "h1", doc.Data["house_id"])
}

func TestFactoryCallerValuesWinOverDefaults(t *testing.T) {
	f := NewFactory(loadedRegistry(t))

	doc, err := f.NewDocument("room",
		map[string]any{"name": "kitchen", "floor": 1},
		map[string]any{"house_id": "h1", "devices": []any{"led1"}})
	assert.NoError(t, err)
	assert.Equal(t, []any{"led1"}, doc.Data["devices"])
}

func TestFactoryRejectsMissingRequired(t *testing.T) {
	f := NewFactory(loadedRegistry(t))

	_, err := f.NewDocument("room", map[string]any{"name": "kitchen"}, nil)
	assert.Error(t, err)
	assert.IsType(t, domain.ValidationError{}, err)
}
