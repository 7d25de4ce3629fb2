package store

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/jonas-oms/hygrotwin/internal/core/domain"
	"github.com/jonas-oms/hygrotwin/internal/core/port"

	"github.com/google/uuid"
)

// MemoryStore is an in-process DocumentStore with the same merge semantics
// as the Mongo adapter. Used by tests and as a fallback when no database is
// reachable. It deliberately mirrors the non-transactional behavior of the
// real store: Get hands out a deep copy, and Update merges whatever the
// caller computed from it.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]*domain.Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]map[string]*domain.Document),
	}
}

func (s *MemoryStore) Save(_ context.Context, docType string, doc *domain.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if s.docs[docType] == nil {
		s.docs[docType] = make(map[string]*domain.Document)
	}
	s.docs[docType][doc.ID] = copyDocument(doc)
	return doc.ID, nil
}

func (s *MemoryStore) Get(_ context.Context, docType string, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[docType][id]
	if !ok {
		return nil, domain.NotFoundError{DocType: docType, ID: id}
	}
	return copyDocument(doc), nil
}

func (s *MemoryStore) Update(_ context.Context, docType string, id string, update domain.DocumentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[docType][id]
	if !ok {
		return domain.NotFoundError{DocType: docType, ID: id}
	}
	for path, value := range FlattenUpdate(update) {
		applyPath(doc, path, value)
	}
	applyPath(doc, "metadata.updated_at", time.Now().UTC())
	return nil
}

func (s *MemoryStore) Query(_ context.Context, docType string, filter map[string]any) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Document
	for _, doc := range s.docs[docType] {
		if matchesFilter(doc, filter) {
			out = append(out, *copyDocument(doc))
		}
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, docType string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[docType][id]; !ok {
		return domain.NotFoundError{DocType: docType, ID: id}
	}
	delete(s.docs[docType], id)
	return nil
}

func applyPath(doc *domain.Document, path string, value any) {
	parts := strings.Split(path, ".")
	var zone map[string]any
	switch parts[0] {
	case "profile":
		if doc.Profile == nil {
			doc.Profile = map[string]any{}
		}
		zone = doc.Profile
	case "data":
		if doc.Data == nil {
			doc.Data = map[string]any{}
		}
		zone = doc.Data
	case "metadata":
		if doc.Metadata == nil {
			doc.Metadata = map[string]any{}
		}
		zone = doc.Metadata
	default:
		return
	}
	for _, key := range parts[1 : len(parts)-1] {
		next, ok := zone[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			zone[key] = next
		}
		zone = next
	}
	zone[parts[len(parts)-1]] = value
}

// matchesFilter supports the dotted equality filters the handlers use
// (e.g. "profile.username"). Values compare with DeepEqual, so filtering
// on a slice-valued field is allowed.
func matchesFilter(doc *domain.Document, filter map[string]any) bool {
	for path, want := range filter {
		parts := strings.Split(path, ".")
		var zone map[string]any
		switch parts[0] {
		case "profile":
			zone = doc.Profile
		case "data":
			zone = doc.Data
		case "metadata":
			zone = doc.Metadata
		default:
			return false
		}
		var got any = zone
		for _, key := range parts[1:] {
			m, ok := got.(map[string]any)
			if !ok {
				return false
			}
			got = m[key]
		}
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func copyDocument(doc *domain.Document) *domain.Document {
	return &domain.Document{
		ID:       doc.ID,
		Profile:  copyZone(doc.Profile),
		Data:     copyZone(doc.Data),
		Metadata: copyZone(doc.Metadata),
	}
}

func copyZone(zone map[string]any) map[string]any {
	if zone == nil {
		return nil
	}
	out := make(map[string]any, len(zone))
	for k, v := range zone {
		switch tv := v.(type) {
		case map[string]any:
			out[k] = copyZone(tv)
		case []any:
			cp := make([]any, len(tv))
			copy(cp, tv)
			out[k] = cp
		default:
			out[k] = v
		}
	}
	return out
}

// ensure interface compliance
var _ port.DocumentStore = (*MemoryStore)(nil)
