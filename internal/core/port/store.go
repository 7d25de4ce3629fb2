package port

import (
	"context"

	"github.com/jonas-oms/hygrotwin/internal/core/domain"
)

// DocumentStore is the persistence capability for digital replicas.
// Updates are partial merges with no transactional guarantee: a
// read-modify-write cycle against the same document can lose a concurrent
// update.
type DocumentStore interface {
	Save(ctx context.Context, docType string, doc *domain.Document) (string, error)
	Get(ctx context.Context, docType string, id string) (*domain.Document, error)
	Update(ctx context.Context, docType string, id string, update domain.DocumentUpdate) error
	Query(ctx context.Context, docType string, filter map[string]any) ([]domain.Document, error)
	Delete(ctx context.Context, docType string, id string) error
}
