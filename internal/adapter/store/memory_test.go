package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonas-oms/hygrotwin/internal/core/domain"
)

func TestMemoryStoreSaveAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Save(ctx, domain.DOC_TYPE_ROOM, &domain.Document{
		Profile: map[string]any{"name": "kitchen"},
		Data:    map[string]any{"house_id": "h1"},
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, id)

	room, err := s.Get(ctx, domain.DOC_TYPE_ROOM, id)
	assert.NoError(t, err)
	name, _ := room.ProfileString("name")
	assert.Equal(t, "kitchen", name)
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), domain.DOC_TYPE_ROOM, "ghost")
	assert.Error(t, err)
	assert.IsType(t, domain.NotFoundError{}, err)
}

func TestMemoryStoreUpdateMergesIntoData(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Save(ctx, domain.DOC_TYPE_ROOM, &domain.Document{
		Data: map[string]any{
			"house_id":     "h1",
			"measurements": []any{map[string]any{"temperature": 19.0}},
		},
	})
	assert.NoError(t, err)

	err = s.Update(ctx, domain.DOC_TYPE_ROOM, id, domain.DocumentUpdate{
		Data: map[string]any{"temperature": 21.5},
	})
	assert.NoError(t, err)

	room, err := s.Get(ctx, domain.DOC_TYPE_ROOM, id)
	assert.NoError(t, err)
	temperature, ok := room.DataFloat("temperature")
	assert.True(t, ok)
	assert.Equal(t, 21.5, temperature)
	// absent fields survive a partial update
	houseId, _ := room.DataString("house_id")
	assert.Equal(t, "h1", houseId)
	assert.Len(t, room.Measurements(), 1)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, _ := s.Save(ctx, domain.DOC_TYPE_ROOM, &domain.Document{
		Data: map[string]any{"temperature": 20.0},
	})

	room, _ := s.Get(ctx, domain.DOC_TYPE_ROOM, id)
	room.Data["temperature"] = 99.0

	again, _ := s.Get(ctx, domain.DOC_TYPE_ROOM, id)
	temperature, _ := again.DataFloat("temperature")
	assert.Equal(t, 20.0, temperature)
}

func TestMemoryStoreQueryDottedFilter(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, _ = s.Save(ctx, domain.DOC_TYPE_ROOM, &domain.Document{
		ID:   "r1",
		Data: map[string]any{"house_id": "h1"},
	})
	_, _ = s.Save(ctx, domain.DOC_TYPE_ROOM, &domain.Document{
		ID:   "r2",
		Data: map[string]any{"house_id": "h2"},
	})

	rooms, err := s.Query(ctx, domain.DOC_TYPE_ROOM, map[string]any{"data.house_id": "h1"})
	assert.NoError(t, err)
	assert.Len(t, rooms, 1)
	assert.Equal(t, "r1", rooms[0].ID)

	all, err := s.Query(ctx, domain.DOC_TYPE_ROOM, nil)
	assert.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemoryStoreQueryFilterOnListField(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, _ = s.Save(ctx, domain.DOC_TYPE_ROOM, &domain.Document{
		ID:   "r1",
		Data: map[string]any{"users": []any{"user1"}},
	})
	_, _ = s.Save(ctx, domain.DOC_TYPE_ROOM, &domain.Document{
		ID:   "r2",
		Data: map[string]any{"users": []any{"user2"}},
	})

	rooms, err := s.Query(ctx, domain.DOC_TYPE_ROOM, map[string]any{"data.users": []any{"user1"}})
	assert.NoError(t, err)
	assert.Len(t, rooms, 1)
	assert.Equal(t, "r1", rooms[0].ID)

	none, err := s.Query(ctx, domain.DOC_TYPE_ROOM, map[string]any{"data.users": []any{"ghost"}})
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, _ := s.Save(ctx, domain.DOC_TYPE_LED, &domain.Document{})
	assert.NoError(t, s.Delete(ctx, domain.DOC_TYPE_LED, id))

	_, err := s.Get(ctx, domain.DOC_TYPE_LED, id)
	assert.IsType(t, domain.NotFoundError{}, err)

	assert.IsType(t, domain.NotFoundError{}, s.Delete(ctx, domain.DOC_TYPE_LED, id))
}

// Documents the known lost-update window: two writers that both read the
// measurement log before either writes will lose one append. The store
// itself stays consistent; the log length just reflects the last write.
func TestMemoryStoreReadModifyWriteRace(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, _ := s.Save(ctx, domain.DOC_TYPE_ROOM, &domain.Document{
		Data: map[string]any{"measurements": []any{}},
	})

	// both goroutines read the same snapshot
	first, _ := s.Get(ctx, domain.DOC_TYPE_ROOM, id)
	second, _ := s.Get(ctx, domain.DOC_TYPE_ROOM, id)

	var wg sync.WaitGroup
	for _, snapshot := range []*domain.Document{first, second} {
		wg.Add(1)
		go func(doc *domain.Document) {
			defer wg.Done()
			measurements := append(doc.Measurements(), map[string]any{"temperature": 20.0})
			_ = s.Update(ctx, domain.DOC_TYPE_ROOM, id, domain.DocumentUpdate{
				Data: map[string]any{"measurements": measurements},
			})
		}(snapshot)
	}
	wg.Wait()

	room, _ := s.Get(ctx, domain.DOC_TYPE_ROOM, id)
	assert.Len(t, room.Measurements(), 1)
}
