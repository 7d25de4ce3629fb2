package store

import (
	"context"
	"errors"
	"time"

	"github.com/jonas-oms/hygrotwin/internal/config"
	"github.com/jonas-oms/hygrotwin/internal/core/domain"
	"github.com/jonas-oms/hygrotwin/internal/core/port"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoStore keeps one collection per document type. Partial updates are
// flattened to dotted $set paths, so a merge overwrites exactly the fields
// present in the update and preserves the rest. There is no optimistic
// concurrency: interleaved read-modify-write cycles lose updates.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

func NewMongoStore(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return &MongoStore{
		client: client,
		db:     client.Database(cfg.Database),
		logger: logger.With(zap.String("component", "mongo_store")),
	}, nil
}

func (s *MongoStore) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) collection(docType string) *mongo.Collection {
	return s.db.Collection(docType + "s")
}

func (s *MongoStore) Save(ctx context.Context, docType string, doc *domain.Document) (string, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if _, err := s.collection(docType).InsertOne(ctx, doc); err != nil {
		return "", err
	}
	s.logger.Debug("document saved", zap.String("type", docType), zap.String("id", doc.ID))
	return doc.ID, nil
}

func (s *MongoStore) Get(ctx context.Context, docType string, id string) (*domain.Document, error) {
	var doc domain.Document
	err := s.collection(docType).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.NotFoundError{DocType: docType, ID: id}
	}
	if err != nil {
		return nil, err
	}
	normalizeDocument(&doc)
	return &doc, nil
}

func (s *MongoStore) Update(ctx context.Context, docType string, id string, update domain.DocumentUpdate) error {
	set := FlattenUpdate(update)
	set["metadata.updated_at"] = time.Now().UTC()

	res, err := s.collection(docType).UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.NotFoundError{DocType: docType, ID: id}
	}
	return nil
}

func (s *MongoStore) Query(ctx context.Context, docType string, filter map[string]any) ([]domain.Document, error) {
	if filter == nil {
		filter = map[string]any{}
	}
	cursor, err := s.collection(docType).Find(ctx, bson.M(filter))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []domain.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	for i := range docs {
		normalizeDocument(&docs[i])
	}
	return docs, nil
}

func (s *MongoStore) Delete(ctx context.Context, docType string, id string) error {
	res, err := s.collection(docType).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.NotFoundError{DocType: docType, ID: id}
	}
	// no cascade: references held by other documents are left dangling
	return nil
}

// The driver decodes interface{} values into its own types: arrays become
// primitive.A, embedded documents primitive.D or primitive.M, timestamps
// primitive.DateTime. The typed accessors on Document expect plain []any,
// map[string]any and time.Time, so every document leaving this store is
// folded back to those shapes.
func normalizeDocument(doc *domain.Document) {
	normalizeZone(doc.Profile)
	normalizeZone(doc.Data)
	normalizeZone(doc.Metadata)
}

func normalizeZone(zone map[string]any) {
	for k, v := range zone {
		zone[k] = normalizeValue(v)
	}
}

func normalizeValue(v any) any {
	switch tv := v.(type) {
	case primitive.A:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = normalizeValue(e)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(tv))
		for _, e := range tv {
			out[e.Key] = normalizeValue(e.Value)
		}
		return out
	case primitive.M:
		out := make(map[string]any, len(tv))
		for k, e := range tv {
			out[k] = normalizeValue(e)
		}
		return out
	case map[string]any:
		for k, e := range tv {
			tv[k] = normalizeValue(e)
		}
		return tv
	case []any:
		for i, e := range tv {
			tv[i] = normalizeValue(e)
		}
		return tv
	case primitive.DateTime:
		return tv.Time().UTC()
	default:
		return v
	}
}

// ensure interface compliance
var _ port.DocumentStore = (*MongoStore)(nil)
