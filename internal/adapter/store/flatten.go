package store

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/jonas-oms/hygrotwin/internal/core/domain"
)

// FlattenUpdate turns a partial document update into dotted $set paths.
// Nested maps recurse; slices and scalars are written whole. A write to
// "data" with only "temperature" present therefore leaves
// "data.measurements" untouched.
func FlattenUpdate(update domain.DocumentUpdate) bson.M {
	set := bson.M{}
	flattenZone("profile", update.Profile, set)
	flattenZone("data", update.Data, set)
	flattenZone("metadata", update.Metadata, set)
	return set
}

func flattenZone(prefix string, zone map[string]any, out bson.M) {
	for key, value := range zone {
		path := prefix + "." + key
		if nested, ok := value.(map[string]any); ok {
			flattenZone(path, nested, out)
			continue
		}
		out[path] = value
	}
}
