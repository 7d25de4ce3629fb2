package domain

import (
	"time"
)

// Document types stored by the document store. Each type maps to its own
// collection.
const (
	DOC_TYPE_HOUSE       = "house"
	DOC_TYPE_ROOM        = "room"
	DOC_TYPE_LED         = "led"
	DOC_TYPE_VENTILATION = "ventilation"
	DOC_TYPE_USER        = "user"
)

const (
	DEVICE_STATE_ON  = "on"
	DEVICE_STATE_OFF = "off"
)

const (
	DOC_STATUS_ACTIVE   = "active"
	DOC_STATUS_INACTIVE = "inactive"
)

// Document is a loosely-typed digital replica. The profile and data zones
// carry an open attribute set; only the fields the pipeline reads have typed
// accessors. Metadata holds status plus timestamps.
type Document struct {
	ID       string         `bson:"_id" json:"_id"`
	Profile  map[string]any `bson:"profile" json:"profile"`
	Data     map[string]any `bson:"data" json:"data"`
	Metadata map[string]any `bson:"metadata" json:"metadata"`
}

// DocumentUpdate is a partial merge: nested maps are flattened to dotted
// paths on write, so fields absent from the update are preserved and fields
// present are overwritten. There is no compare-and-swap; concurrent updates
// race (last write wins on a stale read).
type DocumentUpdate struct {
	Profile  map[string]any
	Data     map[string]any
	Metadata map[string]any
}

func (d *Document) ProfileString(key string) (string, bool) {
	return stringValue(d.Profile, key)
}

func (d *Document) ProfileFloat(key string) (float64, bool) {
	return floatValue(d.Profile, key)
}

func (d *Document) DataString(key string) (string, bool) {
	return stringValue(d.Data, key)
}

func (d *Document) DataFloat(key string) (float64, bool) {
	return floatValue(d.Data, key)
}

// DataStrings reads a list-of-ids field from the data zone. Fresh documents
// may carry []string, stored ones come back as []any; both are accepted.
func (d *Document) DataStrings(key string) []string {
	if d.Data == nil {
		return nil
	}
	switch v := d.Data[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Measurements returns the append-only measurement log of the data zone.
func (d *Document) Measurements() []any {
	if d.Data == nil {
		return nil
	}
	if ms, ok := d.Data["measurements"].([]any); ok {
		return ms
	}
	return nil
}

func stringValue(zone map[string]any, key string) (string, bool) {
	if zone == nil {
		return "", false
	}
	s, ok := zone[key].(string)
	return s, ok
}

func floatValue(zone map[string]any, key string) (float64, bool) {
	if zone == nil {
		return 0, false
	}
	switch v := zone[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// NewReadingMeasurement is the record appended on every ingested
// temperature/humidity reading.
func NewReadingMeasurement(temperature, humidity float64, ts time.Time) map[string]any {
	return map[string]any{
		"temperature": temperature,
		"humidity":    humidity,
		"timestamp":   ts,
	}
}

// NewValueMeasurement is the record appended by the REST measurement
// endpoint ({measure_type, value}).
func NewValueMeasurement(measureType string, value float64, ts time.Time) map[string]any {
	return map[string]any{
		"measure_type": measureType,
		"value":        value,
		"timestamp":    ts,
	}
}

// NewStateChangeMeasurement is the record appended on device toggles.
func NewStateChangeMeasurement(value float64, ts time.Time) map[string]any {
	return map[string]any{
		"type":      "state_change",
		"value":     value,
		"timestamp": ts,
	}
}
