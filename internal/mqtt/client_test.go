package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonas-oms/hygrotwin/internal/config"
)

func testClient() *MQTTClient {
	return &MQTTClient{
		cfg: config.MQTTConfig{
			BaseTopic:        "loremTopic",
			MeasurementTopic: "measurement",
		},
	}
}

func TestParseMeasurementRoom(t *testing.T) {

	assert := assert.New(t)

	m, err := ParseMeasurement([]byte(`{"room_id":"r1","temperature":21.5,"humidity":48}`))
	assert.NoError(err)
	assert.Equal("r1", m.RoomId)
	assert.Equal("", m.HouseId)
	assert.Equal(21.5, m.Temperature)
	assert.Equal(48.0, m.Humidity)
}

func TestParseMeasurementHouse(t *testing.T) {

	assert := assert.New(t)

	m, err := ParseMeasurement([]byte(`{"house_id":"h1","temperature":12,"humidity":80}`))
	assert.NoError(err)
	assert.Equal("h1", m.HouseId)
}

func TestParseMeasurementMissingTarget(t *testing.T) {

	assert := assert.New(t)

	_, err := ParseMeasurement([]byte(`{"temperature":21.5,"humidity":48}`))
	assert.Error(err)
}

func TestParseMeasurementMissingReading(t *testing.T) {

	assert := assert.New(t)

	_, err := ParseMeasurement([]byte(`{"room_id":"r1","temperature":21.5}`))
	assert.Error(err, "missing humidity")

	_, err = ParseMeasurement([]byte(`{"room_id":"r1","humidity":48}`))
	assert.Error(err, "missing temperature")
}

func TestParseMeasurementInvalidJSON(t *testing.T) {

	assert := assert.New(t)

	_, err := ParseMeasurement([]byte(`{"room_id":`))
	assert.Error(err)
}

func TestTopicBuilders(t *testing.T) {

	assert := assert.New(t)

	c := testClient()
	assert.Equal("loremTopic/bridge/state", c.BridgeStateTopic())
	assert.Equal("measurement", c.MeasurementTopic())
	assert.Equal("loremTopic/led1/state", c.DeviceStateTopic("led1"))
	assert.Equal("loremTopic/led1/brightness", c.DeviceBrightnessTopic("led1"))
}

func TestStatePayload(t *testing.T) {

	assert := assert.New(t)

	ts := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	payload, err := StatePayload("on", ts)
	assert.NoError(err)

	var decoded map[string]any
	assert.NoError(json.Unmarshal(payload, &decoded))
	assert.Equal("on", decoded["state"])
	assert.Equal("2025-03-01T12:30:00Z", decoded["timestamp"])
}

func TestBrightnessPayload(t *testing.T) {

	assert := assert.New(t)

	ts := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	payload, err := BrightnessPayload(80, ts)
	assert.NoError(err)

	var decoded map[string]any
	assert.NoError(json.Unmarshal(payload, &decoded))
	assert.Equal(80.0, decoded["brightness"])
}
