package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/jonas-oms/hygrotwin/internal/core/domain"
	"github.com/jonas-oms/hygrotwin/internal/core/events"
	"github.com/jonas-oms/hygrotwin/internal/mqtt"
	"github.com/jonas-oms/hygrotwin/internal/util"
)

func newMessageMapper(t *testing.T) *MQTTActor {
	t.Helper()
	cfg := util.LoadTestConfig()
	state := NewTestMQTTActor(&cfg, zap.NewNop())
	state.client = mqtt.CreateMQTTClient(&cfg, mqtt.OptsFromConfig(&cfg), nil, nil)
	return state
}

// Bridge availability is published retained on the same topic the LWT
// clears, so a broker restart leaves subscribers with the right state.
func TestBridgeStateEventMapsToRetainedBridgeTopic(t *testing.T) {
	assert := assert.New(t)
	state := newMessageMapper(t)

	online := state.event2MQTTMessage(events.BridgeOnlineEvent(true))
	assert.NotNil(online)
	assert.Equal("hygrotwin/bridge/state", online.topic)
	assert.Equal(mqtt.MQTT_PAYLOAD_ONLINE, string(online.message))
	assert.True(online.retain)

	offline := state.event2MQTTMessage(events.BridgeOnlineEvent(false))
	assert.NotNil(offline)
	assert.Equal("hygrotwin/bridge/state", offline.topic)
	assert.Equal(mqtt.MQTT_PAYLOAD_OFFLINE, string(offline.message))
	assert.True(offline.retain)
}

func TestDeviceStateEventMapsToDeviceTopic(t *testing.T) {
	assert := assert.New(t)
	state := newMessageMapper(t)
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	msg := state.event2MQTTMessage(events.DeviceStateEvent("led1", domain.DEVICE_STATE_ON, ts))
	assert.NotNil(msg)
	assert.Equal("hygrotwin/led1/state", msg.topic)
	assert.True(msg.retain)
	assert.JSONEq(`{"state":"on","timestamp":"2026-03-01T12:00:00Z"}`, string(msg.message))
}
