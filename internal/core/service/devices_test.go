package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/jonas-oms/hygrotwin/internal/adapter/store"
	"github.com/jonas-oms/hygrotwin/internal/core/domain"
)

type capturingPublisher struct {
	events []domain.DeviceUpdateEvent
}

func (p *capturingPublisher) PublishDeviceUpdate(event domain.DeviceUpdateEvent) {
	p.events = append(p.events, event)
}

func newDeviceFixture(t *testing.T) (*DeviceControl, *store.MemoryStore, *capturingPublisher) {
	t.Helper()
	memStore := store.NewMemoryStore()
	publisher := &capturingPublisher{}
	control := NewDeviceControl(memStore, publisher, zap.NewNop())

	_, err := memStore.Save(context.Background(), domain.DOC_TYPE_LED, &domain.Document{
		ID:      "led1",
		Profile: map[string]any{"name": "desk lamp", "location": "office"},
		Data:    map[string]any{"state": domain.DEVICE_STATE_OFF, "measurements": []any{}},
	})
	assert.NoError(t, err)
	return control, memStore, publisher
}

func TestToggleFlipsState(t *testing.T) {
	control, memStore, publisher := newDeviceFixture(t)
	ctx := context.Background()

	newState, err := control.Toggle(ctx, domain.DOC_TYPE_LED, "led1", "test")
	assert.NoError(t, err)
	assert.Equal(t, domain.DEVICE_STATE_ON, newState)

	device, err := memStore.Get(ctx, domain.DOC_TYPE_LED, "led1")
	assert.NoError(t, err)
	state, _ := device.DataString("state")
	assert.Equal(t, domain.DEVICE_STATE_ON, state)
	controlledBy, _ := device.DataString("controlled_by")
	assert.Equal(t, "test", controlledBy)

	assert.Len(t, publisher.events, 1)
	stateEvent, ok := publisher.events[0].(domain.DeviceStateUpdateEvent)
	assert.True(t, ok)
	assert.Equal(t, "led1", stateEvent.DeviceId())
	assert.Equal(t, domain.DEVICE_STATE_ON, stateEvent.State)
}

func TestDoubleToggleRestoresStateButGrowsLog(t *testing.T) {
	control, memStore, _ := newDeviceFixture(t)
	ctx := context.Background()

	_, err := control.Toggle(ctx, domain.DOC_TYPE_LED, "led1", "test")
	assert.NoError(t, err)
	newState, err := control.Toggle(ctx, domain.DOC_TYPE_LED, "led1", "test")
	assert.NoError(t, err)
	assert.Equal(t, domain.DEVICE_STATE_OFF, newState)

	device, err := memStore.Get(ctx, domain.DOC_TYPE_LED, "led1")
	assert.NoError(t, err)
	// back to the initial state, but both transitions are on record
	state, _ := device.DataString("state")
	assert.Equal(t, domain.DEVICE_STATE_OFF, state)
	assert.Len(t, device.Measurements(), 2)
}

func TestSetStateRejectsUnknownState(t *testing.T) {
	control, _, publisher := newDeviceFixture(t)

	err := control.SetState(context.Background(), domain.DOC_TYPE_LED, "led1", "dimmed", "test")
	assert.Error(t, err)
	assert.IsType(t, domain.ValidationError{}, err)
	assert.Empty(t, publisher.events)
}

func TestSetStateUnknownDevice(t *testing.T) {
	control, _, _ := newDeviceFixture(t)

	err := control.SetState(context.Background(), domain.DOC_TYPE_LED, "ghost", domain.DEVICE_STATE_ON, "test")
	assert.Error(t, err)
	assert.IsType(t, domain.NotFoundError{}, err)
}

func TestSetBrightness(t *testing.T) {
	control, memStore, publisher := newDeviceFixture(t)
	ctx := context.Background()

	err := control.SetBrightness(ctx, domain.DOC_TYPE_LED, "led1", 70, "test")
	assert.NoError(t, err)

	device, err := memStore.Get(ctx, domain.DOC_TYPE_LED, "led1")
	assert.NoError(t, err)
	brightness, ok := device.DataFloat("brightness")
	assert.True(t, ok)
	assert.InDelta(t, 70, brightness, 0.0001)

	assert.Len(t, publisher.events, 1)
	brightnessEvent, ok := publisher.events[0].(domain.DeviceBrightnessUpdateEvent)
	assert.True(t, ok)
	assert.Equal(t, 70, brightnessEvent.Brightness)
}

func TestSetBrightnessOutOfRange(t *testing.T) {
	control, _, _ := newDeviceFixture(t)

	err := control.SetBrightness(context.Background(), domain.DOC_TYPE_LED, "led1", 150, "test")
	assert.Error(t, err)
	assert.IsType(t, domain.ValidationError{}, err)
}
