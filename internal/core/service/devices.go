package service

import (
	"context"
	"time"

	"github.com/jonas-oms/hygrotwin/internal/core/domain"
	"github.com/jonas-oms/hygrotwin/internal/core/events"
	"github.com/jonas-oms/hygrotwin/internal/core/port"

	"go.uber.org/zap"
)

// DeviceControl mutates device replicas and pushes the resulting state to
// the broker. Used by both the REST handlers and the bot commands.
// Toggling is idempotent in effect but not in log growth: two toggles
// return to the original state and append two measurement records.
type DeviceControl struct {
	store     port.DocumentStore
	publisher port.DevicePublisher
	logger    *zap.Logger
}

func NewDeviceControl(store port.DocumentStore, publisher port.DevicePublisher, logger *zap.Logger) *DeviceControl {
	return &DeviceControl{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// Toggle flips the device's on/off state and returns the new state.
func (c *DeviceControl) Toggle(ctx context.Context, docType, deviceId, controlledBy string) (string, error) {
	device, err := c.store.Get(ctx, docType, deviceId)
	if err != nil {
		return "", err
	}

	newState := domain.DEVICE_STATE_ON
	if state, _ := device.DataString("state"); state == domain.DEVICE_STATE_ON {
		newState = domain.DEVICE_STATE_OFF
	}
	return newState, c.applyState(ctx, docType, device, newState, controlledBy)
}

// SetState forces the device into an explicit on/off state.
func (c *DeviceControl) SetState(ctx context.Context, docType, deviceId, state, controlledBy string) error {
	if state != domain.DEVICE_STATE_ON && state != domain.DEVICE_STATE_OFF {
		return domain.ValidationError{Message: "state must be 'on' or 'off'"}
	}
	device, err := c.store.Get(ctx, docType, deviceId)
	if err != nil {
		return err
	}
	return c.applyState(ctx, docType, device, state, controlledBy)
}

// SetBrightness persists a brightness level and publishes it.
func (c *DeviceControl) SetBrightness(ctx context.Context, docType, deviceId string, brightness int, controlledBy string) error {
	if brightness < 0 || brightness > 100 {
		return domain.ValidationError{Message: "brightness must be between 0 and 100"}
	}
	if _, err := c.store.Get(ctx, docType, deviceId); err != nil {
		return err
	}

	now := time.Now().UTC()
	err := c.store.Update(ctx, docType, deviceId, domain.DocumentUpdate{
		Data: map[string]any{
			"brightness":    brightness,
			"controlled_by": controlledBy,
		},
	})
	if err != nil {
		return err
	}

	c.publisher.PublishDeviceUpdate(events.DeviceBrightnessEvent(deviceId, brightness, now))
	return nil
}

func (c *DeviceControl) applyState(ctx context.Context, docType string, device *domain.Document, state, controlledBy string) error {
	now := time.Now().UTC()
	value := 0.0
	if state == domain.DEVICE_STATE_ON {
		value = 1.0
	}

	// read-modify-write append: a concurrent toggle can lose one record
	measurements := append(device.Measurements(), domain.NewStateChangeMeasurement(value, now))
	err := c.store.Update(ctx, docType, device.ID, domain.DocumentUpdate{
		Data: map[string]any{
			"state":         state,
			"controlled_by": controlledBy,
			"measurements":  measurements,
		},
		Metadata: map[string]any{
			"last_state_change": now,
		},
	})
	if err != nil {
		return err
	}

	c.publisher.PublishDeviceUpdate(events.DeviceStateEvent(device.ID, state, now))
	c.logger.Debug("device state changed",
		zap.String("device_id", device.ID), zap.String("state", state), zap.String("by", controlledBy))
	return nil
}
