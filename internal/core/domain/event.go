package domain

import (
	"fmt"
	"time"
)

type DeviceUpdateEventMixIn struct {
	Id string
}

type DeviceUpdateEvent interface {
	DeviceUpdateEvent() string
	DeviceId() string
}

func (e DeviceUpdateEventMixIn) DeviceUpdateEvent() string {
	return fmt.Sprintf("%T", e)
}

func (e DeviceUpdateEventMixIn) DeviceId() string {
	return e.Id
}

// DeviceStateUpdateEvent is published to <base_topic>/<device_id>/state for
// any physical actuator listening. Best effort, no handshake.
type DeviceStateUpdateEvent struct {
	DeviceUpdateEventMixIn
	State     string
	Timestamp time.Time
}

// DeviceBrightnessUpdateEvent is published to
// <base_topic>/<device_id>/brightness.
type DeviceBrightnessUpdateEvent struct {
	DeviceUpdateEventMixIn
	Brightness int
	Timestamp  time.Time
}

type BridgeStateUpdateEvent struct {
	DeviceUpdateEventMixIn
	Online bool
}
