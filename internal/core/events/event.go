package events

import (
	"time"

	. "github.com/jonas-oms/hygrotwin/internal/core/domain"
)

func DeviceStateEvent(deviceId, state string, ts time.Time) DeviceUpdateEvent {
	return DeviceStateUpdateEvent{
		DeviceUpdateEventMixIn: DeviceUpdateEventMixIn{
			Id: deviceId,
		},
		State:     state,
		Timestamp: ts,
	}
}

func DeviceBrightnessEvent(deviceId string, brightness int, ts time.Time) DeviceUpdateEvent {
	return DeviceBrightnessUpdateEvent{
		DeviceUpdateEventMixIn: DeviceUpdateEventMixIn{
			Id: deviceId,
		},
		Brightness: brightness,
		Timestamp:  ts,
	}
}

func BridgeOnlineEvent(online bool) DeviceUpdateEvent {
	return BridgeStateUpdateEvent{
		Online: online,
	}
}
