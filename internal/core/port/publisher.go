package port

import "github.com/jonas-oms/hygrotwin/internal/core/domain"

// DevicePublisher pushes device update events towards the broker.
// Fire and forget: the system has no way to know whether a physical
// actuator received the command.
type DevicePublisher interface {
	PublishDeviceUpdate(event domain.DeviceUpdateEvent)
}
