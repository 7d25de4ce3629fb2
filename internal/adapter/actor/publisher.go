package actor

import (
	"github.com/asynkron/protoactor-go/actor"

	"github.com/jonas-oms/hygrotwin/internal/core/domain"
	"github.com/jonas-oms/hygrotwin/internal/core/port"
)

// ActorDevicePublisher routes device updates into the actor system. Delivery
// is fire-and-forget; a broker outage surfaces in the MQTT actor's logs, not
// here.
type ActorDevicePublisher struct {
	rootContext *actor.RootContext
	masterActor *actor.PID
}

func NewActorDevicePublisher(rootContext *actor.RootContext, masterActor *actor.PID) *ActorDevicePublisher {
	return &ActorDevicePublisher{
		rootContext: rootContext,
		masterActor: masterActor,
	}
}

func (p *ActorDevicePublisher) PublishDeviceUpdate(event domain.DeviceUpdateEvent) {
	p.rootContext.Send(p.masterActor, domain.PublishDeviceUpdateRequest{
		Event: event,
	})
}

var _ port.DevicePublisher = (*ActorDevicePublisher)(nil)
