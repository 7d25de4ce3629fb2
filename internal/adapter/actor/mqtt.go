package actor

import (
	"fmt"
	"time"

	"github.com/jonas-oms/hygrotwin/internal/config"
	"github.com/jonas-oms/hygrotwin/internal/core/domain"
	"github.com/jonas-oms/hygrotwin/internal/core/events"
	"github.com/jonas-oms/hygrotwin/internal/mqtt"
	"github.com/jonas-oms/hygrotwin/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

type MQTTActor struct {
	config   *config.Config
	behavior actor.Behavior
	stash    *actorutil.Stash
	client   *mqtt.MQTTClient
	logger   *zap.Logger
}

type MQTTConnected struct {
}

type MQTTSubscribed struct {
}

type MQTTConnectionLost struct {
	Error error
}

type publishResult struct {
	ReplyTo *actor.PID
	Error   error
}

type rawMessage struct {
	topic   string
	message []byte
	retain  bool
}

func NewMQTTActor(config *config.Config, logger *zap.Logger) *MQTTActor {
	act := &MQTTActor{
		config:   config,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_MQTT, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MQTTActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MQTTActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("mqtt@starting started")

		// create MQTT client
		state.client = mqtt.CreateMQTTClient(state.config, mqtt.OptsFromConfig(state.config), func(_ pahomqtt.Client) {
		}, func(_ pahomqtt.Client, err error) {
			ctx.Send(ctx.Self(), MQTTConnectionLost{Error: err})
		})

		// connect to MQTT server
		state.client.Connect(func(err error) {
			if err != nil {
				ctx.Send(ctx.Self(), MQTTConnectionLost{Error: err})
			} else {
				ctx.Send(ctx.Self(), MQTTConnected{})
			}
		}, 10*time.Second)

	case MQTTConnected:
		state.logger.Debug("mqtt@starting connected")

		// announce availability on the same retained topic the LWT clears
		if raw := state.event2MQTTMessage(events.BridgeOnlineEvent(true)); raw != nil {
			state.client.Publish(raw.topic, raw.message, 0, raw.retain, func(error) {}, 500*time.Millisecond)
		}

		// subscribe to the measurement topic
		state.client.SubscribeToMeasurementTopic(func(c pahomqtt.Client, m pahomqtt.Message) {
			measurement, err := mqtt.ParseMeasurement(m.Payload())
			if err != nil {
				state.logger.Warn("mqtt: discarding malformed measurement", zap.Error(err))
				return
			}
			ctx.Send(ctx.Self(), *measurement)
		}, func(err error) {
			if err != nil {
				ctx.Send(ctx.Self(), MQTTConnectionLost{Error: err})
			} else {
				ctx.Send(ctx.Self(), MQTTSubscribed{})
			}
		}, 1*time.Second)
	case MQTTSubscribed:
		// init completed, transition to default state
		state.logger.Debug("mqtt@starting subscribed")
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case MQTTConnectionLost:
		// if connection lost, stop actor and let supervisor decide
		state.logger.Error("mqtt@starting connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	case *actor.Restarting:
		state.stop()
	default:
		state.logger.Debug("mqtt@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MQTTActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Restarting:
		state.stop()
	case *actor.Stopping:
		state.stop()
	case domain.ActorHealthRequest:
		state.logger.Debug("mqtt@default ActorHealthRequest")
		// respond health check request
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MQTT,
			Healthy: true,
			State:   "idle",
		})
	case domain.InboundMeasurement:
		// route parsed measurement to parent for ingestion
		state.logger.Debug("mqtt@default measurement",
			zap.String("room_id", msg.RoomId), zap.String("house_id", msg.HouseId))
		ctx.Send(ctx.Parent(), msg)
	case domain.PublishDeviceUpdateRequest:
		// device change from the REST/bot layer, fan out to the broker
		state.logger.Debug("mqtt@default PublishDeviceUpdateRequest", zap.String("type", fmt.Sprintf("%T", msg.Event)))
		state.publishDeviceUpdate(ctx, msg.Event, actorutil.ForRequest(msg).ReplyTo(ctx))
	case MQTTConnectionLost:
		// if connection lost, stop actor and let supervisor decide
		state.logger.Error("mqtt@default connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	default:
		state.logger.Debug("mqtt@default stash", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *MQTTActor) event2MQTTMessage(event domain.DeviceUpdateEvent) *rawMessage {
	switch msg := event.(type) {
	case domain.DeviceStateUpdateEvent:
		payload, err := mqtt.StatePayload(msg.State, msg.Timestamp)
		if err != nil {
			return nil
		}
		return &rawMessage{
			topic:   state.client.DeviceStateTopic(msg.DeviceId()),
			message: payload,
			retain:  true,
		}
	case domain.DeviceBrightnessUpdateEvent:
		payload, err := mqtt.BrightnessPayload(msg.Brightness, msg.Timestamp)
		if err != nil {
			return nil
		}
		return &rawMessage{
			topic:   state.client.DeviceBrightnessTopic(msg.DeviceId()),
			message: payload,
			retain:  true,
		}
	case domain.BridgeStateUpdateEvent:
		var stringMessage string
		if msg.Online {
			stringMessage = mqtt.MQTT_PAYLOAD_ONLINE
		} else {
			stringMessage = mqtt.MQTT_PAYLOAD_OFFLINE
		}
		return &rawMessage{
			topic:   state.client.BridgeStateTopic(),
			message: []byte(stringMessage),
			retain:  true,
		}
	default:
		return nil
	}
}

func (state *MQTTActor) publishDeviceUpdate(ctx actor.Context, event domain.DeviceUpdateEvent, replyTo *actor.PID) {
	msg := state.event2MQTTMessage(event)
	if msg == nil {
		if replyTo != nil {
			ctx.Send(replyTo, domain.PublishDeviceUpdateResponse{})
		}
		return
	}
	state.logger.Sugar().Debugf("mqtt@publish: device publish %s => %s", msg.topic, msg.message)
	state.client.Publish(msg.topic, msg.message, 1, msg.retain, func(err error) {
		ctx.Send(ctx.Self(), publishResult{ReplyTo: replyTo, Error: err})
	}, 5*time.Second)
	state.behavior.BecomeStacked(state.EventPublishResultReceive)
}

func (state *MQTTActor) EventPublishResultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case publishResult:
		// log error and return to default state
		if msg.Error != nil {
			state.logger.Error("mqtt@publishing could not publish a device update", zap.Error(msg.Error))
		}
		if msg.ReplyTo != nil {
			ctx.Send(msg.ReplyTo, domain.PublishDeviceUpdateResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: msg.Error,
				},
			})
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashOldest(ctx)
	default:
		state.logger.Debug("mqtt@publishing stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MQTTActor) stop() {
	state.logger.Debug("mqtt: disconnect")
	if state.client != nil {
		if raw := state.event2MQTTMessage(events.BridgeOnlineEvent(false)); raw != nil {
			state.client.Publish(raw.topic, raw.message, 0, raw.retain, func(error) {}, 500*time.Millisecond)
		}
		state.client.Disconnect(500 * time.Millisecond)
	}
}

// Dummy actor
func NewTestMQTTActor(config *config.Config, logger *zap.Logger) *MQTTActor {
	act := &MQTTActor{
		config:   config,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_MQTT, logger),
	}
	act.behavior.Become(act.DummyReceive)
	return act
}

func (state *MQTTActor) DummyReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.client = mqtt.CreateMQTTClient(state.config, mqtt.OptsFromConfig(state.config), nil, nil)
	case domain.ActorHealthRequest:
		state.logger.Debug("mqtt@default ActorHealthRequest")
		// respond health check request
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MQTT,
			Healthy: true,
			State:   "idle",
		})
	case domain.PublishDeviceUpdateRequest:
		if msg.ReplyToRef != nil {
			ctx.Respond(domain.PublishDeviceUpdateResponse{})
		}
	}
}
