package actor

import (
	"fmt"
	"log"
	"time"

	adactor "github.com/jonas-oms/hygrotwin/internal/adapter/actor"
	"github.com/jonas-oms/hygrotwin/internal/config"
	"github.com/jonas-oms/hygrotwin/internal/core/domain"
	"github.com/jonas-oms/hygrotwin/internal/core/port"
	. "github.com/jonas-oms/hygrotwin/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type MQTTActorProvider func() *adactor.MQTTActor

// MasterActor supervises the pipeline. The MQTT child reconnects under
// exponential backoff, the rest restart one-for-one. Measurements flow
// mqtt -> master -> ingest; device updates flow server -> master -> mqtt.
type MasterActor struct {
	config   config.Config
	behavior actor.Behavior
	stash    *Stash

	currentHealthCheck healthCheckResult
	store              port.DocumentStore
	provider           port.WeatherProvider
	sessions           port.SessionStore
	messenger          port.Messenger
	mqttActorProvider  MQTTActorProvider
	mqttActor          *actor.PID
	ingestActor        *actor.PID
	weatherActor       *actor.PID
	notifierActor      *actor.PID
	logger             *zap.Logger
}

type healthCheckResult struct {
	mqttActorHealthy    bool
	ingestActorHealthy  bool
	weatherActorHealthy bool
	checksReceived      int
	respondTo           *actor.PID
}

func NewMasterActor(config config.Config, store port.DocumentStore, provider port.WeatherProvider,
	sessions port.SessionStore, messenger port.Messenger, mqttActorProvider MQTTActorProvider, logger *zap.Logger) *MasterActor {
	act := &MasterActor{
		config:            config,
		behavior:          actor.NewBehavior(),
		stash:             &Stash{},
		store:             store,
		provider:          provider,
		sessions:          sessions,
		messenger:         messenger,
		mqttActorProvider: mqttActorProvider,
		logger:            ActorLogger(domain.ACTOR_ID_MASTER, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MasterActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MasterActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("master@starting started")

		state.currentHealthCheck = healthCheckResult{}
		state.currentHealthCheck.reset()

		// start MQTT child
		mqttActorPID, err := state.startMQTTActor(ctx)
		if err != nil {
			panic(err)
		}
		state.mqttActor = mqttActorPID

		// start weather child
		weatherActorPID, err := state.startWeatherActor(ctx)
		if err != nil {
			panic(err)
		}
		state.weatherActor = weatherActorPID

		// start notifier child
		notifierActorPID, err := state.startNotifierActor(ctx)
		if err != nil {
			panic(err)
		}
		state.notifierActor = notifierActorPID

		// start ingest child
		ingestActorPID, err := state.startIngestActor(ctx)
		if err != nil {
			panic(err)
		}
		state.ingestActor = ingestActorPID

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("master@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("master@default ActorHealthRequest")
		state.currentHealthCheck.reset()
		state.currentHealthCheck.respondTo = ctx.Sender()
		// MQTT Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MQTT,
				Healthy: false,
			}
		})
		// ingest Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.ingestActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_INGEST,
				Healthy: false,
			}
		})
		// weather Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.weatherActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_WEATHER,
				Healthy: false,
			}
		})

		ctx.SetReceiveTimeout(1 * time.Second)

		state.behavior.BecomeStacked(state.HealthCheckReceive)
	case domain.InboundMeasurement:
		// measurement parsed by the MQTT child, hand it to the pipeline
		state.logger.Debug("master@default measurement",
			zap.String("room_id", msg.RoomId), zap.String("house_id", msg.HouseId))
		ctx.Send(state.ingestActor, msg)
	case domain.PublishDeviceUpdateRequest:
		// device update from the REST/bot layer
		state.logger.Debug("master@default PublishDeviceUpdateRequest", zap.String("type", fmt.Sprintf("%T", msg.Event)))
		ctx.Send(state.mqttActor, msg)
	default:
		state.logger.Debug("master@default stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) HealthCheckReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.ReceiveTimeout:
		// if some actor does not respond to healthCheck, assume not healthy
		state.currentHealthCheck.respond(ctx)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthResponse:
		state.logger.Debug("master@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.currentHealthCheck.checksReceived++
		if msg.Healthy {
			if msg.Id == domain.ACTOR_ID_MQTT {
				state.currentHealthCheck.mqttActorHealthy = true
			} else if msg.Id == domain.ACTOR_ID_INGEST {
				state.currentHealthCheck.ingestActorHealthy = true
			} else if msg.Id == domain.ACTOR_ID_WEATHER {
				state.currentHealthCheck.weatherActorHealthy = true
			}
		}
		if state.currentHealthCheck.allReceived() {

			state.currentHealthCheck.respond(ctx)

			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
		} else {
			ctx.SetReceiveTimeout(1 * time.Second)
		}
	default:
		state.logger.Debug("master@healthcheck stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) startMQTTActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	mqttProps := actor.PropsFromProducer(func() actor.Actor {
		return state.mqttActorProvider()
	}, actor.WithSupervisor(supervisor))
	mqttActorPID, err := ctx.SpawnNamed(mqttProps, domain.ACTOR_ID_MQTT)
	if err != nil {
		return nil, err
	}

	return mqttActorPID, nil
}

func (state *MasterActor) startWeatherActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(1, 10*time.Second, decider)

	weatherProps := actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewWeatherActor(state.store, state.provider, state.logger)
	}, actor.WithSupervisor(supervisor))
	weatherActorPID, err := ctx.SpawnNamed(weatherProps, domain.ACTOR_ID_WEATHER)
	if err != nil {
		return nil, err
	}

	return weatherActorPID, nil
}

func (state *MasterActor) startNotifierActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(1, 10*time.Second, decider)

	notifierProps := actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewNotifierActor(state.sessions, state.messenger, state.logger)
	}, actor.WithSupervisor(supervisor))
	notifierActorPID, err := ctx.SpawnNamed(notifierProps, domain.ACTOR_ID_NOTIFIER)
	if err != nil {
		return nil, err
	}

	return notifierActorPID, nil
}

func (state *MasterActor) startIngestActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(1, 10*time.Second, decider)

	ingestProps := actor.PropsFromProducer(func() actor.Actor {
		return NewIngestActor(&state.config, state.store, state.weatherActor, state.notifierActor, state.logger)
	}, actor.WithSupervisor(supervisor))
	ingestActorPID, err := ctx.SpawnNamed(ingestProps, domain.ACTOR_ID_INGEST)
	if err != nil {
		return nil, err
	}

	return ingestActorPID, nil
}

func (state *healthCheckResult) reset() {
	state.mqttActorHealthy = false
	state.ingestActorHealthy = false
	state.weatherActorHealthy = false
	state.checksReceived = 0
}

func (state *healthCheckResult) allReceived() bool {
	return state.checksReceived == 3
}

func (state *healthCheckResult) allHealthy() bool {
	return state.mqttActorHealthy && state.ingestActorHealthy && state.weatherActorHealthy
}

func (state *healthCheckResult) respond(ctx actor.Context) {
	resp := domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_MASTER,
		Healthy: state.allHealthy(),
	}
	if state.respondTo != nil {
		ctx.Send(state.respondTo, resp)
	}
}
