package actor

import (
	"context"
	"fmt"
	"time"

	"github.com/jonas-oms/hygrotwin/internal/config"
	"github.com/jonas-oms/hygrotwin/internal/core/domain"
	"github.com/jonas-oms/hygrotwin/internal/core/port"
	"github.com/jonas-oms/hygrotwin/internal/core/service"
	. "github.com/jonas-oms/hygrotwin/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// IngestActor runs the measurement pipeline: merge a reading into its room
// replica, refresh the owning house's outdoor conditions, compare the two
// absolute humidities and alert the room's users when the indoor air holds
// more water than the outdoor air. One measurement is processed at a time;
// readings arriving mid-pipeline are stashed.
type IngestActor struct {
	ActorWithStates
	stash         *Stash
	store         port.DocumentStore
	weatherActor  *actor.PID
	notifierActor *actor.PID
	threshold     float64

	// pipeline scratchpad, valid between roomIngested and the final compare
	pending *roomIngested

	logger *zap.Logger
}

// roomIngested is the outcome of the persist step for a room reading.
type roomIngested struct {
	RoomId           string
	RoomName         string
	HouseId          string
	UserIds          []string
	RelativeHumidity float64
	AbsoluteHumidity float64
	Error            error
}

// houseIngested is the outcome of merging a direct house reading.
type houseIngested struct {
	HouseId string
	Error   error
}

func NewIngestActor(cfg *config.Config, store port.DocumentStore, weatherActor, notifierActor *actor.PID, logger *zap.Logger) *IngestActor {
	threshold := cfg.Alert.HumidityThreshold
	if threshold == 0 {
		threshold = service.DefaultHumidityAlertThreshold
	}
	act := &IngestActor{
		stash:         &Stash{},
		store:         store,
		weatherActor:  weatherActor,
		notifierActor: notifierActor,
		threshold:     threshold,
		logger:        ActorLogger(domain.ACTOR_ID_INGEST, logger),
		ActorWithStates: ActorWithStates{
			Behavior: actor.NewBehavior(),
		},
	}
	act.Become(IngestIdleState{
		actor: act,
	})
	return act
}

func (state *IngestActor) Receive(context actor.Context) {
	state.Behavior.Receive(context)
}

// Idle state

type IngestIdleState struct {
	ActorState
	actor *IngestActor
}

func (state IngestIdleState) Name() string {
	return "idle"
}

func (state IngestIdleState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
	case *actor.Restarting:
	case domain.ActorHealthRequest:
		state.actor.respondHealth(ctx, state.Name())
	case domain.InboundMeasurement:
		state.actor.logger.Debug("ingest@idle measurement",
			zap.String("room_id", msg.RoomId),
			zap.String("house_id", msg.HouseId),
			zap.Float64("temperature", msg.Temperature),
			zap.Float64("humidity", msg.Humidity))
		if msg.RoomId != "" {
			state.actor.startRoomPipeline(ctx, msg)
		} else {
			state.actor.startHouseMerge(ctx, msg)
		}
	default:
		state.actor.logger.Debug("ingest@idle recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// Waiting for the room persist step

type IngestWaitingRoomState struct {
	ActorState
	actor *IngestActor
}

func (state IngestWaitingRoomState) Name() string {
	return "waitingRoom"
}

func (state IngestWaitingRoomState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.actor.respondHealth(ctx, state.Name())
	case roomIngested:
		if msg.Error != nil {
			state.actor.logger.Error("ingest@waitingRoom room update failed", zap.Error(msg.Error))
			state.actor.backToIdle(ctx)
			return
		}
		state.actor.logger.Debug("ingest@waitingRoom room updated",
			zap.String("room_id", msg.RoomId),
			zap.Float64("absolute_humidity", msg.AbsoluteHumidity))
		state.actor.pending = &msg

		// refresh the owning house before comparing
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.actor.weatherActor, domain.SyncHouseWeatherRequest{
			HouseId: msg.HouseId,
		}, 20*time.Second), func(err error) any {
			return domain.SyncHouseWeatherResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
				HouseId: msg.HouseId,
			}
		})
		state.actor.Become(IngestWaitingWeatherState{
			actor: state.actor,
		})
	default:
		state.actor.logger.Debug("ingest@waitingRoom stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.actor.stash.Stash(ctx, msg)
	}
}

// Waiting for the outdoor refresh

type IngestWaitingWeatherState struct {
	ActorState
	actor *IngestActor
}

func (state IngestWaitingWeatherState) Name() string {
	return "waitingWeather"
}

func (state IngestWaitingWeatherState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.actor.respondHealth(ctx, state.Name())
	case domain.SyncHouseWeatherResponse:
		pending := state.actor.pending
		if msg.HasResponseError() {
			// the room update already landed, only the comparison is lost
			state.actor.logger.Error("ingest@waitingWeather weather sync failed",
				zap.String("house_id", msg.HouseId),
				zap.Error(msg.GetResponseError()))
			state.actor.backToIdle(ctx)
			return
		}
		difference := pending.AbsoluteHumidity - msg.AbsoluteHumidity
		state.actor.logger.Debug("ingest@waitingWeather comparison",
			zap.String("room_id", pending.RoomId),
			zap.Float64("room_absolute_humidity", pending.AbsoluteHumidity),
			zap.Float64("house_absolute_humidity", msg.AbsoluteHumidity),
			zap.Float64("difference", difference))

		if service.ShouldNotify(pending.RelativeHumidity, difference, state.actor.threshold) {
			text := alertText(pending, difference)
			state.actor.logger.Info("ingest: humidity alert",
				zap.String("room_id", pending.RoomId),
				zap.Float64("difference", difference))
			ctx.Send(state.actor.notifierActor, domain.NotifyRoomUsersRequest{
				RoomId:  pending.RoomId,
				UserIds: pending.UserIds,
				Text:    text,
			})
		}
		state.actor.backToIdle(ctx)
	default:
		state.actor.logger.Debug("ingest@waitingWeather stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.actor.stash.Stash(ctx, msg)
	}
}

// Waiting for a direct house merge

type IngestWaitingHouseState struct {
	ActorState
	actor *IngestActor
}

func (state IngestWaitingHouseState) Name() string {
	return "waitingHouse"
}

func (state IngestWaitingHouseState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.actor.respondHealth(ctx, state.Name())
	case houseIngested:
		if msg.Error != nil {
			state.actor.logger.Error("ingest@waitingHouse house update failed",
				zap.String("house_id", msg.HouseId),
				zap.Error(msg.Error))
		}
		state.actor.backToIdle(ctx)
	default:
		state.actor.logger.Debug("ingest@waitingHouse stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.actor.stash.Stash(ctx, msg)
	}
}

// respondHealth answers the master's probe from any state. A pipeline in
// flight is healthy; stashing the probe would trip the master's timeout.
func (a *IngestActor) respondHealth(ctx actor.Context, stateName string) {
	a.logger.Debug("ingest ActorHealthRequest", zap.String("state", stateName))
	ctx.Respond(domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_INGEST,
		Healthy: true,
		State:   stateName,
	})
}

func (a *IngestActor) backToIdle(ctx actor.Context) {
	a.pending = nil
	a.Become(IngestIdleState{
		actor: a,
	})
	a.stash.UnstashAll(ctx)
}

func (a *IngestActor) startRoomPipeline(ctx actor.Context, measurement domain.InboundMeasurement) {
	NewBackgroundTaskNoError(ctx, func() *roomIngested {
		r := a.ingestRoomReading(measurement)
		return &r
	}).Recover(func(err error) roomIngested {
		return roomIngested{RoomId: measurement.RoomId, Error: err}
	}).WithTimeout(15 * time.Second).PipeTo(ctx.Self())
	a.Become(IngestWaitingRoomState{
		actor: a,
	})
}

func (a *IngestActor) startHouseMerge(ctx actor.Context, measurement domain.InboundMeasurement) {
	NewBackgroundTaskNoError(ctx, func() *houseIngested {
		r := a.ingestHouseReading(measurement)
		return &r
	}).Recover(func(err error) houseIngested {
		return houseIngested{HouseId: measurement.HouseId, Error: err}
	}).WithTimeout(15 * time.Second).PipeTo(ctx.Self())
	a.Become(IngestWaitingHouseState{
		actor: a,
	})
}

// ingestRoomReading persists a reading into the room replica. The read,
// append and update are separate store calls, so a concurrent writer can
// lose one measurement record.
func (a *IngestActor) ingestRoomReading(measurement domain.InboundMeasurement) roomIngested {
	taskCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	room, err := a.store.Get(taskCtx, domain.DOC_TYPE_ROOM, measurement.RoomId)
	if err != nil {
		return roomIngested{RoomId: measurement.RoomId, Error: err}
	}
	houseId, ok := room.DataString("house_id")
	if !ok {
		return roomIngested{
			RoomId: measurement.RoomId,
			Error:  domain.MissingFieldError{DocType: domain.DOC_TYPE_ROOM, Field: "house_id"},
		}
	}

	now := time.Now().UTC()
	absoluteHumidity := service.AbsoluteHumidity(measurement.Temperature, measurement.Humidity)
	measurements := append(room.Measurements(), domain.NewReadingMeasurement(measurement.Temperature, measurement.Humidity, now))

	err = a.store.Update(taskCtx, domain.DOC_TYPE_ROOM, measurement.RoomId, domain.DocumentUpdate{
		Data: map[string]any{
			"temperature":       measurement.Temperature,
			"humidity":          measurement.Humidity,
			"absolute_humidity": absoluteHumidity,
			"measurements":      measurements,
		},
	})
	if err != nil {
		return roomIngested{RoomId: measurement.RoomId, Error: err}
	}

	name, _ := room.ProfileString("name")
	return roomIngested{
		RoomId:           measurement.RoomId,
		RoomName:         name,
		HouseId:          houseId,
		UserIds:          room.DataStrings("users"),
		RelativeHumidity: measurement.Humidity,
		AbsoluteHumidity: absoluteHumidity,
	}
}

// ingestHouseReading merges a house-level reading straight into the house
// weather fields, the same slots the forecast sync writes.
func (a *IngestActor) ingestHouseReading(measurement domain.InboundMeasurement) houseIngested {
	taskCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	absoluteHumidity := service.AbsoluteHumidity(measurement.Temperature, measurement.Humidity)
	err := a.store.Update(taskCtx, domain.DOC_TYPE_HOUSE, measurement.HouseId, domain.DocumentUpdate{
		Data: map[string]any{
			"temperature":       measurement.Temperature,
			"relative_humidity": measurement.Humidity,
			"absolute_humidity": absoluteHumidity,
		},
	})
	return houseIngested{HouseId: measurement.HouseId, Error: err}
}

func alertText(pending *roomIngested, difference float64) string {
	room := pending.RoomName
	if room == "" {
		room = pending.RoomId
	}
	return fmt.Sprintf(
		"Humidity alert for %s: %.1f%% RH indoors. The air outside holds %.1f g/m³ less water. Open a window to dry the room.",
		room, pending.RelativeHumidity, difference)
}
