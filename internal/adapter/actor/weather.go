package actor

import (
	"context"
	"fmt"
	"time"

	"github.com/jonas-oms/hygrotwin/internal/core/domain"
	"github.com/jonas-oms/hygrotwin/internal/core/port"
	"github.com/jonas-oms/hygrotwin/internal/core/service"
	"github.com/jonas-oms/hygrotwin/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/reugn/go-quartz/logger"
	"go.uber.org/zap"
)

// WeatherActor refreshes a house replica with current outdoor conditions.
// Requests are serialized: while a sync runs, further messages are stashed.
type WeatherActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash
	store    port.DocumentStore
	provider port.WeatherProvider
	logger   *zap.Logger
}

func NewWeatherActor(store port.DocumentStore, provider port.WeatherProvider, logger *zap.Logger) *WeatherActor {
	act := &WeatherActor{
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		store:    store,
		provider: provider,
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_WEATHER, logger),
	}
	act.behavior.Become(act.DefaultReceive)
	return act
}

func (state *WeatherActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *WeatherActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("weather@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_WEATHER,
			Healthy: true,
			State:   "idle",
		})
	case domain.SyncHouseWeatherRequest:
		state.logger.Debug("weather@default: SyncHouseWeatherRequest", zap.String("house_id", msg.HouseId))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)

		houseId := msg.HouseId
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, func() (*domain.SyncHouseWeatherResponse, error) {
			return state.syncHouseWeather(houseId)
		}),
			mapTaskResult[domain.SyncHouseWeatherResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.SyncHouseWeatherResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
					HouseId: houseId,
				},
				replyTo: sender,
			}
		}).WithTimeout(15 * time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingSync)
	default:
		state.logger.Debug("weather@default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *WeatherActor) WaitingSync(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		// a sync in flight is healthy, don't stash past the master's probe
		state.logger.Debug("weather@waiting: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_WEATHER,
			Healthy: true,
			State:   "syncing",
		})
	case backgroundTaskResult:
		state.logger.Debug("weather@waiting backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		if msg.replyTo != nil {
			ctx.Send(msg.replyTo, msg.message)
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("weather@waiting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (a *WeatherActor) syncHouseWeather(houseId string) (*domain.SyncHouseWeatherResponse, error) {
	taskCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	house, err := a.store.Get(taskCtx, domain.DOC_TYPE_HOUSE, houseId)
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	latitude, okLat := house.ProfileFloat("latitude")
	longitude, okLon := house.ProfileFloat("longitude")
	if !okLat || !okLon {
		err := domain.MissingFieldError{DocType: domain.DOC_TYPE_HOUSE, Field: "latitude/longitude"}
		logger.Error(err)
		return nil, err
	}

	sample, err := a.provider.Current(taskCtx, latitude, longitude)
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	absoluteHumidity := service.AbsoluteHumidity(sample.Temperature, sample.RelativeHumidity)

	err = a.store.Update(taskCtx, domain.DOC_TYPE_HOUSE, houseId, domain.DocumentUpdate{
		Data: map[string]any{
			"temperature":       sample.Temperature,
			"relative_humidity": sample.RelativeHumidity,
			"absolute_humidity": absoluteHumidity,
			"rain":              sample.Rain,
		},
	})
	if err != nil {
		logger.Error(err)
		return nil, err
	}

	return &domain.SyncHouseWeatherResponse{
		HouseId:          houseId,
		Temperature:      sample.Temperature,
		RelativeHumidity: sample.RelativeHumidity,
		AbsoluteHumidity: absoluteHumidity,
	}, nil
}
