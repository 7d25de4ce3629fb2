package actor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/jonas-oms/hygrotwin/internal/adapter/store"
	"github.com/jonas-oms/hygrotwin/internal/core/domain"
	"github.com/jonas-oms/hygrotwin/internal/core/port"
)

type fixedWeatherProvider struct {
	sample port.WeatherSample
	err    error
}

func (p fixedWeatherProvider) Current(ctx context.Context, latitude, longitude float64) (*port.WeatherSample, error) {
	if p.err != nil {
		return nil, p.err
	}
	s := p.sample
	return &s, nil
}

func seedHouse(t *testing.T, memStore *store.MemoryStore) {
	t.Helper()
	_, err := memStore.Save(context.Background(), domain.DOC_TYPE_HOUSE, &domain.Document{
		ID:      "h1",
		Profile: map[string]any{"name": "home", "latitude": 52.52, "longitude": 13.41},
		Data:    map[string]any{},
	})
	assert.NoError(t, err)
}

func TestWeatherActorSyncsHouse(t *testing.T) {

	as := actor.NewActorSystem()
	rootCtx := as.Root
	logger := zap.NewNop()

	memStore := store.NewMemoryStore()
	seedHouse(t, memStore)

	provider := fixedWeatherProvider{
		sample: port.WeatherSample{Temperature: 10, RelativeHumidity: 70, Rain: 0.2},
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewWeatherActor(memStore, provider, logger)
	})
	pid := rootCtx.Spawn(props)

	res, err := rootCtx.RequestFuture(pid, domain.SyncHouseWeatherRequest{HouseId: "h1"}, 5*time.Second).Result()
	assert.NoError(t, err)
	resp, ok := res.(domain.SyncHouseWeatherResponse)
	assert.True(t, ok)
	assert.False(t, resp.HasResponseError())
	assert.Equal(t, "h1", resp.HouseId)
	assert.Equal(t, 10.0, resp.Temperature)
	assert.Greater(t, resp.AbsoluteHumidity, 0.0)

	house, err := memStore.Get(context.Background(), domain.DOC_TYPE_HOUSE, "h1")
	assert.NoError(t, err)
	temp, _ := house.DataFloat("temperature")
	assert.Equal(t, 10.0, temp)
	ah, ok := house.DataFloat("absolute_humidity")
	assert.True(t, ok)
	assert.InDelta(t, resp.AbsoluteHumidity, ah, 0.0001)

	rootCtx.Stop(pid)
	as.Shutdown()
}

func TestWeatherActorUnknownHouse(t *testing.T) {

	as := actor.NewActorSystem()
	rootCtx := as.Root

	memStore := store.NewMemoryStore()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewWeatherActor(memStore, fixedWeatherProvider{}, zap.NewNop())
	})
	pid := rootCtx.Spawn(props)

	res, err := rootCtx.RequestFuture(pid, domain.SyncHouseWeatherRequest{HouseId: "ghost"}, 5*time.Second).Result()
	assert.NoError(t, err)
	resp, ok := res.(domain.SyncHouseWeatherResponse)
	assert.True(t, ok)
	assert.True(t, resp.HasResponseError())

	rootCtx.Stop(pid)
	as.Shutdown()
}

func TestWeatherActorProviderFailure(t *testing.T) {

	as := actor.NewActorSystem()
	rootCtx := as.Root

	memStore := store.NewMemoryStore()
	seedHouse(t, memStore)

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewWeatherActor(memStore, fixedWeatherProvider{err: errors.New("api down")}, zap.NewNop())
	})
	pid := rootCtx.Spawn(props)

	res, err := rootCtx.RequestFuture(pid, domain.SyncHouseWeatherRequest{HouseId: "h1"}, 5*time.Second).Result()
	assert.NoError(t, err)
	resp, ok := res.(domain.SyncHouseWeatherResponse)
	assert.True(t, ok)
	assert.True(t, resp.HasResponseError())

	rootCtx.Stop(pid)
	as.Shutdown()
}
