package domain

const (
	ACTOR_ID_MASTER   = "master"
	ACTOR_ID_MQTT     = "mqtt"
	ACTOR_ID_INGEST   = "ingest"
	ACTOR_ID_WEATHER  = "weather"
	ACTOR_ID_NOTIFIER = "notifier"
)

// InboundMeasurement is a parsed measurement payload from the broker.
// Exactly one of RoomId/HouseId is set.
type InboundMeasurement struct {
	RoomId      string
	HouseId     string
	Temperature float64
	Humidity    float64
}

// SyncHouseWeatherRequest asks the weather actor to refresh a house's
// outdoor conditions from the forecast API and persist them.
type SyncHouseWeatherRequest struct {
	ActorRequestMixIn
	HouseId string
}

type SyncHouseWeatherResponse struct {
	ActorResponseMixIn
	HouseId          string
	Temperature      float64
	RelativeHumidity float64
	AbsoluteHumidity float64
}

// NotifyRoomUsersRequest fans a text alert out to every room user with an
// active bot session. Users without a session are skipped silently.
type NotifyRoomUsersRequest struct {
	ActorRequestMixIn
	RoomId  string
	UserIds []string
	Text    string
}

type NotifyRoomUsersResponse struct {
	ActorResponseMixIn
	Delivered int
	Skipped   int
}

// PublishDeviceUpdateRequest pushes a device update event to the broker.
type PublishDeviceUpdateRequest struct {
	ActorRequestMixIn
	Event DeviceUpdateEvent
}

type PublishDeviceUpdateResponse struct {
	ActorResponseMixIn
}

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
