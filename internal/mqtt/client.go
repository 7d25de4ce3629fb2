package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jonas-oms/hygrotwin/internal/config"
	"github.com/jonas-oms/hygrotwin/internal/core/domain"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	MQTT_PAYLOAD_ONLINE  = "online"
	MQTT_PAYLOAD_OFFLINE = "offline"
)

func OptsFromConfig(cfg *config.Config) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTT.Host, cfg.MQTT.Port))
	opts.SetClientID(fmt.Sprintf("hygrotwin_%d", rand.IntN(1000)))
	if cfg.MQTT.Username != "" && cfg.MQTT.Password != "" {
		opts.SetUsername(cfg.MQTT.Username)
		opts.SetPassword(cfg.MQTT.Password)
	}
	opts.WillEnabled = true
	opts.WillPayload = []byte(MQTT_PAYLOAD_OFFLINE)
	opts.WillRetained = true
	opts.WillTopic = bridgeStateTopic(cfg.MQTT.BaseTopic)
	opts.WillQos = 0

	return opts
}

func CreateMQTTClient(cfg *config.Config, opts *mqtt.ClientOptions, onConnectHandler func(client mqtt.Client),
	onConnectionLostHandler func(mqtt.Client, error)) *MQTTClient {
	if onConnectHandler != nil {
		opts.OnConnect = onConnectHandler
	}
	if onConnectionLostHandler != nil {
		opts.OnConnectionLost = onConnectionLostHandler
	}
	return &MQTTClient{
		client: mqtt.NewClient(opts),
		cfg:    cfg.MQTT,
	}
}

type MQTTClient struct {
	client mqtt.Client
	cfg    config.MQTTConfig
}

// measurementPayload is the inbound topic contract:
// {room_id | house_id, temperature, humidity}.
type measurementPayload struct {
	RoomId      string   `json:"room_id"`
	HouseId     string   `json:"house_id"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

type statePayload struct {
	State     string `json:"state"`
	Timestamp string `json:"timestamp"`
}

type brightnessPayload struct {
	Brightness int    `json:"brightness"`
	Timestamp  string `json:"timestamp"`
}

func (c *MQTTClient) baseTopic() string {
	return c.cfg.BaseTopic
}

func (c *MQTTClient) BridgeStateTopic() string {
	return bridgeStateTopic(c.baseTopic())
}

func (c *MQTTClient) MeasurementTopic() string {
	return c.cfg.MeasurementTopic
}

func (c *MQTTClient) DeviceStateTopic(deviceId string) string {
	return fmt.Sprintf("%s/%s/state", c.baseTopic(), deviceId)
}

func (c *MQTTClient) DeviceBrightnessTopic(deviceId string) string {
	return fmt.Sprintf("%s/%s/brightness", c.baseTopic(), deviceId)
}

// ParseMeasurement decodes and validates an inbound measurement message.
// Missing or non-numeric temperature/humidity is an error; exactly one of
// room_id/house_id must be present.
func ParseMeasurement(payload []byte) (*domain.InboundMeasurement, error) {
	var p measurementPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, err
	}
	if p.RoomId == "" && p.HouseId == "" {
		return nil, errors.New("measurement payload carries neither room_id nor house_id")
	}
	if p.Temperature == nil || p.Humidity == nil {
		return nil, errors.New("measurement payload requires numeric temperature and humidity")
	}
	return &domain.InboundMeasurement{
		RoomId:      p.RoomId,
		HouseId:     p.HouseId,
		Temperature: *p.Temperature,
		Humidity:    *p.Humidity,
	}, nil
}

func StatePayload(state string, ts time.Time) ([]byte, error) {
	return json.Marshal(statePayload{
		State:     state,
		Timestamp: ts.UTC().Format(time.RFC3339),
	})
}

func BrightnessPayload(brightness int, ts time.Time) ([]byte, error) {
	return json.Marshal(brightnessPayload{
		Brightness: brightness,
		Timestamp:  ts.UTC().Format(time.RFC3339),
	})
}

func (c *MQTTClient) Publish(topic string, payload any, qos byte, retain bool, continuation func(error), timeout time.Duration) {
	token := c.client.Publish(topic, qos, retain, payload)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT publish timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Subscribe(topic string, qos byte, handler mqtt.MessageHandler, continuation func(error), timeout time.Duration) {
	token := c.client.Subscribe(topic, qos, handler)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT subscribe timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) SubscribeToMeasurementTopic(handler mqtt.MessageHandler, continuation func(error), timeout time.Duration) {
	c.Subscribe(c.MeasurementTopic(), 1, handler, continuation, timeout)
}

func (c *MQTTClient) Unsubscribe(topic string, continuation func(error), timeout time.Duration) {
	token := c.client.Unsubscribe(topic)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT unsubscribe timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Connect(continuation func(error), timeout time.Duration) {
	token := c.client.Connect()
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT connect timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Disconnect(timeout time.Duration) {
	c.client.Disconnect(uint(timeout.Milliseconds()))
}

func bridgeStateTopic(baseTopic string) string {
	return fmt.Sprintf("%s/bridge/state", baseTopic)
}
