package util

import (
	"github.com/jonas-oms/hygrotwin/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		Mongo: config.MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "hygrotwin_test",
		},
		MQTT: config.MQTTConfig{
			Host:             "localhost",
			Port:             1883,
			BaseTopic:        "hygrotwin",
			MeasurementTopic: "measurement",
		},
		Weather: config.WeatherConfig{
			BaseURL:       "https://api.open-meteo.com",
			TimeoutMillis: 10000,
		},
		Alert: config.AlertConfig{
			HumidityThreshold: 60,
		},
		Port: 8080,
	}
}
