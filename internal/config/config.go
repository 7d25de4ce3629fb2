package config

import (
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel zapcore.Level
	Mongo    MongoConfig    `mapstructure:"mongo"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Weather  WeatherConfig  `mapstructure:"weather"`
	Alert    AlertConfig    `mapstructure:"alert"`
	Port     uint           `mapstructure:"port"`
	HttpLog  bool           `mapstructure:"http_log"`
	// TemplatesDir holds the document schema templates loaded at boot.
	TemplatesDir string `mapstructure:"templates_dir"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type MQTTConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// BaseTopic is the namespace for outbound device state topics.
	BaseTopic string `mapstructure:"base_topic"`
	// MeasurementTopic carries inbound sensor payloads.
	MeasurementTopic string `mapstructure:"measurement_topic"`
}

type TelegramConfig struct {
	Enable bool   `mapstructure:"enable"`
	Token  string `mapstructure:"token"`
	// WebhookBaseURL is the public base URL the bot API delivers updates to.
	WebhookBaseURL string `mapstructure:"webhook_base_url"`
	WebhookPath    string `mapstructure:"webhook_path"`
}

type WeatherConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	TimeoutMillis uint32 `mapstructure:"timeout_millis"`
}

type AlertConfig struct {
	// HumidityThreshold is the relative humidity (%) above which a positive
	// room-vs-house absolute humidity difference notifies room users.
	HumidityThreshold float64 `mapstructure:"humidity_threshold"`
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_/]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers, underscores and slashes")
	}
	return strings.TrimSuffix(lowerBaseTopic, "/"), nil
}
