package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adactor "github.com/jonas-oms/hygrotwin/internal/adapter/actor"
	"github.com/jonas-oms/hygrotwin/internal/adapter/session"
	"github.com/jonas-oms/hygrotwin/internal/adapter/store"
	"github.com/jonas-oms/hygrotwin/internal/adapter/telegram"
	"github.com/jonas-oms/hygrotwin/internal/adapter/weather"
	"github.com/jonas-oms/hygrotwin/internal/config"
	"github.com/jonas-oms/hygrotwin/internal/core/actor"
	"github.com/jonas-oms/hygrotwin/internal/core/port"
	"github.com/jonas-oms/hygrotwin/internal/core/service"
	"github.com/jonas-oms/hygrotwin/internal/schema"
	"github.com/jonas-oms/hygrotwin/internal/server"
	"github.com/jonas-oms/hygrotwin/internal/util/actorutil"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/carlmjohnson/versioninfo"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		return
	}
	safePrintConfig(*cfg)
	slog.Info("hygrotwin", "version", versioninfo.Short())

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())
	defer logger.Sync()

	// document store
	bootCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	documentStore, err := store.NewMongoStore(bootCtx, cfg.Mongo, logger)
	cancel()
	if err != nil {
		logger.Fatal("mongo connect failed", zap.Error(err))
	}

	// schema templates
	registry := schema.NewRegistry()
	if err := registry.LoadDir(cfg.TemplatesDir); err != nil {
		logger.Fatal("schema templates load failed", zap.Error(err))
	}
	factory := schema.NewFactory(registry)

	// telegram bot (optional)
	sessions := session.NewMemorySessionStore()
	var messenger port.Messenger
	var botClient *telegram.Client
	if cfg.Telegram.Enable {
		botClient, err = telegram.NewClient(cfg.Telegram, logger)
		if err != nil {
			logger.Fatal("telegram init failed", zap.Error(err))
		}
		if err := botClient.RegisterWebhook(cfg.Telegram.WebhookBaseURL, cfg.Telegram.WebhookPath); err != nil {
			logger.Fatal("telegram webhook registration failed", zap.Error(err))
		}
		messenger = botClient
	} else {
		messenger = noopMessenger{}
	}

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	weatherProvider := weather.NewOpenMeteoClient(cfg.Weather)

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterActor(*cfg, documentStore, weatherProvider, sessions, messenger,
			mqttActorProvider(cfg, logger), logger)
	})
	pid, err := ctx.SpawnNamed(props, "master")
	if err != nil {
		return
	}

	devices := service.NewDeviceControl(documentStore, adactor.NewActorDevicePublisher(ctx, pid), logger)

	var botRouter *telegram.Router
	if botClient != nil {
		botRouter = telegram.NewRouter(documentStore, sessions, botClient, devices, logger)
	}

	server := server.NewServer(*cfg, ctx, pid, documentStore, factory, devices, botRouter, logger)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	ctx.Stop(pid)
	as.Shutdown()

	disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := documentStore.Disconnect(disconnectCtx); err != nil {
		log.Printf("mongo disconnect error: %v", err)
	}
}

func initConfig() (*config.Config, error) {

	// alias PORT => HYGROTWIN_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("HYGROTWIN_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("hygrotwin")
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace":
		cfg.LogLevel = zap.DebugLevel
	case "debug":
		cfg.LogLevel = zap.DebugLevel
	case "info":
		cfg.LogLevel = zap.InfoLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "warn":
		cfg.LogLevel = zap.WarnLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.InfoLevel
	}

	// check and fix base topic
	baseTopic, err := config.CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return nil, errors.New("invalid base topic. can only contain letters, numbers, underscores and slashes")
	}
	cfg.MQTT.BaseTopic = baseTopic

	// check and fix measurement topic
	measurementTopic, err := config.CheckMQTTTopic(cfg.MQTT.MeasurementTopic)
	if err != nil {
		return nil, errors.New("invalid measurement topic. can only contain letters, numbers, underscores and slashes")
	}
	cfg.MQTT.MeasurementTopic = measurementTopic

	// check bounds
	if cfg.Mongo.URI == "" {
		return nil, errors.New("config param mongo.uri is required")
	}
	if cfg.Alert.HumidityThreshold < 0 || cfg.Alert.HumidityThreshold > 100 {
		return nil, errors.New("config param alert.humidity_threshold must be between 0 and 100")
	}
	if cfg.Telegram.Enable && cfg.Telegram.Token == "" {
		return nil, errors.New("config param telegram.token is required when telegram.enable is set")
	}
	if cfg.Telegram.Enable && cfg.Telegram.WebhookBaseURL == "" {
		return nil, errors.New("config param telegram.webhook_base_url is required when telegram.enable is set")
	}

	return &cfg, nil
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	return func() *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, logger)
	}
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("mongo.database", "hygrotwin")
	viper.SetDefault("mqtt.base_topic", "hygrotwin")
	viper.SetDefault("mqtt.measurement_topic", "measurement")
	viper.SetDefault("telegram.enable", false)
	viper.SetDefault("telegram.webhook_path", "/api/webhook/telegram")
	viper.SetDefault("weather.base_url", "https://api.open-meteo.com")
	viper.SetDefault("weather.timeout_millis", 10000)
	viper.SetDefault("alert.humidity_threshold", 60)
	viper.SetDefault("templates_dir", "templates")
	viper.SetDefault("port", 8080)
}

func safePrintConfig(cfg config.Config) {
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	cfg.Telegram.Token = "*redacted*"
	cfg.Mongo.URI = "*redacted*"
	slog.Info("Using", "config", cfg)
}

// noopMessenger stands in when the bot is disabled; alerts are dropped.
type noopMessenger struct{}

func (noopMessenger) SendText(ctx context.Context, chatId int64, text string) error {
	return nil
}
