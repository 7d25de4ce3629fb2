package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/jonas-oms/hygrotwin/internal/adapter/telegram"
	"github.com/jonas-oms/hygrotwin/internal/config"
	"github.com/jonas-oms/hygrotwin/internal/core/port"
	"github.com/jonas-oms/hygrotwin/internal/core/service"
	"github.com/jonas-oms/hygrotwin/internal/schema"
)

type Server struct {
	port        uint
	httpLog     bool
	webhookPath string
	rootContext *actor.RootContext
	masterActor *actor.PID
	store       port.DocumentStore
	factory     *schema.Factory
	devices     *service.DeviceControl
	botRouter   *telegram.Router
	logger      *zap.Logger
}

// NewServer wires the REST surface. botRouter may be nil when the bot is
// disabled; the webhook route is then not registered.
func NewServer(cfg config.Config, rootContext *actor.RootContext, masterActor *actor.PID,
	store port.DocumentStore, factory *schema.Factory, devices *service.DeviceControl,
	botRouter *telegram.Router, logger *zap.Logger) *http.Server {
	NewServer := &Server{
		port:        cfg.Port,
		httpLog:     cfg.HttpLog,
		webhookPath: cfg.Telegram.WebhookPath,
		rootContext: rootContext,
		masterActor: masterActor,
		store:       store,
		factory:     factory,
		devices:     devices,
		botRouter:   botRouter,
		logger:      logger.With(zap.String("component", "server")),
	}

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", NewServer.port),
		Handler:      NewServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
