package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/jonas-oms/hygrotwin/internal/core/domain"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)

	api := e.Group("/api")

	api.POST("/house", s.CreateHouseHandler)
	api.GET("/house", s.ListHousesHandler)
	api.GET("/house/:house_id", s.GetHouseHandler)

	api.POST("/house/:house_id/rooms", s.CreateRoomHandler)
	api.GET("/house/:house_id/rooms", s.ListRoomsHandler)
	api.GET("/house/:house_id/rooms/:room_id", s.GetRoomHandler)
	api.PUT("/house/:house_id/rooms/:room_id", s.UpdateRoomHandler)
	api.DELETE("/house/:house_id/rooms/:room_id", s.DeleteRoomHandler)
	api.POST("/house/:house_id/rooms/:room_id/measurements", s.AddMeasurementHandler)

	api.GET("/house/:house_id/comparison/:room_id", s.ComparisonHandler)
	api.POST("/house/:house_id/predict", s.PredictRoomHandler)

	// led and ventilation share handlers, the route group fixes the kind
	for _, kind := range []string{domain.DOC_TYPE_LED, domain.DOC_TYPE_VENTILATION} {
		g := api.Group("/" + kind)
		g.POST("", s.CreateDeviceHandler(kind))
		g.GET("", s.ListDevicesHandler(kind))
		g.GET("/:device_id", s.GetDeviceHandler(kind))
		g.POST("/:device_id/toggle", s.ToggleDeviceHandler(kind))
		g.POST("/:device_id/brightness", s.SetBrightnessHandler(kind))
	}

	api.POST("/user/register", s.RegisterUserHandler)
	api.POST("/user/:user_id/assign/:room_id", s.AssignRoomHandler)

	if s.botRouter != nil {
		e.POST(s.webhookPath, s.TelegramWebhookHandler)
	}

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

// statusResponse is the success envelope of every JSON endpoint.
func statusResponse(c echo.Context, code int, payload any) error {
	return c.JSON(code, map[string]any{"status": payload})
}

// errorResponse maps domain errors to HTTP codes.
func errorResponse(c echo.Context, err error) error {
	var notFound domain.NotFoundError
	var validation domain.ValidationError
	var missingField domain.MissingFieldError
	switch {
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, map[string]any{"error": err.Error()})
	case errors.As(err, &validation), errors.As(err, &missingField):
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
}
