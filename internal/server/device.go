package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jonas-oms/hygrotwin/internal/core/domain"
)

func (s *Server) CreateDeviceHandler(kind string) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createDocumentRequest
		if err := c.Bind(&req); err != nil {
			return errorResponse(c, domain.ValidationError{Message: "invalid request body"})
		}

		device, err := s.factory.NewDocument(kind, req.Profile, req.Data)
		if err != nil {
			return errorResponse(c, err)
		}
		id, err := s.store.Save(c.Request().Context(), kind, device)
		if err != nil {
			return errorResponse(c, err)
		}
		return statusResponse(c, http.StatusCreated, map[string]any{"id": id})
	}
}

func (s *Server) ListDevicesHandler(kind string) echo.HandlerFunc {
	return func(c echo.Context) error {
		devices, err := s.store.Query(c.Request().Context(), kind, nil)
		if err != nil {
			return errorResponse(c, err)
		}
		return statusResponse(c, http.StatusOK, devices)
	}
}

func (s *Server) GetDeviceHandler(kind string) echo.HandlerFunc {
	return func(c echo.Context) error {
		device, err := s.store.Get(c.Request().Context(), kind, c.Param("device_id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return statusResponse(c, http.StatusOK, device)
	}
}

func (s *Server) ToggleDeviceHandler(kind string) echo.HandlerFunc {
	return func(c echo.Context) error {
		newState, err := s.devices.Toggle(c.Request().Context(), kind, c.Param("device_id"), "api")
		if err != nil {
			return errorResponse(c, err)
		}
		return statusResponse(c, http.StatusOK, map[string]any{
			"id":    c.Param("device_id"),
			"state": newState,
		})
	}
}

type brightnessRequest struct {
	Brightness int `json:"brightness"`
}

func (s *Server) SetBrightnessHandler(kind string) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req brightnessRequest
		if err := c.Bind(&req); err != nil {
			return errorResponse(c, domain.ValidationError{Message: "invalid request body"})
		}
		err := s.devices.SetBrightness(c.Request().Context(), kind, c.Param("device_id"), req.Brightness, "api")
		if err != nil {
			return errorResponse(c, err)
		}
		return statusResponse(c, http.StatusOK, map[string]any{
			"id":         c.Param("device_id"),
			"brightness": req.Brightness,
		})
	}
}
