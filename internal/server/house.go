package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jonas-oms/hygrotwin/internal/core/domain"
	"github.com/jonas-oms/hygrotwin/internal/core/service"
)

type createDocumentRequest struct {
	Profile map[string]any `json:"profile"`
	Data    map[string]any `json:"data"`
}

func (s *Server) CreateHouseHandler(c echo.Context) error {
	var req createDocumentRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, domain.ValidationError{Message: "invalid request body"})
	}

	house, err := s.factory.NewDocument(domain.DOC_TYPE_HOUSE, req.Profile, req.Data)
	if err != nil {
		return errorResponse(c, err)
	}
	id, err := s.store.Save(c.Request().Context(), domain.DOC_TYPE_HOUSE, house)
	if err != nil {
		return errorResponse(c, err)
	}
	return statusResponse(c, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) ListHousesHandler(c echo.Context) error {
	houses, err := s.store.Query(c.Request().Context(), domain.DOC_TYPE_HOUSE, nil)
	if err != nil {
		return errorResponse(c, err)
	}
	return statusResponse(c, http.StatusOK, houses)
}

func (s *Server) GetHouseHandler(c echo.Context) error {
	house, err := s.store.Get(c.Request().Context(), domain.DOC_TYPE_HOUSE, c.Param("house_id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return statusResponse(c, http.StatusOK, house)
}

type predictRequest struct {
	OptimalTemperature float64 `json:"optimal_temperature"`
}

// PredictRoomHandler scores the house's rooms by closeness to the requested
// temperature, penalized by device occupancy.
func (s *Server) PredictRoomHandler(c echo.Context) error {
	houseId := c.Param("house_id")
	var req predictRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, domain.ValidationError{Message: "invalid request body"})
	}

	if _, err := s.store.Get(c.Request().Context(), domain.DOC_TYPE_HOUSE, houseId); err != nil {
		return errorResponse(c, err)
	}
	rooms, err := s.store.Query(c.Request().Context(), domain.DOC_TYPE_ROOM, map[string]any{
		"data.house_id": houseId,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	if len(rooms) == 0 {
		return errorResponse(c, domain.ValidationError{Message: "house has no rooms to score"})
	}

	prediction := service.ScoreRooms(rooms, req.OptimalTemperature)
	return statusResponse(c, http.StatusOK, prediction)
}
