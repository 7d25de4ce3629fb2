package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jonas-oms/hygrotwin/internal/core/domain"
	"github.com/jonas-oms/hygrotwin/internal/core/service"
)

func (s *Server) CreateRoomHandler(c echo.Context) error {
	houseId := c.Param("house_id")
	var req createDocumentRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, domain.ValidationError{Message: "invalid request body"})
	}

	ctx := c.Request().Context()
	house, err := s.store.Get(ctx, domain.DOC_TYPE_HOUSE, houseId)
	if err != nil {
		return errorResponse(c, err)
	}

	if req.Data == nil {
		req.Data = map[string]any{}
	}
	req.Data["house_id"] = houseId

	room, err := s.factory.NewDocument(domain.DOC_TYPE_ROOM, req.Profile, req.Data)
	if err != nil {
		return errorResponse(c, err)
	}
	id, err := s.store.Save(ctx, domain.DOC_TYPE_ROOM, room)
	if err != nil {
		return errorResponse(c, err)
	}

	// register the room on the house side too
	rooms := append(house.DataStrings("rooms"), id)
	err = s.store.Update(ctx, domain.DOC_TYPE_HOUSE, houseId, domain.DocumentUpdate{
		Data: map[string]any{"rooms": rooms},
	})
	if err != nil {
		return errorResponse(c, err)
	}

	return statusResponse(c, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) ListRoomsHandler(c echo.Context) error {
	rooms, err := s.store.Query(c.Request().Context(), domain.DOC_TYPE_ROOM, map[string]any{
		"data.house_id": c.Param("house_id"),
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return statusResponse(c, http.StatusOK, rooms)
}

func (s *Server) GetRoomHandler(c echo.Context) error {
	room, err := s.roomOfHouse(c)
	if err != nil {
		return errorResponse(c, err)
	}
	return statusResponse(c, http.StatusOK, room)
}

func (s *Server) UpdateRoomHandler(c echo.Context) error {
	roomId := c.Param("room_id")
	if _, err := s.roomOfHouse(c); err != nil {
		return errorResponse(c, err)
	}

	var update domain.DocumentUpdate
	if err := c.Bind(&update); err != nil {
		return errorResponse(c, domain.ValidationError{Message: "invalid request body"})
	}
	if err := s.store.Update(c.Request().Context(), domain.DOC_TYPE_ROOM, roomId, update); err != nil {
		return errorResponse(c, err)
	}
	return statusResponse(c, http.StatusOK, map[string]any{"id": roomId})
}

func (s *Server) DeleteRoomHandler(c echo.Context) error {
	houseId := c.Param("house_id")
	roomId := c.Param("room_id")
	if _, err := s.roomOfHouse(c); err != nil {
		return errorResponse(c, err)
	}

	ctx := c.Request().Context()
	if err := s.store.Delete(ctx, domain.DOC_TYPE_ROOM, roomId); err != nil {
		return errorResponse(c, err)
	}

	// unregister from the house room list
	house, err := s.store.Get(ctx, domain.DOC_TYPE_HOUSE, houseId)
	if err != nil {
		return errorResponse(c, err)
	}
	rooms := make([]string, 0)
	for _, id := range house.DataStrings("rooms") {
		if id != roomId {
			rooms = append(rooms, id)
		}
	}
	err = s.store.Update(ctx, domain.DOC_TYPE_HOUSE, houseId, domain.DocumentUpdate{
		Data: map[string]any{"rooms": rooms},
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return statusResponse(c, http.StatusOK, map[string]any{"id": roomId})
}

type addMeasurementRequest struct {
	MeasureType string  `json:"measure_type"`
	Value       float64 `json:"value"`
}

// AddMeasurementHandler appends a manual reading to the room's measurement
// log. The matching current-value field is overwritten as well, so a manual
// reading behaves like one from the broker.
func (s *Server) AddMeasurementHandler(c echo.Context) error {
	roomId := c.Param("room_id")
	room, err := s.roomOfHouse(c)
	if err != nil {
		return errorResponse(c, err)
	}

	var req addMeasurementRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, domain.ValidationError{Message: "invalid request body"})
	}
	if req.MeasureType != "temperature" && req.MeasureType != "humidity" {
		return errorResponse(c, domain.ValidationError{Message: "measure_type must be temperature or humidity"})
	}

	now := time.Now().UTC()
	measurements := append(room.Measurements(), domain.NewValueMeasurement(req.MeasureType, req.Value, now))
	err = s.store.Update(c.Request().Context(), domain.DOC_TYPE_ROOM, roomId, domain.DocumentUpdate{
		Data: map[string]any{
			"measurements":  measurements,
			req.MeasureType: req.Value,
		},
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return statusResponse(c, http.StatusCreated, map[string]any{"id": roomId})
}

func (s *Server) ComparisonHandler(c echo.Context) error {
	ctx := c.Request().Context()
	house, err := s.store.Get(ctx, domain.DOC_TYPE_HOUSE, c.Param("house_id"))
	if err != nil {
		return errorResponse(c, err)
	}
	room, err := s.roomOfHouse(c)
	if err != nil {
		return errorResponse(c, err)
	}

	comparison, err := service.CompareHumidity(room, house)
	if err != nil {
		return errorResponse(c, err)
	}
	return statusResponse(c, http.StatusOK, comparison)
}

// roomOfHouse loads :room_id and checks it belongs to :house_id.
func (s *Server) roomOfHouse(c echo.Context) (*domain.Document, error) {
	room, err := s.store.Get(c.Request().Context(), domain.DOC_TYPE_ROOM, c.Param("room_id"))
	if err != nil {
		return nil, err
	}
	if houseId, _ := room.DataString("house_id"); houseId != c.Param("house_id") {
		return nil, domain.NotFoundError{DocType: domain.DOC_TYPE_ROOM, ID: c.Param("room_id")}
	}
	return room, nil
}
