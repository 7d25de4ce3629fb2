package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jonas-oms/hygrotwin/internal/core/domain"
)

type registerUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) RegisterUserHandler(c echo.Context) error {
	var req registerUserRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, domain.ValidationError{Message: "invalid request body"})
	}
	if req.Username == "" || req.Password == "" {
		return errorResponse(c, domain.ValidationError{Message: "username and password are required"})
	}

	ctx := c.Request().Context()
	existing, err := s.store.Query(ctx, domain.DOC_TYPE_USER, map[string]any{
		"profile.username": req.Username,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	if len(existing) > 0 {
		return errorResponse(c, domain.ValidationError{Message: "username already taken"})
	}

	user, err := s.factory.NewDocument(domain.DOC_TYPE_USER, map[string]any{
		"username": req.Username,
		"password": req.Password,
	}, nil)
	if err != nil {
		return errorResponse(c, err)
	}
	id, err := s.store.Save(ctx, domain.DOC_TYPE_USER, user)
	if err != nil {
		return errorResponse(c, err)
	}
	return statusResponse(c, http.StatusCreated, map[string]any{"id": id})
}

// AssignRoomHandler links a user and a room in both directions: the room id
// joins the user's assigned_rooms, the user id joins the room's users.
func (s *Server) AssignRoomHandler(c echo.Context) error {
	userId := c.Param("user_id")
	roomId := c.Param("room_id")
	ctx := c.Request().Context()

	user, err := s.store.Get(ctx, domain.DOC_TYPE_USER, userId)
	if err != nil {
		return errorResponse(c, err)
	}
	room, err := s.store.Get(ctx, domain.DOC_TYPE_ROOM, roomId)
	if err != nil {
		return errorResponse(c, err)
	}

	assigned := user.DataStrings("assigned_rooms")
	if !contains(assigned, roomId) {
		err = s.store.Update(ctx, domain.DOC_TYPE_USER, userId, domain.DocumentUpdate{
			Data: map[string]any{"assigned_rooms": append(assigned, roomId)},
		})
		if err != nil {
			return errorResponse(c, err)
		}
	}

	users := room.DataStrings("users")
	if !contains(users, userId) {
		err = s.store.Update(ctx, domain.DOC_TYPE_ROOM, roomId, domain.DocumentUpdate{
			Data: map[string]any{"users": append(users, userId)},
		})
		if err != nil {
			return errorResponse(c, err)
		}
	}

	return statusResponse(c, http.StatusOK, map[string]any{
		"user_id": userId,
		"room_id": roomId,
	})
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
