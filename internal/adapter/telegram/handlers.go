package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonas-oms/hygrotwin/internal/core/domain"
)

const helpText = `Available commands:
/login <username> <password> - start a session
/logout - end the session
/ON <device_id> - switch a device on
/OFF <device_id> - switch a device off
/rooms - list your rooms with the latest readings
/help - this message`

func (r *Router) handleStart(ctx context.Context, chatId int64, args []string) (string, error) {
	return "Welcome! Log in with /login <username> <password> to control your rooms.", nil
}

func (r *Router) handleHelp(ctx context.Context, chatId int64, args []string) (string, error) {
	return helpText, nil
}

// handleLogin authenticates against the user replica. Credentials are stored
// in plaintext in the profile zone, matching what the registration endpoint
// writes.
func (r *Router) handleLogin(ctx context.Context, chatId int64, args []string) (string, error) {
	if len(args) != 2 {
		return "", domain.ValidationError{Message: "usage: /login <username> <password>"}
	}
	username, password := args[0], args[1]

	users, err := r.store.Query(ctx, domain.DOC_TYPE_USER, map[string]any{
		"profile.username": username,
		"profile.password": password,
	})
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "", domain.ValidationError{Message: "invalid username or password"}
	}
	user := users[0]

	r.sessions.Login(chatId, user.ID)
	if err := r.store.Update(ctx, domain.DOC_TYPE_USER, user.ID, domain.DocumentUpdate{
		Data: map[string]any{"last_login": time.Now().UTC()},
	}); err != nil {
		r.logger.Warn("last_login update failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	return fmt.Sprintf("Logged in as %s.", username), nil
}

func (r *Router) handleLogout(ctx context.Context, chatId int64, args []string) (string, error) {
	if r.sessions.Logout(chatId) {
		return "Logged out.", nil
	}
	return "No active session.", nil
}

func (r *Router) handleOn(ctx context.Context, chatId int64, args []string) (string, error) {
	return r.switchDevice(ctx, chatId, args, domain.DEVICE_STATE_ON)
}

func (r *Router) handleOff(ctx context.Context, chatId int64, args []string) (string, error) {
	return r.switchDevice(ctx, chatId, args, domain.DEVICE_STATE_OFF)
}

func (r *Router) switchDevice(ctx context.Context, chatId int64, args []string, state string) (string, error) {
	userId, ok := r.sessions.UserId(chatId)
	if !ok {
		return "", domain.ValidationError{Message: "log in first with /login"}
	}
	if len(args) != 1 {
		return "", domain.ValidationError{Message: "usage: /" + strings.ToUpper(state) + " <device_id>"}
	}
	deviceId := args[0]

	// the id alone does not say which device collection holds it
	docType, err := r.resolveDeviceType(ctx, deviceId)
	if err != nil {
		return "", err
	}

	if err := r.devices.SetState(ctx, docType, deviceId, state, "user:"+userId); err != nil {
		return "", err
	}
	return fmt.Sprintf("Device %s switched %s.", deviceId, state), nil
}

func (r *Router) resolveDeviceType(ctx context.Context, deviceId string) (string, error) {
	for _, docType := range []string{domain.DOC_TYPE_LED, domain.DOC_TYPE_VENTILATION} {
		if _, err := r.store.Get(ctx, docType, deviceId); err == nil {
			return docType, nil
		}
	}
	return "", domain.NotFoundError{DocType: "device", ID: deviceId}
}

func (r *Router) handleRooms(ctx context.Context, chatId int64, args []string) (string, error) {
	userId, ok := r.sessions.UserId(chatId)
	if !ok {
		return "", domain.ValidationError{Message: "log in first with /login"}
	}

	user, err := r.store.Get(ctx, domain.DOC_TYPE_USER, userId)
	if err != nil {
		return "", err
	}
	roomIds := user.DataStrings("assigned_rooms")
	if len(roomIds) == 0 {
		return "No rooms assigned to you.", nil
	}

	var b strings.Builder
	b.WriteString("Your rooms:\n")
	for _, roomId := range roomIds {
		room, err := r.store.Get(ctx, domain.DOC_TYPE_ROOM, roomId)
		if err != nil {
			b.WriteString(fmt.Sprintf("- %s: unavailable\n", roomId))
			continue
		}
		name, _ := room.ProfileString("name")
		if name == "" {
			name = roomId
		}
		b.WriteString("- " + name + ": " + describeLastReading(room) + "\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// describeLastReading renders the newest measurement record of a room.
func describeLastReading(room *domain.Document) string {
	measurements := room.Measurements()
	if len(measurements) == 0 {
		return "no readings yet"
	}
	last, ok := measurements[len(measurements)-1].(map[string]any)
	if !ok {
		return "no readings yet"
	}
	if t, okT := floatField(last, "temperature"); okT {
		if h, okH := floatField(last, "humidity"); okH {
			return fmt.Sprintf("%.1f°C, %.1f%% RH", t, h)
		}
		return fmt.Sprintf("%.1f°C", t)
	}
	if mt, ok := last["measure_type"].(string); ok {
		if v, okV := floatField(last, "value"); okV {
			return fmt.Sprintf("%s %.1f", mt, v)
		}
	}
	return "no readings yet"
}

func floatField(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
