package actor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/jonas-oms/hygrotwin/internal/adapter/session"
	"github.com/jonas-oms/hygrotwin/internal/core/domain"
)

type recordingMessenger struct {
	sent    []string
	failFor int64
}

func (m *recordingMessenger) SendText(ctx context.Context, chatId int64, text string) error {
	if m.failFor != 0 && chatId == m.failFor {
		return errors.New("send failed")
	}
	m.sent = append(m.sent, text)
	return nil
}

func TestNotifierDeliversToLoggedInUsers(t *testing.T) {

	as := actor.NewActorSystem()
	rootCtx := as.Root

	sessions := session.NewMemorySessionStore()
	sessions.Login(100, "user1")
	messenger := &recordingMessenger{}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewNotifierActor(sessions, messenger, zap.NewNop())
	})
	pid := rootCtx.Spawn(props)

	res, err := rootCtx.RequestFuture(pid, domain.NotifyRoomUsersRequest{
		RoomId:  "room1",
		UserIds: []string{"user1", "user2"},
		Text:    "open a window",
	}, 5*time.Second).Result()
	assert.NoError(t, err)

	resp, ok := res.(domain.NotifyRoomUsersResponse)
	assert.True(t, ok)
	assert.Equal(t, 1, resp.Delivered)
	assert.Equal(t, 1, resp.Skipped)
	assert.Equal(t, []string{"open a window"}, messenger.sent)

	rootCtx.Stop(pid)
	as.Shutdown()
}

func TestNotifierNoSessionsNoSends(t *testing.T) {

	as := actor.NewActorSystem()
	rootCtx := as.Root

	messenger := &recordingMessenger{}
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewNotifierActor(session.NewMemorySessionStore(), messenger, zap.NewNop())
	})
	pid := rootCtx.Spawn(props)

	res, err := rootCtx.RequestFuture(pid, domain.NotifyRoomUsersRequest{
		RoomId:  "room1",
		UserIds: []string{"user1"},
		Text:    "open a window",
	}, 5*time.Second).Result()
	assert.NoError(t, err)

	resp, ok := res.(domain.NotifyRoomUsersResponse)
	assert.True(t, ok)
	assert.Equal(t, 0, resp.Delivered)
	assert.Equal(t, 1, resp.Skipped)
	assert.Empty(t, messenger.sent)

	rootCtx.Stop(pid)
	as.Shutdown()
}

func TestNotifierSendFailureDoesNotStopOthers(t *testing.T) {

	as := actor.NewActorSystem()
	rootCtx := as.Root

	sessions := session.NewMemorySessionStore()
	sessions.Login(100, "user1")
	sessions.Login(200, "user2")
	messenger := &recordingMessenger{failFor: 100}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewNotifierActor(sessions, messenger, zap.NewNop())
	})
	pid := rootCtx.Spawn(props)

	res, err := rootCtx.RequestFuture(pid, domain.NotifyRoomUsersRequest{
		RoomId:  "room1",
		UserIds: []string{"user1", "user2"},
		Text:    "open a window",
	}, 5*time.Second).Result()
	assert.NoError(t, err)

	resp, ok := res.(domain.NotifyRoomUsersResponse)
	assert.True(t, ok)
	assert.Equal(t, 1, resp.Delivered)
	assert.Equal(t, 1, resp.Skipped)

	rootCtx.Stop(pid)
	as.Shutdown()
}
