package actor

import (
	"context"
	"fmt"
	"time"

	"github.com/jonas-oms/hygrotwin/internal/core/domain"
	"github.com/jonas-oms/hygrotwin/internal/core/port"
	"github.com/jonas-oms/hygrotwin/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// NotifierActor delivers alert texts to room users over the bot. Users
// without an active session are skipped; a failed send is logged and does
// not abort the remaining deliveries.
type NotifierActor struct {
	behavior  actor.Behavior
	stash     *actorutil.Stash
	sessions  port.SessionStore
	messenger port.Messenger
	logger    *zap.Logger
}

func NewNotifierActor(sessions port.SessionStore, messenger port.Messenger, logger *zap.Logger) *NotifierActor {
	act := &NotifierActor{
		behavior:  actor.NewBehavior(),
		stash:     &actorutil.Stash{},
		sessions:  sessions,
		messenger: messenger,
		logger:    actorutil.ActorLogger(domain.ACTOR_ID_NOTIFIER, logger),
	}
	act.behavior.Become(act.DefaultReceive)
	return act
}

func (state *NotifierActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *NotifierActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("notifier@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_NOTIFIER,
			Healthy: true,
			State:   "idle",
		})
	case domain.NotifyRoomUsersRequest:
		state.logger.Debug("notifier@default: NotifyRoomUsersRequest",
			zap.String("room_id", msg.RoomId), zap.Int("users", len(msg.UserIds)))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)

		request := msg
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTaskNoError(ctx, func() *domain.NotifyRoomUsersResponse {
			a := state.notifyUsers(request)
			return &a
		}),
			mapTaskResult[domain.NotifyRoomUsersResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.NotifyRoomUsersResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(30 * time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingDelivery)
	default:
		state.logger.Debug("notifier@default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *NotifierActor) WaitingDelivery(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("notifier@waiting: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_NOTIFIER,
			Healthy: true,
			State:   "delivering",
		})
	case backgroundTaskResult:
		state.logger.Debug("notifier@waiting backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		if msg.replyTo != nil {
			ctx.Send(msg.replyTo, msg.message)
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("notifier@waiting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (a *NotifierActor) notifyUsers(request domain.NotifyRoomUsersRequest) domain.NotifyRoomUsersResponse {
	taskCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	delivered, skipped := 0, 0
	for _, userId := range request.UserIds {
		chatId, ok := a.sessions.ChatId(userId)
		if !ok {
			skipped++
			continue
		}
		if err := a.messenger.SendText(taskCtx, chatId, request.Text); err != nil {
			a.logger.Warn("notifier: send failed",
				zap.String("user_id", userId),
				zap.Int64("chat_id", chatId),
				zap.Error(err))
			skipped++
			continue
		}
		delivered++
	}
	return domain.NotifyRoomUsersResponse{
		Delivered: delivered,
		Skipped:   skipped,
	}
}
