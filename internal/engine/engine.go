package engine

import (
	"vibelink/internal/database"
	"vibelink/internal/engine/actors"
	"vibelink/internal/realtime"
	"vibelink/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Engine coordinates communication between the domain actors. Domain actors
// are long-lived singletons; session actors are spawned per open view and
// stopped when the view closes.
type Engine struct {
	system     *actor.ActorSystem
	hub        *realtime.Hub
	userActor  *actor.PID
	matchActor *actor.PID

	commentActor *actor.PID
	chatActor    *actor.PID
}

func NewEngine(system *actor.ActorSystem, store database.Store, hub *realtime.Hub, metrics *utils.MetricsCollector) *Engine {
	context := system.Root

	userProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewUserActor(store)
	})
	userPID := context.Spawn(userProps)

	matchProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewMatchActor(store, hub, metrics)
	})
	matchPID := context.Spawn(matchProps)

	commentProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewCommentActor(store, hub, metrics)
	})
	commentPID := context.Spawn(commentProps)

	chatProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewChatActor(store, hub, metrics)
	})
	chatPID := context.Spawn(chatProps)

	return &Engine{
		system:       system,
		hub:          hub,
		userActor:    userPID,
		matchActor:   matchPID,
		commentActor: commentPID,
		chatActor:    chatPID,
	}
}

// GetUserActor returns the PID of the user actor
func (e *Engine) GetUserActor() *actor.PID {
	return e.userActor
}

// GetMatchActor returns the PID of the match actor
func (e *Engine) GetMatchActor() *actor.PID {
	return e.matchActor
}

// GetCommentActor returns the PID of the comment actor
func (e *Engine) GetCommentActor() *actor.PID {
	return e.commentActor
}

// GetChatActor returns the PID of the chat actor
func (e *Engine) GetChatActor() *actor.PID {
	return e.chatActor
}

// SpawnMatchSession creates a session actor for one open matches view. The
// caller owns the PID and must stop it when the view closes.
func (e *Engine) SpawnMatchSession(viewerID uuid.UUID, out func([]byte)) *actor.PID {
	props := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewMatchSessionActor(viewerID, e.matchActor, e.hub, out)
	})
	return e.system.Root.Spawn(props)
}

// SpawnThreadSession creates a session actor for one open comment thread.
func (e *Engine) SpawnThreadSession(viewerID, contentID uuid.UUID, out func([]byte)) *actor.PID {
	props := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewThreadSessionActor(viewerID, contentID, e.commentActor, e.hub, out)
	})
	return e.system.Root.Spawn(props)
}

// SpawnChatSession creates a session actor for one open chat.
func (e *Engine) SpawnChatSession(viewerID, chatID uuid.UUID, out func([]byte)) *actor.PID {
	props := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewChatSessionActor(viewerID, chatID, e.chatActor, e.hub, out)
	})
	return e.system.Root.Spawn(props)
}

// StopSession stops a session actor spawned by one of the Spawn helpers.
func (e *Engine) StopSession(pid *actor.PID) {
	if pid != nil {
		e.system.Root.Stop(pid)
	}
}
