package actors

import (
	stdctx "context"
	"encoding/json"
	"log"
	"time"

	"vibelink/internal/realtime"
	"vibelink/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// command is one optimistic user action. The local state change has already
// been applied by the time the command starts; commit performs the store
// mutation in the background and rollback restores the pre-action state if
// the commit fails. onCommit receives the authoritative result so
// server-assigned fields can replace provisional placeholders.
type command struct {
	name     string
	commit   func(ctx stdctx.Context) (interface{}, error)
	rollback func()
	onCommit func(result interface{})
}

// commandDoneMsg reports a finished commit back to the owning actor's
// mailbox, so rollback and reconciliation run on actor state without races.
type commandDoneMsg struct {
	cmd    *command
	result interface{}
	err    error
}

// realtimeEventMsg wraps a change-feed event for delivery through an
// actor mailbox.
type realtimeEventMsg struct {
	event realtime.Event
}

// startCommand launches the asynchronous commit of an already-applied
// optimistic action. The outcome always comes back as a commandDoneMsg; if
// the owning actor has stopped by then, the message lands in dead letters
// and no stale state is touched.
func startCommand(context actor.Context, cmd *command) {
	self := context.Self()
	root := context.ActorSystem().Root
	go func() {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 10*time.Second)
		defer cancel()

		result, err := cmd.commit(ctx)
		root.Send(self, &commandDoneMsg{cmd: cmd, result: result, err: err})
	}()
}

// finishCommand applies the commit outcome: reconciliation on success,
// rollback on failure. Returns the error for the session to surface.
func finishCommand(msg *commandDoneMsg) *utils.AppError {
	if msg.err != nil {
		log.Printf("Command %s failed, rolling back: %v", msg.cmd.name, msg.err)
		if msg.cmd.rollback != nil {
			msg.cmd.rollback()
		}
		if appErr, ok := msg.err.(*utils.AppError); ok {
			return appErr
		}
		return utils.NewAppError(utils.ErrStore, "Action failed", msg.err)
	}

	if msg.cmd.onCommit != nil {
		msg.cmd.onCommit(msg.result)
	}
	return nil
}

// requestResult turns an actor request into a (result, error) pair:
// transport errors and AppError responses both come back as errors so
// commands can roll back on either.
func requestResult(root *actor.RootContext, pid *actor.PID, message interface{}, timeout time.Duration) (interface{}, error) {
	future := root.RequestFuture(pid, message, timeout)
	result, err := future.Result()
	if err != nil {
		return nil, utils.NewActorTimeoutError(pid.String())
	}
	if appErr, ok := result.(*utils.AppError); ok {
		return nil, appErr
	}
	return result, nil
}

// pushUpdate serializes a state notification for the owning view. Sessions
// without an attached transport simply skip the push.
func pushUpdate(out func([]byte), kind string, data interface{}) {
	if out == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"type": kind,
		"data": data,
	})
	if err != nil {
		log.Printf("Failed to marshal %s update: %v", kind, err)
		return
	}
	out(payload)
}
