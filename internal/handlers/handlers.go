package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"vibelink/internal/database"
	"vibelink/internal/engine"
	"vibelink/internal/storage"
	"vibelink/internal/utils"
	"vibelink/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Metrics        *utils.MetricsCollector
	Store          database.Store
	WSHub          *websocket.Hub
	Storage        storage.ObjectStorage
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	engine *engine.Engine,
	metrics *utils.MetricsCollector,
	store database.Store,
	wsHub *websocket.Hub,
	objectStorage storage.ObjectStorage,
) *Server {
	return &Server{
		System:         system,
		Context:        system.Root,
		Engine:         engine,
		Metrics:        metrics,
		Store:          store,
		WSHub:          wsHub,
		Storage:        objectStorage,
		RequestTimeout: 5 * time.Second, // Default timeout for actor requests
	}
}

// requestActor sends a message to an actor and waits for its response.
func (s *Server) requestActor(pid *actor.PID, message interface{}) (interface{}, error) {
	future := s.Context.RequestFuture(pid, message, s.RequestTimeout)
	return future.Result()
}

// respondJSON writes a JSON body with the given status.
func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// respondActorResult writes either the actor result or the AppError it
// returned, mapped to an HTTP status.
func (s *Server) respondActorResult(w http.ResponseWriter, result interface{}) {
	if appErr, ok := result.(*utils.AppError); ok {
		s.Metrics.IncrementErrors()
		respondJSON(w, utils.AppErrorToHTTPStatus(appErr.Code), map[string]string{
			"code":  appErr.Code,
			"error": appErr.Message,
		})
		return
	}
	respondJSON(w, http.StatusOK, result)
}
