package handlers

import (
	"fmt"
	"net/http"
	"time"
)

// HandleHealth reports basic liveness plus request counters.
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requests, errors, uptime := s.Metrics.Snapshot()

		response := fmt.Sprintf("VibeLink Status:\n"+
			"- Uptime: %s\n"+
			"- Requests: %d\n"+
			"- Errors: %d\n",
			uptime.Round(time.Second),
			requests,
			errors,
		)

		fmt.Fprint(w, response)
	}
}
