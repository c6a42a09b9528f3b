package api

import (
	"encoding/json"
	"net/http"

	"github.com/tessera-run/tessera/internal/model"
)

// handleCreateExecution bridges the dispatcher's completion callback to a
// synchronous HTTP response. The execute wire contract always answers
// with {ok, metadata}; transport-level problems (bad JSON, missing
// fields) are the only paths that produce an HTTP error status.
func (s *Server) handleCreateExecution(w http.ResponseWriter, r *http.Request) {
	var req model.ExecuteRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Program == "" {
		s.writeError(w, http.StatusBadRequest, "program is required")
		return
	}
	if req.Function == "" {
		s.writeError(w, http.StatusBadRequest, "function is required")
		return
	}

	// The dispatcher invokes the callback exactly once on every path, so
	// this receive always returns. The buffer keeps a hypothetical
	// double-fire from blocking a dispatcher goroutine.
	ch := make(chan model.ExecuteResult, 1)
	s.dispatcher.HandleExecute(req, func(res model.ExecuteResult) {
		select {
		case ch <- res:
		default:
		}
	})
	res := <-ch

	if res.Metadata == nil {
		res.Metadata = []string{}
	}
	s.writeJSON(w, http.StatusOK, res)
}
