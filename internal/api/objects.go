package api

import (
	"encoding/json"
	"net/http"

	"github.com/tessera-run/tessera/internal/model"
	"github.com/tessera-run/tessera/internal/object"
	"github.com/tessera-run/tessera/internal/tensor"
)

// publishObjectRequest publishes a concrete tensor value under a remote
// object id, the way a peer seeds execution arguments.
type publishObjectRequest struct {
	ID    model.RemoteObjectID `json:"id"`
	Shape []int64              `json:"shape"`
	Data  []float64            `json:"data"`
}

func (s *Server) handlePublishObject(w http.ResponseWriter, r *http.Request) {
	var req publishObjectRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	dctx := s.dispatcher.Context()
	if dctx.Devices().Resolve(req.ID.Device) == nil {
		s.writeError(w, http.StatusNotFound, "device not found")
		return
	}

	t, err := tensor.New(req.Shape, req.Data)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dctx.Objects().Set(req.ID, object.Ready(t))

	s.writeJSON(w, http.StatusCreated, map[string]string{
		"status":   "published",
		"id":       req.ID.String(),
		"metadata": t.Meta.String(),
	})
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"devices": s.dispatcher.Context().Devices().List(),
	})
}
