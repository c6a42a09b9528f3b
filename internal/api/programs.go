package api

import (
	"encoding/json"
	"net/http"

	"github.com/tessera-run/tessera/internal/model"
	"github.com/tessera-run/tessera/internal/program"
)

const maxBodySize = 1 << 20 // 1 MB

// functionInfo describes one entry function's signature.
type functionInfo struct {
	Name    string   `json:"name"`
	Kernel  string   `json:"kernel"`
	Args    []string `json:"args"`
	Results []string `json:"results"`
}

// programInfo describes one cached program.
type programInfo struct {
	Name      string         `json:"name"`
	Functions []functionInfo `json:"functions"`
}

type listProgramsResponse struct {
	Programs []programInfo `json:"programs"`
}

// handleRegisterProgram accepts a fire-and-forget registration. The
// response only acknowledges receipt; registration outcomes surface
// through diagnostics and metrics, never through this endpoint.
func (s *Server) handleRegisterProgram(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Source == "" {
		s.writeError(w, http.StatusBadRequest, "source is required")
		return
	}

	s.dispatcher.HandleRegister(r.Context(), req)

	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	cache := s.dispatcher.Cache()

	infos := make([]programInfo, 0)
	for _, name := range cache.Names() {
		entry := cache.Prepare(name)
		if entry == nil {
			continue
		}
		info := programInfo{Name: name}
		for _, fn := range entry.Program.Functions() {
			info.Functions = append(info.Functions, functionInfo{
				Name:    fn.Name,
				Kernel:  fn.Kernel,
				Args:    typeNames(fn.Args),
				Results: typeNames(fn.Results),
			})
		}
		infos = append(infos, info)
	}

	s.writeJSON(w, http.StatusOK, listProgramsResponse{Programs: infos})
}

func typeNames(types []program.Type) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
