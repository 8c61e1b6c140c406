package admin

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/slpgo/slpd/slp"
)

// registrationView is the JSON shape of a single live registration.
type registrationView struct {
	URL          string `json:"url"`
	Lifetime     uint16 `json:"lifetime"`
	Type         string `json:"type"`
	Scopes       string `json:"scopes"`
	Attributes   string `json:"attributes"`
	Language     string `json:"language"`
	RegisteredAt int64  `json:"registeredAtUnix"`
}

func toView(info slp.ServiceInfo) registrationView {
	return registrationView{
		URL:          info.URL.URL,
		Lifetime:     info.URL.Lifetime,
		Type:         info.Type.String(),
		Scopes:       info.Scopes.String(),
		Attributes:   info.Attributes.String(),
		Language:     info.Language,
		RegisteredAt: info.RegisteredAt.Unix(),
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	matches := s.cache.Match(slp.ServiceType{}, "", slp.Scopes{}, nil)
	views := make([]registrationView, len(matches))
	for i, m := range matches {
		views[i] = toView(m)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleListServicesByType(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "type")
	serviceType, err := slp.ParseServiceType(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	matches := s.cache.Match(serviceType, "", slp.Scopes{}, nil)
	views := make([]registrationView, len(matches))
	for i, m := range matches {
		views[i] = toView(m)
	}
	writeJSON(w, http.StatusOK, views)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
