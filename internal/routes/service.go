package routes

import (
	"net/http"

	"github.com/debemdeboas/editorial/internal/model"
)

type connectServiceRequest struct {
	URL string `json:"url"`
}

type serviceView struct {
	URL           string `json:"url"`
	Identifier    string `json:"identifier,omitempty"`
	Status        string `json:"status,omitempty"`
	CanDisconnect bool   `json:"can_disconnect"`
}

func (a *API) connectService(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.user(w, r); !ok {
		return
	}

	var req connectServiceRequest
	if !decode(w, r, &req) {
		return
	}

	settings, err := a.svc.ConnectService(r.Context(), model.EventID(r.PathValue("event")), req.URL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, serviceView{
		URL:           settings.ServiceURL,
		Identifier:    settings.ServiceIdentifier,
		CanDisconnect: true,
	})
}

func (a *API) disconnectService(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.user(w, r); !ok {
		return
	}

	if err := a.svc.DisconnectService(r.Context(), model.EventID(r.PathValue("event"))); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) serviceStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.user(w, r); !ok {
		return
	}

	status, err := a.svc.ServiceStatus(r.Context(), model.EventID(r.PathValue("event")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, serviceView{Status: status.Status, CanDisconnect: status.CanDisconnect})
}
