package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"aimawatch/pkg/serrors"
)

// handler serves the v1 endpoints.
type handler struct {
	deps Deps
}

func newHandler(deps Deps) *handler {
	return &handler{deps: deps}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCheck runs an on-demand status check for the authenticated user and
// returns the fresh result.
func (h *handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUserID(r.Context())
	if !ok {
		writeError(w, serrors.KindOnly(serrors.ErrUnauthorized))

		return
	}

	result, err := h.deps.Scheduler.CheckNow(r.Context(), userID)
	if err != nil {
		writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, result)
}

// statusResponse is the payload of the stored-status endpoint.
type statusResponse struct {
	LastStatus    string     `json:"lastStatus"`
	LastCheckedAt *time.Time `json:"lastCheckedAt,omitempty"`
}

// handleStatus returns the last stored status for the authenticated user
// without touching the upstream portal.
func (h *handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUserID(r.Context())
	if !ok {
		writeError(w, serrors.KindOnly(serrors.ErrUnauthorized))

		return
	}

	user, err := h.deps.Storage.UserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)

		return
	}
	if user == nil {
		writeError(w, serrors.With(serrors.ErrNotFound, "user %d not found", userID))

		return
	}

	resp := statusResponse{LastStatus: user.LastStatus}
	if !user.LastCheckedAt.IsZero() {
		checkedAt := user.LastCheckedAt
		resp.LastCheckedAt = &checkedAt
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps semantic error kinds onto HTTP statuses. Unclassified
// errors surface as opaque internal errors.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	var serr *serrors.Error
	if errors.As(err, &serr) {
		switch {
		case errors.Is(serr, serrors.ErrUnauthorized):
			status, message = http.StatusUnauthorized, "unauthorized"
		case errors.Is(serr, serrors.ErrNotFound):
			status, message = http.StatusNotFound, "not found"
		case errors.Is(serr, serrors.ErrConflict):
			status, message = http.StatusConflict, "a check is already in progress"
		case errors.Is(serr, serrors.ErrBadRequest):
			status, message = http.StatusBadRequest, serr.Message()
		}
	}

	writeJSON(w, status, map[string]string{"error": message})
}
