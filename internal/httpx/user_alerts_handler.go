package httpx

import (
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/alerts"
	"github.com/ariefcatur/go-storefront.git/internal/notifier"
	"github.com/ariefcatur/go-storefront.git/internal/storage"
	"github.com/go-chi/chi/v5"
)

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// UserAlertsHandler serves the per-user feed filled by the notifier process.
type UserAlertsHandler struct {
	KV     storage.KV
	TTL    time.Duration
	Logger *slog.Logger
}

func (h *UserAlertsHandler) Register(r chi.Router) {
	r.Get("/users/{id}/alerts", h.list)
	r.Delete("/users/{id}/alerts/{alertId}", h.dismiss)
}

func (h *UserAlertsHandler) feed(r *http.Request) (storage.Collection[alerts.Alert], error) {
	id := chi.URLParam(r, "id")
	if !userIDPattern.MatchString(id) {
		return storage.Collection[alerts.Alert]{}, badRequest("invalid user id")
	}
	return notifier.UserFeed(h.KV, id), nil
}

func (h *UserAlertsHandler) list(w http.ResponseWriter, r *http.Request) {
	coll, err := h.feed(r)
	if err != nil {
		writeResult(w, h.Logger, 0, nil, nil, err)
		return
	}
	items, err := alerts.Read(r.Context(), coll, alerts.Config{TTL: h.TTL, Logger: h.Logger})
	writeResult(w, h.Logger, http.StatusOK, items, nil, err)
}

func (h *UserAlertsHandler) dismiss(w http.ResponseWriter, r *http.Request) {
	coll, err := h.feed(r)
	if err != nil {
		writeResult(w, h.Logger, 0, nil, nil, err)
		return
	}
	if err := alerts.Remove(r.Context(), coll, chi.URLParam(r, "alertId")); err != nil {
		writeResult(w, h.Logger, 0, nil, nil, err)
		return
	}
	items, err := alerts.Read(r.Context(), coll, alerts.Config{TTL: h.TTL, Logger: h.Logger})
	writeResult(w, h.Logger, http.StatusOK, items, nil, err)
}
