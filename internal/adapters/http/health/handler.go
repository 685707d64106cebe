package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	infrahttp "geodados/ms_municipios/internal/infrastructure/http"
)

// Pinger checks a backing dependency's availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to the Pinger interface.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Metadata identifies the service in health responses.
type Metadata struct {
	Name        string
	Version     string
	Environment string
	StoreEngine string
}

type response struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	Version       string `json:"version"`
	Environment   string `json:"environment"`
	StoreEngine   string `json:"store_engine"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// Handler answers liveness probes, reporting degraded when the store is
// unreachable.
type Handler struct {
	meta    Metadata
	store   Pinger
	log     *slog.Logger
	started time.Time
}

func NewHandler(meta Metadata, store Pinger, log *slog.Logger) *Handler {
	return &Handler{meta: meta, store: store, log: log, started: time.Now()}
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	resp := response{
		Status:        "ok",
		Service:       h.meta.Name,
		Version:       h.meta.Version,
		Environment:   h.meta.Environment,
		StoreEngine:   h.meta.StoreEngine,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	}

	status := http.StatusOK
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			h.log.Error("store health check failed", "error", err)
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	infrahttp.WriteJSON(w, status, resp, h.log)
}
