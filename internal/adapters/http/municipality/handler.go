package municipality

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	application "geodados/ms_municipios/internal/application/municipality"
	core "geodados/ms_municipios/internal/core/municipality"
	infrahttp "geodados/ms_municipios/internal/infrastructure/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the municipality use cases over HTTP.
type Handler struct {
	service *application.Service
	log     *slog.Logger
}

func NewHandler(service *application.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Register mounts the municipality routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/municipios", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/nearby", h.nearby)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := application.ListRequest{
		Page:  intQuery(q.Get("page")),
		Limit: intQuery(q.Get("limit")),
		Name:  q.Get("nome"),
		Sort:  q.Get("sort"),
		Order: q.Get("order"),
	}

	resp, err := h.service.List(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err, "Falha ao buscar municípios")
		return
	}
	infrahttp.WriteJSON(w, http.StatusOK, resp, h.log)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err, "Falha ao buscar município")
		return
	}
	infrahttp.WriteJSON(w, http.StatusOK, m, h.log)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req application.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		infrahttp.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido", nil, h.log)
		return
	}

	m, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err, "Falha ao criar município")
		return
	}
	infrahttp.WriteJSON(w, http.StatusCreated, m, h.log)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req application.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		infrahttp.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido", nil, h.log)
		return
	}

	m, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.handleError(w, r, err, "Falha ao atualizar município")
		return
	}
	infrahttp.WriteJSON(w, http.StatusOK, m, h.log)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err, "Falha ao excluir município")
		return
	}
	infrahttp.WriteJSON(w, http.StatusOK, resp, h.log)
}

// defaultRadiusKm applies when the nearby query omits the distance parameter.
const defaultRadiusKm = 100

func (h *Handler) nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := strconv.ParseFloat(q.Get("latitude"), 64)
	if err != nil {
		infrahttp.WriteError(w, http.StatusBadRequest, "Erro de validação",
			[]string{"A latitude é obrigatória e deve ser um número"}, h.log)
		return
	}
	lon, err := strconv.ParseFloat(q.Get("longitude"), 64)
	if err != nil {
		infrahttp.WriteError(w, http.StatusBadRequest, "Erro de validação",
			[]string{"A longitude é obrigatória e deve ser um número"}, h.log)
		return
	}

	radius := float64(defaultRadiusKm)
	if raw := q.Get("distance"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			infrahttp.WriteError(w, http.StatusBadRequest, "Erro de validação",
				[]string{"A distância deve ser um número"}, h.log)
			return
		}
	}

	resp, err := h.service.Nearby(r.Context(), application.NearbyRequest{
		Latitude:  lat,
		Longitude: lon,
		RadiusKm:  radius,
		Page:      intQuery(q.Get("page")),
		Limit:     intQuery(q.Get("limit")),
	})
	if err != nil {
		h.handleError(w, r, err, "Falha ao buscar municípios próximos")
		return
	}
	infrahttp.WriteJSON(w, http.StatusOK, resp, h.log)
}

// handleError maps domain errors onto HTTP responses. Unexpected failures
// are logged with detail and surfaced as a generic 500 message.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var fieldErrs core.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		infrahttp.WriteError(w, http.StatusBadRequest, "Erro de validação", fieldErrs, h.log)
	case errors.Is(err, core.ErrDuplicateIBGECode):
		infrahttp.WriteError(w, http.StatusConflict, core.ErrDuplicateIBGECode.Error(), nil, h.log)
	case errors.Is(err, core.ErrNotFound):
		infrahttp.WriteError(w, http.StatusNotFound, "Município não encontrado", nil, h.log)
	default:
		h.log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		infrahttp.WriteError(w, http.StatusInternalServerError, fallback, nil, h.log)
	}
}

// intQuery parses an integer query parameter, returning 0 on absence or
// garbage so the service applies its defaults.
func intQuery(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
