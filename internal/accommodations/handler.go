package accommodations

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wayfarer-travel/wayfarer/internal/actor"
	"github.com/wayfarer-travel/wayfarer/internal/crud"
	"github.com/wayfarer-travel/wayfarer/internal/platform/httpx"
)

// Handler exposes the accommodation service over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds the accommodation handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// Routes mounts the accommodation endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/search", h.Search)
	r.Get("/count", h.Count)
	r.Get("/slug/{slug}", h.GetBySlug)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.SoftDelete)
	r.Delete("/{id}/permanent", h.HardDelete)
	r.Post("/{id}/restore", h.Restore)
	return r
}

type accommodationView struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Kind          string    `json:"kind"`
	Destination   string    `json:"destination"`
	Description   string    `json:"description,omitempty"`
	PricePerNight float64   `json:"price_per_night"`
	Rating        int       `json:"rating"`
	Published     bool      `json:"published"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	CreatedBy     uuid.UUID `json:"created_by"`
}

func toView(a *Accommodation) accommodationView {
	return accommodationView{
		ID:            a.ID,
		Name:          a.Name,
		Slug:          a.Slug,
		Kind:          string(a.Kind),
		Destination:   a.Destination,
		Description:   a.Description,
		PricePerNight: a.PricePerNight,
		Rating:        a.Rating,
		Published:     a.Published,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
		CreatedBy:     a.CreatedBy,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	out := h.service.Create(r.Context(), actor.FromContext(r.Context()), in)
	if !out.OK() {
		httpx.ServiceError(w, out.Err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(out.Data))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var in UpdateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	out := h.service.Update(r.Context(), actor.FromContext(r.Context()), id, in)
	if !out.OK() {
		httpx.ServiceError(w, out.Err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(out.Data))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	h.respondRead(w, h.service.GetByID(r.Context(), actor.FromContext(r.Context()), id))
}

func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	h.respondRead(w, h.service.GetBySlug(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "slug")))
}

func (h *Handler) respondRead(w http.ResponseWriter, out crud.Output[*Accommodation]) {
	if !out.OK() {
		httpx.ServiceError(w, out.Err)
		return
	}
	if out.Data == nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toView(out.Data))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := crud.ListParams{
		Page:    queryInt(r, "page"),
		PerPage: queryInt(r, "per_page"),
	}
	if dest := r.URL.Query().Get("destination"); dest != "" {
		params.Filter = crud.Filter{"destination": dest}
	}
	out := h.service.List(r.Context(), actor.FromContext(r.Context()), params)
	if !out.OK() {
		httpx.ServiceError(w, out.Err)
		return
	}
	views := make([]accommodationView, 0, len(out.Data.Items))
	for _, a := range out.Data.Items {
		views = append(views, toView(a))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": views, "total": out.Data.Total})
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	params := crud.SearchParams{
		Query:   r.URL.Query().Get("q"),
		Page:    queryInt(r, "page"),
		PerPage: queryInt(r, "per_page"),
	}
	out := h.service.Search(r.Context(), actor.FromContext(r.Context()), params)
	if !out.OK() {
		httpx.ServiceError(w, out.Err)
		return
	}
	views := make([]accommodationView, 0, len(out.Data.Items))
	for _, a := range out.Data.Items {
		views = append(views, toView(a))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": views, "total": out.Data.Total})
}

func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	params := crud.CountParams{}
	if kind := r.URL.Query().Get("kind"); kind != "" {
		params.Filter = crud.Filter{"kind": kind}
	}
	out := h.service.Count(r.Context(), actor.FromContext(r.Context()), params)
	if !out.OK() {
		httpx.ServiceError(w, out.Err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"count": out.Data.Count})
}

func (h *Handler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	out := h.service.SoftDelete(r.Context(), actor.FromContext(r.Context()), id)
	if !out.OK() {
		httpx.ServiceError(w, out.Err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"count": out.Data.Count})
}

func (h *Handler) HardDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	out := h.service.HardDelete(r.Context(), actor.FromContext(r.Context()), id)
	if !out.OK() {
		httpx.ServiceError(w, out.Err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": out.Data.Success})
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	out := h.service.Restore(r.Context(), actor.FromContext(r.Context()), id)
	if !out.OK() {
		httpx.ServiceError(w, out.Err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(out.Data))
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}
