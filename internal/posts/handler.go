package posts

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

// Handler exposes the post service over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds the post handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// Routes mounts the post endpoints.
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

type postView struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Summary    string    `json:"summary,omitempty"`
	Body       string    `json:"body"`
	Visibility string    `json:"visibility"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	CreatedBy  uuid.UUID `json:"created_by"`
}

func toView(p *Post) postView {
	return postView{
		ID:         p.ID,
		Title:      p.Title,
		Slug:       p.Slug,
		Summary:    p.Summary,
		Body:       p.Body,
		Visibility: string(p.Visibility),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
		CreatedBy:  p.CreatedBy,
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
	out := h.service.GetByID(r.Context(), actor.FromContext(r.Context()), id)
	h.respondRead(w, out)
}

func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	out := h.service.GetBySlug(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "slug"))
	h.respondRead(w, out)
}

func (h *Handler) respondRead(w http.ResponseWriter, out crud.Output[*Post]) {
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
	out := h.service.List(r.Context(), actor.FromContext(r.Context()), params)
	if !out.OK() {
		httpx.ServiceError(w, out.Err)
		return
	}
	views := make([]postView, 0, len(out.Data.Items))
	for _, p := range out.Data.Items {
		views = append(views, toView(p))
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
	views := make([]postView, 0, len(out.Data.Items))
	for _, p := range out.Data.Items {
		views = append(views, toView(p))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": views, "total": out.Data.Total})
}

func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	params := crud.CountParams{}
	if v := r.URL.Query().Get("visibility"); v != "" {
		params.Filter = crud.Filter{"visibility": v}
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
