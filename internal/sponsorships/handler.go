package sponsorships

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

// Handler exposes the sponsorship service over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds the sponsorship handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// Routes mounts the sponsorship endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/count", h.Count)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.SoftDelete)
	r.Post("/{id}/restore", h.Restore)
	return r
}

type sponsorshipView struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	Sponsor   string    `json:"sponsor"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toView(s *Sponsorship) sponsorshipView {
	return sponsorshipView{
		ID:        s.ID,
		PostID:    s.PostID,
		Sponsor:   s.Sponsor,
		StartsAt:  s.StartsAt,
		EndsAt:    s.EndsAt,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
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
	if postID := r.URL.Query().Get("post_id"); postID != "" {
		id, err := uuid.Parse(postID)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid post_id")
			return
		}
		params.Filter = crud.Filter{"post_id": id}
	}
	out := h.service.List(r.Context(), actor.FromContext(r.Context()), params)
	if !out.OK() {
		httpx.ServiceError(w, out.Err)
		return
	}
	views := make([]sponsorshipView, 0, len(out.Data.Items))
	for _, s := range out.Data.Items {
		views = append(views, toView(s))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": views, "total": out.Data.Total})
}

func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	params := crud.CountParams{Filter: crud.Filter{"active": true}}
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
