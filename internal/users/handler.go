package users

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

// Handler exposes the user service over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds the user handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// Routes mounts the user endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/count", h.Count)
	r.Get("/username/{slug}", h.GetByUsername)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.SoftDelete)
	r.Delete("/{id}/permanent", h.HardDelete)
	r.Post("/{id}/restore", h.Restore)
	return r
}

// userView never carries the password hash.
type userView struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	Name      string     `json:"name"`
	Role      actor.Role `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func toView(u *User) userView {
	return userView{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Name:      u.Name,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
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

func (h *Handler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	h.respondRead(w, h.service.GetBySlug(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "slug")))
}

func (h *Handler) respondRead(w http.ResponseWriter, out crud.Output[*User]) {
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
	views := make([]userView, 0, len(out.Data.Items))
	for _, u := range out.Data.Items {
		views = append(views, toView(u))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": views, "total": out.Data.Total})
}

func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	out := h.service.Count(r.Context(), actor.FromContext(r.Context()), crud.CountParams{})
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
