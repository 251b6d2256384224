package crud

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer-travel/wayfarer/internal/actor"
)

type note struct {
	Record
	Slug   string
	Title  string
	Public bool
}

func (n *note) EntitySlug() string { return n.Slug }

type noteCreate struct {
	Title  string `validate:"required,min=3,max=100"`
	Public bool   `validate:"-"`
}

type noteUpdate struct {
	Title *string `validate:"omitempty,min=3,max=100"`
}

// memoryModel is an in-memory Model recording which adapter methods ran.
type memoryModel struct {
	items map[uuid.UUID]*note
	calls []string
	fail  map[string]error
}

func newMemoryModel() *memoryModel {
	return &memoryModel{items: make(map[uuid.UUID]*note), fail: make(map[string]error)}
}

func (m *memoryModel) record(call string) error {
	m.calls = append(m.calls, call)
	return m.fail[call]
}

func (m *memoryModel) FindByID(_ context.Context, id uuid.UUID, includeDeleted bool) (*note, bool, error) {
	if err := m.record("FindByID"); err != nil {
		return nil, false, err
	}
	n, ok := m.items[id]
	if !ok || (!includeDeleted && n.Deleted()) {
		return nil, false, nil
	}
	return n, true, nil
}

func (m *memoryModel) FindOne(_ context.Context, f Filter) (*note, bool, error) {
	if err := m.record("FindOne"); err != nil {
		return nil, false, err
	}
	slug, _ := f["slug"].(string)
	for _, n := range m.items {
		if n.Slug == slug && !n.Deleted() {
			return n, true, nil
		}
	}
	return nil, false, nil
}

func (m *memoryModel) FindAll(_ context.Context, f Filter, p Page) ([]*note, int, error) {
	if err := m.record("FindAll"); err != nil {
		return nil, 0, err
	}
	var out []*note
	for _, n := range m.items {
		if n.Deleted() {
			continue
		}
		if pub, ok := f["public"].(bool); ok && n.Public != pub {
			continue
		}
		if q, ok := f["q"].(string); ok && !strings.Contains(n.Title, q) {
			continue
		}
		out = append(out, n)
	}
	return out, len(out), nil
}

func (m *memoryModel) Count(_ context.Context, f Filter) (int, error) {
	if err := m.record("Count"); err != nil {
		return 0, err
	}
	items, total, _ := m.FindAll(context.Background(), f, Page{})
	_ = items
	return total, nil
}

func (m *memoryModel) Create(_ context.Context, n *note) (*note, error) {
	if err := m.record("Create"); err != nil {
		return nil, err
	}
	m.items[n.ID] = n
	return n, nil
}

func (m *memoryModel) Update(_ context.Context, n *note) (*note, error) {
	if err := m.record("Update"); err != nil {
		return nil, err
	}
	m.items[n.ID] = n
	return n, nil
}

func (m *memoryModel) SoftDelete(_ context.Context, id, deletedBy uuid.UUID) (int64, error) {
	if err := m.record("SoftDelete"); err != nil {
		return 0, err
	}
	n, ok := m.items[id]
	if !ok || n.Deleted() {
		return 0, nil
	}
	now := time.Now().UTC()
	n.DeletedAt = &now
	n.DeletedBy = &deletedBy
	return 1, nil
}

func (m *memoryModel) HardDelete(_ context.Context, id uuid.UUID) (bool, error) {
	if err := m.record("HardDelete"); err != nil {
		return false, err
	}
	_, ok := m.items[id]
	delete(m.items, id)
	return ok, nil
}

func (m *memoryModel) Restore(_ context.Context, id uuid.UUID) (*note, bool, error) {
	if err := m.record("Restore"); err != nil {
		return nil, false, err
	}
	n, ok := m.items[id]
	if !ok {
		return nil, false, nil
	}
	n.DeletedAt = nil
	n.DeletedBy = nil
	return n, true, nil
}

func (m *memoryModel) called(name string) bool {
	for _, c := range m.calls {
		if c == name {
			return true
		}
	}
	return false
}

type recordingEmitter struct {
	events []Event
	err    error
}

func (r *recordingEmitter) Emit(_ context.Context, ev Event) error {
	r.events = append(r.events, ev)
	return r.err
}

type recordingAuditor struct {
	entries []AuditEntry
	err     error
}

func (r *recordingAuditor) Record(_ context.Context, entry AuditEntry) error {
	r.entries = append(r.entries, entry)
	return r.err
}

func noteGuards() Guards[*note] {
	return Guards[*note]{
		Create: func(act actor.Actor, _ *note) error {
			if act.Anonymous() {
				return ErrDenied
			}
			return nil
		},
		Update: func(act actor.Actor, n *note) error {
			if act.Owns(n.CreatedBy) || act.Can("notes.edit") {
				return nil
			}
			return ErrDenied
		},
		View: func(act actor.Actor, n *note) error {
			if n.Public || act.Owns(n.CreatedBy) || act.Can("notes.view") {
				return nil
			}
			return ErrHidden
		},
		SoftDelete: func(act actor.Actor, n *note) error {
			if act.Owns(n.CreatedBy) {
				return nil
			}
			return ErrDenied
		},
		HardDelete: func(act actor.Actor, _ *note) error {
			if act.IsAdmin() {
				return nil
			}
			return ErrDenied
		},
		Restore: func(act actor.Actor, n *note) error {
			if act.Owns(n.CreatedBy) {
				return nil
			}
			return ErrDenied
		},
		Count: RequirePermission("notes.view"),
	}
}

type fixture struct {
	model   *memoryModel
	emitter *recordingEmitter
	auditor *recordingAuditor
	service *Service[*note, noteCreate, noteUpdate]
}

func newFixture(t *testing.T, hooks Hooks[*note]) *fixture {
	t.Helper()
	model := newMemoryModel()
	emitter := &recordingEmitter{}
	auditor := &recordingAuditor{}
	def := Definition[*note, noteCreate, noteUpdate]{
		Name:   "note",
		Model:  model,
		Guards: noteGuards(),
		Hooks:  hooks,
		FromCreate: func(act actor.Actor, in noteCreate) (*note, error) {
			title := strings.TrimSpace(in.Title)
			n := &note{Title: title, Slug: strings.ToLower(title), Public: in.Public}
			n.Touch(act.ID, time.Now().UTC())
			return n, nil
		},
		ApplyUpdate: func(act actor.Actor, n *note, in noteUpdate) error {
			if in.Title != nil {
				n.Title = strings.TrimSpace(*in.Title)
			}
			n.Touch(act.ID, time.Now().UTC())
			return nil
		},
		ScopeList: func(act actor.Actor, p *ListParams) {
			if act.Anonymous() {
				if p.Filter == nil {
					p.Filter = Filter{}
				}
				p.Filter["public"] = true
			}
		},
	}
	return &fixture{
		model:   model,
		emitter: emitter,
		auditor: auditor,
		service: New(def, Options{Events: emitter, Audit: auditor}),
	}
}

func member() actor.Actor {
	return actor.Actor{ID: uuid.New(), Role: actor.RoleMember}
}

func admin() actor.Actor {
	return actor.Actor{ID: uuid.New(), Role: actor.RoleAdmin}
}

func (f *fixture) seed(t *testing.T, owner actor.Actor, title string, public bool) *note {
	t.Helper()
	out := f.service.Create(context.Background(), owner, noteCreate{Title: title, Public: public})
	require.True(t, out.OK(), "seed create failed: %v", out.Err)
	return out.Data
}

func TestCreateSucceedsForMember(t *testing.T) {
	f := newFixture(t, Hooks[*note]{})
	act := member()

	out := f.service.Create(context.Background(), act, noteCreate{Title: "  Lisbon Tips  "})
	require.True(t, out.OK())
	require.Equal(t, "Lisbon Tips", out.Data.Title)
	require.Equal(t, act.ID, out.Data.CreatedBy)
	require.NotEqual(t, uuid.Nil, out.Data.ID)

	require.Len(t, f.emitter.events, 1)
	require.Equal(t, EventCreated, f.emitter.events[0].Kind)
	require.Len(t, f.auditor.entries, 1)
	require.Equal(t, "note.created", f.auditor.entries[0].Action)
}

func TestCreateAnonymousIsUnauthorized(t *testing.T) {
	f := newFixture(t, Hooks[*note]{})

	out := f.service.Create(context.Background(), actor.Guest(), noteCreate{Title: "Lisbon"})
	require.False(t, out.OK())
	require.Equal(t, CodeUnauthorized, out.Err.Code)
	require.False(t, f.model.called("Create"), "adapter must not run after a denial")
	require.Empty(t, f.emitter.events)
}

func TestCreateValidationStopsPipeline(t *testing.T) {
	f := newFixture(t, Hooks[*note]{})

	out := f.service.Create(context.Background(), member(), noteCreate{Title: "no"})
	require.False(t, out.OK())
	require.Equal(t, CodeValidation, out.Err.Code)
	require.Contains(t, out.Err.Details, "Title")
	require.Empty(t, f.model.calls, "nothing may touch the adapter on invalid input")
}

func TestOutputIsMutuallyExclusive(t *testing.T) {
	f := newFixture(t, Hooks[*note]{})

	okOut := f.service.Create(context.Background(), member(), noteCreate{Title: "Porto"})
	require.NotNil(t, okOut.Data)
	require.Nil(t, okOut.Err)

	badOut := f.service.Create(context.Background(), member(), noteCreate{})
	require.Nil(t, badOut.Data)
	require.NotNil(t, badOut.Err)
}

func TestUpdateOwnerOnly(t *testing.T) {
	f := newFixture(t, Hooks[*note]{})
	owner := member()
	n := f.seed(t, owner, "Original", false)

	title := "Rewritten"
	out := f.service.Update(context.Background(), owner, n.ID, noteUpdate{Title: &title})
	require.True(t, out.OK())
	require.Equal(t, "Rewritten", out.Data.Title)

	stranger := member()
	out = f.service.Update(context.Background(), stranger, n.ID, noteUpdate{Title: &title})
	require.False(t, out.OK())
	require.Equal(t, CodeForbidden, out.Err.Code)
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	f := newFixture(t, Hooks[*note]{})

	title := "Whatever"
	out := f.service.Update(context.Background(), member(), uuid.New(), noteUpdate{Title: &title})
	require.False(t, out.OK())
	require.Equal(t, CodeNotFound, out.Err.Code)
}

func TestGetMissingReturnsNull(t *testing.T) {
	f := newFixture(t, Hooks[*note]{})

	out := f.service.GetByID(context.Background(), member(), uuid.New())
	require.True(t, out.OK())
	require.Nil(t, out.Data)
}

func TestGetHiddenIsIndistinguishableFromMissing(t *testing.T) {
	f := newFixture(t, Hooks[*note]{})
	owner := member()
	private := f.seed(t, owner, "Secret Draft", false)

	// The owner sees it.
	out := f.service.GetByID(context.Background(), owner, private.ID)
	require.True(t, out.OK())
	require.NotNil(t, out.Data)

	// A stranger gets the same shape as for a missing id: success, no data.
	out = f.service.GetByID(context.Background(), member(), private.ID)
	require.True(t, out.OK())
	require.Nil(t, out.Data)

	out = f.service.GetBySlug(context.Background(), member(), private.Slug)
	require.True(t, out.OK())
	require.Nil(t, out.Data)
}

func TestListScopesAnonymousToPublic(t *testing.T) {
	f := newFixture(t, Hooks[*note]{})
	owner := member()
	f.seed(t, owner, "Public Guide", true)
	f.seed(t, owner, "Private Draft", false)

	out := f.service.List(context.Background(), actor.Guest(), ListParams{})
	require.True(t, out.OK())
	require.Equal(t, 1, out.Data.Total)
	require.Equal(t, "Public Guide", out.Data.Items[0].Title)

	out = f.service.List(context.Background(), owner, ListParams{})
	require.True(t, out.OK())
	require.Equal(t, 2, out.Data.Total)
}

func TestListRejectsOversizedPage(t *testing.T) {
	f := newFixture(t, Hooks[*note]{})

	out := f.service.List(context.Background(), member(), ListParams{PerPage: 500})
	require.False(t, out.OK())
	require.Equal(t, CodeValidation, out.Err.Code)
}

func TestSearchMatchesTitle(t *testing.T) {
	f := newFixture(t, Hooks[*note]{})
	owner := member()
	f.seed(t, owner, "Surf spots in Ericeira", true)
	f.seed(t, owner, "Alpine huts", true)

	out := f.service.Search(context.Background(), owner, SearchParams{Query: "Ericeira"})
	require.True(t, out.OK())
	require.Equal(t, 1, out.Data.Total)

	out = f.service.Search(context.Background(), owner, SearchParams{Query: "x"})
	require.False(t, out.OK())
	require.Equal(t, CodeValidation, out.Err.Code)
}

func TestCountRequiresPermission(t *testing.T) {
	f := newFixture(t, Hooks[*note]{})

	out := f.service.Count(context.Background(), member(), CountParams{})
	require.False(t, out.OK())
	require.Equal(t, CodeForbidden, out.Err.Code)

	viewer := actor.Actor{ID: uuid.New(), Role: actor.RoleMember, Permissions: actor.NewPermissionSet("notes.view")}
	out = f.service.Count(context.Background(), viewer, CountParams{})
	require.True(t, out.OK())
}

func TestSoftDeleteIsIdempotent(t *testing.T) {
	f := newFixture(t, Hooks[*note]{})
	owner := member()
	n := f.seed(t, owner, "Ephemeral", false)

	out := f.service.SoftDelete(context.Background(), owner, n.ID)
	require.True(t, out.OK())
	require.EqualValues(t, 1, out.Data.Count)

	deletes := len(f.model.calls)
	out = f.service.SoftDelete(context.Background(), owner, n.ID)
	require.True(t, out.OK())
	require.EqualValues(t, 0, out.Data.Count)
	// Second call only fetched; the adapter's SoftDelete did not run again.
	require.Equal(t, deletes+1, len(f.model.calls))
}

func TestRestoreLiveEntityIsNoOp(t *testing.T) {
	f := newFixture(t, Hooks[*note]{})
	owner := member()
	n := f.seed(t, owner, "Alive", false)

	out := f.service.Restore(context.Background(), owner, n.ID)
	require.True(t, out.OK())
	require.Equal(t, n.ID, out.Data.ID)
	require.False(t, f.model.called("Restore"))
}

func TestRestoreAfterSoftDelete(t *testing.T) {
	f := newFixture(t, Hooks[*note]{})
	owner := member()
	n := f.seed(t, owner, "Phoenix", false)

	require.True(t, f.service.SoftDelete(context.Background(), owner, n.ID).OK())
	out := f.service.Restore(context.Background(), owner, n.ID)
	require.True(t, out.OK())
	require.False(t, out.Data.Deleted())
}

func TestHardDeleteAdminOnly(t *testing.T) {
	f := newFixture(t, Hooks[*note]{})
	owner := member()
	n := f.seed(t, owner, "Doomed", false)

	out := f.service.HardDelete(context.Background(), owner, n.ID)
	require.False(t, out.OK())
	require.Equal(t, CodeForbidden, out.Err.Code)

	out = f.service.HardDelete(context.Background(), admin(), n.ID)
	require.True(t, out.OK())
	require.True(t, out.Data.Success)
}

func TestBeforeHookFailureAbortsMutation(t *testing.T) {
	f := newFixture(t, Hooks[*note]{
		BeforeCreate: func(context.Context, actor.Actor, *note) error {
			return Errorf(CodeConflict, "duplicate external ref")
		},
	})

	out := f.service.Create(context.Background(), member(), noteCreate{Title: "Blocked"})
	require.False(t, out.OK())
	require.Equal(t, CodeConflict, out.Err.Code)
	require.False(t, f.model.called("Create"))
}

func TestAfterHookFailureDoesNotAffectResult(t *testing.T) {
	f := newFixture(t, Hooks[*note]{
		AfterCreate: func(context.Context, actor.Actor, *note) error {
			return errors.New("notification channel down")
		},
	})

	out := f.service.Create(context.Background(), member(), noteCreate{Title: "Resilient"})
	require.True(t, out.OK())
	require.Len(t, f.emitter.events, 1)
}

func TestEmitAndAuditFailuresAreSwallowed(t *testing.T) {
	f := newFixture(t, Hooks[*note]{})
	f.emitter.err = errors.New("queue unavailable")
	f.auditor.err = errors.New("audit store unavailable")

	out := f.service.Create(context.Background(), member(), noteCreate{Title: "Fire and forget"})
	require.True(t, out.OK())
}

func TestHookPanicBecomesInternalError(t *testing.T) {
	f := newFixture(t, Hooks[*note]{
		BeforeCreate: func(context.Context, actor.Actor, *note) error {
			panic("boom")
		},
	})

	out := f.service.Create(context.Background(), member(), noteCreate{Title: "Volatile"})
	require.False(t, out.OK())
	require.Equal(t, CodeInternal, out.Err.Code)
}

func TestAdapterErrorBecomesInternalError(t *testing.T) {
	f := newFixture(t, Hooks[*note]{})
	f.model.fail["Create"] = errors.New("connection reset")

	out := f.service.Create(context.Background(), member(), noteCreate{Title: "Unlucky"})
	require.False(t, out.OK())
	require.Equal(t, CodeInternal, out.Err.Code)
	require.Equal(t, "internal error", out.Err.Message)
}

func TestTypedAdapterErrorPassesThrough(t *testing.T) {
	f := newFixture(t, Hooks[*note]{})
	f.model.fail["Create"] = Errorf(CodeConflict, "slug already exists")

	out := f.service.Create(context.Background(), member(), noteCreate{Title: "Duplicate"})
	require.False(t, out.OK())
	require.Equal(t, CodeConflict, out.Err.Code)
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		name string
		in   Page
		want Page
	}{
		{"zero", Page{}, Page{Page: 1, PerPage: defaultPerPage}},
		{"negative", Page{Page: -2, PerPage: -5}, Page{Page: 1, PerPage: defaultPerPage}},
		{"capped", Page{Page: 3, PerPage: 1000}, Page{Page: 3, PerPage: maxPerPage}},
		{"kept", Page{Page: 2, PerPage: 50}, Page{Page: 2, PerPage: 50}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, normalizePage(tc.in))
		})
	}
}
