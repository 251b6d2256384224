package accommodations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer-travel/wayfarer/internal/actor"
	"github.com/wayfarer-travel/wayfarer/internal/crud"
)

type memoryModel struct {
	items map[uuid.UUID]*Accommodation
}

func newMemoryModel() *memoryModel {
	return &memoryModel{items: make(map[uuid.UUID]*Accommodation)}
}

func (m *memoryModel) FindByID(_ context.Context, id uuid.UUID, includeDeleted bool) (*Accommodation, bool, error) {
	a, ok := m.items[id]
	if !ok || (!includeDeleted && a.Deleted()) {
		return nil, false, nil
	}
	return a, true, nil
}

func (m *memoryModel) FindOne(_ context.Context, f crud.Filter) (*Accommodation, bool, error) {
	slug, _ := f["slug"].(string)
	for _, a := range m.items {
		if a.Slug == slug && !a.Deleted() {
			return a, true, nil
		}
	}
	return nil, false, nil
}

func (m *memoryModel) FindAll(_ context.Context, f crud.Filter, _ crud.Page) ([]*Accommodation, int, error) {
	var out []*Accommodation
	for _, a := range m.items {
		if a.Deleted() {
			continue
		}
		if pub, ok := f["published"].(bool); ok && a.Published != pub {
			continue
		}
		if viewer, ok := f["visible_to"].(uuid.UUID); ok {
			if !a.Published && a.CreatedBy != viewer {
				continue
			}
		}
		if dest, ok := f["destination"].(string); ok && a.Destination != dest {
			continue
		}
		out = append(out, a)
	}
	return out, len(out), nil
}

func (m *memoryModel) Count(ctx context.Context, f crud.Filter) (int, error) {
	_, total, err := m.FindAll(ctx, f, crud.Page{})
	return total, err
}

func (m *memoryModel) Create(_ context.Context, a *Accommodation) (*Accommodation, error) {
	m.items[a.ID] = a
	return a, nil
}

func (m *memoryModel) Update(_ context.Context, a *Accommodation) (*Accommodation, error) {
	m.items[a.ID] = a
	return a, nil
}

func (m *memoryModel) SoftDelete(_ context.Context, id, deletedBy uuid.UUID) (int64, error) {
	a, ok := m.items[id]
	if !ok || a.Deleted() {
		return 0, nil
	}
	now := time.Now().UTC()
	a.DeletedAt = &now
	a.DeletedBy = &deletedBy
	return 1, nil
}

func (m *memoryModel) HardDelete(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.items[id]
	delete(m.items, id)
	return ok, nil
}

func (m *memoryModel) Restore(_ context.Context, id uuid.UUID) (*Accommodation, bool, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, false, nil
	}
	a.DeletedAt = nil
	a.DeletedBy = nil
	return a, true, nil
}

func member() actor.Actor {
	return actor.Actor{ID: uuid.New(), Role: actor.RoleMember}
}

func catalogEditor() actor.Actor {
	return actor.Actor{
		ID:          uuid.New(),
		Role:        actor.RoleEditor,
		Permissions: actor.NewPermissionSet(actor.PermAccommodationsView, actor.PermAccommodationsEdit),
	}
}

func validCreate() CreateInput {
	return CreateInput{
		Name:          "Casa do Rio",
		Kind:          string(KindGuesthouse),
		Destination:   "Porto",
		PricePerNight: 85,
		Rating:        4,
	}
}

func TestCreateStartsUnpublished(t *testing.T) {
	svc := NewService(newMemoryModel(), crud.Options{})

	out := svc.Create(context.Background(), member(), validCreate())
	require.True(t, out.OK())
	require.False(t, out.Data.Published)
	require.Equal(t, "casa-do-rio", out.Data.Slug)
	require.Equal(t, KindGuesthouse, out.Data.Kind)
}

func TestCreateRejectsUnknownKind(t *testing.T) {
	svc := NewService(newMemoryModel(), crud.Options{})

	in := validCreate()
	in.Kind = "TREEHOUSE"
	out := svc.Create(context.Background(), member(), in)
	require.False(t, out.OK())
	require.Equal(t, crud.CodeValidation, out.Err.Code)
}

func TestPublishNeedsEditPermission(t *testing.T) {
	svc := NewService(newMemoryModel(), crud.Options{})
	owner := member()

	created := svc.Create(context.Background(), owner, validCreate())
	require.True(t, created.OK())

	published := true
	out := svc.Update(context.Background(), owner, created.Data.ID, UpdateInput{Published: &published})
	require.False(t, out.OK())
	require.Equal(t, crud.CodeForbidden, out.Err.Code)

	out = svc.Update(context.Background(), catalogEditor(), created.Data.ID, UpdateInput{Published: &published})
	require.True(t, out.OK())
	require.True(t, out.Data.Published)
}

func TestUnpublishedHiddenFromGuests(t *testing.T) {
	svc := NewService(newMemoryModel(), crud.Options{})
	owner := member()

	created := svc.Create(context.Background(), owner, validCreate())
	require.True(t, created.OK())

	out := svc.GetBySlug(context.Background(), actor.Guest(), created.Data.Slug)
	require.True(t, out.OK())
	require.Nil(t, out.Data)

	out = svc.GetBySlug(context.Background(), owner, created.Data.Slug)
	require.True(t, out.OK())
	require.NotNil(t, out.Data)
}

func TestGuestListOnlySeesPublished(t *testing.T) {
	model := newMemoryModel()
	svc := NewService(model, crud.Options{})
	editor := catalogEditor()

	created := svc.Create(context.Background(), editor, validCreate())
	require.True(t, created.OK())

	hidden := validCreate()
	hidden.Name = "Unlisted Cabin"
	require.True(t, svc.Create(context.Background(), editor, hidden).OK())

	published := true
	require.True(t, svc.Update(context.Background(), editor, created.Data.ID, UpdateInput{Published: &published}).OK())

	out := svc.List(context.Background(), actor.Guest(), crud.ListParams{})
	require.True(t, out.OK())
	require.Equal(t, 1, out.Data.Total)
	require.Equal(t, "Casa do Rio", out.Data.Items[0].Name)
}

func TestStrangerCannotManageListing(t *testing.T) {
	svc := NewService(newMemoryModel(), crud.Options{})
	owner := member()

	created := svc.Create(context.Background(), owner, validCreate())
	require.True(t, created.OK())

	out := svc.SoftDelete(context.Background(), member(), created.Data.ID)
	require.False(t, out.OK())
	require.Equal(t, crud.CodeForbidden, out.Err.Code)
}
