package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/rmacedo/presenteio/internal/apperror"
	"github.com/rmacedo/presenteio/internal/claim"
	"github.com/rmacedo/presenteio/internal/code"
	"github.com/rmacedo/presenteio/internal/model"
)

// mockListRepo is an in-memory repository.ListRepository. It stores deep
// copies, like the real store: what a caller hands in or gets back never
// aliases the stored state.
//
// readQueue, when non-empty, overrides GetByID one call at a time. Tests use
// it to serve deliberately stale snapshots and reproduce the read-modify-
// write race on the item sequence.
type mockListRepo struct {
	lists        map[string]*model.List
	order        []string
	nextID       int
	readQueue    []*model.List
	collisions   int // first N CodeExists calls report taken
	codeChecks   int
	replaceErr   error
	ownerNameErr error
}

func newMockListRepo() *mockListRepo {
	return &mockListRepo{lists: make(map[string]*model.List)}
}

func cloneList(l *model.List) *model.List {
	out := *l
	out.Items = make([]model.Item, len(l.Items))
	for i, it := range l.Items {
		if it.GiftedBy != nil {
			name := *it.GiftedBy
			it.GiftedBy = &name
		}
		if it.GiftedByID != nil {
			id := *it.GiftedByID
			it.GiftedByID = &id
		}
		out.Items[i] = it
	}
	return &out
}

func (m *mockListRepo) Create(_ context.Context, list *model.List) error {
	m.nextID++
	list.ID = fmt.Sprintf("list-%d", m.nextID)
	m.lists[list.ID] = cloneList(list)
	m.order = append(m.order, list.ID)
	return nil
}

func (m *mockListRepo) GetByID(_ context.Context, id string) (*model.List, error) {
	if len(m.readQueue) > 0 {
		stale := m.readQueue[0]
		m.readQueue = m.readQueue[1:]
		return cloneList(stale), nil
	}
	list, ok := m.lists[id]
	if !ok {
		return nil, apperror.NotFound("list", id)
	}
	return cloneList(list), nil
}

func (m *mockListRepo) GetByCode(_ context.Context, c string) (*model.List, error) {
	for _, list := range m.lists {
		if list.Code == c {
			return cloneList(list), nil
		}
	}
	return nil, apperror.NotFound("list", c)
}

func (m *mockListRepo) ListByOwner(_ context.Context, ownerID string) ([]model.List, error) {
	var result []model.List
	for _, id := range m.order {
		if list, ok := m.lists[id]; ok && list.OwnerID == ownerID {
			result = append(result, *cloneList(list))
		}
	}
	return result, nil
}

func (m *mockListRepo) Rename(_ context.Context, id, name string) error {
	list, ok := m.lists[id]
	if !ok {
		return apperror.NotFound("list", id)
	}
	list.Name = name
	return nil
}

func (m *mockListRepo) ReplaceItems(_ context.Context, id string, items []model.Item) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	list, ok := m.lists[id]
	if !ok {
		return apperror.NotFound("list", id)
	}
	list.Items = cloneList(&model.List{Items: items}).Items
	return nil
}

func (m *mockListRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.lists[id]; !ok {
		return apperror.NotFound("list", id)
	}
	delete(m.lists, id)
	return nil
}

func (m *mockListRepo) CodeExists(_ context.Context, c string) (bool, error) {
	m.codeChecks++
	if m.collisions > 0 {
		m.collisions--
		return true, nil
	}
	for _, list := range m.lists {
		if list.Code == c {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockListRepo) UpdateOwnerName(_ context.Context, ownerID, name string) (int64, error) {
	if m.ownerNameErr != nil {
		return 0, m.ownerNameErr
	}
	var n int64
	for _, list := range m.lists {
		if list.OwnerID == ownerID && list.OwnerName != name {
			list.OwnerName = name
			n++
		}
	}
	return n, nil
}

// mockBroadcaster records fan-out calls.
type mockBroadcaster struct {
	notified []string // list IDs in call order
	deleted  []string
}

func (m *mockBroadcaster) ListChanged(list *model.List) {
	m.notified = append(m.notified, list.ID)
}

func (m *mockBroadcaster) ListDeleted(list *model.List) {
	m.deleted = append(m.deleted, list.ID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	testOwner   = claim.Actor{ID: "owner-1", DisplayName: "Ana"}
	testVisitor = claim.Actor{ID: "visitor-1", DisplayName: "Bruno"}
)

func newTestListService(t *testing.T) (*ListService, *mockListRepo, *mockBroadcaster) {
	t.Helper()
	repo := newMockListRepo()
	hub := &mockBroadcaster{}
	return NewListService(repo, hub, testLogger()), repo, hub
}

func TestCreateList(t *testing.T) {
	svc, repo, _ := newTestListService(t)

	list, err := svc.Create(context.Background(), testOwner, model.CreateListRequest{Name: "Aniversário"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if !code.Valid(list.Code) {
		t.Errorf("Create() code = %q, want AAA-999 shape", list.Code)
	}
	if list.Color != model.DefaultColor {
		t.Errorf("Create() color = %q, want default %q", list.Color, model.DefaultColor)
	}
	if list.OwnerID != testOwner.ID || list.OwnerName != testOwner.DisplayName {
		t.Errorf("Create() owner = %q/%q, want %q/%q",
			list.OwnerID, list.OwnerName, testOwner.ID, testOwner.DisplayName)
	}
	if len(list.Items) != 0 {
		t.Errorf("Create() items = %d, want empty", len(list.Items))
	}
	if _, ok := repo.lists[list.ID]; !ok {
		t.Error("Create() did not persist the list")
	}
}

func TestCreateList_Validation(t *testing.T) {
	svc, _, _ := newTestListService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   claim.Actor
		req     model.CreateListRequest
		wantErr error
	}{
		{"anonymous", claim.Actor{}, model.CreateListRequest{Name: "Natal"}, apperror.ErrUnauthenticated},
		{"empty name", testOwner, model.CreateListRequest{Name: "   "}, apperror.ErrValidation},
		{"unknown color", testOwner, model.CreateListRequest{Name: "Natal", Color: "mauve"}, apperror.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.actor, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateList_RegeneratesOnCodeCollision(t *testing.T) {
	svc, repo, _ := newTestListService(t)
	repo.collisions = 2

	list, err := svc.Create(context.Background(), testOwner, model.CreateListRequest{Name: "Natal"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !code.Valid(list.Code) {
		t.Errorf("Create() code = %q, want valid", list.Code)
	}
	if repo.codeChecks != 3 {
		t.Errorf("CodeExists called %d times, want 3 (two collisions then a free code)", repo.codeChecks)
	}
}

func TestCreateList_CodeExhaustion(t *testing.T) {
	svc, repo, _ := newTestListService(t)
	repo.collisions = codeAttempts

	_, err := svc.Create(context.Background(), testOwner, model.CreateListRequest{Name: "Natal"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Create() error = %v, want conflict after %d collisions", err, codeAttempts)
	}
}

func TestRenameList(t *testing.T) {
	svc, repo, hub := newTestListService(t)
	ctx := context.Background()

	list, err := svc.Create(ctx, testOwner, model.CreateListRequest{Name: "Aniversário"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	renamed, err := svc.Rename(ctx, list.ID, testOwner, model.RenameListRequest{Name: "Aniversário 2026"})
	if err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if renamed.Name != "Aniversário 2026" {
		t.Errorf("Rename() name = %q", renamed.Name)
	}
	if repo.lists[list.ID].Name != "Aniversário 2026" {
		t.Error("Rename() did not persist")
	}
	if len(hub.notified) == 0 {
		t.Error("Rename() did not notify subscribers")
	}
}

func TestRenameList_NotOwner(t *testing.T) {
	svc, _, _ := newTestListService(t)
	ctx := context.Background()

	list, _ := svc.Create(ctx, testOwner, model.CreateListRequest{Name: "Aniversário"})

	_, err := svc.Rename(ctx, list.ID, testVisitor, model.RenameListRequest{Name: "Minha agora"})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("Rename() by non-owner error = %v, want forbidden", err)
	}
}

func TestDeleteList(t *testing.T) {
	svc, repo, hub := newTestListService(t)
	ctx := context.Background()

	list, _ := svc.Create(ctx, testOwner, model.CreateListRequest{Name: "Aniversário"})

	if err := svc.Delete(ctx, list.ID, testVisitor); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("Delete() by non-owner error = %v, want forbidden", err)
	}
	if len(hub.deleted) != 0 {
		t.Fatal("a denied Delete() still broadcast")
	}

	if err := svc.Delete(ctx, list.ID, testOwner); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := repo.lists[list.ID]; ok {
		t.Error("Delete() left the list behind")
	}

	// Live sessions must learn the list is gone; a delete without a
	// broadcast strands them rendering a list that no longer resolves.
	if len(hub.deleted) != 1 || hub.deleted[0] != list.ID {
		t.Errorf("Delete() broadcast = %v, want terminal notification for %s", hub.deleted, list.ID)
	}
}

func TestFindByCode(t *testing.T) {
	svc, _, _ := newTestListService(t)
	ctx := context.Background()

	list, _ := svc.Create(ctx, testOwner, model.CreateListRequest{Name: "Aniversário"})

	// Codes resolve case-insensitively; the share link survives lower-casing.
	found, err := svc.FindByCode(ctx, "  "+strings.ToLower(list.Code)+" ")
	if err != nil {
		t.Fatalf("FindByCode() error = %v", err)
	}
	if found.ID != list.ID {
		t.Errorf("FindByCode() = %q, want %q", found.ID, list.ID)
	}

	_, err = svc.FindByCode(ctx, "not-a-code")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("FindByCode() with malformed code error = %v, want not found", err)
	}
	// The lookup is by code, so the message talks about the code, not an id.
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && !strings.Contains(appErr.Message, "code") {
		t.Errorf("FindByCode() message = %q, want it worded around the code", appErr.Message)
	}
}

func TestListsByOwner(t *testing.T) {
	svc, _, _ := newTestListService(t)
	ctx := context.Background()

	first, _ := svc.Create(ctx, testOwner, model.CreateListRequest{Name: "Aniversário"})
	second, _ := svc.Create(ctx, testOwner, model.CreateListRequest{Name: "Natal"})
	_, _ = svc.Create(ctx, claim.Actor{ID: "owner-2", DisplayName: "Caio"}, model.CreateListRequest{Name: "Outra"})

	lists, err := svc.ListsByOwner(ctx, testOwner.ID)
	if err != nil {
		t.Fatalf("ListsByOwner() error = %v", err)
	}
	if len(lists) != 2 || lists[0].ID != first.ID || lists[1].ID != second.ID {
		t.Errorf("ListsByOwner() = %d lists, want the owner's two oldest-first", len(lists))
	}

	if _, err := svc.ListsByOwner(ctx, ""); !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("ListsByOwner(\"\") error = %v, want unauthenticated", err)
	}
}
