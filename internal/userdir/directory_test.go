package userdir

import (
	"context"
	"errors"
	"testing"

	"fila/queue-manager/internal/models"
	"fila/queue-manager/internal/store"
)

type fakeUserStore struct {
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (f *fakeUserStore) FindByUsername(ctx context.Context, username string) (models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, store.ErrUserNotFound
}

func (f *fakeUserStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, user := range f.users {
		out = append(out, user)
	}
	return out, nil
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user models.User) error {
	for _, existing := range f.users {
		if existing.Username == user.Username {
			return store.ErrUsernameTaken
		}
	}
	f.users[user.UserID] = user
	return nil
}

func (f *fakeUserStore) DeleteUser(ctx context.Context, userID string) error {
	if _, ok := f.users[userID]; !ok {
		return store.ErrUserNotFound
	}
	delete(f.users, userID)
	return nil
}

func TestFindByCredentials(t *testing.T) {
	st := newFakeUserStore()
	dir := New(st)

	created, err := dir.Create(context.Background(), "maria.sousa", "s3cret", models.RoleStaff, "MARIA SOUSA")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Username != "MARIA.SOUSA" {
		t.Fatalf("username must be normalized, got %s", created.Username)
	}

	// Login is case-insensitive on the username.
	user, err := dir.FindByCredentials(context.Background(), "Maria.Sousa", "s3cret")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if user.UserID != created.UserID {
		t.Fatalf("wrong account resolved: %+v", user)
	}

	if _, err := dir.FindByCredentials(context.Background(), "maria.sousa", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for bad password, got %v", err)
	}
	if _, err := dir.FindByCredentials(context.Background(), "nobody", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	dir := New(newFakeUserStore())

	if _, err := dir.Create(context.Background(), "", "pw", models.RoleStaff, "NAME"); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected missing fields, got %v", err)
	}
	if _, err := dir.Create(context.Background(), "user", "", models.RoleStaff, "NAME"); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected missing fields, got %v", err)
	}

	// Unknown roles collapse to staff.
	user, err := dir.Create(context.Background(), "user", "pw", "superuser", "NAME")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.Role != models.RoleStaff {
		t.Fatalf("expected staff role, got %s", user.Role)
	}
}

func TestCreateDuplicateUsername(t *testing.T) {
	dir := New(newFakeUserStore())

	if _, err := dir.Create(context.Background(), "user", "pw", models.RoleStaff, "A"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := dir.Create(context.Background(), "USER", "pw", models.RoleStaff, "B"); !errors.Is(err, store.ErrUsernameTaken) {
		t.Fatalf("expected username taken, got %v", err)
	}
}

func TestDeleteRefusesMasterAdmin(t *testing.T) {
	st := newFakeUserStore()
	dir := New(st)

	if err := dir.EnsureMasterAdmin(context.Background(), "master.admin", "pw"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := dir.Delete(context.Background(), MasterAdminID); !errors.Is(err, ErrMasterAdmin) {
		t.Fatalf("expected master admin refusal, got %v", err)
	}

	user, err := dir.Create(context.Background(), "staff", "pw", models.RoleStaff, "STAFF")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := dir.Delete(context.Background(), user.UserID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestEnsureMasterAdminIdempotent(t *testing.T) {
	st := newFakeUserStore()
	dir := New(st)

	if err := dir.EnsureMasterAdmin(context.Background(), "master.admin", "pw"); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := dir.EnsureMasterAdmin(context.Background(), "master.admin", "changed"); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if len(st.users) != 1 {
		t.Fatalf("expected a single seeded account, got %d", len(st.users))
	}

	// The original credential keeps working; the seed never overwrites.
	if _, err := dir.FindByCredentials(context.Background(), "master.admin", "pw"); err != nil {
		t.Fatalf("seeded credentials rejected: %v", err)
	}
}
