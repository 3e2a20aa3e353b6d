package userdir

import (
	"context"
	"errors"
	"strings"
	"time"

	"fila/queue-manager/internal/models"
	"fila/queue-manager/internal/store"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMasterAdmin        = errors.New("master admin account cannot be removed")
	ErrMissingFields      = errors.New("username, password, and name are required")
)

const MasterAdminID = "master-admin-01"

// Directory resolves operator accounts. Usernames match
// case-insensitively; passwords are bcrypt hashes. The distinguished
// master-admin account is seeded at startup and can never be deleted.
type Directory struct {
	store store.UserStore
}

func New(st store.UserStore) *Directory {
	return &Directory{store: st}
}

func (d *Directory) FindByCredentials(ctx context.Context, username, password string) (models.User, error) {
	user, err := d.store.FindByUsername(ctx, strings.ToUpper(strings.TrimSpace(username)))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (d *Directory) List(ctx context.Context) ([]models.User, error) {
	return d.store.ListUsers(ctx)
}

func (d *Directory) Create(ctx context.Context, username, password, role, name string) (models.User, error) {
	username = strings.ToUpper(strings.TrimSpace(username))
	name = strings.TrimSpace(name)
	if username == "" || password == "" || name == "" {
		return models.User{}, ErrMissingFields
	}
	if role != models.RoleAdmin {
		role = models.RoleStaff
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	user := models.User{
		UserID:       uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Name:         name,
		CreatedAt:    time.Now().UTC(),
	}
	if err := d.store.CreateUser(ctx, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (d *Directory) Delete(ctx context.Context, userID string) error {
	if userID == MasterAdminID {
		return ErrMasterAdmin
	}
	return d.store.DeleteUser(ctx, userID)
}

// EnsureMasterAdmin seeds the always-present admin account on first run.
func (d *Directory) EnsureMasterAdmin(ctx context.Context, username, password string) error {
	username = strings.ToUpper(strings.TrimSpace(username))
	if username == "" || password == "" {
		return nil
	}
	if _, err := d.store.FindByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return d.store.CreateUser(ctx, models.User{
		UserID:       MasterAdminID,
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Name:         "MASTER ADMIN",
		CreatedAt:    time.Now().UTC(),
	})
}
