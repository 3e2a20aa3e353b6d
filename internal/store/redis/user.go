package redis

import (
	"time"

	"fila/queue-manager/internal/models"
)

// models.User hides its password hash from JSON responses, so stored user
// records carry an explicit shape.
type userRecord struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

func fromModel(user models.User) userRecord {
	return userRecord{
		UserID:       user.UserID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		Name:         user.Name,
		CreatedAt:    user.CreatedAt,
	}
}

func (r userRecord) toModel() models.User {
	return models.User{
		UserID:       r.UserID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		Name:         r.Name,
		CreatedAt:    r.CreatedAt,
	}
}
