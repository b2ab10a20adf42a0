package users

import (
	"context"
	"strings"

	"github.com/angelmondragon/kanban-memberships/internal/repo"
	"github.com/angelmondragon/kanban-memberships/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email     string
	FirstName string
	LastName  string
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := &models.User{
		Email:     NormalizeEmail(dto.Email),
		FirstName: dto.FirstName,
		LastName:  dto.LastName,
		IsActive:  true,
	}
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return repo.First[models.User](ctx, r.Base, "email = ?", NormalizeEmail(email))
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return repo.First[models.User](ctx, r.Base, "id = ?", id)
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
