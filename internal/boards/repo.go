package boards

import (
	"context"
	"strings"

	"github.com/angelmondragon/kanban-memberships/internal/repo"
	"github.com/angelmondragon/kanban-memberships/pkg/db/models"
	pkgerrors "github.com/angelmondragon/kanban-memberships/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles board persistence.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to board operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create persists a new board row.
func (r *Repository) Create(ctx context.Context, name string, createdBy uuid.UUID) (*models.KanbanBoard, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "board name is required")
	}
	board := &models.KanbanBoard{
		Name:        name,
		CreatedByID: createdBy,
	}
	if err := r.DB(ctx).Create(board).Error; err != nil {
		return nil, err
	}
	return board, nil
}

// FindByID loads a board by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.KanbanBoard, error) {
	return repo.First[models.KanbanBoard](ctx, r.Base, "id = ?", id)
}
