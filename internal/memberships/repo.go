package memberships

import (
	"context"
	"fmt"

	"github.com/angelmondragon/kanban-memberships/internal/repo"
	"github.com/angelmondragon/kanban-memberships/internal/users"
	"github.com/angelmondragon/kanban-memberships/pkg/db/models"
	"github.com/angelmondragon/kanban-memberships/pkg/enums"
	pkgerrors "github.com/angelmondragon/kanban-memberships/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the durable store of board memberships.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func activeScope(db *gorm.DB) *gorm.DB {
	return db.Where("valid = ? AND accepted = ?", true, true)
}

func pendingScope(db *gorm.DB) *gorm.DB {
	return db.Where("valid = ? AND accepted = ?", true, false)
}

func boardScope(boardID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("board_id = ?", boardID)
	}
}

func ownerScope(db *gorm.DB) *gorm.DB {
	return db.Where("role = ?", enums.BoardRoleOwner)
}

func memberScope(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("member_id = ?", userID)
	}
}

// Create builds and persists a pending invitation. No duplicate detection is performed.
func (r *Repository) Create(ctx context.Context, senderID, boardID uuid.UUID, inviteeEmail string, role enums.BoardRole) (*models.KanbanMembership, error) {
	if role == "" {
		role = enums.DefaultBoardRole
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid board role %q", role))
	}

	membership := models.NewKanbanMembership(senderID, boardID, inviteeEmail, role)
	if err := r.Insert(ctx, membership); err != nil {
		return nil, err
	}
	return membership, nil
}

// Insert persists a membership built by the caller. The invitee email is
// stored normalized.
func (r *Repository) Insert(ctx context.Context, m *models.KanbanMembership) error {
	m.InviteeEmail = users.NormalizeEmail(m.InviteeEmail)
	return r.DB(ctx).Create(m).Error
}

// Save writes every column of m back, refreshing updated_at.
func (r *Repository) Save(ctx context.Context, m *models.KanbanMembership) error {
	return r.DB(ctx).Save(m).Error
}

// FindByID loads a membership by its identifier.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.KanbanMembership, error) {
	return repo.First[models.KanbanMembership](ctx, r.Base, "id = ?", id)
}

// Active returns every valid, accepted membership.
func (r *Repository) Active(ctx context.Context) ([]models.KanbanMembership, error) {
	return r.list(ctx, activeScope)
}

// Pending returns every valid invitation that has not been accepted.
func (r *Repository) Pending(ctx context.Context) ([]models.KanbanMembership, error) {
	return r.list(ctx, pendingScope)
}

// PendingForEmail returns the outstanding invitations addressed to email.
func (r *Repository) PendingForEmail(ctx context.Context, email string) ([]models.KanbanMembership, error) {
	return r.list(ctx, pendingScope, func(db *gorm.DB) *gorm.DB {
		return db.Where("invitee_email = ?", users.NormalizeEmail(email))
	})
}

// OwnersOf returns the active owner memberships of the board.
func (r *Repository) OwnersOf(ctx context.Context, boardID uuid.UUID) ([]models.KanbanMembership, error) {
	return r.list(ctx, activeScope, boardScope(boardID), ownerScope)
}

// MembersOf returns the active memberships of the board, any role.
func (r *Repository) MembersOf(ctx context.Context, boardID uuid.UUID) ([]models.KanbanMembership, error) {
	return r.list(ctx, activeScope, boardScope(boardID))
}

// UserIsMember reports whether the user holds an active membership on the board.
func (r *Repository) UserIsMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	return repo.Exists(r.DB(ctx).
		Model(&models.KanbanMembership{}).
		Scopes(activeScope, boardScope(boardID), memberScope(userID)))
}

// UserIsOwner reports whether the user holds an active owner membership on the board.
func (r *Repository) UserIsOwner(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	return repo.Exists(r.DB(ctx).
		Model(&models.KanbanMembership{}).
		Scopes(activeScope, boardScope(boardID), ownerScope, memberScope(userID)))
}

func (r *Repository) list(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) ([]models.KanbanMembership, error) {
	var rows []models.KanbanMembership
	err := r.DB(ctx).
		Scopes(scopes...).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
