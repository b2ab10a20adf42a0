package memberships

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/angelmondragon/kanban-memberships/internal/users"
	"github.com/angelmondragon/kanban-memberships/pkg/db"
	"github.com/angelmondragon/kanban-memberships/pkg/db/models"
	"github.com/angelmondragon/kanban-memberships/pkg/enums"
	pkgerrors "github.com/angelmondragon/kanban-memberships/pkg/errors"
	"github.com/angelmondragon/kanban-memberships/pkg/logger"
	"github.com/angelmondragon/kanban-memberships/pkg/metrics"
	"github.com/angelmondragon/kanban-memberships/pkg/validation"
)

type membershipsRepository interface {
	Insert(ctx context.Context, m *models.KanbanMembership) error
	Save(ctx context.Context, m *models.KanbanMembership) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.KanbanMembership, error)
	Active(ctx context.Context) ([]models.KanbanMembership, error)
	Pending(ctx context.Context) ([]models.KanbanMembership, error)
	PendingForEmail(ctx context.Context, email string) ([]models.KanbanMembership, error)
	OwnersOf(ctx context.Context, boardID uuid.UUID) ([]models.KanbanMembership, error)
	MembersOf(ctx context.Context, boardID uuid.UUID) ([]models.KanbanMembership, error)
	UserIsMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error)
	UserIsOwner(ctx context.Context, boardID, userID uuid.UUID) (bool, error)
}

// UserDirectory resolves users by email or identifier.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// BoardStore owns board records.
type BoardStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.KanbanBoard, error)
}

// Service exposes board membership operations.
type Service interface {
	Invite(ctx context.Context, input InviteInput) (*MembershipDTO, error)
	Accept(ctx context.Context, membershipID uuid.UUID) (*MembershipDTO, error)
	Reject(ctx context.Context, membershipID uuid.UUID) (*MembershipDTO, error)
	ResolveInvitee(ctx context.Context, membership *models.KanbanMembership) (*models.User, error)
	Get(ctx context.Context, membershipID uuid.UUID) (*MembershipDTO, error)
	Active(ctx context.Context) ([]MembershipDTO, error)
	Pending(ctx context.Context) ([]MembershipDTO, error)
	PendingForEmail(ctx context.Context, email string) ([]MembershipDTO, error)
	Members(ctx context.Context, boardID uuid.UUID) ([]MembershipDTO, error)
	Owners(ctx context.Context, boardID uuid.UUID) ([]MembershipDTO, error)
	IsMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error)
	IsOwner(ctx context.Context, boardID, userID uuid.UUID) (bool, error)
}

// InviteInput captures the data required to invite someone to a board.
type InviteInput struct {
	SenderID     uuid.UUID       `field:"sender_id" validate:"required"`
	BoardID      uuid.UUID       `field:"board_id" validate:"required"`
	InviteeEmail string          `field:"invitee_email" validate:"required,email,max=254"`
	Role         enums.BoardRole `field:"role" validate:"omitempty,oneof=owner member"`
}

type service struct {
	repo    membershipsRepository
	users   UserDirectory
	boards  BoardStore
	logg    *logger.Logger
	metrics *metrics.MembershipMetrics
}

// NewService builds a membership service. logg and m may be nil.
func NewService(repo membershipsRepository, usersDir UserDirectory, boards BoardStore, logg *logger.Logger, m *metrics.MembershipMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if usersDir == nil {
		return nil, fmt.Errorf("user directory required")
	}
	if boards == nil {
		return nil, fmt.Errorf("board store required")
	}
	if logg == nil {
		logg = logger.New(logger.Options{ServiceName: "memberships", Output: io.Discard})
	}
	return &service{
		repo:    repo,
		users:   usersDir,
		boards:  boards,
		logg:    logg,
		metrics: m,
	}, nil
}

func (s *service) Invite(ctx context.Context, input InviteInput) (*MembershipDTO, error) {
	input.InviteeEmail = users.NormalizeEmail(input.InviteeEmail)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	role := input.Role
	if role == "" {
		role = enums.DefaultBoardRole
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"board_id":  input.BoardID.String(),
		"sender_id": input.SenderID.String(),
		"role":      role.String(),
	})

	if _, err := s.boards.FindByID(ctx, input.BoardID); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "board not found").
				WithDetails(map[string]string{"board_id": input.BoardID.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load board")
	}

	membership := models.NewKanbanMembership(input.SenderID, input.BoardID, input.InviteeEmail, role)

	invitee, err := s.ResolveInvitee(ctx, membership)
	switch {
	case err == nil:
		membership.MemberID = &invitee.ID
		ctx = s.logg.WithUserID(ctx, invitee.ID.String())
	case pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		// email-only invitation; resolved again on accept
	default:
		return nil, err
	}

	if err := s.repo.Insert(ctx, membership); err != nil {
		s.metrics.IncFailure(metrics.TransitionInvited)
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "membership already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
	}

	s.metrics.IncTransition(metrics.TransitionInvited)
	s.logTransition(s.logg.WithMembershipID(ctx, membership.ID.String()), membership, "membership invitation created")
	return ToDTO(membership), nil
}

func (s *service) Accept(ctx context.Context, membershipID uuid.UUID) (*MembershipDTO, error) {
	ctx = s.logg.WithMembershipID(ctx, membershipID.String())

	membership, err := s.load(ctx, membershipID)
	if err != nil {
		return nil, err
	}

	if membership.MemberID == nil {
		invitee, err := s.ResolveInvitee(ctx, membership)
		switch {
		case err == nil:
			membership.MemberID = &invitee.ID
			ctx = s.logg.WithUserID(ctx, invitee.ID.String())
		case pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
			s.logg.Warn(ctx, "accepting membership without a registered invitee")
		default:
			return nil, err
		}
	}

	membership.Accept()
	if err := s.repo.Save(ctx, membership); err != nil {
		s.metrics.IncFailure(metrics.TransitionAccepted)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save membership")
	}

	s.metrics.IncTransition(metrics.TransitionAccepted)
	s.logTransition(ctx, membership, "membership accepted")
	return ToDTO(membership), nil
}

func (s *service) Reject(ctx context.Context, membershipID uuid.UUID) (*MembershipDTO, error) {
	ctx = s.logg.WithMembershipID(ctx, membershipID.String())

	membership, err := s.load(ctx, membershipID)
	if err != nil {
		return nil, err
	}

	membership.Reject()
	if err := s.repo.Save(ctx, membership); err != nil {
		s.metrics.IncFailure(metrics.TransitionRejected)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save membership")
	}

	s.metrics.IncTransition(metrics.TransitionRejected)
	s.logTransition(ctx, membership, "membership rejected")
	return ToDTO(membership), nil
}

// ResolveInvitee returns the registered user whose email matches the invitation.
func (s *service) ResolveInvitee(ctx context.Context, membership *models.KanbanMembership) (*models.User, error) {
	if membership == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "membership is required")
	}
	user, err := s.users.FindByEmail(ctx, membership.InviteeEmail)
	if err != nil {
		if db.IsNotFound(err) {
			s.logg.Debug(ctx, "invitee email has no registered user")
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invitee not found").
				WithDetails(map[string]string{"membership_id": membership.ID.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup invitee")
	}
	return user, nil
}

func (s *service) Get(ctx context.Context, membershipID uuid.UUID) (*MembershipDTO, error) {
	membership, err := s.load(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	return ToDTO(membership), nil
}

func (s *service) Active(ctx context.Context) ([]MembershipDTO, error) {
	return listDTOs(s.repo.Active(ctx))
}

func (s *service) Pending(ctx context.Context) ([]MembershipDTO, error) {
	return listDTOs(s.repo.Pending(ctx))
}

func (s *service) PendingForEmail(ctx context.Context, email string) ([]MembershipDTO, error) {
	return listDTOs(s.repo.PendingForEmail(ctx, users.NormalizeEmail(email)))
}

func (s *service) Members(ctx context.Context, boardID uuid.UUID) ([]MembershipDTO, error) {
	return listDTOs(s.repo.MembersOf(ctx, boardID))
}

func (s *service) Owners(ctx context.Context, boardID uuid.UUID) ([]MembershipDTO, error) {
	return listDTOs(s.repo.OwnersOf(ctx, boardID))
}

func (s *service) IsMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	ok, err := s.repo.UserIsMember(ctx, boardID, userID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	return ok, nil
}

func (s *service) IsOwner(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	ok, err := s.repo.UserIsOwner(ctx, boardID, userID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check ownership")
	}
	return ok, nil
}

func (s *service) load(ctx context.Context, membershipID uuid.UUID) (*models.KanbanMembership, error) {
	membership, err := s.repo.FindByID(ctx, membershipID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "membership not found").
				WithDetails(map[string]string{"membership_id": membershipID.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}
	return membership, nil
}

func (s *service) logTransition(ctx context.Context, membership *models.KanbanMembership, msg string) {
	s.logg.Info(s.logg.WithField(ctx, "membership", membership.Describe()), msg)
}

func listDTOs(rows []models.KanbanMembership, err error) ([]MembershipDTO, error) {
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list memberships")
	}
	return toDTOs(rows), nil
}
