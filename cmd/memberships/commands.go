package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/kanban-memberships/internal/boards"
	"github.com/angelmondragon/kanban-memberships/internal/memberships"
	"github.com/angelmondragon/kanban-memberships/internal/users"
	"github.com/angelmondragon/kanban-memberships/pkg/db"
	"github.com/angelmondragon/kanban-memberships/pkg/db/models"
	"github.com/angelmondragon/kanban-memberships/pkg/enums"
	pkgerrors "github.com/angelmondragon/kanban-memberships/pkg/errors"
	"github.com/angelmondragon/kanban-memberships/pkg/logger"
)

const usage = "usage: memberships -cmd=<add-user|add-board|invite|accept|reject|show|active|pending|members|owners|check> [flags]"

type userStore interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type runner struct {
	memberships memberships.Service
	users       userStore
	client      *db.Client
	logg        *logger.Logger
	out         io.Writer
}

// boardWithOwner is the add-board result: the board and its creator's
// accepted owner membership.
type boardWithOwner struct {
	Board *models.KanbanBoard        `json:"board"`
	Owner *memberships.MembershipDTO `json:"owner"`
}

type flags struct {
	cmd       string
	id        string
	board     string
	sender    string
	user      string
	email     string
	role      string
	name      string
	firstName string
	lastName  string
}

func parseFlags(args []string) (*flags, error) {
	f := &flags{}
	fs := flag.NewFlagSet("memberships", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&f.cmd, "cmd", "", "command to run")
	fs.StringVar(&f.id, "id", "", "membership id")
	fs.StringVar(&f.board, "board", "", "board id")
	fs.StringVar(&f.sender, "sender", "", "sender user id (invite)")
	fs.StringVar(&f.user, "user", "", "user id (check, add-board)")
	fs.StringVar(&f.email, "email", "", "invitee or user email")
	fs.StringVar(&f.role, "role", "", "board role: owner|member")
	fs.StringVar(&f.name, "name", "", "board name (add-board)")
	fs.StringVar(&f.firstName, "first-name", "", "user first name (add-user)")
	fs.StringVar(&f.lastName, "last-name", "", "user last name (add-user)")
	if err := fs.Parse(args); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, usage)
	}
	if f.cmd == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, usage)
	}
	return f, nil
}

func (r *runner) run(ctx context.Context, args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		r.report(ctx, err)
		return err
	}
	ctx = r.logg.WithField(ctx, "cmd", f.cmd)

	result, err := r.dispatch(ctx, f)
	if err != nil {
		r.report(ctx, err)
		return err
	}

	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func (r *runner) dispatch(ctx context.Context, f *flags) (any, error) {
	switch f.cmd {
	case "add-user":
		return r.users.Create(ctx, users.CreateUserDTO{Email: f.email, FirstName: f.firstName, LastName: f.lastName})

	case "add-board":
		creator, err := parseID("user", f.user)
		if err != nil {
			return nil, err
		}
		return r.addBoard(ctx, f.name, creator)

	case "invite":
		board, err := parseID("board", f.board)
		if err != nil {
			return nil, err
		}
		sender, err := parseID("sender", f.sender)
		if err != nil {
			return nil, err
		}
		role, err := enums.ParseBoardRole(f.role)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
		}
		return r.memberships.Invite(ctx, memberships.InviteInput{
			SenderID:     sender,
			BoardID:      board,
			InviteeEmail: f.email,
			Role:         role,
		})

	case "accept", "reject", "show":
		id, err := parseID("id", f.id)
		if err != nil {
			return nil, err
		}
		switch f.cmd {
		case "accept":
			return r.memberships.Accept(ctx, id)
		case "reject":
			return r.memberships.Reject(ctx, id)
		}
		return r.memberships.Get(ctx, id)

	case "active":
		return r.memberships.Active(ctx)

	case "pending":
		if f.email != "" {
			return r.memberships.PendingForEmail(ctx, f.email)
		}
		return r.memberships.Pending(ctx)

	case "members", "owners":
		board, err := parseID("board", f.board)
		if err != nil {
			return nil, err
		}
		if f.cmd == "owners" {
			return r.memberships.Owners(ctx, board)
		}
		return r.memberships.Members(ctx, board)

	case "check":
		board, err := parseID("board", f.board)
		if err != nil {
			return nil, err
		}
		user, err := parseID("user", f.user)
		if err != nil {
			return nil, err
		}
		member, err := r.memberships.IsMember(ctx, board, user)
		if err != nil {
			return nil, err
		}
		owner, err := r.memberships.IsOwner(ctx, board, user)
		if err != nil {
			return nil, err
		}
		return map[string]bool{"member": member, "owner": owner}, nil
	}

	return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown -cmd value %q", f.cmd))
}

// addBoard creates the board and seeds the creator as its first owner in one
// transaction, so every board starts with someone who can invite.
func (r *runner) addBoard(ctx context.Context, name string, creatorID uuid.UUID) (*boardWithOwner, error) {
	var out boardWithOwner
	err := r.client.WithTx(ctx, func(tx *gorm.DB) error {
		creator, err := users.NewRepository(tx).FindByID(ctx, creatorID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "board creator not found").
					WithDetails(map[string]string{"user_id": creatorID.String()})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load board creator")
		}

		board, err := boards.NewRepository(tx).Create(ctx, name, creator.ID)
		if err != nil {
			if pkgerrors.As(err) != nil {
				return err
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create board")
		}

		owner := models.NewKanbanMembership(creator.ID, board.ID, creator.Email, enums.BoardRoleOwner)
		owner.MemberID = &creator.ID
		owner.Accept()
		if err := memberships.NewRepository(tx).Insert(ctx, owner); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed board owner")
		}

		out = boardWithOwner{Board: board, Owner: memberships.ToDTO(owner)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.logg.Info(r.logg.WithBoardID(ctx, out.Board.ID.String()), "board created with owner")
	return &out, nil
}

func (r *runner) report(ctx context.Context, err error) {
	ctx = r.logg.WithField(ctx, "error_dump", pkgerrors.Dump(err))
	r.logg.Error(ctx, "command failed", err)
}

func parseID(name, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("missing -%s", name))
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid -%s", name))
	}
	return id, nil
}
