package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/kanban-memberships/internal/boards"
	"github.com/angelmondragon/kanban-memberships/internal/memberships"
	"github.com/angelmondragon/kanban-memberships/internal/users"
	"github.com/angelmondragon/kanban-memberships/pkg/config"
	"github.com/angelmondragon/kanban-memberships/pkg/db"
	"github.com/angelmondragon/kanban-memberships/pkg/db/models"
	"github.com/angelmondragon/kanban-memberships/pkg/enums"
	pkgerrors "github.com/angelmondragon/kanban-memberships/pkg/errors"
	"github.com/angelmondragon/kanban-memberships/pkg/logger"
	"github.com/angelmondragon/kanban-memberships/pkg/metrics"
	"github.com/angelmondragon/kanban-memberships/pkg/migrate"
)

type cliFixture struct {
	runner *runner
	out    *bytes.Buffer
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	ctx := context.Background()

	cfg := config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString()),
	}
	client, err := db.New(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.DB().DB()
	require.NoError(t, err)
	require.NoError(t, migrate.Run(ctx, sqlDB, migrate.DialectFor(cfg), "../../pkg/migrate/migrations", "up"))

	logg := logger.New(logger.Options{ServiceName: "memberships-test", Output: io.Discard})
	conn := client.DB()
	usersRepo := users.NewRepository(conn)
	svc, err := memberships.NewService(
		memberships.NewRepository(conn),
		usersRepo,
		boards.NewRepository(conn),
		logg,
		metrics.NewMembershipMetrics(prometheus.NewRegistry()),
	)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	return &cliFixture{
		runner: &runner{memberships: svc, users: usersRepo, client: client, logg: logg, out: out},
		out:    out,
	}
}

func (f *cliFixture) run(t *testing.T, dest any, args ...string) error {
	t.Helper()
	f.out.Reset()
	err := f.runner.run(context.Background(), args)
	if err == nil && dest != nil {
		require.NoError(t, json.Unmarshal(f.out.Bytes(), dest))
	}
	return err
}

func TestCLIInviteAcceptFlow(t *testing.T) {
	f := newCLIFixture(t)

	var sender models.User
	require.NoError(t, f.run(t, &sender, "-cmd=add-user", "-email=owner@example.com", "-first-name=Olive"))
	var invitee models.User
	require.NoError(t, f.run(t, &invitee, "-cmd=add-user", "-email=Guest@Example.com"))

	var created boardWithOwner
	require.NoError(t, f.run(t, &created, "-cmd=add-board", "-name=Roadmap", "-user="+sender.ID.String()))
	require.NotNil(t, created.Board)
	require.NotNil(t, created.Owner)
	board := created.Board
	assert.Equal(t, enums.MembershipStateActive, created.Owner.State)
	assert.Equal(t, "owner level membership to "+board.ID.String()+" by "+sender.ID.String(), created.Owner.Summary)

	var senderCheck map[string]bool
	require.NoError(t, f.run(t, &senderCheck, "-cmd=check", "-board="+board.ID.String(), "-user="+sender.ID.String()))
	assert.Equal(t, map[string]bool{"member": true, "owner": true}, senderCheck)

	var invited memberships.MembershipDTO
	require.NoError(t, f.run(t, &invited,
		"-cmd=invite",
		"-board="+board.ID.String(),
		"-sender="+sender.ID.String(),
		"-email=guest@example.com",
		"-role=owner",
	))
	assert.Equal(t, enums.BoardRoleOwner, invited.Role)
	assert.Equal(t, enums.MembershipStatePending, invited.State)
	require.NotNil(t, invited.MemberID)
	assert.Equal(t, invitee.ID, *invited.MemberID)

	var pending []memberships.MembershipDTO
	require.NoError(t, f.run(t, &pending, "-cmd=pending", "-email=GUEST@example.com"))
	require.Len(t, pending, 1)
	assert.Equal(t, invited.ID, pending[0].ID)

	var accepted memberships.MembershipDTO
	require.NoError(t, f.run(t, &accepted, "-cmd=accept", "-id="+invited.ID.String()))
	assert.Equal(t, enums.MembershipStateActive, accepted.State)

	var shown memberships.MembershipDTO
	require.NoError(t, f.run(t, &shown, "-cmd=show", "-id="+invited.ID.String()))
	assert.Equal(t, "owner level membership to "+board.ID.String()+" by "+invitee.ID.String(), shown.Summary)

	var owners []memberships.MembershipDTO
	require.NoError(t, f.run(t, &owners, "-cmd=owners", "-board="+board.ID.String()))
	require.Len(t, owners, 2)

	var check map[string]bool
	require.NoError(t, f.run(t, &check, "-cmd=check", "-board="+board.ID.String(), "-user="+invitee.ID.String()))
	assert.Equal(t, map[string]bool{"member": true, "owner": true}, check)

	var rejected memberships.MembershipDTO
	require.NoError(t, f.run(t, &rejected, "-cmd=reject", "-id="+invited.ID.String()))
	assert.Equal(t, enums.MembershipStateRejected, rejected.State)

	var members []memberships.MembershipDTO
	require.NoError(t, f.run(t, &members, "-cmd=members", "-board="+board.ID.String()))
	require.Len(t, members, 1)
	assert.Equal(t, created.Owner.ID, members[0].ID)
}

func TestCLIAddBoardFailures(t *testing.T) {
	f := newCLIFixture(t)

	err := f.run(t, nil, "-cmd=add-board", "-name=Orphan", "-user="+uuid.NewString())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	var creator models.User
	require.NoError(t, f.run(t, &creator, "-cmd=add-user", "-email=c@example.com"))
	err = f.run(t, nil, "-cmd=add-board", "-name=  ", "-user="+creator.ID.String())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	var active []memberships.MembershipDTO
	require.NoError(t, f.run(t, &active, "-cmd=active"))
	assert.Empty(t, active, "failed add-board must not leave an owner membership")
}

func TestCLIErrors(t *testing.T) {
	f := newCLIFixture(t)

	cases := []struct {
		name string
		args []string
		code pkgerrors.Code
		exit int
	}{
		{name: "missing cmd", args: nil, code: pkgerrors.CodeValidation, exit: 2},
		{name: "unknown cmd", args: []string{"-cmd=promote"}, code: pkgerrors.CodeValidation, exit: 2},
		{name: "bad id", args: []string{"-cmd=accept", "-id=nope"}, code: pkgerrors.CodeValidation, exit: 2},
		{name: "missing membership", args: []string{"-cmd=show", "-id=" + uuid.NewString()}, code: pkgerrors.CodeNotFound, exit: 3},
		{
			name: "bad role",
			args: []string{"-cmd=invite", "-board=" + uuid.NewString(), "-sender=" + uuid.NewString(), "-email=a@x.com", "-role=admin"},
			code: pkgerrors.CodeValidation,
			exit: 2,
		},
		{
			name: "missing board",
			args: []string{"-cmd=invite", "-board=" + uuid.NewString(), "-sender=" + uuid.NewString(), "-email=a@x.com"},
			code: pkgerrors.CodeNotFound,
			exit: 3,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.run(t, nil, tc.args...)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, tc.code), "got %v", err)
			assert.Equal(t, tc.exit, pkgerrors.ExitCode(err))
		})
	}
}
