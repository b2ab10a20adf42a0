package validation

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/kanban-memberships/pkg/errors"
)

type sample struct {
	OwnerID uuid.UUID `field:"owner_id" validate:"required"`
	Email   string    `field:"email" validate:"required,email,max=254"`
	Role    string    `validate:"omitempty,oneof=owner member"`
}

func TestStructAcceptsValidInput(t *testing.T) {
	require.NoError(t, Struct(sample{OwnerID: uuid.New(), Email: "a@x.com", Role: "owner"}))
	require.NoError(t, Struct(sample{OwnerID: uuid.New(), Email: "a@x.com"}))
}

func TestStructReportsFieldDetails(t *testing.T) {
	err := Struct(sample{Email: "not-an-email", Role: "admin"})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["owner_id"])
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be one of [owner member]", details["Role"])
}

func TestStructEnforcesEmailLength(t *testing.T) {
	long := strings.Repeat("a", 250) + "@x.com"
	err := Struct(sample{OwnerID: uuid.New(), Email: long})
	require.Error(t, err)

	details := pkgerrors.As(err).Details().(map[string]string)
	assert.Contains(t, details, "email")
}
