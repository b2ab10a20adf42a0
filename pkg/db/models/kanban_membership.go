package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/kanban-memberships/pkg/enums"
)

// KanbanMembership links a user (or a pending invitee email) with a board.
// State lives in the Valid/Accepted flags; records are never deleted.
type KanbanMembership struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	BoardID      uuid.UUID       `gorm:"column:board_id;type:uuid;not null;index"`
	SenderID     uuid.UUID       `gorm:"column:sender_id;type:uuid;not null"`
	MemberID     *uuid.UUID      `gorm:"column:member_id;type:uuid;index"`
	InviteeEmail string          `gorm:"column:invitee_email;type:varchar(254);not null;index"`
	Role         enums.BoardRole `gorm:"column:role;type:varchar(16);not null"`
	Accepted     bool            `gorm:"column:accepted;not null"`
	Valid        bool            `gorm:"column:valid;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// NewKanbanMembership builds a pending invitation with a fresh identifier.
func NewKanbanMembership(senderID, boardID uuid.UUID, inviteeEmail string, role enums.BoardRole) *KanbanMembership {
	if role == "" {
		role = enums.DefaultBoardRole
	}
	return &KanbanMembership{
		ID:           uuid.New(),
		BoardID:      boardID,
		SenderID:     senderID,
		InviteeEmail: inviteeEmail,
		Role:         role,
		Accepted:     false,
		Valid:        true,
	}
}

// BeforeCreate only fills an identifier for records built outside NewKanbanMembership.
func (m *KanbanMembership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Accept marks the invitation as taken up. The caller persists.
func (m *KanbanMembership) Accept() {
	m.Valid = true
	m.Accepted = true
}

// Reject invalidates the membership. The caller persists.
func (m *KanbanMembership) Reject() {
	m.Valid = false
	m.Accepted = false
}

func (m *KanbanMembership) State() enums.MembershipState {
	return enums.MembershipStateOf(m.Valid, m.Accepted)
}

// Describe renders a one-line summary of the membership for logs and CLI output.
func (m *KanbanMembership) Describe() string {
	member := m.InviteeEmail
	if m.MemberID != nil {
		member = m.MemberID.String()
	}
	summary := fmt.Sprintf("%s level membership to %s by %s", m.Role, m.BoardID, member)

	switch m.State() {
	case enums.MembershipStatePending:
		return "(Pending Invitation) " + summary
	case enums.MembershipStateRejected:
		return "(Rejected Invitation) " + summary
	default:
		return summary
	}
}
