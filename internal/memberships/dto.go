package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/kanban-memberships/pkg/db/models"
	"github.com/angelmondragon/kanban-memberships/pkg/enums"
)

// MembershipDTO is the transport shape for a raw membership record.
type MembershipDTO struct {
	ID           uuid.UUID             `json:"id"`
	BoardID      uuid.UUID             `json:"board_id"`
	SenderID     uuid.UUID             `json:"sender_id"`
	MemberID     *uuid.UUID            `json:"member_id,omitempty"`
	InviteeEmail string                `json:"invitee_email"`
	Role         enums.BoardRole       `json:"role"`
	Accepted     bool                  `json:"accepted"`
	Valid        bool                  `json:"valid"`
	State        enums.MembershipState `json:"state"`
	Summary      string                `json:"summary"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// ToDTO converts a model to the external DTO.
func ToDTO(m *models.KanbanMembership) *MembershipDTO {
	if m == nil {
		return nil
	}

	return &MembershipDTO{
		ID:           m.ID,
		BoardID:      m.BoardID,
		SenderID:     m.SenderID,
		MemberID:     copyUUIDPointer(m.MemberID),
		InviteeEmail: m.InviteeEmail,
		Role:         m.Role,
		Accepted:     m.Accepted,
		Valid:        m.Valid,
		State:        m.State(),
		Summary:      m.Describe(),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toDTOs(rows []models.KanbanMembership) []MembershipDTO {
	out := make([]MembershipDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out
}

func copyUUIDPointer(src *uuid.UUID) *uuid.UUID {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}
