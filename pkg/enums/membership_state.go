package enums

// MembershipState is derived from a membership's valid/accepted flags; it is never stored.
type MembershipState string

const (
	MembershipStateActive   MembershipState = "active"
	MembershipStatePending  MembershipState = "pending"
	MembershipStateRejected MembershipState = "rejected"
)

// String implements fmt.Stringer.
func (s MembershipState) String() string {
	return string(s)
}

// MembershipStateOf maps the flag pair onto its state.
func MembershipStateOf(valid, accepted bool) MembershipState {
	switch {
	case !valid:
		return MembershipStateRejected
	case accepted:
		return MembershipStateActive
	default:
		return MembershipStatePending
	}
}
