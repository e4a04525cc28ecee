package types

// Role is one of the responsibilities an account can hold in the
// unified role registry ValidatorSet owns. Roles are looked up by
// AccountId only — never through bidirectional pointers — to avoid
// the cyclic validator<->role<->registry references disallowed by the
// implementation notes.
type Role uint8

const (
	RoleValidator Role = iota
	RoleJuror
	RoleContributor
)

func (r Role) String() string {
	switch r {
	case RoleValidator:
		return "Validator"
	case RoleJuror:
		return "Juror"
	case RoleContributor:
		return "Contributor"
	default:
		return "Unknown"
	}
}
