package domain

import "fmt"

// Role is the closed set of account roles. Parsing is the only way to obtain
// one from external input, so downstream switches can be exhaustive instead
// of silently ignoring unknown values.
type Role string

const (
	RoleAdministrator    Role = "administrator"
	RoleClubAdmin        Role = "club-admin"
	RoleAlumniIndividual Role = "alumni-individual"
	RoleCompany          Role = "company"
)

// ParseRole validates and returns a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdministrator, RoleClubAdmin, RoleAlumniIndividual, RoleCompany:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// HasProfile reports whether identities of this role get a projected
// profile record. Administrators do not.
func (r Role) HasProfile() bool {
	switch r {
	case RoleClubAdmin, RoleAlumniIndividual, RoleCompany:
		return true
	default:
		return false
	}
}

// RoleAttributes carries the role-conditional fields of a registration or
// identity. Exactly the field matching the role is populated; the others
// stay empty.
type RoleAttributes struct {
	ClubName          string `json:"clubName,omitempty"`
	OrganizationName  string `json:"organizationName,omitempty"`
	FormerInstitution string `json:"formerInstitution,omitempty"`
}

// ForRole returns a copy holding only the field the given role is allowed
// to carry. Attribute copy during promotion goes through this so stray
// fields from a tampered request never reach an identity record.
func (a RoleAttributes) ForRole(role Role) RoleAttributes {
	switch role {
	case RoleClubAdmin:
		return RoleAttributes{ClubName: a.ClubName}
	case RoleCompany:
		return RoleAttributes{OrganizationName: a.OrganizationName}
	case RoleAlumniIndividual:
		return RoleAttributes{FormerInstitution: a.FormerInstitution}
	case RoleAdministrator:
		return RoleAttributes{}
	default:
		return RoleAttributes{}
	}
}

// Validate checks the attribute set against the role: the role's own field
// must be present for profile-bearing roles, foreign fields must be absent.
func (a RoleAttributes) Validate(role Role) error {
	switch role {
	case RoleClubAdmin:
		if a.ClubName == "" {
			return fmt.Errorf("club name is required for role %s", role)
		}
		if a.OrganizationName != "" || a.FormerInstitution != "" {
			return fmt.Errorf("role %s accepts only a club name", role)
		}
	case RoleCompany:
		if a.OrganizationName == "" {
			return fmt.Errorf("organization name is required for role %s", role)
		}
		if a.ClubName != "" || a.FormerInstitution != "" {
			return fmt.Errorf("role %s accepts only an organization name", role)
		}
	case RoleAlumniIndividual:
		if a.FormerInstitution == "" {
			return fmt.Errorf("former institution is required for role %s", role)
		}
		if a.ClubName != "" || a.OrganizationName != "" {
			return fmt.Errorf("role %s accepts only a former institution", role)
		}
	case RoleAdministrator:
		if a != (RoleAttributes{}) {
			return fmt.Errorf("role %s carries no attributes", role)
		}
	default:
		return fmt.Errorf("unknown role: %q", role)
	}
	return nil
}
