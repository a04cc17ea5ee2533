package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"administrator", "club-admin", "alumni-individual", "company"} {
		role, err := ParseRole(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, string(role))
	}

	for _, invalid := range []string{"", "admin", "Club-Admin", "superuser"} {
		_, err := ParseRole(invalid)
		assert.Error(t, err, "expected %q to be rejected", invalid)
	}
}

func TestRoleHasProfile(t *testing.T) {
	assert.False(t, RoleAdministrator.HasProfile())
	assert.True(t, RoleClubAdmin.HasProfile())
	assert.True(t, RoleCompany.HasProfile())
	assert.True(t, RoleAlumniIndividual.HasProfile())
}

func TestRoleAttributesForRole(t *testing.T) {
	full := RoleAttributes{
		ClubName:          "Chess Club",
		OrganizationName:  "Acme Corp",
		FormerInstitution: "State University",
	}

	assert.Equal(t, RoleAttributes{ClubName: "Chess Club"}, full.ForRole(RoleClubAdmin))
	assert.Equal(t, RoleAttributes{OrganizationName: "Acme Corp"}, full.ForRole(RoleCompany))
	assert.Equal(t, RoleAttributes{FormerInstitution: "State University"}, full.ForRole(RoleAlumniIndividual))
	assert.Equal(t, RoleAttributes{}, full.ForRole(RoleAdministrator))
}

func TestRoleAttributesValidate(t *testing.T) {
	t.Run("requires the role's own field", func(t *testing.T) {
		assert.Error(t, RoleAttributes{}.Validate(RoleClubAdmin))
		assert.Error(t, RoleAttributes{}.Validate(RoleCompany))
		assert.Error(t, RoleAttributes{}.Validate(RoleAlumniIndividual))
	})

	t.Run("rejects foreign fields", func(t *testing.T) {
		attrs := RoleAttributes{ClubName: "Chess Club", OrganizationName: "Acme Corp"}
		assert.Error(t, attrs.Validate(RoleClubAdmin))
		assert.Error(t, RoleAttributes{ClubName: "Chess Club"}.Validate(RoleAdministrator))
	})

	t.Run("accepts a clean match", func(t *testing.T) {
		assert.NoError(t, RoleAttributes{ClubName: "Chess Club"}.Validate(RoleClubAdmin))
		assert.NoError(t, RoleAttributes{OrganizationName: "Acme Corp"}.Validate(RoleCompany))
		assert.NoError(t, RoleAttributes{FormerInstitution: "State University"}.Validate(RoleAlumniIndividual))
		assert.NoError(t, RoleAttributes{}.Validate(RoleAdministrator))
	})
}

func TestParseDecision(t *testing.T) {
	for _, valid := range []string{"verified", "rejected"} {
		status, err := ParseDecision(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, string(status))
	}
	for _, invalid := range []string{"", "pending", "approved", "Verified"} {
		_, err := ParseDecision(invalid)
		assert.Error(t, err, "expected %q to be rejected", invalid)
	}
}

func TestParseIDs(t *testing.T) {
	id := NewUserID()
	parsed, err := ParseUserID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	for _, invalid := range []string{"", "not-a-uuid", "00000000-0000-0000-0000-000000000000"} {
		_, err := ParseUserID(invalid)
		assert.Error(t, err, "expected %q to be rejected", invalid)
		_, err = ParsePendingID(invalid)
		assert.Error(t, err, "expected %q to be rejected", invalid)
	}
}
