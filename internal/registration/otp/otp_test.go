package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := Generate()
		require.NoError(t, err)
		require.Len(t, code, Digits)
		for _, c := range code {
			assert.True(t, c >= '0' && c <= '9', "code %q contains non-digit", code)
		}
	}
}

func TestVerify(t *testing.T) {
	code, err := Generate()
	require.NoError(t, err)
	salt, err := NewSalt()
	require.NoError(t, err)
	stored := Hash(code, salt)

	assert.True(t, Verify(stored, salt, code))
	assert.False(t, Verify(stored, salt, "000000"))
	assert.False(t, Verify(stored, "othersalt", code))
}

func TestHashDependsOnSalt(t *testing.T) {
	s1, err := NewSalt()
	require.NoError(t, err)
	s2, err := NewSalt()
	require.NoError(t, err)
	require.NotEqual(t, s1, s2)

	assert.NotEqual(t, Hash("123456", s1), Hash("123456", s2))
}
