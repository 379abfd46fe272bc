package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	first, err := h.Hash("pw1234")
	require.NoError(t, err)
	second, err := h.Hash("pw1234")
	require.NoError(t, err)

	assert.NotEqual(t, "pw1234", first)
	assert.NotEqual(t, first, second, "bcrypt salts each hash")
	assert.True(t, h.Verify("pw1234", first))
	assert.True(t, h.Verify("pw1234", second))
	assert.False(t, h.Verify("wrongpw", first))
}

func TestPasswordHasher_VerifyMalformedHash(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	assert.False(t, h.Verify("pw", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify("pw", ""))
}

func TestPasswordHasher_EmptyPlaintext(t *testing.T) {
	_, err := NewPasswordHasher(bcrypt.MinCost).Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestNewPasswordHasher_CostFallback(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).Cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(bcrypt.MaxCost+1).Cost)
	assert.Equal(t, 12, NewPasswordHasher(12).Cost)
}
