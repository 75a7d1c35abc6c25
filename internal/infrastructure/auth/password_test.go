package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordManager(t *testing.T) {
	m := NewPasswordManagerWithCost(bcrypt.MinCost)

	hash, err := m.HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, m.VerifyPassword(hash, "s3cret"))
	assert.False(t, m.VerifyPassword(hash, "S3cret"))
	assert.False(t, m.VerifyPassword("not-a-hash", "s3cret"))
}
