package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordService_HashAndVerify(t *testing.T) {
	svc := NewPasswordServiceWithCost(bcrypt.MinCost)

	hash, err := svc.Hash("secret")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "secret", hash)

	ok, err := svc.Verify("secret", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify("not-the-secret", hash)
	require.NoError(t, err, "a wrong password is not an error")
	assert.False(t, ok)
}

func TestPasswordService_HashIsSalted(t *testing.T) {
	svc := NewPasswordServiceWithCost(bcrypt.MinCost)

	first, err := svc.Hash("secret")
	require.NoError(t, err)
	second, err := svc.Hash("secret")
	require.NoError(t, err)

	// Разные соли — разные хеши, но оба проверяются
	assert.NotEqual(t, first, second)

	ok, err := svc.Verify("secret", first)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify("secret", second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPasswordService_EmptyPassword(t *testing.T) {
	svc := NewPasswordService()

	_, err := svc.Hash("")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestPasswordService_CorruptHash(t *testing.T) {
	svc := NewPasswordService()

	ok, err := svc.Verify("secret", "not-a-bcrypt-hash")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrCorruptHash)
}

func TestIsValidPassword(t *testing.T) {
	assert.Error(t, IsValidPassword("short"))
	assert.NoError(t, IsValidPassword("secret"))
	assert.Error(t, IsValidPassword(string(make([]byte, 129))))
}
