package cryptox

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	salt := bytes.Repeat([]byte{0x11}, SaltSize)

	k1, err := DeriveKey([]byte("secret-password"), salt)
	require.NoError(t, err)
	k2, err := DeriveKey([]byte("secret-password"), salt)
	require.NoError(t, err)

	assert.Len(t, k1, KeySize)
	assert.Equal(t, k1, k2)
}

func TestDeriveKey_SaltIndependence(t *testing.T) {
	s1, err := GenerateSalt()
	require.NoError(t, err)
	s2, err := GenerateSalt()
	require.NoError(t, err)
	require.NotEqual(t, s1, s2)

	k1, err := DeriveKey([]byte("same-password"), s1)
	require.NoError(t, err)
	k2, err := DeriveKey([]byte("same-password"), s2)
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
}

func TestDeriveKey_PasswordIndependence(t *testing.T) {
	salt := bytes.Repeat([]byte{0x22}, SaltSize)

	k1, err := DeriveKey([]byte("password-a"), salt)
	require.NoError(t, err)
	k2, err := DeriveKey([]byte("password-b"), salt)
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
}

func TestDeriveKey_InvalidInput(t *testing.T) {
	_, err := DeriveKey(nil, []byte("salt"))
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = DeriveKey([]byte("pw"), nil)
	assert.ErrorIs(t, err, ErrInvalidSalt)
}

func TestGenerateSalt(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)
	assert.Len(t, salt, SaltSize)

	orig := randRead
	randRead = func(b []byte) (int, error) { return 0, errors.New("no entropy") }
	defer func() { randRead = orig }()

	_, err = GenerateSalt()
	assert.Error(t, err)
}
