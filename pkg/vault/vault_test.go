package vault_test

import (
	"errors"
	"testing"

	"aimawatch/pkg/domain"
	"aimawatch/pkg/serrors"
	"aimawatch/pkg/vault"

	"github.com/stretchr/testify/require"
)

var secret = []byte("test-shared-secret")

func TestDeriveKey_Deterministic(t *testing.T) {
	a, err := vault.DeriveKey(secret, 42)
	require.NoError(t, err)
	b, err := vault.DeriveKey(secret, 42)
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.Len(t, a, 32)
}

func TestDeriveKey_Separation(t *testing.T) {
	// distinct users under the same secret must get unrelated keys
	a, err := vault.DeriveKey(secret, 1)
	require.NoError(t, err)
	b, err := vault.DeriveKey(secret, 2)
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	// same user under a different secret must also differ
	c, err := vault.DeriveKey([]byte("other-secret"), 1)
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key, err := vault.DeriveKey(secret, 7)
	require.NoError(t, err)

	for _, plaintext := range []string{"", "a", "user@example.com", "påsswörd with ünicode"} {
		ciphertext, err := vault.Encrypt(key, []byte(plaintext))
		require.NoError(t, err)

		got, err := vault.Decrypt(key, ciphertext)
		require.NoError(t, err)
		require.Equal(t, plaintext, string(got))
	}
}

func TestEncrypt_FreshNonce(t *testing.T) {
	key, err := vault.DeriveKey(secret, 7)
	require.NoError(t, err)

	a, err := vault.Encrypt(key, []byte("same plaintext"))
	require.NoError(t, err)
	b, err := vault.Encrypt(key, []byte("same plaintext"))
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	key, err := vault.DeriveKey(secret, 7)
	require.NoError(t, err)

	ciphertext, err := vault.Encrypt(key, []byte("user@example.com"))
	require.NoError(t, err)

	// flipping any single byte must fail authentication
	for i := range ciphertext {
		tampered := make([]byte, len(ciphertext))
		copy(tampered, ciphertext)
		tampered[i] ^= 0x01

		_, err := vault.Decrypt(key, tampered)
		require.Error(t, err, "byte %d", i)
		require.True(t, errors.Is(err, serrors.ErrDecryption), "byte %d", i)
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	key, err := vault.DeriveKey(secret, 7)
	require.NoError(t, err)
	other, err := vault.DeriveKey(secret, 8)
	require.NoError(t, err)

	ciphertext, err := vault.Encrypt(key, []byte("user@example.com"))
	require.NoError(t, err)

	_, err = vault.Decrypt(other, ciphertext)
	require.True(t, errors.Is(err, serrors.ErrDecryption))
}

func TestDecrypt_TooShort(t *testing.T) {
	key, err := vault.DeriveKey(secret, domain.UserID(7))
	require.NoError(t, err)

	_, err = vault.Decrypt(key, []byte{0x01, 0x02})
	require.True(t, errors.Is(err, serrors.ErrDecryption))
}
