// Package vault derives per-user encryption keys from a shared secret and
// seals credential material with an authenticated cipher. It is a pure byte
// transformation layer: nothing here persists, logs or caches plaintext.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/crypto/hkdf"

	"aimawatch/pkg/domain"
	"aimawatch/pkg/serrors"
)

const (
	// keySize is the AES-256 key length produced by DeriveKey.
	keySize = 32
	// nonceSize is the GCM nonce length prepended to every sealed box.
	nonceSize = 12
)

// DeriveKey derives a deterministic 32-byte key for the given user from the
// shared secret using HKDF-SHA256, with the decimal user ID as the info
// string. The same secret and user always yield the same key; different users
// yield unrelated keys even under the same secret.
func DeriveKey(secret []byte, userID domain.UserID) ([]byte, error) {
	r := hkdf.New(sha256.New, secret, nil, []byte(strconv.FormatInt(int64(userID), 10)))

	key := make([]byte, keySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("could not derive key: %w", err)
	}

	return key, nil
}

// Encrypt seals the plaintext with AES-256-GCM under the given key. A fresh
// random nonce is generated per call and prepended to the returned ciphertext.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("could not generate nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a sealed box produced by Encrypt. Any tampering with the
// ciphertext, a truncated input or a wrong key yields serrors.ErrDecryption;
// garbage plaintext is never returned.
func Decrypt(key, ciphertext []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < nonceSize {
		return nil, serrors.With(serrors.ErrDecryption, "ciphertext too short")
	}

	nonce, box := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := aead.Open(nil, nonce, box, nil)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrDecryption, err, "could not authenticate ciphertext")
	}

	return plaintext, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("could not create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("could not create GCM: %w", err)
	}

	return aead, nil
}
