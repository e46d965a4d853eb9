// Package crypto provides the reversible encryption capability used to
// protect stored password values.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Service encrypts and decrypts opaque string values.
type Service interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// keySalt is a fixed application-scope salt for deriving the AES key from
// the configured secret. The secret itself is the confidential input.
var keySalt = []byte("manager.crypto.v1")

const pbkdf2Iterations = 4096

// aesService implements Service with AES-256-GCM. The random nonce is
// prefixed to the ciphertext, and the result is base64-encoded.
type aesService struct {
	aead cipher.AEAD
}

// NewAES creates a Service whose key is derived from secret via PBKDF2.
func NewAES(secret string) (Service, error) {
	if secret == "" {
		return nil, errors.New("crypto secret must not be empty")
	}

	key := pbkdf2.Key([]byte(secret), keySalt, pbkdf2Iterations, 32, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &aesService{aead: aead}, nil
}

// Encrypt seals plaintext with a fresh random nonce and returns
// base64(nonce || ciphertext).
func (s *aesService) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. It fails if the value is malformed or was
// produced with a different key.
func (s *aesService) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}

	nonceSize := s.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	plain, err := s.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
