package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"finance_tracker/internal/apperr"
)

var (
	ErrEncryption      = apperr.New(apperr.KindEncryption, "encryption_failed", "Failed to encrypt card number")
	ErrDecryption      = apperr.New(apperr.KindDecryption, "decryption_failed", "Failed to decrypt card number")
	ErrInvalidEncoding = apperr.New(apperr.KindDecryption, "invalid_encoding", "Stored card envelope is malformed")
)

// Sealed is an AES-GCM envelope with every part base64 encoded.
type Sealed struct {
	CipherText string
	IV         string
	Tag        string
}

// DeriveKey turns an operator secret into a 32-byte AES-256 key. Rotating the
// secret makes every previously sealed value unreadable.
func DeriveKey(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// Envelope encrypts and decrypts short secrets such as card numbers.
type Envelope struct {
	aead cipher.AEAD
	rand io.Reader
}

// NewEnvelope builds an AES-256-GCM envelope keyed from secret.
func NewEnvelope(secret string) (*Envelope, error) {
	block, err := aes.NewCipher(DeriveKey(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Envelope{aead: aead, rand: rand.Reader}, nil
}

// Encrypt seals plainText under a fresh random nonce.
func (e *Envelope) Encrypt(plainText string) (*Sealed, error) {
	iv := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(e.rand, iv); err != nil {
		return nil, apperr.Wrap(ErrEncryption.Kind, ErrEncryption.Code, ErrEncryption.Message, err)
	}

	// Seal appends the tag to the ciphertext; it is stored separately.
	out := e.aead.Seal(nil, iv, []byte(plainText), nil)
	split := len(out) - e.aead.Overhead()

	return &Sealed{
		CipherText: base64.StdEncoding.EncodeToString(out[:split]),
		IV:         base64.StdEncoding.EncodeToString(iv),
		Tag:        base64.StdEncoding.EncodeToString(out[split:]),
	}, nil
}

// Decrypt verifies the tag and returns the plaintext. A tag mismatch means the
// record was tampered with or sealed under another key; it is not retryable.
func (e *Envelope) Decrypt(cipherText, iv, tag string) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(cipherText)
	if err != nil {
		return "", ErrInvalidEncoding
	}
	nonce, err := base64.StdEncoding.DecodeString(iv)
	if err != nil || len(nonce) != e.aead.NonceSize() {
		return "", ErrInvalidEncoding
	}
	tagBytes, err := base64.StdEncoding.DecodeString(tag)
	if err != nil || len(tagBytes) != e.aead.Overhead() {
		return "", ErrInvalidEncoding
	}

	sealed := make([]byte, 0, len(ct)+len(tagBytes))
	sealed = append(sealed, ct...)
	sealed = append(sealed, tagBytes...)

	plain, err := e.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryption
	}
	return string(plain), nil
}
