// Package vault is the symmetric encryption boundary for stored account
// credentials. Secrets are sealed with AES-256-GCM under a process-wide key
// supplied at startup; the key may only change between restarts.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/minhvu-dev/accountshop-backend/pkg/config"
	pkgerrors "github.com/minhvu-dev/accountshop-backend/pkg/errors"
)

// RedactedPlaceholder is what callers render when a stored secret cannot be
// decrypted. Legacy or tampered ciphertext must never take down a credential
// view.
const RedactedPlaceholder = "[decryption failed]"

// Vault seals and opens credential strings. It holds no persistent state.
type Vault struct {
	aead cipher.AEAD
}

// New builds a vault from the configured base64 key. The decoded key must be
// 16, 24, or 32 bytes; production deployments use 32 (AES-256).
func New(cfg config.VaultConfig) (*Vault, error) {
	if cfg.Key == "" {
		return nil, fmt.Errorf("vault key is required")
	}
	key, err := base64.StdEncoding.DecodeString(cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("decoding vault key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("building cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("building gcm: %w", err)
	}
	return &Vault{aead: aead}, nil
}

// Encrypt seals the plaintext under a fresh random nonce and returns the
// nonce-prefixed ciphertext, base64 encoded for text-column storage.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a ciphertext produced by Encrypt. Any tampering, truncation,
// or foreign-key ciphertext surfaces as a typed decryption error, never a
// panic or silent garbage.
func (v *Vault) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDecryption, err, "ciphertext is not valid base64")
	}
	nonceSize := v.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", pkgerrors.New(pkgerrors.CodeDecryption, "ciphertext shorter than nonce")
	}
	nonce, sealed := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := v.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDecryption, err, "opening ciphertext")
	}
	return string(plaintext), nil
}

// DecryptOrRedact opens the ciphertext and substitutes the redaction
// placeholder on failure, for callers that must keep rendering.
func (v *Vault) DecryptOrRedact(ciphertext string) string {
	plaintext, err := v.Decrypt(ciphertext)
	if err != nil {
		return RedactedPlaceholder
	}
	return plaintext
}
