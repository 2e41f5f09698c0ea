package vault

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/minhvu-dev/accountshop-backend/pkg/config"
	pkgerrors "github.com/minhvu-dev/accountshop-backend/pkg/errors"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("generate key: %v", err)
	}
	v, err := New(config.VaultConfig{Key: base64.StdEncoding.EncodeToString(key)})
	if err != nil {
		t.Fatalf("build vault: %v", err)
	}
	return v
}

func TestRoundTrip(t *testing.T) {
	v := newTestVault(t)
	plaintexts := []string{"", "hunter2", "tài khoản число 密码", "a very long credential string with spaces and symbols !@#$%"}
	for _, plaintext := range plaintexts {
		sealed, err := v.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("encrypt %q: %v", plaintext, err)
		}
		opened, err := v.Decrypt(sealed)
		if err != nil {
			t.Fatalf("decrypt %q: %v", plaintext, err)
		}
		if opened != plaintext {
			t.Fatalf("round trip mismatch: got %q want %q", opened, plaintext)
		}
	}
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	v := newTestVault(t)
	first, err := v.Encrypt("secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	second, err := v.Encrypt("secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if first == second {
		t.Fatal("expected fresh nonce per encryption")
	}
}

func TestDecryptRejectsForeignKeyCiphertext(t *testing.T) {
	sealed, err := newTestVault(t).Encrypt("secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	other := newTestVault(t)
	if _, err := other.Decrypt(sealed); !pkgerrors.HasCode(err, pkgerrors.CodeDecryption) {
		t.Fatalf("expected decryption error, got %v", err)
	}
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	v := newTestVault(t)
	sealed, err := v.Encrypt("secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(sealed)
	raw[len(raw)-1] ^= 0x01
	tampered := base64.StdEncoding.EncodeToString(raw)
	if _, err := v.Decrypt(tampered); !pkgerrors.HasCode(err, pkgerrors.CodeDecryption) {
		t.Fatalf("expected decryption error, got %v", err)
	}
}

func TestDecryptRejectsGarbage(t *testing.T) {
	v := newTestVault(t)
	for _, input := range []string{"not base64 !!!", "", base64.StdEncoding.EncodeToString([]byte("short"))} {
		if _, err := v.Decrypt(input); !pkgerrors.HasCode(err, pkgerrors.CodeDecryption) {
			t.Fatalf("expected decryption error for %q, got %v", input, err)
		}
	}
}

func TestDecryptOrRedact(t *testing.T) {
	v := newTestVault(t)
	if got := v.DecryptOrRedact("garbage"); got != RedactedPlaceholder {
		t.Fatalf("expected placeholder, got %q", got)
	}
	sealed, err := v.Encrypt("visible")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if got := v.DecryptOrRedact(sealed); got != "visible" {
		t.Fatalf("expected plaintext, got %q", got)
	}
}

func TestNewRejectsBadKeys(t *testing.T) {
	cases := []string{"", "!!!", base64.StdEncoding.EncodeToString([]byte("tooshort"))}
	for _, key := range cases {
		if _, err := New(config.VaultConfig{Key: key}); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}
