package crypto

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/apperror"
)

func generateTestKeyPair(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key pair: %v", err)
	}
	return priv
}

func TestHybrid_RoundTrip(t *testing.T) {
	h := NewHybridEncryptor()
	priv := generateTestKeyPair(t)

	blobs := [][]byte{
		[]byte(`{"email":"a@example.com"}`),
		[]byte(""),
		bytes.Repeat([]byte("payload larger than any RSA modulus "), 200),
	}

	for _, blob := range blobs {
		env, err := h.EncryptWithPublicKey(blob, &priv.PublicKey)
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		if env.Algorithm != AlgorithmHybrid {
			t.Errorf("algorithm = %q, want %q", env.Algorithm, AlgorithmHybrid)
		}

		out, err := h.DecryptWithPrivateKey(env, priv)
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if !bytes.Equal(out, blob) {
			t.Errorf("round-trip mismatch: got %d bytes, want %d", len(out), len(blob))
		}
	}
}

func TestHybrid_WrongPrivateKey(t *testing.T) {
	h := NewHybridEncryptor()
	priv := generateTestKeyPair(t)
	other := generateTestKeyPair(t)

	env, _ := h.EncryptWithPublicKey([]byte("secret"), &priv.PublicKey)

	_, err := h.DecryptWithPrivateKey(env, other)
	if err == nil {
		t.Fatal("decryption with wrong private key must fail")
	}
	var decErr *apperror.DecryptionError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected DecryptionError, got %T", err)
	}
	if decErr.Stage != "unwrap key" {
		t.Errorf("stage = %q, want unwrap key", decErr.Stage)
	}
}

func TestHybrid_TamperedCiphertext(t *testing.T) {
	h := NewHybridEncryptor()
	priv := generateTestKeyPair(t)

	env, _ := h.EncryptWithPublicKey([]byte("secret"), &priv.PublicKey)
	raw, _ := base64.StdEncoding.DecodeString(env.Ciphertext)
	raw[0] ^= 0x01
	env.Ciphertext = base64.StdEncoding.EncodeToString(raw)

	_, err := h.DecryptWithPrivateKey(env, priv)
	var decErr *apperror.DecryptionError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected DecryptionError, got %v", err)
	}
	if decErr.Stage != "decrypt payload" {
		t.Errorf("stage = %q, want decrypt payload", decErr.Stage)
	}
}

func TestHybrid_UnsupportedAlgorithm(t *testing.T) {
	h := NewHybridEncryptor()
	priv := generateTestKeyPair(t)

	env, _ := h.EncryptWithPublicKey([]byte("secret"), &priv.PublicKey)
	env.Algorithm = "ROT13"

	if _, err := h.DecryptWithPrivateKey(env, priv); err == nil {
		t.Fatal("unknown algorithm tag must be rejected")
	}
}

func TestSecureEnvelope_RoundTrip(t *testing.T) {
	h := NewHybridEncryptor()
	priv := generateTestKeyPair(t)

	fields := map[string]string{
		"email": "customer@example.com",
		"phone": "+1 555 867 5309",
		"ssn":   "123-45-6789",
	}

	env, err := h.EncryptFieldsSecure(fields, &priv.PublicKey)
	if err != nil {
		t.Fatalf("encrypt secure: %v", err)
	}
	if env.EncryptionType != EncryptionTypeSecure {
		t.Errorf("encryptionType = %q, want %q", env.EncryptionType, EncryptionTypeSecure)
	}

	out, err := h.DecryptFieldsSecure(env, priv)
	if err != nil {
		t.Fatalf("decrypt secure: %v", err)
	}
	if !reflect.DeepEqual(out, fields) {
		t.Errorf("round-trip mismatch: got %v, want %v", out, fields)
	}
}

// Two secure envelopes over identical input must carry distinct ephemeral
// keys: per-disclosure keys are single-use.
func TestSecureEnvelope_EphemeralKeyNeverReused(t *testing.T) {
	h := NewHybridEncryptor()
	priv := generateTestKeyPair(t)

	fields := map[string]string{"phone": "+1 555 0000"}

	extractTempKey := func(env *Envelope) string {
		t.Helper()
		blob, err := h.DecryptWithPrivateKey(env, priv)
		if err != nil {
			t.Fatalf("open outer envelope: %v", err)
		}
		var inner struct {
			TempKey string `json:"tempKey"`
		}
		if err := json.Unmarshal(blob, &inner); err != nil {
			t.Fatalf("unmarshal inner payload: %v", err)
		}
		return inner.TempKey
	}

	envA, _ := h.EncryptFieldsSecure(fields, &priv.PublicKey)
	envB, _ := h.EncryptFieldsSecure(fields, &priv.PublicKey)

	if extractTempKey(envA) == extractTempKey(envB) {
		t.Fatal("ephemeral keys must differ across calls")
	}
}

func TestSecureEnvelope_SharedIVAcrossFields(t *testing.T) {
	h := NewHybridEncryptor()
	priv := generateTestKeyPair(t)

	env, _ := h.EncryptFieldsSecure(map[string]string{
		"a": "one", "b": "two", "c": "three",
	}, &priv.PublicKey)

	blob, err := h.DecryptWithPrivateKey(env, priv)
	if err != nil {
		t.Fatalf("open outer envelope: %v", err)
	}
	var inner struct {
		EncryptedFields map[string]EncryptedField `json:"encryptedFields"`
		Algorithm       string                    `json:"algorithm"`
	}
	if err := json.Unmarshal(blob, &inner); err != nil {
		t.Fatalf("unmarshal inner payload: %v", err)
	}
	if inner.Algorithm != AlgorithmTempKey {
		t.Errorf("inner algorithm = %q, want %q", inner.Algorithm, AlgorithmTempKey)
	}

	var iv string
	for _, f := range inner.EncryptedFields {
		if iv == "" {
			iv = f.IV
		} else if f.IV != iv {
			t.Fatal("all fields in one request share the per-disclosure IV")
		}
	}
}

func TestSecureEnvelope_InnerAlgorithmChecked(t *testing.T) {
	h := NewHybridEncryptor()
	priv := generateTestKeyPair(t)

	// Build an outer envelope around an inner payload with a bad tag.
	blob, _ := json.Marshal(innerPayload{
		EncryptedFields: map[string]EncryptedField{},
		TempKey:         base64.StdEncoding.EncodeToString(make([]byte, KeySize)),
		Algorithm:       "AES-128-CBC",
	})
	env, _ := h.EncryptWithPublicKey(blob, &priv.PublicKey)

	if _, err := h.DecryptFieldsSecure(env, priv); err == nil {
		t.Fatal("unsupported inner algorithm must be rejected")
	}
}
