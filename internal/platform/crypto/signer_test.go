package crypto

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/apperror"
)

func TestSigner_SignVerify(t *testing.T) {
	s, err := NewEphemeralSigner()
	if err != nil {
		t.Fatalf("create signer: %v", err)
	}

	payload := []byte("audit entry hash material")
	sig, err := s.Sign(payload)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := s.Verify(payload, sig); err != nil {
		t.Errorf("valid signature should verify: %v", err)
	}
	if err := s.Verify([]byte("different payload"), sig); err == nil {
		t.Error("signature over different payload must not verify")
	}

	var sigErr *apperror.InvalidSignatureError
	if err := s.Verify(payload, "not-base64!!"); !errors.As(err, &sigErr) {
		t.Errorf("expected InvalidSignatureError for malformed signature, got %v", err)
	}
}

func TestLoadOrCreateSigner_PersistsAcrossRestarts(t *testing.T) {
	logger := zerolog.New(os.Stderr)
	path := filepath.Join(t.TempDir(), "keys", "signing.pem")

	first, err := LoadOrCreateSigner(path, logger)
	if err != nil {
		t.Fatalf("first start: %v", err)
	}

	sig, err := first.Sign([]byte("entry from before restart"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	// Simulates a process restart: the reloaded pair must still verify
	// signatures produced before it.
	second, err := LoadOrCreateSigner(path, logger)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if err := second.Verify([]byte("entry from before restart"), sig); err != nil {
		t.Errorf("reloaded signer must verify old signatures: %v", err)
	}
}

func TestLoadOrCreateSigner_CorruptKeyFile(t *testing.T) {
	logger := zerolog.New(os.Stderr)
	path := filepath.Join(t.TempDir(), "signing.pem")
	if err := os.WriteFile(path, []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadOrCreateSigner(path, logger)
	var keyErr *apperror.KeyMaterialError
	if !errors.As(err, &keyErr) {
		t.Fatalf("expected KeyMaterialError, got %v", err)
	}
}

func TestPublicKeyPEM_RoundTrip(t *testing.T) {
	s, err := NewEphemeralSigner()
	if err != nil {
		t.Fatalf("create signer: %v", err)
	}

	pemStr, err := s.PublicKeyPEM()
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}

	pub, err := ParsePublicKeyPEM(pemStr)
	if err != nil {
		t.Fatalf("parse public key: %v", err)
	}

	sig, _ := s.Sign([]byte("payload"))
	if err := VerifyWithKey(pub, []byte("payload"), sig); err != nil {
		t.Errorf("signature should verify against the exported key: %v", err)
	}
}

func TestParsePublicKeyPEM_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":     "",
		"not pem":   "-----BEGIN NOTHING",
		"wrong alg": "-----BEGIN CERTIFICATE-----\nAAAA\n-----END CERTIFICATE-----\n",
	}
	for name, pemStr := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParsePublicKeyPEM(pemStr); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}
