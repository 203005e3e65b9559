package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/apperror"
)

const signingKeyBits = 2048

func generateSigningKey() (*rsa.PrivateKey, error) {
	priv, err := rsa.GenerateKey(rand.Reader, signingKeyBits)
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return priv, nil
}

// Signer holds the service's asymmetric signing key pair. It signs outgoing
// payloads (audit entry hashes, webhook bodies) and verifies partner-supplied
// signatures. The pair is loaded from disk at startup and persisted on first
// generation so signatures stay verifiable across restarts.
type Signer struct {
	priv *rsa.PrivateKey
}

// LoadOrCreateSigner reads the PEM-encoded signing key at path, generating
// and persisting a new 2048-bit pair when the file does not exist yet.
func LoadOrCreateSigner(path string, logger zerolog.Logger) (*Signer, error) {
	pemData, err := os.ReadFile(path)
	switch {
	case err == nil:
		priv, parseErr := ParsePrivateKeyPEM(pemData)
		if parseErr != nil {
			return nil, apperror.KeyMaterial("signing key at %s: %v", path, parseErr)
		}
		logger.Info().Str("path", path).Msg("signing key loaded")
		return &Signer{priv: priv}, nil

	case errors.Is(err, fs.ErrNotExist):
		priv, genErr := generateSigningKey()
		if genErr != nil {
			return nil, genErr
		}
		if dir := filepath.Dir(path); dir != "." {
			if mkErr := os.MkdirAll(dir, 0o700); mkErr != nil {
				return nil, fmt.Errorf("create signing key dir: %w", mkErr)
			}
		}
		if writeErr := os.WriteFile(path, MarshalPrivateKeyPEM(priv), 0o600); writeErr != nil {
			return nil, fmt.Errorf("persist signing key: %w", writeErr)
		}
		logger.Warn().Str("path", path).Msg("signing key not found; generated and persisted a new pair")
		return &Signer{priv: priv}, nil

	default:
		return nil, apperror.KeyMaterial("read signing key at %s: %v", path, err)
	}
}

// NewEphemeralSigner generates an in-memory pair. Test use only; production
// signers must come from LoadOrCreateSigner so the chain survives restarts.
func NewEphemeralSigner() (*Signer, error) {
	priv, err := generateSigningKey()
	if err != nil {
		return nil, err
	}
	return &Signer{priv: priv}, nil
}

// Sign returns the base64 RSA signature of data's SHA-256 digest.
func (s *Signer) Sign(data []byte) (string, error) {
	sig, err := signDigest(s.priv, HashBytes(data))
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Verify checks a base64 signature produced by Sign against this service's
// public key.
func (s *Signer) Verify(data []byte, signature string) error {
	return VerifyWithKey(&s.priv.PublicKey, data, signature)
}

// PublicKey returns the signing public key.
func (s *Signer) PublicKey() *rsa.PublicKey {
	return &s.priv.PublicKey
}

// PublicKeyPEM returns the signing public key as PKIX PEM for distribution
// to partners.
func (s *Signer) PublicKeyPEM() (string, error) {
	return MarshalPublicKeyPEM(&s.priv.PublicKey)
}

// VerifyWithKey checks a base64 RSA signature over data's SHA-256 digest
// against an arbitrary public key, such as a partner's stored key.
func VerifyWithKey(pub *rsa.PublicKey, data []byte, signature string) error {
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return &apperror.InvalidSignatureError{Msg: "signature is not valid base64"}
	}
	if err := verifyDigest(pub, HashBytes(data), sig); err != nil {
		return &apperror.InvalidSignatureError{}
	}
	return nil
}
