package crypto

import (
	"encoding/hex"
	"fmt"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/apperror"
)

// EncryptedField is the stored form of a single PII attribute: detached
// AES-256-GCM ciphertext plus a deterministic digest of the plaintext used
// for equality search without decryption. All byte fields are hex-encoded
// for column storage. Instances are replaced wholesale, never mutated.
type EncryptedField struct {
	Ciphertext string `db:"ciphertext" json:"ciphertext"`
	IV         string `db:"iv" json:"iv"`
	AuthTag    string `db:"auth_tag" json:"authTag"`
	Digest     string `db:"digest" json:"digest"`
}

// IsZero reports whether the field holds no ciphertext.
func (f EncryptedField) IsZero() bool {
	return f.Ciphertext == "" && f.IV == "" && f.AuthTag == ""
}

// FieldEncryptor encrypts and decrypts individual PII fields with the
// server-wide static key. The key is loaded once at startup and read-only
// afterward, so a single instance is safe for concurrent use.
type FieldEncryptor struct {
	key []byte
}

// NewFieldEncryptor creates a FieldEncryptor with the given 32-byte AES-256
// key. A key of any other length is a startup-fatal KeyMaterialError.
func NewFieldEncryptor(key []byte) (*FieldEncryptor, error) {
	if len(key) != KeySize {
		return nil, apperror.KeyMaterial("field encryption key must be %d bytes, got %d", KeySize, len(key))
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &FieldEncryptor{key: k}, nil
}

// EncryptField encrypts a plaintext field value with a fresh random IV and
// computes the plaintext's search digest.
func (e *FieldEncryptor) EncryptField(plaintext string) (EncryptedField, error) {
	iv, err := RandomNonce()
	if err != nil {
		return EncryptedField{}, err
	}
	ciphertext, tag, err := sealDetached(e.key, iv, []byte(plaintext))
	if err != nil {
		return EncryptedField{}, fmt.Errorf("encrypt field: %w", err)
	}
	return EncryptedField{
		Ciphertext: hex.EncodeToString(ciphertext),
		IV:         hex.EncodeToString(iv),
		AuthTag:    hex.EncodeToString(tag),
		Digest:     Hash(plaintext),
	}, nil
}

// DecryptField recovers the plaintext of an EncryptedField. A tag mismatch
// (tampered ciphertext, wrong key, corrupted IV) is a hard DecryptionError,
// never silent pass-through.
func (e *FieldEncryptor) DecryptField(f EncryptedField) (string, error) {
	ciphertext, err := hex.DecodeString(f.Ciphertext)
	if err != nil {
		return "", apperror.Decryption("field decode", err)
	}
	iv, err := hex.DecodeString(f.IV)
	if err != nil {
		return "", apperror.Decryption("field decode", err)
	}
	tag, err := hex.DecodeString(f.AuthTag)
	if err != nil {
		return "", apperror.Decryption("field decode", err)
	}
	if len(iv) != NonceSize {
		return "", apperror.Decryption("field decode", fmt.Errorf("iv must be %d bytes, got %d", NonceSize, len(iv)))
	}
	plaintext, err := openDetached(e.key, iv, ciphertext, tag)
	if err != nil {
		return "", apperror.Decryption("field decrypt", err)
	}
	return string(plaintext), nil
}

// CreateHash returns the search digest for a plaintext value. It is a pure
// function of the input and independent of the encryption key, so a stored
// digest stays stable across re-encryption.
func (e *FieldEncryptor) CreateHash(text string) string {
	return Hash(text)
}
