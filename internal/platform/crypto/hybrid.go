package crypto

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/apperror"
)

// Algorithm tags carried inside envelopes. Decrypt paths switch on these
// exhaustively; an unrecognized tag is a DecryptionError, not a guess.
const (
	AlgorithmHybrid  = "RSA-OAEP-AES-256-GCM"
	AlgorithmTempKey = "AES-256-GCM-TEMP-KEY"

	// EncryptionTypeSecure marks an envelope whose payload is a temp-key
	// inner payload rather than a raw blob.
	EncryptionTypeSecure = "secure-temp-key"
)

// Envelope is the partner-facing hybrid ciphertext: the payload sealed under
// a fresh AES key, and that AES key wrapped under the partner's RSA public
// key with OAEP. All binary fields are base64-encoded for transport.
type Envelope struct {
	Ciphertext     string `json:"encryptedData"`
	IV             string `json:"iv"`
	AuthTag        string `json:"authTag"`
	EncryptedKey   string `json:"encryptedKey"`
	Algorithm      string `json:"algorithm"`
	EncryptionType string `json:"encryptionType,omitempty"`
}

// innerPayload is the plaintext of a secure-per-request envelope: each field
// encrypted under one ephemeral key, plus that key itself. The whole struct
// is JSON-serialized and sealed by the outer hybrid envelope, so the temp
// key only ever travels RSA-wrapped.
type innerPayload struct {
	EncryptedFields map[string]EncryptedField `json:"encryptedFields"`
	TempKey         string                    `json:"tempKey"`
	Algorithm       string                    `json:"algorithm"`
}

// HybridEncryptor builds and opens partner-facing envelopes. It holds no
// state; every call generates fresh key material.
type HybridEncryptor struct{}

// NewHybridEncryptor creates a HybridEncryptor.
func NewHybridEncryptor() *HybridEncryptor {
	return &HybridEncryptor{}
}

// EncryptWithPublicKey seals an arbitrary-length blob for the holder of the
// given RSA public key. RSA alone cannot carry the payload, so the envelope
// bounds the asymmetric operation to the fixed-size AES key.
func (h *HybridEncryptor) EncryptWithPublicKey(blob []byte, pub *rsa.PublicKey) (*Envelope, error) {
	key, err := RandomKey()
	if err != nil {
		return nil, err
	}
	iv, err := RandomNonce()
	if err != nil {
		return nil, err
	}
	ciphertext, tag, err := sealDetached(key, iv, blob)
	if err != nil {
		return nil, fmt.Errorf("hybrid encrypt payload: %w", err)
	}
	wrapped, err := wrapKey(pub, key)
	if err != nil {
		return nil, fmt.Errorf("hybrid wrap key: %w", err)
	}
	return &Envelope{
		Ciphertext:   base64.StdEncoding.EncodeToString(ciphertext),
		IV:           base64.StdEncoding.EncodeToString(iv),
		AuthTag:      base64.StdEncoding.EncodeToString(tag),
		EncryptedKey: base64.StdEncoding.EncodeToString(wrapped),
		Algorithm:    AlgorithmHybrid,
	}, nil
}

// DecryptWithPrivateKey opens a standard hybrid envelope. Failures name the
// stage: key unwrap, payload decode, or payload decrypt.
func (h *HybridEncryptor) DecryptWithPrivateKey(env *Envelope, priv *rsa.PrivateKey) ([]byte, error) {
	if env.Algorithm != AlgorithmHybrid {
		return nil, apperror.Decryption("envelope", fmt.Errorf("unsupported algorithm %q", env.Algorithm))
	}
	wrapped, err := base64.StdEncoding.DecodeString(env.EncryptedKey)
	if err != nil {
		return nil, apperror.Decryption("envelope decode", err)
	}
	key, err := unwrapKey(priv, wrapped)
	if err != nil {
		return nil, apperror.Decryption("unwrap key", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return nil, apperror.Decryption("envelope decode", err)
	}
	iv, err := base64.StdEncoding.DecodeString(env.IV)
	if err != nil {
		return nil, apperror.Decryption("envelope decode", err)
	}
	tag, err := base64.StdEncoding.DecodeString(env.AuthTag)
	if err != nil {
		return nil, apperror.Decryption("envelope decode", err)
	}
	blob, err := openDetached(key, iv, ciphertext, tag)
	if err != nil {
		return nil, apperror.Decryption("decrypt payload", err)
	}
	return blob, nil
}

// EncryptFieldsSecure seals a field map with a single-use ephemeral AES key:
// every field is encrypted independently under the one temp key, then the
// temp key and the field ciphertexts travel together inside a standard
// hybrid envelope. The bank's static field key is never shared; only the
// target partner's private key can unseal the request.
func (h *HybridEncryptor) EncryptFieldsSecure(fields map[string]string, pub *rsa.PublicKey) (*Envelope, error) {
	tempKey, err := RandomKey()
	if err != nil {
		return nil, err
	}
	iv, err := RandomNonce()
	if err != nil {
		return nil, err
	}

	encrypted := make(map[string]EncryptedField, len(fields))
	for name, value := range fields {
		ciphertext, tag, err := sealDetached(tempKey, iv, []byte(value))
		if err != nil {
			return nil, fmt.Errorf("secure encrypt field %s: %w", name, err)
		}
		encrypted[name] = EncryptedField{
			Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
			IV:         base64.StdEncoding.EncodeToString(iv),
			AuthTag:    base64.StdEncoding.EncodeToString(tag),
			Digest:     Hash(value),
		}
	}

	inner := innerPayload{
		EncryptedFields: encrypted,
		TempKey:         base64.StdEncoding.EncodeToString(tempKey),
		Algorithm:       AlgorithmTempKey,
	}
	blob, err := json.Marshal(inner)
	if err != nil {
		return nil, fmt.Errorf("marshal inner payload: %w", err)
	}

	env, err := h.EncryptWithPublicKey(blob, pub)
	if err != nil {
		return nil, err
	}
	env.EncryptionType = EncryptionTypeSecure
	return env, nil
}

// DecryptFieldsSecure is the mirror of EncryptFieldsSecure: unseal the outer
// envelope, recover the temp key, and AEAD-decrypt each field with its own
// IV and tag.
func (h *HybridEncryptor) DecryptFieldsSecure(env *Envelope, priv *rsa.PrivateKey) (map[string]string, error) {
	blob, err := h.DecryptWithPrivateKey(env, priv)
	if err != nil {
		return nil, err
	}

	var inner innerPayload
	if err := json.Unmarshal(blob, &inner); err != nil {
		return nil, apperror.Decryption("inner payload", err)
	}
	if inner.Algorithm != AlgorithmTempKey {
		return nil, apperror.Decryption("inner payload", fmt.Errorf("unsupported algorithm %q", inner.Algorithm))
	}

	tempKey, err := base64.StdEncoding.DecodeString(inner.TempKey)
	if err != nil {
		return nil, apperror.Decryption("inner payload", err)
	}

	fields := make(map[string]string, len(inner.EncryptedFields))
	for name, f := range inner.EncryptedFields {
		ciphertext, err := base64.StdEncoding.DecodeString(f.Ciphertext)
		if err != nil {
			return nil, apperror.Decryption("field "+name, err)
		}
		iv, err := base64.StdEncoding.DecodeString(f.IV)
		if err != nil {
			return nil, apperror.Decryption("field "+name, err)
		}
		tag, err := base64.StdEncoding.DecodeString(f.AuthTag)
		if err != nil {
			return nil, apperror.Decryption("field "+name, err)
		}
		plaintext, err := openDetached(tempKey, iv, ciphertext, tag)
		if err != nil {
			return nil, apperror.Decryption("field "+name, err)
		}
		fields[name] = string(plaintext)
	}
	return fields, nil
}
