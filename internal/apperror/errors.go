// Package apperror defines the error taxonomy shared by the service layer.
// Handlers translate these into HTTP responses at the request boundary;
// internal detail (key material, ciphertext fragments) never leaves a service
// inside one of these errors.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ValidationError reports malformed or missing input, such as a consent
// duration below the configured floor.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing customer, partner, consent, or data request.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// AuthorizationError reports a role or ownership mismatch.
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

func Authorization(format string, args ...interface{}) error {
	return &AuthorizationError{Msg: fmt.Sprintf(format, args...)}
}

// ContractNotApprovedError reports that the partner has no admin-approved
// contract and therefore cannot be the target of consents or disclosures.
type ContractNotApprovedError struct {
	PartnerID string
}

func (e *ContractNotApprovedError) Error() string {
	return fmt.Sprintf("partner %s has no approved contract", e.PartnerID)
}

// ConsentExpiredError reports that a consent's expiry has passed.
type ConsentExpiredError struct {
	ConsentID string
}

func (e *ConsentExpiredError) Error() string {
	return fmt.Sprintf("consent %s has expired", e.ConsentID)
}

// FieldsNotAllowedError reports requested fields outside the consent's
// allowed set. Fields is sorted for stable messages.
type FieldsNotAllowedError struct {
	Fields []string
}

func (e *FieldsNotAllowedError) Error() string {
	return fmt.Sprintf("fields not covered by consent: %s", strings.Join(e.Fields, ", "))
}

// InvalidSignatureError reports a partner request signature that does not
// verify against the partner's stored public key.
type InvalidSignatureError struct {
	Msg string
}

func (e *InvalidSignatureError) Error() string {
	if e.Msg == "" {
		return "request signature verification failed"
	}
	return e.Msg
}

// DecryptionError reports an AEAD tag mismatch, a malformed envelope, or an
// unsupported algorithm tag. Stage names which step of a multi-stage
// operation failed (for example "unwrap key" vs "decrypt payload").
type DecryptionError struct {
	Stage string
	Err   error
}

func (e *DecryptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decryption failed at %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("decryption failed at %s", e.Stage)
}

func (e *DecryptionError) Unwrap() error { return e.Err }

func Decryption(stage string, err error) error {
	return &DecryptionError{Stage: stage, Err: err}
}

// KeyMaterialError reports missing or malformed key material, either at
// startup or when a key is needed for an operation.
type KeyMaterialError struct {
	Msg string
}

func (e *KeyMaterialError) Error() string { return e.Msg }

func KeyMaterial(format string, args ...interface{}) error {
	return &KeyMaterialError{Msg: fmt.Sprintf(format, args...)}
}

// HTTPStatus maps a taxonomy error to the status code the handler should
// return. Wrapped errors are unwrapped; unknown errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.As(err, new(*ValidationError)):
		return http.StatusBadRequest
	case errors.As(err, new(*NotFoundError)):
		return http.StatusNotFound
	case errors.As(err, new(*AuthorizationError)),
		errors.As(err, new(*ContractNotApprovedError)),
		errors.As(err, new(*ConsentExpiredError)),
		errors.As(err, new(*FieldsNotAllowedError)):
		return http.StatusForbidden
	case errors.As(err, new(*InvalidSignatureError)):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the safe, client-visible message for an error.
// Decryption and key-material failures are collapsed to a generic message so
// no internal detail leaks.
func ClientMessage(err error) string {
	if errors.As(err, new(*DecryptionError)) || errors.As(err, new(*KeyMaterialError)) {
		return "unable to process request"
	}
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
