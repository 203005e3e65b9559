package customer

import (
	"time"

	"github.com/google/uuid"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/platform/crypto"
)

// Shareable field names, as partners and consents refer to them.
const (
	FieldFirstName   = "firstName"
	FieldLastName    = "lastName"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldSSN         = "ssn"
	FieldAddress     = "address"
	FieldDateOfBirth = "dateOfBirth"
)

// AllFields lists every shareable field in canonical order.
var AllFields = []string{
	FieldFirstName, FieldLastName, FieldEmail, FieldPhone,
	FieldSSN, FieldAddress, FieldDateOfBirth,
}

var validFields = func() map[string]bool {
	m := make(map[string]bool, len(AllFields))
	for _, f := range AllFields {
		m[f] = true
	}
	return m
}()

// IsValidField reports whether name is a shareable field.
func IsValidField(name string) bool {
	return validFields[name]
}

// Customer holds one customer's identity data. Every sensitive field is
// encrypted at rest; plaintext exists only transiently inside the service
// layer. EmailDigest supports equality lookup without decryption.
type Customer struct {
	ID          uuid.UUID             `db:"id" json:"id"`
	FirstName   crypto.EncryptedField `db:"first_name" json:"firstName"`
	LastName    crypto.EncryptedField `db:"last_name" json:"lastName"`
	Email       crypto.EncryptedField `db:"email" json:"email"`
	Phone       crypto.EncryptedField `db:"phone" json:"phone"`
	SSN         crypto.EncryptedField `db:"ssn" json:"ssn"`
	Address     crypto.EncryptedField `db:"address" json:"address"`
	DateOfBirth crypto.EncryptedField `db:"date_of_birth" json:"dateOfBirth"`
	EmailDigest string                `db:"email_digest" json:"-"`
	CreatedAt   time.Time             `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time             `db:"updated_at" json:"updatedAt"`
}

// field returns the stored ciphertext for a shareable field name.
func (c *Customer) field(name string) (crypto.EncryptedField, bool) {
	switch name {
	case FieldFirstName:
		return c.FirstName, true
	case FieldLastName:
		return c.LastName, true
	case FieldEmail:
		return c.Email, true
	case FieldPhone:
		return c.Phone, true
	case FieldSSN:
		return c.SSN, true
	case FieldAddress:
		return c.Address, true
	case FieldDateOfBirth:
		return c.DateOfBirth, true
	}
	return crypto.EncryptedField{}, false
}

// Profile is the plaintext shape accepted on create and update and returned
// from authorized profile reads. Empty strings mean "not provided".
type Profile struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	SSN         string `json:"ssn"`
	Address     string `json:"address"`
	DateOfBirth string `json:"dateOfBirth"`
}

// fieldValues maps field names to the profile's plaintext values.
func (p *Profile) fieldValues() map[string]string {
	return map[string]string{
		FieldFirstName:   p.FirstName,
		FieldLastName:    p.LastName,
		FieldEmail:       p.Email,
		FieldPhone:       p.Phone,
		FieldSSN:         p.SSN,
		FieldAddress:     p.Address,
		FieldDateOfBirth: p.DateOfBirth,
	}
}
