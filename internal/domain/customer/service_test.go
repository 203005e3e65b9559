package customer

import (
	"context"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/apperror"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/platform/crypto"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	key := make([]byte, crypto.KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("generate key: %v", err)
	}
	enc, err := crypto.NewFieldEncryptor(key)
	if err != nil {
		t.Fatalf("create encryptor: %v", err)
	}
	return NewService(NewMemRepo(), enc, nil)
}

func fullProfile() *Profile {
	return &Profile{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		Phone:       "+1-555-0100",
		SSN:         "123-45-6789",
		Address:     "12 Analytical Way",
		DateOfBirth: "1815-12-10",
	}
}

func TestCreateCustomer_EncryptsEveryField(t *testing.T) {
	svc := newTestService(t)
	c, err := svc.CreateCustomer(context.Background(), fullProfile(), "admin", "admin-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if c.SSN.IsZero() || c.Email.IsZero() || c.FirstName.IsZero() {
		t.Fatal("encrypted fields missing")
	}
	if c.SSN.Ciphertext == "123-45-6789" {
		t.Error("ssn stored in plaintext")
	}
	if c.EmailDigest != crypto.Hash("ada@example.com") {
		t.Error("email digest mismatch")
	}
}

func TestCreateCustomer_RequiresEmail(t *testing.T) {
	svc := newTestService(t)
	p := fullProfile()
	p.Email = ""
	_, err := svc.CreateCustomer(context.Background(), p, "admin", "admin-1")
	var ve *apperror.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestGetProfile_RoundTrip(t *testing.T) {
	svc := newTestService(t)
	in := fullProfile()
	c, err := svc.CreateCustomer(context.Background(), in, "admin", "admin-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	out, err := svc.GetProfile(context.Background(), c.ID, "admin", "admin-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if *out != *in {
		t.Errorf("profile round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestDecryptFields_SubsetOnly(t *testing.T) {
	svc := newTestService(t)
	c, err := svc.CreateCustomer(context.Background(), fullProfile(), "admin", "admin-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	values, err := svc.DecryptFields(c, []string{FieldPhone, FieldEmail})
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("got %d fields, want 2", len(values))
	}
	if values[FieldPhone] != "+1-555-0100" || values[FieldEmail] != "ada@example.com" {
		t.Errorf("unexpected values: %v", values)
	}
	if _, ok := values[FieldSSN]; ok {
		t.Error("ssn decrypted without being requested")
	}
}

func TestDecryptFields_UnknownFieldRejected(t *testing.T) {
	svc := newTestService(t)
	c, err := svc.CreateCustomer(context.Background(), fullProfile(), "admin", "admin-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.DecryptFields(c, []string{"passportNumber"})
	var ve *apperror.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestDecryptFields_SkipsUnprovidedField(t *testing.T) {
	svc := newTestService(t)
	p := fullProfile()
	p.SSN = ""
	c, err := svc.CreateCustomer(context.Background(), p, "admin", "admin-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	values, err := svc.DecryptFields(c, []string{FieldSSN, FieldEmail})
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if _, ok := values[FieldSSN]; ok {
		t.Error("absent field appeared in output")
	}
	if values[FieldEmail] != "ada@example.com" {
		t.Error("provided field missing from output")
	}
}

func TestGetCustomerByEmail(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.CreateCustomer(context.Background(), fullProfile(), "admin", "admin-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := svc.GetCustomerByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found.ID != created.ID {
		t.Error("digest lookup resolved the wrong customer")
	}

	if _, err := svc.GetCustomerByEmail(context.Background(), "nobody@example.com"); err == nil {
		t.Error("unknown email resolved a customer")
	}
}

func TestUpdateCustomer_WholesaleReplace(t *testing.T) {
	svc := newTestService(t)
	c, err := svc.CreateCustomer(context.Background(), fullProfile(), "admin", "admin-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated := fullProfile()
	updated.Phone = "+1-555-0199"
	updated.SSN = "" // omitted on update clears the field
	if _, err := svc.UpdateCustomer(context.Background(), c.ID, updated, "admin", "admin-1"); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, err := svc.GetCustomer(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.SSN.IsZero() {
		t.Error("omitted field survived wholesale replace")
	}

	values, err := svc.DecryptFields(stored, []string{FieldPhone})
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if values[FieldPhone] != "+1-555-0199" {
		t.Errorf("phone = %q after update", values[FieldPhone])
	}
}
