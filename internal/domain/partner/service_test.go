package partner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/apperror"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/domain/customer"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/platform/auth"
)

func newTestService() *Service {
	return NewService(NewMemRepo(), nil)
}

func registerTestPartner(t *testing.T, svc *Service) (*Partner, string) {
	t.Helper()
	p, rawKey, err := svc.RegisterPartner(context.Background(), "Acme Analytics", "https://acme.example/hook", "", "admin-1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return p, rawKey
}

func testDraft() *Contract {
	return &Contract{
		AllowedFields:       []string{customer.FieldPhone, customer.FieldEmail},
		Purpose:             "marketing analytics",
		RetentionPeriodDays: 90,
		LegalBasis:          "consent",
	}
}

func TestRegisterPartner_KeyShownOnceAndHashed(t *testing.T) {
	svc := newTestService()
	p, rawKey, err := svc.RegisterPartner(context.Background(), "Acme", "", "", "admin-1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !strings.HasPrefix(rawKey, apiKeyPrefix) {
		t.Errorf("raw key %q missing prefix", rawKey)
	}
	if p.APIKeyHash == rawKey {
		t.Error("raw key stored verbatim")
	}
	if p.APIKeyHash != auth.HashAPIKey(rawKey) {
		t.Error("stored hash does not match key")
	}
	if p.Status != StatusPending {
		t.Errorf("status = %q, want pending", p.Status)
	}
}

func TestRegisterPartner_RejectsBadPublicKey(t *testing.T) {
	svc := newTestService()
	_, _, err := svc.RegisterPartner(context.Background(), "Acme", "", "not a pem", "admin-1")
	var ve *apperror.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestSubmitContract_Validation(t *testing.T) {
	svc := newTestService()
	p, _ := registerTestPartner(t, svc)

	cases := []struct {
		name  string
		draft *Contract
	}{
		{"no fields", &Contract{Purpose: "x", RetentionPeriodDays: 1}},
		{"unknown field", &Contract{AllowedFields: []string{"passportNumber"}, Purpose: "x", RetentionPeriodDays: 1}},
		{"duplicate field", &Contract{AllowedFields: []string{customer.FieldPhone, customer.FieldPhone}, Purpose: "x", RetentionPeriodDays: 1}},
		{"no purpose", &Contract{AllowedFields: []string{customer.FieldPhone}, RetentionPeriodDays: 1}},
		{"zero retention", &Contract{AllowedFields: []string{customer.FieldPhone}, Purpose: "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SubmitContract(context.Background(), p.ID, tc.draft)
			var ve *apperror.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("err = %v, want ValidationError", err)
			}
		})
	}
}

func TestApproveContract_AssignsIDAndActivates(t *testing.T) {
	svc := newTestService()
	p, _ := registerTestPartner(t, svc)

	if _, err := svc.SubmitContract(context.Background(), p.ID, testDraft()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	approved, err := svc.ApproveContract(context.Background(), p.ID, "admin-1")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	if approved.ApprovedContract == nil {
		t.Fatal("approved slot empty")
	}
	if approved.ApprovedContract.ContractID == uuid.Nil {
		t.Error("contract ID not assigned")
	}
	if approved.ApprovedContract.Version != 1 {
		t.Errorf("version = %d, want 1", approved.ApprovedContract.Version)
	}
	if approved.RequestedContract != nil {
		t.Error("requested slot not cleared")
	}
	if approved.Status != StatusActive {
		t.Errorf("status = %q, want active", approved.Status)
	}
	if approved.ContractApprovedAt == nil {
		t.Error("approval timestamp missing")
	}
}

func TestApproveContract_VersionIncrements(t *testing.T) {
	svc := newTestService()
	p, _ := registerTestPartner(t, svc)

	for want := 1; want <= 3; want++ {
		if _, err := svc.SubmitContract(context.Background(), p.ID, testDraft()); err != nil {
			t.Fatalf("submit %d: %v", want, err)
		}
		approved, err := svc.ApproveContract(context.Background(), p.ID, "admin-1")
		if err != nil {
			t.Fatalf("approve %d: %v", want, err)
		}
		if approved.ApprovedContract.Version != want {
			t.Errorf("version = %d, want %d", approved.ApprovedContract.Version, want)
		}
	}
}

func TestRejectContract_PreservesApprovedContract(t *testing.T) {
	svc := newTestService()
	p, _ := registerTestPartner(t, svc)

	if _, err := svc.SubmitContract(context.Background(), p.ID, testDraft()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	first, err := svc.ApproveContract(context.Background(), p.ID, "admin-1")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	firstID := first.ApprovedContract.ContractID

	// A later draft gets rejected; the in-force contract must survive.
	draft := testDraft()
	draft.AllowedFields = []string{customer.FieldSSN}
	if _, err := svc.SubmitContract(context.Background(), p.ID, draft); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	rejected, err := svc.RejectContract(context.Background(), p.ID, "admin-1", "scope too broad")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}

	if rejected.RequestedContract != nil {
		t.Error("requested slot not cleared on reject")
	}
	if rejected.ApprovedContract == nil {
		t.Fatal("approved contract destroyed by reject")
	}
	if rejected.ApprovedContract.ContractID != firstID {
		t.Error("approved contract replaced by reject")
	}
	if rejected.Status != StatusActive {
		t.Errorf("status = %q after reject, want active", rejected.Status)
	}
}

func TestRejectContract_NothingPending(t *testing.T) {
	svc := newTestService()
	p, _ := registerTestPartner(t, svc)
	_, err := svc.RejectContract(context.Background(), p.ID, "admin-1", "")
	var ve *apperror.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestFindActiveByAPIKeyHash(t *testing.T) {
	svc := newTestService()
	p, rawKey := registerTestPartner(t, svc)

	// Pending partner must not authenticate.
	if _, err := svc.FindActiveByAPIKeyHash(context.Background(), auth.HashAPIKey(rawKey)); err == nil {
		t.Error("pending partner authenticated")
	}

	if _, err := svc.SubmitContract(context.Background(), p.ID, testDraft()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.ApproveContract(context.Background(), p.ID, "admin-1"); err != nil {
		t.Fatalf("approve: %v", err)
	}

	id, err := svc.FindActiveByAPIKeyHash(context.Background(), auth.HashAPIKey(rawKey))
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if id != p.ID {
		t.Error("resolved wrong partner")
	}

	if _, err := svc.SuspendPartner(context.Background(), p.ID, "admin-1"); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if _, err := svc.FindActiveByAPIKeyHash(context.Background(), auth.HashAPIKey(rawKey)); err == nil {
		t.Error("suspended partner authenticated")
	}
}

func TestSubmitContract_SuspendedPartnerRejected(t *testing.T) {
	svc := newTestService()
	p, _ := registerTestPartner(t, svc)
	if _, err := svc.SuspendPartner(context.Background(), p.ID, "admin-1"); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	_, err := svc.SubmitContract(context.Background(), p.ID, testDraft())
	var ae *apperror.AuthorizationError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v, want AuthorizationError", err)
	}
}
