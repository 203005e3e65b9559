package main

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/google/uuid"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/domain/customer"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/domain/partner"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/platform/crypto"
)

func newCustomerService(t *testing.T) *customer.Service {
	t.Helper()
	key, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	enc, err := crypto.NewFieldEncryptor(key)
	if err != nil {
		t.Fatalf("create encryptor: %v", err)
	}
	return customer.NewService(customer.NewMemRepo(), enc, nil)
}

func TestCustomerDirectory(t *testing.T) {
	ctx := context.Background()
	svc := newCustomerService(t)
	dir := &customerDirectory{customers: svc}

	c, err := svc.CreateCustomer(ctx, &customer.Profile{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
	}, "admin", "admin-1")
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	if err := dir.CustomerExists(ctx, c.ID); err != nil {
		t.Errorf("existing customer reported missing: %v", err)
	}
	if err := dir.CustomerExists(ctx, uuid.New()); err == nil {
		t.Error("unknown customer reported as existing")
	}
}

func TestPartnerDirectory_Snapshot(t *testing.T) {
	ctx := context.Background()
	svc := partner.NewService(partner.NewMemRepo(), nil)
	dir := &partnerDirectory{partners: svc}

	p, _, err := svc.RegisterPartner(ctx, "Acme Lending", "https://acme.example/hook", "", "admin-1")
	if err != nil {
		t.Fatalf("register partner: %v", err)
	}

	// Before any contract is approved the snapshot reflects that.
	info, err := dir.PartnerInfo(ctx, p.ID)
	if err != nil {
		t.Fatalf("partner info: %v", err)
	}
	if info.HasApprovedContract {
		t.Error("unapproved partner reports an approved contract")
	}
	if info.Active {
		t.Error("pending partner reported active")
	}

	if _, err := svc.SubmitContract(ctx, p.ID, &partner.Contract{
		AllowedFields:       []string{"email", "phone"},
		Purpose:             "loan eligibility checks",
		RetentionPeriodDays: 30,
		LegalBasis:          "consent",
	}); err != nil {
		t.Fatalf("submit contract: %v", err)
	}
	if _, err := svc.ApproveContract(ctx, p.ID, "admin-1"); err != nil {
		t.Fatalf("approve contract: %v", err)
	}

	info, err = dir.PartnerInfo(ctx, p.ID)
	if err != nil {
		t.Fatalf("partner info after approval: %v", err)
	}
	if !info.HasApprovedContract || !info.Active {
		t.Errorf("approved partner snapshot = %+v", info)
	}
	if info.ContractID == uuid.Nil {
		t.Error("snapshot missing contract id")
	}
	if len(info.AllowedFields) != 2 || info.Purpose != "loan eligibility checks" {
		t.Errorf("contract terms not carried into snapshot: %+v", info)
	}
	if info.RetentionPeriodDays != 30 {
		t.Errorf("retention = %d, want 30", info.RetentionPeriodDays)
	}
}

func TestPartnerDirectory_UnknownPartner(t *testing.T) {
	svc := partner.NewService(partner.NewMemRepo(), nil)
	dir := &partnerDirectory{partners: svc}

	if _, err := dir.PartnerInfo(context.Background(), uuid.New()); err == nil {
		t.Error("unknown partner lookup succeeded")
	}
}
