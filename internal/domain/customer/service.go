package customer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/apperror"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/domain/audit"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/platform/crypto"
)

// Service encrypts customer data on the way in and decrypts only for
// authorized reads. Plaintext never reaches the repository.
type Service struct {
	repo  Repository
	enc   *crypto.FieldEncryptor
	audit *audit.Service
}

func NewService(repo Repository, enc *crypto.FieldEncryptor, auditSvc *audit.Service) *Service {
	return &Service{repo: repo, enc: enc, audit: auditSvc}
}

func (s *Service) record(ctx context.Context, eventType, actorType, actorID string, customerID uuid.UUID, details map[string]interface{}) {
	if s.audit == nil {
		return
	}
	id := customerID
	s.audit.BestEffort(ctx, eventType, actorType, actorID, audit.EventContext{CustomerID: &id}, details, nil)
}

// encryptProfile encrypts every provided field of the profile into c.
// Omitted fields stay zero-valued; callers decide replace-vs-merge.
func (s *Service) encryptProfile(p *Profile, c *Customer) error {
	for name, value := range p.fieldValues() {
		if value == "" {
			continue
		}
		ef, err := s.enc.EncryptField(value)
		if err != nil {
			return err
		}
		switch name {
		case FieldFirstName:
			c.FirstName = ef
		case FieldLastName:
			c.LastName = ef
		case FieldEmail:
			c.Email = ef
		case FieldPhone:
			c.Phone = ef
		case FieldSSN:
			c.SSN = ef
		case FieldAddress:
			c.Address = ef
		case FieldDateOfBirth:
			c.DateOfBirth = ef
		}
	}
	return nil
}

// CreateCustomer validates, encrypts, and stores a new customer.
func (s *Service) CreateCustomer(ctx context.Context, p *Profile, actorType, actorID string) (*Customer, error) {
	if p.Email == "" {
		return nil, apperror.Validation("email is required")
	}
	if p.FirstName == "" || p.LastName == "" {
		return nil, apperror.Validation("firstName and lastName are required")
	}

	c := &Customer{
		ID:          uuid.New(),
		EmailDigest: crypto.Hash(p.Email),
		CreatedAt:   time.Now().UTC(),
	}
	c.UpdatedAt = c.CreatedAt
	if err := s.encryptProfile(p, c); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.record(ctx, audit.EventCustomerCreated, actorType, actorID, c.ID, nil)
	return c, nil
}

// UpdateCustomer replaces the customer's profile wholesale: every field is
// re-encrypted from the submitted plaintext, so an omitted field clears.
func (s *Service) UpdateCustomer(ctx context.Context, id uuid.UUID, p *Profile, actorType, actorID string) (*Customer, error) {
	if p.Email == "" {
		return nil, apperror.Validation("email is required")
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c := &Customer{
		ID:          existing.ID,
		EmailDigest: crypto.Hash(p.Email),
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.encryptProfile(p, c); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.record(ctx, audit.EventCustomerUpdated, actorType, actorID, c.ID, nil)
	return c, nil
}

// GetCustomer returns the encrypted record. No plaintext leaves here.
func (s *Service) GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return s.repo.GetByID(ctx, id)
}

// GetCustomerByEmail resolves a customer through the email digest, without
// decrypting anything.
func (s *Service) GetCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	return s.repo.GetByEmailDigest(ctx, crypto.Hash(email))
}

// ListCustomers returns a page of encrypted records.
func (s *Service) ListCustomers(ctx context.Context, limit, offset int) ([]*Customer, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// DecryptFields decrypts exactly the requested fields of a customer record.
// An unknown field name is a validation error; a field the customer never
// provided is skipped.
func (s *Service) DecryptFields(c *Customer, fields []string) (map[string]string, error) {
	out := make(map[string]string, len(fields))
	for _, name := range fields {
		ef, ok := c.field(name)
		if !ok {
			return nil, apperror.Validation("unknown field: " + name)
		}
		if ef.IsZero() {
			continue
		}
		plain, err := s.enc.DecryptField(ef)
		if err != nil {
			return nil, err
		}
		out[name] = plain
	}
	return out, nil
}

// GetProfile decrypts the full profile for an authorized owner or admin
// read, recording the access.
func (s *Service) GetProfile(ctx context.Context, id uuid.UUID, actorType, actorID string) (*Profile, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	values, err := s.DecryptFields(c, AllFields)
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.EventCustomerAccessed, actorType, actorID, c.ID, nil)
	return &Profile{
		FirstName:   values[FieldFirstName],
		LastName:    values[FieldLastName],
		Email:       values[FieldEmail],
		Phone:       values[FieldPhone],
		SSN:         values[FieldSSN],
		Address:     values[FieldAddress],
		DateOfBirth: values[FieldDateOfBirth],
	}, nil
}
