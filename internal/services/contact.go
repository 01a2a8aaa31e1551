package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contactmanager/internal/domain"
)

type contactService struct {
	repo           domain.ContactRepository
	contextTimeout time.Duration
}

// NewContactService returns the business logic behind the reference contacts API.
func NewContactService(repo domain.ContactRepository, timeout time.Duration) domain.ContactService {
	return &contactService{repo: repo, contextTimeout: timeout}
}

func (s *contactService) ListContacts(ctx context.Context) ([]domain.ContactRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	if records == nil {
		records = []domain.ContactRecord{}
	}
	return records, nil
}

func (s *contactService) GetContact(ctx context.Context, id string) (domain.ContactRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ContactRecord{}, domain.ErrNotFound
		}
		return domain.ContactRecord{}, fmt.Errorf("get contact: %w", err)
	}
	return rec, nil
}

func (s *contactService) CreateContact(ctx context.Context, fields domain.ContactFields) (domain.ContactRecord, error) {
	fields = normalizeFields(fields)
	if fields.FullName == "" {
		return domain.ContactRecord{}, fmt.Errorf("%w: full_name is required", domain.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rec, err := s.repo.Create(ctx, fields)
	if err != nil {
		return domain.ContactRecord{}, fmt.Errorf("create contact: %w", err)
	}
	return rec, nil
}

func (s *contactService) UpdateContact(ctx context.Context, id string, fields domain.ContactFields) (domain.ContactRecord, error) {
	fields = normalizeFields(fields)
	if fields.FullName == "" {
		return domain.ContactRecord{}, fmt.Errorf("%w: full_name is required", domain.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rec, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ContactRecord{}, domain.ErrNotFound
		}
		return domain.ContactRecord{}, fmt.Errorf("update contact: %w", err)
	}
	return rec, nil
}

func (s *contactService) DeleteContact(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}

// normalizeFields trims text and tidies the tag list: blank and repeated tags are dropped.
func normalizeFields(f domain.ContactFields) domain.ContactFields {
	form := domain.ContactForm{
		FullName:    f.FullName,
		PhoneNumber: f.PhoneNumber,
		Email:       f.Email,
		Tags:        domain.SplitTags(f.Tags),
	}.Normalize()
	return form.Fields()
}
