package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"contactmanager/internal/domain"
)

type contactManager struct {
	logger         *slog.Logger
	client         domain.ContactClient
	contacts       *domain.ContactCollection
	contextTimeout time.Duration
	loaded         atomic.Bool
}

// NewContactManager returns the front-end application context backed by client.
// Each remote call is bounded by timeout.
func NewContactManager(logger *slog.Logger, client domain.ContactClient, contacts *domain.ContactCollection, timeout time.Duration) domain.ContactManager {
	if contacts == nil {
		contacts = domain.NewContactCollection()
	}
	return &contactManager{
		logger:         logger,
		client:         client,
		contacts:       contacts,
		contextTimeout: timeout,
	}
}

func (m *contactManager) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.contextTimeout)
	defer cancel()

	records, err := m.client.ListContacts(ctx)
	if err != nil {
		return fmt.Errorf("list contacts: %w", err)
	}
	if err := m.contacts.Load(records); err != nil {
		return fmt.Errorf("load contacts: %w", err)
	}
	m.loaded.Store(true)
	m.logger.DebugContext(ctx, "contacts loaded", "count", len(records))
	return nil
}

func (m *contactManager) EnsureLoaded(ctx context.Context) error {
	if m.loaded.Load() {
		return nil
	}
	return m.Refresh(ctx)
}

func (m *contactManager) Get(id string) (domain.Contact, error) {
	contact, ok := m.contacts.Get(id)
	if !ok {
		return domain.Contact{}, fmt.Errorf("contact %s: %w", id, domain.ErrNotFound)
	}
	return contact, nil
}

func (m *contactManager) KnownTags() []string {
	return m.contacts.KnownTags()
}

func (m *contactManager) View(q domain.ViewQuery) ([]domain.Contact, error) {
	if q.Sort != "" {
		if err := m.contacts.SortBy(q.Sort); err != nil {
			return nil, err
		}
	}
	out := domain.SearchContacts(m.contacts.Contacts(), q.Search)
	return domain.FilterContactsByTags(out, q.Tags), nil
}

func (m *contactManager) Create(ctx context.Context, form domain.ContactForm) (domain.Contact, error) {
	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return domain.Contact{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, m.contextTimeout)
	defer cancel()

	rec, err := m.client.CreateContact(ctx, form.Fields())
	if err != nil {
		return domain.Contact{}, fmt.Errorf("create contact: %w", err)
	}
	contact, err := m.contacts.Add(rec)
	if err != nil {
		return domain.Contact{}, fmt.Errorf("create contact: %w", err)
	}
	m.logger.InfoContext(ctx, "contact created", "id", contact.ID)
	return contact, nil
}

func (m *contactManager) Update(ctx context.Context, id string, form domain.ContactForm) (domain.Contact, error) {
	if _, ok := m.contacts.Get(id); !ok {
		return domain.Contact{}, fmt.Errorf("contact %s: %w", id, domain.ErrNotFound)
	}
	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return domain.Contact{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, m.contextTimeout)
	defer cancel()

	rec, err := m.client.UpdateContact(ctx, id, form.Fields())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			m.forget(ctx, id)
		}
		return domain.Contact{}, fmt.Errorf("update contact %s: %w", id, err)
	}
	contact, err := m.contacts.Update(id, rec)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			m.logger.WarnContext(ctx, "contact removed while update was in flight", "id", id)
		}
		return domain.Contact{}, fmt.Errorf("update contact %s: %w", id, err)
	}
	m.logger.InfoContext(ctx, "contact updated", "id", id)
	return contact, nil
}

func (m *contactManager) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, m.contextTimeout)
	defer cancel()

	if err := m.client.DeleteContact(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			m.forget(ctx, id)
		}
		return fmt.Errorf("delete contact %s: %w", id, err)
	}
	if err := m.contacts.Delete(id); err != nil {
		m.logger.WarnContext(ctx, "contact already removed locally", "id", id)
		return fmt.Errorf("delete contact %s: %w", id, err)
	}
	m.logger.InfoContext(ctx, "contact deleted", "id", id)
	return nil
}

func (m *contactManager) CreateTag(form domain.TagForm) (string, error) {
	if err := form.Validate(); err != nil {
		return "", err
	}
	name := strings.TrimSpace(form.Name)
	if !m.contacts.RegisterTagName(name) {
		return "", fmt.Errorf("tag %q: %w", name, domain.ErrDuplicateTagName)
	}
	m.logger.Info("tag created", "tag", name)
	return name, nil
}

// forget drops a contact the API no longer has.
func (m *contactManager) forget(ctx context.Context, id string) {
	if err := m.contacts.Delete(id); err == nil {
		m.logger.WarnContext(ctx, "contact missing on server, removed locally", "id", id)
	}
}
