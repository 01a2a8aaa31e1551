package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"contactmanager/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeContactRepo implements domain.ContactRepository for service tests.
type fakeContactRepo struct {
	records   []domain.ContactRecord
	listErr   error
	getErr    error
	createErr error
	updateErr error
	deleteErr error

	lastFields  domain.ContactFields
	hadDeadline bool
}

func (f *fakeContactRepo) List(ctx context.Context) ([]domain.ContactRecord, error) {
	_, f.hadDeadline = ctx.Deadline()
	return f.records, f.listErr
}

func (f *fakeContactRepo) GetByID(ctx context.Context, id string) (domain.ContactRecord, error) {
	if f.getErr != nil {
		return domain.ContactRecord{}, f.getErr
	}
	for _, r := range f.records {
		if string(r.ID) == id {
			return r, nil
		}
	}
	return domain.ContactRecord{}, domain.ErrNotFound
}

func (f *fakeContactRepo) Create(ctx context.Context, fields domain.ContactFields) (domain.ContactRecord, error) {
	f.lastFields = fields
	if f.createErr != nil {
		return domain.ContactRecord{}, f.createErr
	}
	return domain.ContactRecord{ID: "10", FullName: fields.FullName, PhoneNumber: fields.PhoneNumber, Email: fields.Email, Tags: fields.Tags}, nil
}

func (f *fakeContactRepo) Update(ctx context.Context, id string, fields domain.ContactFields) (domain.ContactRecord, error) {
	f.lastFields = fields
	if f.updateErr != nil {
		return domain.ContactRecord{}, f.updateErr
	}
	return domain.ContactRecord{ID: domain.RecordID(id), FullName: fields.FullName, PhoneNumber: fields.PhoneNumber, Email: fields.Email, Tags: fields.Tags}, nil
}

func (f *fakeContactRepo) Delete(ctx context.Context, id string) error {
	return f.deleteErr
}

func TestContactService_List(t *testing.T) {
	repo := &fakeContactRepo{}
	svc := NewContactService(repo, time.Second)

	got, err := svc.ListContacts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.True(t, repo.hadDeadline)

	repo.listErr = errors.New("db down")
	_, err = svc.ListContacts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestContactService_Get(t *testing.T) {
	repo := &fakeContactRepo{records: []domain.ContactRecord{{ID: "1", FullName: "Ann Lee"}}}
	svc := NewContactService(repo, time.Second)

	rec, err := svc.GetContact(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", rec.FullName)

	_, err = svc.GetContact(context.Background(), "2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	repo.getErr = errors.New("boom")
	_, err = svc.GetContact(context.Background(), "1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestContactService_Create(t *testing.T) {
	tests := []struct {
		name       string
		fields     domain.ContactFields
		repoErr    error
		wantErr    error
		wantFields domain.ContactFields
	}{
		{
			name:       "normalizes fields",
			fields:     domain.ContactFields{FullName: "  Ann Lee ", Email: " ann@x.com", Tags: "work, ,vip,work"},
			wantFields: domain.ContactFields{FullName: "Ann Lee", Email: "ann@x.com", Tags: "work,vip"},
		},
		{
			name:    "requires a name",
			fields:  domain.ContactFields{FullName: "   "},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "repository error",
			fields:  domain.ContactFields{FullName: "Ann"},
			repoErr: errors.New("insert failed"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeContactRepo{createErr: tt.repoErr}
			svc := NewContactService(repo, time.Second)

			rec, err := svc.CreateContact(context.Background(), tt.fields)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.repoErr != nil:
				assert.ErrorIs(t, err, tt.repoErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantFields, repo.lastFields)
				assert.Equal(t, domain.RecordID("10"), rec.ID)
			}
		})
	}
}

func TestContactService_Update(t *testing.T) {
	repo := &fakeContactRepo{}
	svc := NewContactService(repo, time.Second)

	rec, err := svc.UpdateContact(context.Background(), "4", domain.ContactFields{FullName: "Bob "})
	require.NoError(t, err)
	assert.Equal(t, domain.RecordID("4"), rec.ID)
	assert.Equal(t, "Bob", rec.FullName)

	_, err = svc.UpdateContact(context.Background(), "4", domain.ContactFields{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	repo.updateErr = domain.ErrNotFound
	_, err = svc.UpdateContact(context.Background(), "4", domain.ContactFields{FullName: "Bob"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestContactService_Delete(t *testing.T) {
	repo := &fakeContactRepo{}
	svc := NewContactService(repo, time.Second)

	require.NoError(t, svc.DeleteContact(context.Background(), "1"))

	repo.deleteErr = domain.ErrNotFound
	assert.ErrorIs(t, svc.DeleteContact(context.Background(), "1"), domain.ErrNotFound)

	repo.deleteErr = errors.New("locked")
	err := svc.DeleteContact(context.Background(), "1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
