// Package memory holds in-process repositories used in development and tests.
package memory

import (
	"context"
	"strconv"
	"sync"

	"contactmanager/internal/domain"
)

type contactRepository struct {
	mu      sync.RWMutex
	records []domain.ContactRecord
	nextID  int64
}

// NewContactRepository returns an empty in-memory domain.ContactRepository.
// Ids are assigned from 1 upwards, like a Postgres sequence.
func NewContactRepository(seed ...domain.ContactFields) domain.ContactRepository {
	r := &contactRepository{nextID: 1}
	for _, f := range seed {
		_, _ = r.Create(context.Background(), f)
	}
	return r
}

func (r *contactRepository) List(ctx context.Context) ([]domain.ContactRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.ContactRecord{}, r.records...), nil
}

func (r *contactRepository) GetByID(ctx context.Context, id string) (domain.ContactRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexLocked(id)
	if i < 0 {
		return domain.ContactRecord{}, domain.ErrNotFound
	}
	return r.records[i], nil
}

func (r *contactRepository) Create(ctx context.Context, f domain.ContactFields) (domain.ContactRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := recordFrom(strconv.FormatInt(r.nextID, 10), f)
	r.nextID++
	r.records = append(r.records, rec)
	return rec, nil
}

func (r *contactRepository) Update(ctx context.Context, id string, f domain.ContactFields) (domain.ContactRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(id)
	if i < 0 {
		return domain.ContactRecord{}, domain.ErrNotFound
	}
	r.records[i] = recordFrom(string(r.records[i].ID), f)
	return r.records[i], nil
}

func (r *contactRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(id)
	if i < 0 {
		return domain.ErrNotFound
	}
	r.records = append(r.records[:i], r.records[i+1:]...)
	return nil
}

func (r *contactRepository) indexLocked(id string) int {
	for i, rec := range r.records {
		if string(rec.ID) == id {
			return i
		}
	}
	return -1
}

func recordFrom(id string, f domain.ContactFields) domain.ContactRecord {
	return domain.ContactRecord{
		ID:          domain.RecordID(id),
		FullName:    f.FullName,
		PhoneNumber: f.PhoneNumber,
		Email:       f.Email,
		Tags:        f.Tags,
	}
}
