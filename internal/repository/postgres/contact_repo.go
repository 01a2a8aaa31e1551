package postgres

import (
	"context"
	"database/sql"
	"errors"

	"contactmanager/internal/domain"

	"github.com/lib/pq"
)

// Schema creates the contacts table. Tags are stored in their comma-joined wire form.
const Schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id           BIGSERIAL PRIMARY KEY,
	full_name    TEXT NOT NULL,
	phone_number TEXT NOT NULL DEFAULT '',
	email        TEXT NOT NULL DEFAULT '',
	tags         TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// pgInvalidTextRepresentation is raised when an id is not a valid bigint.
const pgInvalidTextRepresentation = "22P02"

type contactRepository struct {
	DB *sql.DB
}

// NewContactRepository returns a domain.ContactRepository implemented with Postgres.
func NewContactRepository(db *sql.DB) domain.ContactRepository {
	return &contactRepository{DB: db}
}

// EnsureSchema creates the tables the repository needs if they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}

func (r *contactRepository) List(ctx context.Context) ([]domain.ContactRecord, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, full_name, phone_number, email, tags FROM contacts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.ContactRecord{}
	for rows.Next() {
		rec, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *contactRepository) GetByID(ctx context.Context, id string) (domain.ContactRecord, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, full_name, phone_number, email, tags FROM contacts WHERE id = $1`, id)
	rec, err := scanContact(row)
	if err != nil {
		return domain.ContactRecord{}, mapNotFound(err)
	}
	return rec, nil
}

func (r *contactRepository) Create(ctx context.Context, f domain.ContactFields) (domain.ContactRecord, error) {
	row := r.DB.QueryRowContext(ctx,
		`INSERT INTO contacts (full_name, phone_number, email, tags)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, full_name, phone_number, email, tags`,
		f.FullName, f.PhoneNumber, f.Email, f.Tags)
	return scanContact(row)
}

func (r *contactRepository) Update(ctx context.Context, id string, f domain.ContactFields) (domain.ContactRecord, error) {
	row := r.DB.QueryRowContext(ctx,
		`UPDATE contacts SET full_name = $2, phone_number = $3, email = $4, tags = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING id, full_name, phone_number, email, tags`,
		id, f.FullName, f.PhoneNumber, f.Email, f.Tags)
	rec, err := scanContact(row)
	if err != nil {
		return domain.ContactRecord{}, mapNotFound(err)
	}
	return rec, nil
}

func (r *contactRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return mapNotFound(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContact(s scanner) (domain.ContactRecord, error) {
	var rec domain.ContactRecord
	var id string
	if err := s.Scan(&id, &rec.FullName, &rec.PhoneNumber, &rec.Email, &rec.Tags); err != nil {
		return domain.ContactRecord{}, err
	}
	rec.ID = domain.RecordID(id)
	return rec, nil
}

// mapNotFound turns a missing row, or an id Postgres cannot parse, into domain.ErrNotFound.
func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var perr *pq.Error
	if errors.As(err, &perr) && perr.Code == pgInvalidTextRepresentation {
		return domain.ErrNotFound
	}
	return err
}
