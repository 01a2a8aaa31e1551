// Package sqlite stores contacts in a single SQLite file for deployments without Postgres.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"contactmanager/internal/domain"

	_ "modernc.org/sqlite"
)

// Schema creates the contacts table. AUTOINCREMENT keeps ids of deleted contacts from being reused.
const Schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	full_name    TEXT NOT NULL,
	phone_number TEXT NOT NULL DEFAULT '',
	email        TEXT NOT NULL DEFAULT '',
	tags         TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Open opens the database at path, creating its directory and the schema when missing.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:" to one database.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return db, nil
}

type contactRepository struct {
	DB *sql.DB
}

// NewContactRepository returns a domain.ContactRepository implemented with SQLite.
func NewContactRepository(db *sql.DB) domain.ContactRepository {
	return &contactRepository{DB: db}
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
	return records, rows.Err()
}

func (r *contactRepository) GetByID(ctx context.Context, id string) (domain.ContactRecord, error) {
	n, ok := parseID(id)
	if !ok {
		return domain.ContactRecord{}, domain.ErrNotFound
	}
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, full_name, phone_number, email, tags FROM contacts WHERE id = ?`, n)
	return scanOne(row)
}

func (r *contactRepository) Create(ctx context.Context, f domain.ContactFields) (domain.ContactRecord, error) {
	row := r.DB.QueryRowContext(ctx,
		`INSERT INTO contacts (full_name, phone_number, email, tags)
		 VALUES (?, ?, ?, ?)
		 RETURNING id, full_name, phone_number, email, tags`,
		f.FullName, f.PhoneNumber, f.Email, f.Tags)
	return scanOne(row)
}

func (r *contactRepository) Update(ctx context.Context, id string, f domain.ContactFields) (domain.ContactRecord, error) {
	n, ok := parseID(id)
	if !ok {
		return domain.ContactRecord{}, domain.ErrNotFound
	}
	row := r.DB.QueryRowContext(ctx,
		`UPDATE contacts
		 SET full_name = ?, phone_number = ?, email = ?, tags = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?
		 RETURNING id, full_name, phone_number, email, tags`,
		f.FullName, f.PhoneNumber, f.Email, f.Tags, n)
	return scanOne(row)
}

func (r *contactRepository) Delete(ctx context.Context, id string) error {
	n, ok := parseID(id)
	if !ok {
		return domain.ErrNotFound
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, n)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContact(s scanner) (domain.ContactRecord, error) {
	var (
		id  int64
		rec domain.ContactRecord
	)
	if err := s.Scan(&id, &rec.FullName, &rec.PhoneNumber, &rec.Email, &rec.Tags); err != nil {
		return domain.ContactRecord{}, err
	}
	rec.ID = domain.RecordID(strconv.FormatInt(id, 10))
	return rec, nil
}

func scanOne(row *sql.Row) (domain.ContactRecord, error) {
	rec, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ContactRecord{}, domain.ErrNotFound
	}
	return rec, err
}

func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	return n, err == nil && n > 0
}
