package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// TagSeparator joins tag names in the wire form. A tag containing it cannot be represented.
const TagSeparator = ","

// RecordID is a contact id as it appears on the wire, either a JSON string or a JSON number.
type RecordID string

// UnmarshalJSON accepts "7", 7 and null.
func (id *RecordID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RecordID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("contact id must be a string or number: %w", err)
	}
	*id = RecordID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as JSON numbers and everything else as strings.
func (id RecordID) MarshalJSON() ([]byte, error) {
	s := string(id)
	if s != "" && isDigits(s) {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ContactRecord is the wire representation of a contact, as sent and received on /api/contacts.
// swagger:model ContactRecord
type ContactRecord struct {
	ID          RecordID `json:"id,omitempty" swaggertype:"string"`
	FullName    string   `json:"full_name"`
	PhoneNumber string   `json:"phone_number"`
	Email       string   `json:"email"`
	Tags        string   `json:"tags"`
}

// ContactFields is the body of create and update requests.
// swagger:model ContactFields
type ContactFields struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Tags        string `json:"tags"`
}

// Contact is a normalized contact held by a ContactCollection.
type Contact struct {
	ID          string
	FullName    string
	PhoneNumber string
	Email       string
	Tags        []string
}

// ParseContact builds a Contact from a wire record. The id is required.
func ParseContact(rec ContactRecord) (Contact, error) {
	id := strings.TrimSpace(string(rec.ID))
	if id == "" {
		return Contact{}, fmt.Errorf("%w: missing id", ErrMalformedRecord)
	}
	return Contact{
		ID:          id,
		FullName:    strings.TrimSpace(rec.FullName),
		PhoneNumber: strings.TrimSpace(rec.PhoneNumber),
		Email:       strings.TrimSpace(rec.Email),
		Tags:        SplitTags(rec.Tags),
	}, nil
}

// SplitTags parses the comma-joined wire form. The empty string is the empty set.
func SplitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, TagSeparator)
}

// JoinTags is the inverse of SplitTags.
func JoinTags(tags []string) string {
	return strings.Join(tags, TagSeparator)
}

// HasTag reports whether the contact carries tag.
func (c Contact) HasTag(tag string) bool {
	return slices.Contains(c.Tags, tag)
}

// HasAllTags reports whether the contact carries every one of tags. An empty list matches.
func (c Contact) HasAllTags(tags []string) bool {
	for _, t := range tags {
		if !c.HasTag(t) {
			return false
		}
	}
	return true
}

// Record returns the wire form of the contact.
func (c Contact) Record() ContactRecord {
	return ContactRecord{
		ID:          RecordID(c.ID),
		FullName:    c.FullName,
		PhoneNumber: c.PhoneNumber,
		Email:       c.Email,
		Tags:        JoinTags(c.Tags),
	}
}

// Fields returns the editable fields of the contact in request form.
func (c Contact) Fields() ContactFields {
	return ContactFields{
		FullName:    c.FullName,
		PhoneNumber: c.PhoneNumber,
		Email:       c.Email,
		Tags:        JoinTags(c.Tags),
	}
}

func (c Contact) clone() Contact {
	c.Tags = slices.Clone(c.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return c
}

// ContactClient is the remote contacts API consumed by the front-end.
type ContactClient interface {
	ListContacts(ctx context.Context) ([]ContactRecord, error)
	GetContact(ctx context.Context, id string) (ContactRecord, error)
	CreateContact(ctx context.Context, fields ContactFields) (ContactRecord, error)
	UpdateContact(ctx context.Context, id string, fields ContactFields) (ContactRecord, error)
	DeleteContact(ctx context.Context, id string) error
}

// ContactRepository defines storage for the reference contacts API.
type ContactRepository interface {
	List(ctx context.Context) ([]ContactRecord, error)
	GetByID(ctx context.Context, id string) (ContactRecord, error)
	Create(ctx context.Context, fields ContactFields) (ContactRecord, error)
	Update(ctx context.Context, id string, fields ContactFields) (ContactRecord, error)
	Delete(ctx context.Context, id string) error
}

// ContactService is the business logic behind the reference contacts API.
type ContactService interface {
	ListContacts(ctx context.Context) ([]ContactRecord, error)
	GetContact(ctx context.Context, id string) (ContactRecord, error)
	CreateContact(ctx context.Context, fields ContactFields) (ContactRecord, error)
	UpdateContact(ctx context.Context, id string, fields ContactFields) (ContactRecord, error)
	DeleteContact(ctx context.Context, id string) error
}
