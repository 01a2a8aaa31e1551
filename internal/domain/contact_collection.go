package domain

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

// Sortable contact fields, named as on the wire.
const (
	SortFieldID          = "id"
	SortFieldFullName    = "full_name"
	SortFieldPhoneNumber = "phone_number"
	SortFieldEmail       = "email"
)

// SortFields lists the fields accepted by ContactCollection.SortBy.
var SortFields = []string{SortFieldFullName, SortFieldPhoneNumber, SortFieldEmail, SortFieldID}

// ContactCollection is the in-memory contact list and the vocabulary of known tags.
//
// Contacts keep server order until SortBy reorders them. Known tags only ever grow:
// deleting a contact leaves its tags available for forms. It is safe for concurrent use.
type ContactCollection struct {
	mu        sync.RWMutex
	contacts  []Contact
	knownTags []string
	tagSet    map[string]struct{}
}

// NewContactCollection returns an empty collection.
func NewContactCollection() *ContactCollection {
	return &ContactCollection{tagSet: make(map[string]struct{})}
}

// Load replaces every contact with the parsed records. Tags are folded into the known set.
// If any record is malformed the collection is left unchanged.
func (c *ContactCollection) Load(records []ContactRecord) error {
	parsed := make([]Contact, 0, len(records))
	pos := make(map[string]int, len(records))
	for i, rec := range records {
		contact, err := ParseContact(rec)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if at, ok := pos[contact.ID]; ok {
			parsed[at] = contact
			continue
		}
		pos[contact.ID] = len(parsed)
		parsed = append(parsed, contact)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.contacts = parsed
	for _, contact := range parsed {
		c.addTagsLocked(contact.Tags)
	}
	return nil
}

// Add parses rec and appends it. A record whose id is already present replaces that contact in place.
func (c *ContactCollection) Add(rec ContactRecord) (Contact, error) {
	contact, err := ParseContact(rec)
	if err != nil {
		return Contact{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(contact.ID); i >= 0 {
		c.contacts[i] = contact
	} else {
		c.contacts = append(c.contacts, contact)
	}
	c.addTagsLocked(contact.Tags)
	return contact.clone(), nil
}

// Get returns the contact with id. The bool is false when there is no such contact.
func (c *ContactCollection) Get(id string) (Contact, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.indexLocked(id)
	if i < 0 {
		return Contact{}, false
	}
	return c.contacts[i].clone(), true
}

// Update replaces the fields of the contact with id, keeping its position.
// A record without an id is taken to describe id; a record naming another id is malformed.
func (c *ContactCollection) Update(id string, rec ContactRecord) (Contact, error) {
	id = strings.TrimSpace(id)
	if strings.TrimSpace(string(rec.ID)) == "" {
		rec.ID = RecordID(id)
	}
	contact, err := ParseContact(rec)
	if err != nil {
		return Contact{}, err
	}
	if contact.ID != id {
		return Contact{}, fmt.Errorf("%w: record id %q does not match %q", ErrMalformedRecord, contact.ID, id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		return Contact{}, fmt.Errorf("contact %s: %w", id, ErrNotFound)
	}
	c.contacts[i] = contact
	c.addTagsLocked(contact.Tags)
	return contact.clone(), nil
}

// Delete removes the contact with id. Known tags are not touched.
func (c *ContactCollection) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(strings.TrimSpace(id))
	if i < 0 {
		return fmt.Errorf("contact %s: %w", id, ErrNotFound)
	}
	c.contacts = slices.Delete(c.contacts, i, i+1)
	return nil
}

// RegisterTagName adds name to the known tags. It returns false if the name was already known or blank.
func (c *ContactCollection) RegisterTagName(name string) bool {
	if name == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.tagSet[name]; ok {
		return false
	}
	c.addTagsLocked([]string{name})
	return true
}

// TagNameTaken reports whether name is a known tag.
func (c *ContactCollection) TagNameTaken(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.tagSet[name]
	return ok
}

// Search returns the contacts with a name token, the email's local part or one of its
// domain labels starting with term. Matching ignores case; the empty term matches everything.
func (c *ContactCollection) Search(term string) []Contact {
	return SearchContacts(c.Contacts(), term)
}

// SortBy reorders the collection ascending by the string value of field.
// The comparison is plain lexicographic, phone numbers included. Ties keep no particular order.
func (c *ContactCollection) SortBy(field string) error {
	key, err := sortKey(field)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	sort.Slice(c.contacts, func(i, j int) bool {
		return key(c.contacts[i]) < key(c.contacts[j])
	})
	return nil
}

// FilterByTags returns the contacts carrying all of tags. No tags means every contact.
func (c *ContactCollection) FilterByTags(tags []string) []Contact {
	return FilterContactsByTags(c.Contacts(), tags)
}

// Contacts returns a copy of the contacts in their current order.
func (c *ContactCollection) Contacts() []Contact {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Contact, len(c.contacts))
	for i, contact := range c.contacts {
		out[i] = contact.clone()
	}
	return out
}

// KnownTags returns the known tags in the order they were first seen.
func (c *ContactCollection) KnownTags() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string{}, c.knownTags...)
}

// Len returns the number of contacts.
func (c *ContactCollection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.contacts)
}

func (c *ContactCollection) indexLocked(id string) int {
	return slices.IndexFunc(c.contacts, func(contact Contact) bool { return contact.ID == id })
}

func (c *ContactCollection) addTagsLocked(tags []string) {
	if c.tagSet == nil {
		c.tagSet = make(map[string]struct{})
	}
	for _, t := range tags {
		if _, ok := c.tagSet[t]; ok {
			continue
		}
		c.tagSet[t] = struct{}{}
		c.knownTags = append(c.knownTags, t)
	}
}

// SearchContacts applies the collection's search rule to an arbitrary slice.
func SearchContacts(contacts []Contact, term string) []Contact {
	if term == "" {
		return contacts
	}
	lowered := strings.ToLower(term)
	out := make([]Contact, 0, len(contacts))
	for _, contact := range contacts {
		if contactMatches(contact, lowered) {
			out = append(out, contact)
		}
	}
	return out
}

// contactMatches checks name tokens, the email's local part and each label of its domain.
func contactMatches(contact Contact, lowered string) bool {
	parts := strings.Fields(contact.FullName)
	local, domain, _ := strings.Cut(contact.Email, "@")
	parts = append(parts, local)
	parts = append(parts, strings.Split(domain, ".")...)
	for _, p := range parts {
		if strings.HasPrefix(strings.ToLower(p), lowered) {
			return true
		}
	}
	return false
}

// FilterContactsByTags applies the tag intersection filter to an arbitrary slice.
func FilterContactsByTags(contacts []Contact, tags []string) []Contact {
	if len(tags) == 0 {
		return contacts
	}
	out := make([]Contact, 0, len(contacts))
	for _, contact := range contacts {
		if contact.HasAllTags(tags) {
			out = append(out, contact)
		}
	}
	return out
}

func sortKey(field string) (func(Contact) string, error) {
	switch field {
	case SortFieldID:
		return func(c Contact) string { return c.ID }, nil
	case SortFieldFullName:
		return func(c Contact) string { return c.FullName }, nil
	case SortFieldPhoneNumber:
		return func(c Contact) string { return c.PhoneNumber }, nil
	case SortFieldEmail:
		return func(c Contact) string { return c.Email }, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidSortField, field)
}
