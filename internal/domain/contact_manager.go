package domain

import "context"

// ContactManager is the front-end application context: it keeps the ContactCollection in sync
// with the contacts API and derives the views the UI renders.
//
// Mutations reach the collection only after the API confirms them. A failed remote call leaves
// the collection as it was and is returned to the caller.
type ContactManager interface {
	// Refresh replaces the collection with the API's current contact list.
	Refresh(ctx context.Context) error
	// EnsureLoaded refreshes only if no load has succeeded yet.
	EnsureLoaded(ctx context.Context) error
	Get(id string) (Contact, error)
	KnownTags() []string
	// View applies q: sorting reorders the collection, then search and tag filter narrow the result.
	View(q ViewQuery) ([]Contact, error)
	Create(ctx context.Context, form ContactForm) (Contact, error)
	Update(ctx context.Context, id string, form ContactForm) (Contact, error)
	Delete(ctx context.Context, id string) error
	CreateTag(form TagForm) (string, error)
}
