package domain

import (
	"io"
	"slices"
)

// ContactView renders whole regions of the contacts UI from the current data.
// Every call replaces its region entirely; nothing is patched incrementally.
type ContactView interface {
	ContactList(w io.Writer, contacts []Contact) error
	// TagSelector links each tag to q with that tag toggled.
	TagSelector(w io.Writer, q ViewQuery, tags []TagOption) error
	TagCheckboxes(w io.Writer, tags []TagOption) error
	HomePage(w io.Writer, page *HomePage) error
	FormPage(w io.Writer, page *FormPage) error
}

// TagOption is a tag as shown in a selector or checkbox set.
type TagOption struct {
	Name     string
	Selected bool
}

// TagOptions marks each of tags as selected when it appears in chosen.
func TagOptions(tags, chosen []string) []TagOption {
	out := make([]TagOption, len(tags))
	for i, t := range tags {
		out[i] = TagOption{Name: t, Selected: slices.Contains(chosen, t)}
	}
	return out
}

// ViewQuery is the derived view requested by the user: a search term, a sort field and selected tags.
type ViewQuery struct {
	Search string
	Sort   string
	Tags   []string
}

// HomePage holds data for the contact list page.
type HomePage struct {
	Query      ViewQuery
	Contacts   []Contact
	Tags       []TagOption
	SortFields []string
	// AddForm is the add-contact form embedded in the page.
	AddForm *FormPage
	// TagForm carries the state of the new-tag form.
	TagName  string
	TagError string
	Notice   string
	Error    string
}

// FormPage holds data for the add and edit contact forms.
type FormPage struct {
	// ContactID is empty for the add form.
	ContactID   string
	FullName    string
	PhoneNumber string
	Email       string
	Tags        []TagOption
	FieldErrors map[string]string
	Notice      string
	Error       string
}

// IsEdit reports whether the form edits an existing contact.
func (f *FormPage) IsEdit() bool {
	return f.ContactID != ""
}
