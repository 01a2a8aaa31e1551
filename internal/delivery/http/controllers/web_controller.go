package controllers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"contactmanager/internal/domain"
)

// Notice codes carried in the redirect after a successful form post.
const (
	NoticeAdded     = "added"
	NoticeUpdated   = "updated"
	NoticeDeleted   = "deleted"
	NoticeRemoved   = "removed"
	NoticeTag       = "tag"
	NoticeRefreshed = "refreshed"
)

var noticeMessages = map[string]string{
	NoticeAdded:     "Contact added.",
	NoticeUpdated:   "Contact updated.",
	NoticeDeleted:   "Contact deleted.",
	NoticeRemoved:   "That contact was already removed.",
	NoticeTag:       "Tag created.",
	NoticeRefreshed: "Contacts reloaded.",
}

// User facing error text.
const (
	msgRemoteFailure  = "The contacts service is unavailable. Please try again."
	msgMalformed      = "The contacts service sent a contact without an id."
	msgInvalidSort    = "Unknown sort field."
	msgTagNameTaken   = "Tag name taken"
	msgFormHasErrors  = "Please correct the highlighted fields."
	msgInternalFailed = "Something went wrong."
)

// WebController serves the server-rendered contacts UI.
type WebController struct {
	Logger  *slog.Logger
	Manager domain.ContactManager
	View    domain.ContactView
}

func NewWebController(logger *slog.Logger, manager domain.ContactManager, view domain.ContactView) *WebController {
	return &WebController{
		Logger:  logger,
		Manager: manager,
		View:    view,
	}
}

// Home renders the full contacts page for ?search=, ?sort= and repeated ?tag=.
func (c *WebController) Home(w http.ResponseWriter, r *http.Request) {
	q := parseViewQuery(r.URL.Query())
	page := &domain.HomePage{Notice: noticeMessages[r.URL.Query().Get("notice")]}
	status := http.StatusOK
	if err := c.Manager.EnsureLoaded(r.Context()); err != nil {
		c.logFailure(r, err)
		status, page.Error = remoteStatus(err)
	}
	c.renderHome(w, r, status, q, page)
}

// ContactList renders only the contact list region for the same query parameters as Home.
func (c *WebController) ContactList(w http.ResponseWriter, r *http.Request) {
	if !c.ensureLoaded(w, r) {
		return
	}
	contacts, err := c.Manager.View(parseViewQuery(r.URL.Query()))
	if err != nil {
		http.Error(w, msgInvalidSort, http.StatusBadRequest)
		return
	}
	c.render(w, r, http.StatusOK, func(out io.Writer) error {
		return c.View.ContactList(out, contacts)
	})
}

// TagSelector renders only the tag selector region.
func (c *WebController) TagSelector(w http.ResponseWriter, r *http.Request) {
	if !c.ensureLoaded(w, r) {
		return
	}
	q := parseViewQuery(r.URL.Query())
	tags := domain.TagOptions(c.Manager.KnownTags(), q.Tags)
	c.render(w, r, http.StatusOK, func(out io.Writer) error {
		return c.View.TagSelector(out, q, tags)
	})
}

// TagCheckboxes renders the tag checkbox set, checking every ?tag= value.
func (c *WebController) TagCheckboxes(w http.ResponseWriter, r *http.Request) {
	if !c.ensureLoaded(w, r) {
		return
	}
	tags := domain.TagOptions(c.Manager.KnownTags(), r.URL.Query()["tag"])
	c.render(w, r, http.StatusOK, func(out io.Writer) error {
		return c.View.TagCheckboxes(out, tags)
	})
}

// NewContact renders an empty add form.
func (c *WebController) NewContact(w http.ResponseWriter, r *http.Request) {
	page := &domain.FormPage{}
	status := http.StatusOK
	if err := c.Manager.EnsureLoaded(r.Context()); err != nil {
		c.logFailure(r, err)
		status, page.Error = remoteStatus(err)
	}
	page.Tags = domain.TagOptions(c.Manager.KnownTags(), nil)
	c.renderForm(w, r, status, page)
}

// CreateContact handles the add form.
func (c *WebController) CreateContact(w http.ResponseWriter, r *http.Request) {
	form, ok := c.parseContactForm(w, r)
	if !ok {
		return
	}
	if _, err := c.Manager.Create(r.Context(), form); err != nil {
		c.formFailure(w, r, "", form, err)
		return
	}
	redirectHome(w, r, NoticeAdded)
}

// EditContact renders the edit form with the contact's tags checked.
func (c *WebController) EditContact(w http.ResponseWriter, r *http.Request) {
	if !c.ensureLoaded(w, r) {
		return
	}
	id := r.PathValue("id")
	contact, err := c.Manager.Get(id)
	if err != nil {
		c.renderHome(w, r, http.StatusNotFound, domain.ViewQuery{}, &domain.HomePage{Notice: noticeMessages[NoticeRemoved]})
		return
	}
	c.renderForm(w, r, http.StatusOK, &domain.FormPage{
		ContactID:   contact.ID,
		FullName:    contact.FullName,
		PhoneNumber: contact.PhoneNumber,
		Email:       contact.Email,
		Tags:        domain.TagOptions(c.Manager.KnownTags(), contact.Tags),
	})
}

// UpdateContact handles the edit form.
func (c *WebController) UpdateContact(w http.ResponseWriter, r *http.Request) {
	form, ok := c.parseContactForm(w, r)
	if !ok {
		return
	}
	if !c.ensureLoaded(w, r) {
		return
	}
	id := r.PathValue("id")
	if _, err := c.Manager.Update(r.Context(), id, form); err != nil {
		c.formFailure(w, r, id, form, err)
		return
	}
	redirectHome(w, r, NoticeUpdated)
}

// DeleteContact removes a contact. A contact that is already gone is reported, not treated as a failure.
func (c *WebController) DeleteContact(w http.ResponseWriter, r *http.Request) {
	err := c.Manager.Delete(r.Context(), r.PathValue("id"))
	switch {
	case err == nil:
		redirectHome(w, r, NoticeDeleted)
	case errors.Is(err, domain.ErrNotFound):
		redirectHome(w, r, NoticeRemoved)
	default:
		c.logFailure(r, err)
		status, msg := remoteStatus(err)
		c.renderHome(w, r, status, domain.ViewQuery{}, &domain.HomePage{Error: msg})
	}
}

// CreateTag handles the new tag form.
func (c *WebController) CreateTag(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	form := domain.TagForm{Name: r.PostForm.Get(domain.FieldTagName)}
	if _, err := c.Manager.CreateTag(form); err != nil {
		page := &domain.HomePage{TagName: form.Name}
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			page.TagError = verr.Message(domain.FieldTagName)
		case errors.Is(err, domain.ErrDuplicateTagName):
			page.TagError = msgTagNameTaken
		default:
			c.logFailure(r, err)
			page.Error = msgInternalFailed
		}
		c.renderHome(w, r, http.StatusUnprocessableEntity, domain.ViewQuery{}, page)
		return
	}
	redirectHome(w, r, NoticeTag)
}

// Refresh reloads every contact from the contacts API.
func (c *WebController) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := c.Manager.Refresh(r.Context()); err != nil {
		c.logFailure(r, err)
		status, msg := remoteStatus(err)
		c.renderHome(w, r, status, domain.ViewQuery{}, &domain.HomePage{Error: msg})
		return
	}
	redirectHome(w, r, NoticeRefreshed)
}

func (c *WebController) parseContactForm(w http.ResponseWriter, r *http.Request) (domain.ContactForm, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return domain.ContactForm{}, false
	}
	return domain.ContactForm{
		FullName:    r.PostForm.Get(domain.FieldFullName),
		PhoneNumber: r.PostForm.Get(domain.FieldPhoneNumber),
		Email:       r.PostForm.Get(domain.FieldEmail),
		Tags:        r.PostForm["tags"],
	}, true
}

// formFailure re-renders the add or edit form after a failed submit.
func (c *WebController) formFailure(w http.ResponseWriter, r *http.Request, id string, form domain.ContactForm, err error) {
	if id != "" && errors.Is(err, domain.ErrNotFound) {
		c.renderHome(w, r, http.StatusNotFound, domain.ViewQuery{}, &domain.HomePage{Notice: noticeMessages[NoticeRemoved]})
		return
	}
	page := &domain.FormPage{
		ContactID:   id,
		FullName:    form.FullName,
		PhoneNumber: form.PhoneNumber,
		Email:       form.Email,
		Tags:        domain.TagOptions(c.Manager.KnownTags(), form.Tags),
	}
	status := http.StatusUnprocessableEntity
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		page.FieldErrors = verr.ByField()
		page.Error = msgFormHasErrors
	} else {
		c.logFailure(r, err)
		status, page.Error = remoteStatus(err)
	}
	c.renderForm(w, r, status, page)
}

// ensureLoaded writes a 502 and returns false when the first load fails.
func (c *WebController) ensureLoaded(w http.ResponseWriter, r *http.Request) bool {
	if err := c.Manager.EnsureLoaded(r.Context()); err != nil {
		c.logFailure(r, err)
		status, msg := remoteStatus(err)
		http.Error(w, msg, status)
		return false
	}
	return true
}

func (c *WebController) renderHome(w http.ResponseWriter, r *http.Request, status int, q domain.ViewQuery, page *domain.HomePage) {
	contacts, err := c.Manager.View(q)
	if err != nil {
		q.Sort = ""
		page.Error = msgInvalidSort
		if status == http.StatusOK {
			status = http.StatusBadRequest
		}
		contacts, _ = c.Manager.View(q)
	}
	known := c.Manager.KnownTags()
	page.Query = q
	page.Contacts = contacts
	page.Tags = domain.TagOptions(known, q.Tags)
	if page.AddForm == nil {
		page.AddForm = &domain.FormPage{Tags: domain.TagOptions(known, nil)}
	}
	c.render(w, r, status, func(out io.Writer) error {
		return c.View.HomePage(out, page)
	})
}

func (c *WebController) renderForm(w http.ResponseWriter, r *http.Request, status int, page *domain.FormPage) {
	c.render(w, r, status, func(out io.Writer) error {
		return c.View.FormPage(out, page)
	})
}

// render buffers the region so the status can still change when rendering fails.
func (c *WebController) render(w http.ResponseWriter, r *http.Request, status int, fn func(io.Writer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		c.logFailure(r, err)
		http.Error(w, msgInternalFailed, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (c *WebController) logFailure(r *http.Request, err error) {
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
}

// remoteStatus maps a failed remote round trip to a status and message.
func remoteStatus(err error) (int, string) {
	if errors.Is(err, domain.ErrMalformedRecord) {
		return http.StatusBadGateway, msgMalformed
	}
	if errors.Is(err, domain.ErrRemoteFailure) {
		return http.StatusBadGateway, msgRemoteFailure
	}
	return http.StatusInternalServerError, msgInternalFailed
}

func redirectHome(w http.ResponseWriter, r *http.Request, notice string) {
	http.Redirect(w, r, "/?"+url.Values{"notice": {notice}}.Encode(), http.StatusSeeOther)
}

func parseViewQuery(v url.Values) domain.ViewQuery {
	var tags []string
	for _, t := range v["tag"] {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return domain.ViewQuery{
		Search: v.Get("search"),
		Sort:   v.Get("sort"),
		Tags:   tags,
	}
}
