package controllers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"contactmanager/internal/adapters/view"
	"contactmanager/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeContactManager implements domain.ContactManager over a real collection.
type fakeContactManager struct {
	contacts *domain.ContactCollection

	loadErr   error
	createErr error
	updateErr error
	deleteErr error
	tagErr    error

	loads      int
	lastForm   domain.ContactForm
	lastID     string
	lastQuery  domain.ViewQuery
	lastTagReq domain.TagForm
}

func newFakeManager(t *testing.T) *fakeContactManager {
	t.Helper()
	coll := domain.NewContactCollection()
	require.NoError(t, coll.Load([]domain.ContactRecord{
		{ID: "1", FullName: "Ann Lee", PhoneNumber: "5551234", Email: "ann@x.com", Tags: "work,vip"},
		{ID: "2", FullName: "Bob Ray", PhoneNumber: "5559876", Email: "bob@y.org", Tags: "home"},
	}))
	return &fakeContactManager{contacts: coll}
}

func (f *fakeContactManager) Refresh(ctx context.Context) error {
	f.loads++
	return f.loadErr
}

func (f *fakeContactManager) EnsureLoaded(ctx context.Context) error {
	return f.loadErr
}

func (f *fakeContactManager) Get(id string) (domain.Contact, error) {
	c, ok := f.contacts.Get(id)
	if !ok {
		return domain.Contact{}, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeContactManager) KnownTags() []string {
	return f.contacts.KnownTags()
}

func (f *fakeContactManager) View(q domain.ViewQuery) ([]domain.Contact, error) {
	f.lastQuery = q
	if q.Sort != "" {
		if err := f.contacts.SortBy(q.Sort); err != nil {
			return nil, err
		}
	}
	return domain.FilterContactsByTags(domain.SearchContacts(f.contacts.Contacts(), q.Search), q.Tags), nil
}

func (f *fakeContactManager) Create(ctx context.Context, form domain.ContactForm) (domain.Contact, error) {
	f.lastForm = form
	if f.createErr != nil {
		return domain.Contact{}, f.createErr
	}
	if err := form.Normalize().Validate(); err != nil {
		return domain.Contact{}, err
	}
	return domain.Contact{ID: "3"}, nil
}

func (f *fakeContactManager) Update(ctx context.Context, id string, form domain.ContactForm) (domain.Contact, error) {
	f.lastID = id
	f.lastForm = form
	if f.updateErr != nil {
		return domain.Contact{}, f.updateErr
	}
	if err := form.Normalize().Validate(); err != nil {
		return domain.Contact{}, err
	}
	return domain.Contact{ID: id}, nil
}

func (f *fakeContactManager) Delete(ctx context.Context, id string) error {
	f.lastID = id
	return f.deleteErr
}

func (f *fakeContactManager) CreateTag(form domain.TagForm) (string, error) {
	f.lastTagReq = form
	if f.tagErr != nil {
		return "", f.tagErr
	}
	return form.Name, nil
}

var remoteFailure = &domain.RemoteError{Op: "list", StatusCode: http.StatusServiceUnavailable}

func newWebController(t *testing.T, mgr *fakeContactManager) *WebController {
	t.Helper()
	v, err := view.NewTemplateRenderer()
	require.NoError(t, err)
	return NewWebController(testLogger, mgr, v)
}

// serveWeb routes req through a mux so path values are populated.
func serveWeb(ctrl *WebController, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", ctrl.Home)
	mux.HandleFunc("GET /contacts", ctrl.ContactList)
	mux.HandleFunc("GET /tags", ctrl.TagSelector)
	mux.HandleFunc("GET /tags/checkboxes", ctrl.TagCheckboxes)
	mux.HandleFunc("GET /contacts/new", ctrl.NewContact)
	mux.HandleFunc("POST /contacts", ctrl.CreateContact)
	mux.HandleFunc("GET /contacts/{id}/edit", ctrl.EditContact)
	mux.HandleFunc("POST /contacts/{id}", ctrl.UpdateContact)
	mux.HandleFunc("POST /contacts/{id}/delete", ctrl.DeleteContact)
	mux.HandleFunc("POST /tags", ctrl.CreateTag)
	mux.HandleFunc("POST /refresh", ctrl.Refresh)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func validValues() url.Values {
	return url.Values{
		domain.FieldFullName:    {"Cy Young"},
		domain.FieldPhoneNumber: {"1234567"},
		domain.FieldEmail:       {"cy@z.io"},
		"tags":                  {"vip", "work"},
	}
}

func TestWebController_Home(t *testing.T) {
	mgr := newFakeManager(t)
	ctrl := newWebController(t, mgr)

	rr := serveWeb(ctrl, httptest.NewRequest(http.MethodGet, "/?search=bo&sort=email&notice=added", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	body := rr.Body.String()
	assert.Contains(t, body, "Contact added.")
	assert.Contains(t, body, "Bob Ray")
	assert.NotContains(t, body, "Ann Lee")
	assert.Equal(t, domain.ViewQuery{Search: "bo", Sort: "email"}, mgr.lastQuery)
	// add form checkboxes list every known tag
	assert.Contains(t, body, `name="tags" value="home"`)
}

func TestWebController_Home_UnknownNoticeAndBadSort(t *testing.T) {
	mgr := newFakeManager(t)
	rr := serveWeb(newWebController(t, mgr), httptest.NewRequest(http.MethodGet, "/?sort=age&notice=<script>", nil))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, msgInvalidSort)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "Ann Lee")
}

func TestWebController_Home_RemoteDown(t *testing.T) {
	mgr := &fakeContactManager{contacts: domain.NewContactCollection(), loadErr: remoteFailure}
	rr := serveWeb(newWebController(t, mgr), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), msgRemoteFailure)
	assert.Contains(t, rr.Body.String(), "There are no contacts.")
}

func TestWebController_Fragments(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		wantStatus  int
		contains    []string
		notContains []string
	}{
		{
			name:        "contact list filtered by tags",
			target:      "/contacts?tag=work&tag=vip",
			wantStatus:  http.StatusOK,
			contains:    []string{`id="contact-1"`},
			notContains: []string{`id="contact-2"`, "<!doctype html>"},
		},
		{
			name:       "contact list bad sort",
			target:     "/contacts?sort=age",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "tag selector keeps the query",
			target:     "/tags?search=a&tag=home",
			wantStatus: http.StatusOK,
			contains:   []string{`class="tag highlight" href="/?search=a"`, `href="/?search=a&amp;tag=home&amp;tag=work"`},
		},
		{
			name:       "tag checkboxes",
			target:     "/tags/checkboxes?tag=vip",
			wantStatus: http.StatusOK,
			contains:   []string{`value="vip" checked`, `value="home">`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serveWeb(newWebController(t, newFakeManager(t)), httptest.NewRequest(http.MethodGet, tt.target, nil))

			require.Equal(t, tt.wantStatus, rr.Code)
			for _, s := range tt.contains {
				assert.Contains(t, rr.Body.String(), s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, rr.Body.String(), s)
			}
		})
	}
}

func TestWebController_FragmentRemoteDown(t *testing.T) {
	mgr := &fakeContactManager{contacts: domain.NewContactCollection(), loadErr: remoteFailure}
	rr := serveWeb(newWebController(t, mgr), httptest.NewRequest(http.MethodGet, "/contacts", nil))

	require.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), msgRemoteFailure)
}

func TestWebController_NewAndEditForms(t *testing.T) {
	ctrl := newWebController(t, newFakeManager(t))

	rr := serveWeb(ctrl, httptest.NewRequest(http.MethodGet, "/contacts/new", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `id="add-form"`)
	assert.NotContains(t, rr.Body.String(), " checked")

	rr = serveWeb(ctrl, httptest.NewRequest(http.MethodGet, "/contacts/1/edit", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `action="/contacts/1"`)
	assert.Contains(t, body, `value="Ann Lee"`)
	assert.Contains(t, body, `value="vip" checked`)
	assert.Contains(t, body, `value="home">`)

	rr = serveWeb(ctrl, httptest.NewRequest(http.MethodGet, "/contacts/9/edit", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), noticeMessages[NoticeRemoved])
}

func TestWebController_CreateContact(t *testing.T) {
	tests := []struct {
		name         string
		values       url.Values
		createErr    error
		wantStatus   int
		wantLocation string
		contains     []string
	}{
		{
			name:         "created",
			values:       validValues(),
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/?notice=added",
		},
		{
			name:       "validation",
			values:     url.Values{domain.FieldFullName: {"Cy"}, domain.FieldEmail: {"nope"}, "tags": {"vip"}},
			wantStatus: http.StatusUnprocessableEntity,
			contains:   []string{"Invalid email address.", "Please enter a telephone number.", `value="Cy"`, `value="vip" checked`, msgFormHasErrors},
		},
		{
			name:       "remote failure",
			values:     validValues(),
			createErr:  fmt.Errorf("create contact: %w", remoteFailure),
			wantStatus: http.StatusBadGateway,
			contains:   []string{msgRemoteFailure, `value="Cy Young"`},
		},
		{
			name:       "malformed response",
			values:     validValues(),
			createErr:  fmt.Errorf("create contact: %w", domain.ErrMalformedRecord),
			wantStatus: http.StatusBadGateway,
			contains:   []string{msgMalformed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := newFakeManager(t)
			mgr.createErr = tt.createErr
			rr := serveWeb(newWebController(t, mgr), postForm("/contacts", tt.values))

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantLocation, rr.Header().Get("Location"))
			for _, s := range tt.contains {
				assert.Contains(t, rr.Body.String(), s)
			}
		})
	}
}

func TestWebController_UpdateContact(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		mgr := newFakeManager(t)
		rr := serveWeb(newWebController(t, mgr), postForm("/contacts/1", validValues()))

		require.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/?notice=updated", rr.Header().Get("Location"))
		assert.Equal(t, "1", mgr.lastID)
		assert.Equal(t, []string{"vip", "work"}, mgr.lastForm.Tags)
	})

	t.Run("validation keeps the edit form", func(t *testing.T) {
		mgr := newFakeManager(t)
		rr := serveWeb(newWebController(t, mgr), postForm("/contacts/1", url.Values{domain.FieldFullName: {""}}))

		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), `id="edit-form"`)
		assert.Contains(t, rr.Body.String(), "Please enter a full name.")
	})

	t.Run("already removed", func(t *testing.T) {
		mgr := newFakeManager(t)
		mgr.updateErr = fmt.Errorf("update contact 1: %w", domain.ErrNotFound)
		rr := serveWeb(newWebController(t, mgr), postForm("/contacts/1", validValues()))

		require.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), noticeMessages[NoticeRemoved])
	})

	t.Run("remote failure", func(t *testing.T) {
		mgr := newFakeManager(t)
		mgr.updateErr = remoteFailure
		rr := serveWeb(newWebController(t, mgr), postForm("/contacts/1", validValues()))

		require.Equal(t, http.StatusBadGateway, rr.Code)
		assert.Contains(t, rr.Body.String(), `id="edit-form"`)
	})
}

func TestWebController_DeleteContact(t *testing.T) {
	tests := []struct {
		name         string
		deleteErr    error
		wantStatus   int
		wantLocation string
	}{
		{"deleted", nil, http.StatusSeeOther, "/?notice=deleted"},
		{"already removed", fmt.Errorf("delete contact 2: %w", domain.ErrNotFound), http.StatusSeeOther, "/?notice=removed"},
		{"remote failure", remoteFailure, http.StatusBadGateway, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := newFakeManager(t)
			mgr.deleteErr = tt.deleteErr
			rr := serveWeb(newWebController(t, mgr), postForm("/contacts/2/delete", nil))

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "2", mgr.lastID)
			assert.Equal(t, tt.wantLocation, rr.Header().Get("Location"))
		})
	}
}

func TestWebController_CreateTag(t *testing.T) {
	tests := []struct {
		name       string
		tagErr     error
		wantStatus int
		contains   string
	}{
		{"created", nil, http.StatusSeeOther, ""},
		{"taken", fmt.Errorf("tag: %w", domain.ErrDuplicateTagName), http.StatusUnprocessableEntity, msgTagNameTaken},
		{"invalid", &domain.ValidationError{Fields: []domain.FieldError{{Field: domain.FieldTagName, Message: "Invalid tag name."}}}, http.StatusUnprocessableEntity, "Invalid tag name."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := newFakeManager(t)
			mgr.tagErr = tt.tagErr
			rr := serveWeb(newWebController(t, mgr), postForm("/tags", url.Values{domain.FieldTagName: {"family"}}))

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "family", mgr.lastTagReq.Name)
			if tt.contains != "" {
				assert.Contains(t, rr.Body.String(), tt.contains)
				assert.Contains(t, rr.Body.String(), `<details id="new-tags-container" open>`)
			}
		})
	}
}

func TestWebController_Refresh(t *testing.T) {
	mgr := newFakeManager(t)
	ctrl := newWebController(t, mgr)

	rr := serveWeb(ctrl, postForm("/refresh", nil))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/?notice=refreshed", rr.Header().Get("Location"))
	assert.Equal(t, 1, mgr.loads)

	mgr.loadErr = remoteFailure
	rr = serveWeb(ctrl, postForm("/refresh", nil))
	require.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), msgRemoteFailure)
}
