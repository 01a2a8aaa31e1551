package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"slices"

	"contactmanager/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// StaticFS returns the stylesheet and other assets, rooted so they can be served under /static/.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Page template names.
const (
	pageHome = "home.html"
	pageForm = "form.html"
)

var sortLabels = map[string]string{
	domain.SortFieldFullName:    "Name",
	domain.SortFieldPhoneNumber: "Phone number",
	domain.SortFieldEmail:       "Email",
	domain.SortFieldID:          "Date added",
}

// fieldData feeds the "field" partial.
type fieldData struct {
	Label       string
	Name        string
	Value       string
	Placeholder string
	Pattern     string
	Error       string
}

// tagSelectorData feeds the "tag-selector" partial.
type tagSelectorData struct {
	Query domain.ViewQuery
	Tags  []domain.TagOption
}

// templateRenderer implements domain.ContactView using the embedded templates.
type templateRenderer struct {
	partials *template.Template
	pages    map[string]*template.Template
}

// NewTemplateRenderer parses the embedded templates once and returns a domain.ContactView.
func NewTemplateRenderer() (domain.ContactView, error) {
	partials, err := template.New("partials").Funcs(funcMap()).ParseFS(templateFS, "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parse partials: %w", err)
	}
	r := &templateRenderer{partials: partials, pages: make(map[string]*template.Template)}
	for _, page := range []string{pageHome, pageForm} {
		base, err := partials.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone partials: %w", err)
		}
		tmpl, err := base.ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

func (r *templateRenderer) ContactList(w io.Writer, contacts []domain.Contact) error {
	return r.execute(w, r.partials, "contact-list", contacts)
}

func (r *templateRenderer) TagSelector(w io.Writer, q domain.ViewQuery, tags []domain.TagOption) error {
	return r.execute(w, r.partials, "tag-selector", tagSelectorData{Query: q, Tags: tags})
}

func (r *templateRenderer) TagCheckboxes(w io.Writer, tags []domain.TagOption) error {
	return r.execute(w, r.partials, "tag-checkboxes", tags)
}

func (r *templateRenderer) HomePage(w io.Writer, page *domain.HomePage) error {
	if page.SortFields == nil {
		page.SortFields = domain.SortFields
	}
	return r.execute(w, r.pages[pageHome], "base", page)
}

func (r *templateRenderer) FormPage(w io.Writer, page *domain.FormPage) error {
	return r.execute(w, r.pages[pageForm], "base", page)
}

// execute renders into a buffer first so a template error never leaves a half-written region.
func (r *templateRenderer) execute(w io.Writer, tmpl *template.Template, name string, data any) error {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"sortLabel": func(field string) string {
			if l, ok := sortLabels[field]; ok {
				return l
			}
			return field
		},
		"toggleTagURL": ToggleTagURL,
		"emailPattern": func() string { return domain.EmailPattern },
		"phonePattern": func() string { return domain.PhonePattern },
		"field": func(label, name, value, placeholder, pattern string, errs map[string]string) fieldData {
			return fieldData{
				Label:       label,
				Name:        name,
				Value:       value,
				Placeholder: placeholder,
				Pattern:     pattern,
				Error:       errs[name],
			}
		},
	}
}

// ToggleTagURL returns the home URL for q with tag added to or removed from the selected tags.
func ToggleTagURL(q domain.ViewQuery, tag string) string {
	tags := slices.Clone(q.Tags)
	if i := slices.Index(tags, tag); i >= 0 {
		tags = slices.Delete(tags, i, i+1)
	} else {
		tags = append(tags, tag)
	}
	return "/?" + EncodeQuery(domain.ViewQuery{Search: q.Search, Sort: q.Sort, Tags: tags})
}

// EncodeQuery writes q as URL query parameters: search, sort and one tag per selected tag.
func EncodeQuery(q domain.ViewQuery) string {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	for _, t := range q.Tags {
		v.Add("tag", t)
	}
	return v.Encode()
}
