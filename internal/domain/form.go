package domain

import (
	"regexp"
	"strings"
	"unicode"
)

// Input patterns shared by server-side validation and the HTML pattern attributes.
// They are written to be valid both as RE2 and as browser pattern regexps.
const (
	EmailPattern   = `[^@\s]+@[^@\s]+\.[^@\s]+`
	PhonePattern   = `\+?[0-9 .\(\)\-]{7,20}`
	TagNamePattern = `[A-Za-z0-9_\-]+`
)

// Phone numbers must carry between these many digits once separators are dropped.
const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

var (
	emailRegex   = regexp.MustCompile(`^(?:` + EmailPattern + `)$`)
	phoneRegex   = regexp.MustCompile(`^(?:` + PhonePattern + `)$`)
	tagNameRegex = regexp.MustCompile(`^(?:` + TagNamePattern + `)$`)
)

// Form field names, as used on the wire and in HTML inputs.
const (
	FieldFullName    = "full_name"
	FieldEmail       = "email"
	FieldPhoneNumber = "phone_number"
	FieldTagName     = "name"
)

// ContactForm is a submitted add or edit form.
type ContactForm struct {
	FullName    string
	PhoneNumber string
	Email       string
	Tags        []string
}

// Normalize trims every text field and drops blank and repeated tags.
func (f ContactForm) Normalize() ContactForm {
	out := ContactForm{
		FullName:    strings.TrimSpace(f.FullName),
		PhoneNumber: strings.TrimSpace(f.PhoneNumber),
		Email:       strings.TrimSpace(f.Email),
		Tags:        []string{},
	}
	seen := make(map[string]struct{}, len(f.Tags))
	for _, t := range f.Tags {
		t = strings.TrimSpace(t)
		if _, ok := seen[t]; ok || t == "" {
			continue
		}
		seen[t] = struct{}{}
		out.Tags = append(out.Tags, t)
	}
	return out
}

// Validate returns nil or a *ValidationError naming each bad field.
func (f ContactForm) Validate() error {
	var fields []FieldError
	add := func(field, msg string) {
		fields = append(fields, FieldError{Field: field, Message: msg})
	}

	if strings.TrimSpace(f.FullName) == "" {
		add(FieldFullName, missingMessage("full name"))
	}

	email := strings.TrimSpace(f.Email)
	switch {
	case email == "":
		add(FieldEmail, missingMessage("email address"))
	case !emailRegex.MatchString(email):
		add(FieldEmail, invalidMessage("email address"))
	}

	phone := strings.TrimSpace(f.PhoneNumber)
	switch {
	case phone == "":
		add(FieldPhoneNumber, missingMessage("telephone number"))
	case !phoneRegex.MatchString(phone) || !phoneDigitsInRange(phone):
		add(FieldPhoneNumber, invalidMessage("telephone number"))
	}

	for _, t := range f.Tags {
		if strings.Contains(t, TagSeparator) {
			add("tags", "Tag names cannot contain commas.")
			break
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// Fields returns the request body for the remote API.
func (f ContactForm) Fields() ContactFields {
	return ContactFields{
		FullName:    f.FullName,
		PhoneNumber: f.PhoneNumber,
		Email:       f.Email,
		Tags:        JoinTags(f.Tags),
	}
}

// TagForm is a submitted new-tag form.
type TagForm struct {
	Name string
}

// Validate returns nil or a *ValidationError for the name field.
func (f TagForm) Validate() error {
	name := strings.TrimSpace(f.Name)
	switch {
	case name == "":
		return &ValidationError{Fields: []FieldError{{Field: FieldTagName, Message: missingMessage("tag name")}}}
	case !tagNameRegex.MatchString(name):
		return &ValidationError{Fields: []FieldError{{Field: FieldTagName, Message: invalidMessage("tag name")}}}
	}
	return nil
}

func phoneDigitsInRange(s string) bool {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n >= minPhoneDigits && n <= maxPhoneDigits
}

func missingMessage(desc string) string {
	article := "a"
	if strings.ContainsRune("aeiou", rune(desc[0])) {
		article = "an"
	}
	return "Please enter " + article + " " + desc + "."
}

func invalidMessage(desc string) string {
	return "Invalid " + desc + "."
}
