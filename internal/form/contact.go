// Package form validates and sanitizes contact form submissions.
package form

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Service types offered on the contact form. ServiceWorkshop requires a
// workshop selection alongside it.
const (
	ServiceBusiness   = "business"
	ServiceLeadership = "leadership"
	ServiceCareer     = "career"
	ServiceWorkshop   = "workshop"
	ServiceOther      = "other"
)

const (
	maxNameLength         = 50
	maxOrganizationLength = 100
	minMessageLength      = 10
	maxMessageLength      = 1000
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Korean phone numbers: mobile prefixes, Seoul (02) and other area codes,
	// with optional hyphens.
	phoneRe = regexp.MustCompile(`^(01[016789]|02|0[3-9][0-9])-?[0-9]{3,4}-?[0-9]{4}$`)

	// strict drops every tag; contact messages are plain text.
	strict = bluemonday.StrictPolicy()
)

// ContactRequest is the body of POST /api/contact.
type ContactRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Organization string `json:"organization,omitempty"`
	Service      string `json:"service"`
	Workshop     string `json:"workshop,omitempty"`
	Message      string `json:"message"`
}

// Sanitize trims surrounding whitespace from every field and strips any
// markup from the freeform message.
func (c *ContactRequest) Sanitize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Organization = strings.TrimSpace(c.Organization)
	c.Service = strings.TrimSpace(c.Service)
	c.Workshop = strings.TrimSpace(c.Workshop)
	c.Message = strings.TrimSpace(strict.Sanitize(c.Message))
}

// Validate checks every field and returns per-field error messages. An empty
// map means the request is valid.
func (c *ContactRequest) Validate() map[string]string {
	errs := make(map[string]string)

	if c.Name == "" || utf8.RuneCountInString(c.Name) > maxNameLength {
		errs["name"] = "Please enter your name (up to 50 characters)."
	}
	if !IsValidEmail(c.Email) {
		errs["email"] = "Please enter a valid email address."
	}
	if c.Phone != "" && !IsValidPhone(c.Phone) {
		errs["phone"] = "Please enter a valid phone number."
	}
	if utf8.RuneCountInString(c.Organization) > maxOrganizationLength {
		errs["organization"] = "Please keep the organization under 100 characters."
	}
	if c.Service == "" {
		errs["service"] = "Please choose a service type."
	}
	if c.Service == ServiceWorkshop && c.Workshop == "" {
		errs["workshop"] = "Please choose a workshop type."
	}
	if n := utf8.RuneCountInString(c.Message); n < minMessageLength || n > maxMessageLength {
		errs["message"] = "Please write at least 10 characters (up to 1000)."
	}

	return errs
}

// IsValidEmail reports whether s looks like an email address.
func IsValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// IsValidPhone reports whether s is a plausible Korean phone number.
// Whitespace inside the number is ignored.
func IsValidPhone(s string) bool {
	return phoneRe.MatchString(strings.Join(strings.Fields(s), ""))
}

// EscapeHTML escapes user input for safe inclusion in HTML output.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}
