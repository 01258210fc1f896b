package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Validation limits for catalog fields.
const (
	maxNameLen      = 200
	maxSlugLen      = 300
	maxShortDescLen = 1_000
	maxDescLen      = 100_000
	maxTagLen       = 60
	maxTagCount     = 30

	// maxBodySize limits JSON request bodies on the admin API.
	maxBodySize = 1 << 20
)

// decodeJSON reads a JSON request body into dst, enforcing maxBodySize.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}

type productPayload struct {
	Name             string         `json:"name"`
	Slug             string         `json:"slug"`
	ShortDescription *string        `json:"short_description"`
	Description      *string        `json:"description"`
	IsVisible        bool           `json:"is_visible"`
	IsFeatured       bool           `json:"is_featured"`
	SortOrder        int            `json:"sort_order"`
	Specs            map[string]any `json:"specs"`
	CategoryIDs      []string       `json:"category_ids"`
	Tags             []string       `json:"tags"`
}

// validate checks product inputs and returns the first error found.
func (p *productPayload) validate() string {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(p.Name) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(p.Slug) > maxSlugLen {
		return "Slug is too long (max 300 characters)."
	}
	if p.ShortDescription != nil && utf8.RuneCountInString(*p.ShortDescription) > maxShortDescLen {
		return "Short description is too long (max 1,000 characters)."
	}
	if p.Description != nil && utf8.RuneCountInString(*p.Description) > maxDescLen {
		return "Description is too long (max 100,000 characters)."
	}
	if p.SortOrder < 0 {
		return "Sort order must not be negative."
	}
	cleaned := p.Tags[:0]
	for _, tag := range p.Tags {
		if tag = strings.TrimSpace(tag); tag == "" {
			continue
		}
		if utf8.RuneCountInString(tag) > maxTagLen {
			return "Tags must be 60 characters or fewer."
		}
		cleaned = append(cleaned, tag)
	}
	if len(cleaned) > maxTagCount {
		return "Too many tags (max 30)."
	}
	p.Tags = cleaned
	return ""
}

type categoryPayload struct {
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ParentID *string `json:"parent_id"`
}

// validate checks category inputs and returns the first error found.
func (c *categoryPayload) validate() string {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(c.Name) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(c.Slug) > maxSlugLen {
		return "Slug is too long (max 300 characters)."
	}
	return ""
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (l *loginPayload) validate() string {
	l.Email = strings.TrimSpace(strings.ToLower(l.Email))
	if l.Email == "" || !strings.Contains(l.Email, "@") {
		return "A valid email is required."
	}
	if l.Password == "" {
		return "Password is required."
	}
	return ""
}

type totpPayload struct {
	Code string `json:"code"`
}

func (t *totpPayload) validate() string {
	t.Code = strings.TrimSpace(t.Code)
	if len(t.Code) != 6 {
		return "A 6-digit code is required."
	}
	return ""
}
