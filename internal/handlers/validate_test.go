package handlers

import (
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestValidateProductPayload(t *testing.T) {
	tests := []struct {
		name      string
		payload   productPayload
		wantError bool
	}{
		{"valid", productPayload{Name: "Phare LED X1"}, false},
		{"empty name", productPayload{Name: ""}, true},
		{"whitespace name", productPayload{Name: "   "}, true},
		{"name too long", productPayload{Name: strings.Repeat("a", 201)}, true},
		{"slug too long", productPayload{Name: "ok", Slug: strings.Repeat("a", 301)}, true},
		{"short description too long", productPayload{Name: "ok", ShortDescription: strPtr(strings.Repeat("a", 1_001))}, true},
		{"description too long", productPayload{Name: "ok", Description: strPtr(strings.Repeat("a", 100_001))}, true},
		{"negative sort order", productPayload{Name: "ok", SortOrder: -1}, true},
		{"tag too long", productPayload{Name: "ok", Tags: []string{strings.Repeat("a", 61)}}, true},
		{"empty slug allowed", productPayload{Name: "ok", Slug: ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.payload.validate()
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateProductPayloadCleansTags(t *testing.T) {
	p := productPayload{Name: "ok", Tags: []string{" led ", "", "phare", "  "}}
	if msg := p.validate(); msg != "" {
		t.Fatalf("unexpected error: %s", msg)
	}
	if len(p.Tags) != 2 || p.Tags[0] != "led" || p.Tags[1] != "phare" {
		t.Errorf("tags not cleaned: %v", p.Tags)
	}
}

func TestValidateProductPayloadTooManyTags(t *testing.T) {
	p := productPayload{Name: "ok"}
	for i := 0; i < 31; i++ {
		p.Tags = append(p.Tags, "tag")
	}
	if msg := p.validate(); msg == "" {
		t.Error("expected an error, got none")
	}
}

func TestValidateCategoryPayload(t *testing.T) {
	tests := []struct {
		name      string
		payload   categoryPayload
		wantError bool
	}{
		{"valid", categoryPayload{Name: "Éclairage"}, false},
		{"empty name", categoryPayload{Name: ""}, true},
		{"name too long", categoryPayload{Name: strings.Repeat("a", 201)}, true},
		{"slug too long", categoryPayload{Name: "ok", Slug: strings.Repeat("a", 301)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.payload.validate()
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateLoginPayload(t *testing.T) {
	tests := []struct {
		name      string
		payload   loginPayload
		wantError bool
	}{
		{"valid", loginPayload{Email: "admin@example.com", Password: "secret"}, false},
		{"missing email", loginPayload{Password: "secret"}, true},
		{"bad email", loginPayload{Email: "not-an-email", Password: "secret"}, true},
		{"missing password", loginPayload{Email: "admin@example.com"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.payload.validate()
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateLoginPayloadNormalizesEmail(t *testing.T) {
	p := loginPayload{Email: "  Admin@Example.COM ", Password: "x"}
	if msg := p.validate(); msg != "" {
		t.Fatalf("unexpected error: %s", msg)
	}
	if p.Email != "admin@example.com" {
		t.Errorf("email not normalized: %q", p.Email)
	}
}

func TestValidateTOTPPayload(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		wantError bool
	}{
		{"valid", "123456", false},
		{"padded", " 123456 ", false},
		{"too short", "12345", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := totpPayload{Code: tt.code}
			result := p.validate()
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}
