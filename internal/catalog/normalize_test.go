package catalog

import (
	"reflect"
	"testing"

	"autovitrine/internal/models"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// TestNormalizeDefaults verifies that absent optional fields map to zero
// values and that collections are never nil on output.
func TestNormalizeDefaults(t *testing.T) {
	raw := models.RawProduct{ID: "p1", Name: "Phare LED X1", Slug: "phare-led-x1", IsVisible: true}

	got := Normalize(raw)

	if got.ID != "p1" || got.Name != "Phare LED X1" || got.Slug != "phare-led-x1" {
		t.Errorf("identity fields not preserved: %+v", got)
	}
	if got.ShortDescription != "" || got.Description != "" {
		t.Error("absent descriptions should be empty strings")
	}
	if got.IsFeatured || got.SortOrder != 0 {
		t.Error("absent featured/sortOrder should be zero values")
	}
	if got.CategoryIDs == nil || got.Tags == nil || got.Images == nil || got.Specs == nil {
		t.Error("collections must be non-nil even when the source omits them")
	}
	if len(got.CategoryIDs)+len(got.Tags)+len(got.Images)+len(got.Specs) != 0 {
		t.Error("collections should be empty for a bare record")
	}
}

func TestNormalizeFlattensAssociations(t *testing.T) {
	raw := models.RawProduct{
		ID: "p1", Name: "Jante Racing", Slug: "jante-racing", IsVisible: true,
		ShortDescription: strPtr("Jante légère"),
		IsFeatured:       boolPtr(true),
		SortOrder:        intPtr(4),
		Specs:            map[string]any{"diametre": 19},
		Images: []models.RawImage{
			{ID: "i1", URL: "/uploads/a.jpg", Alt: strPtr("face"), IsCover: boolPtr(true)},
			{ID: "i2", URL: "/uploads/b.jpg"},
		},
		Categories: []models.RawCategoryRef{{CategoryID: "cat-jantes"}},
		Tags:       []models.RawTagRef{{Tag: "jante"}, {Tag: "racing"}},
	}

	got := Normalize(raw)

	if !reflect.DeepEqual(got.CategoryIDs, []string{"cat-jantes"}) {
		t.Errorf("CategoryIDs = %v", got.CategoryIDs)
	}
	if !reflect.DeepEqual(got.Tags, []string{"jante", "racing"}) {
		t.Errorf("Tags = %v", got.Tags)
	}
	if len(got.Images) != 2 {
		t.Fatalf("len(Images) = %d, want 2", len(got.Images))
	}
	if !got.Images[0].IsCover || got.Images[0].Alt != "face" {
		t.Errorf("first image = %+v", got.Images[0])
	}
	// Missing alt inherits the product name; missing cover flag is false.
	if got.Images[1].Alt != "Jante Racing" || got.Images[1].IsCover {
		t.Errorf("second image = %+v", got.Images[1])
	}
	if !got.IsFeatured || got.SortOrder != 4 || got.ShortDescription != "Jante légère" {
		t.Errorf("scalar optionals = %+v", got)
	}
}

// TestNormalizeIsIdempotent verifies that normalizing the same record
// twice yields equal results, and that the output does not alias the
// input's mutable state.
func TestNormalizeIsIdempotent(t *testing.T) {
	raw := models.RawProduct{
		ID: "p1", Name: "Becquet", Slug: "becquet", IsVisible: true,
		Specs: map[string]any{"matiere": "carbone"},
		Tags:  []models.RawTagRef{{Tag: "carbone"}},
	}

	first := Normalize(raw)
	second := Normalize(raw)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated normalization diverged:\nfirst  %+v\nsecond %+v", first, second)
	}

	// Mutating the output must not leak into a later normalization.
	first.Specs["matiere"] = "plastique"
	third := Normalize(raw)
	if third.Specs["matiere"] != "carbone" {
		t.Error("normalized specs alias the raw record's map")
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		name       string
		raw        models.RawCategory
		wantParent *string
	}{
		{name: "root category", raw: models.RawCategory{ID: "c1", Name: "Jantes", Slug: "jantes"}, wantParent: nil},
		{name: "child category", raw: models.RawCategory{ID: "c2", Name: "Ampoules", Slug: "ampoules", ParentID: strPtr("c1")}, wantParent: strPtr("c1")},
		{name: "empty parent id treated as absent", raw: models.RawCategory{ID: "c3", Name: "X", Slug: "x", ParentID: strPtr("")}, wantParent: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCategory(tt.raw)
			if got.ID != tt.raw.ID || got.Name != tt.raw.Name || got.Slug != tt.raw.Slug {
				t.Errorf("identity fields not preserved: %+v", got)
			}
			switch {
			case tt.wantParent == nil && got.ParentID != nil:
				t.Errorf("ParentID = %q, want nil", *got.ParentID)
			case tt.wantParent != nil && (got.ParentID == nil || *got.ParentID != *tt.wantParent):
				t.Errorf("ParentID = %v, want %q", got.ParentID, *tt.wantParent)
			}
		})
	}
}
