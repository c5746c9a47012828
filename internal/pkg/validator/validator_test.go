package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // v7
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B", // v7, uppercase
		"123e4567-e89b-12d3-a456-426614174000", // v1
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"0188d0f2-7b8c-9b4a-8a2b-6b8b8b8b8b8b", // version out of range
		"",
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	if _, ok := IsValidDate("2026-08-31"); !ok {
		t.Error("IsValidDate(\"2026-08-31\") = false, want true")
	}
	for _, s := range []string{"31-08-2026", "2026-13-01", "2026-08-32", "not-a-date", ""} {
		if _, ok := IsValidDate(s); ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"present", "late", "absent"}
	if !IsInSlice("late", slice) {
		t.Error("IsInSlice(\"late\") = false, want true")
	}
	if IsInSlice("holiday", slice) {
		t.Error("IsInSlice(\"holiday\") = true, want false")
	}
	if IsInSlice("present", nil) {
		t.Error("IsInSlice on nil slice = true, want false")
	}
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "latitude", Message: "latitude must be between -90 and 90"},
		{Field: "status", Message: "status is not a recognized value"},
	}

	m := errs.ToMap()
	if len(m) != 2 {
		t.Errorf("ToMap() returned %d entries, want 2", len(m))
	}
	if m["latitude"] != "latitude must be between -90 and 90" {
		t.Errorf("ToMap()[latitude] = %q", m["latitude"])
	}

	msg := errs.Error()
	if msg == "" {
		t.Error("Error() should not be empty")
	}
}
