package validation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigValidator_Required(t *testing.T) {
	cv := NewConfigValidator("inputs")
	cv.Required("relationships", "")

	if !cv.HasErrors() {
		t.Error("Expected error for empty required field")
	}

	cv2 := NewConfigValidator("inputs")
	cv2.Required("relationships", "as-rel.txt")

	if cv2.HasErrors() {
		t.Error("Expected no error for non-empty required field")
	}
}

func TestConfigValidator_Positive(t *testing.T) {
	tests := []struct {
		value     int
		expectErr bool
	}{
		{1, false},
		{15, false},
		{0, true},
		{-4, true},
	}

	for _, tt := range tests {
		cv := NewConfigValidator("ranking").Positive("top_n", tt.value)
		if cv.HasErrors() != tt.expectErr {
			t.Errorf("Positive(%d): HasErrors() = %v, want %v", tt.value, cv.HasErrors(), tt.expectErr)
		}
	}
}

func TestConfigValidator_NonNegative(t *testing.T) {
	if NewConfigValidator("tier1").NonNegative("max_rejections", 0).HasErrors() {
		t.Error("Expected zero to pass")
	}
	if !NewConfigValidator("tier1").NonNegative("max_rejections", -1).HasErrors() {
		t.Error("Expected -1 to fail")
	}
}

func TestConfigValidator_RangeInt(t *testing.T) {
	tests := []struct {
		name      string
		value     int
		expectErr bool
	}{
		{"at min", 1, false},
		{"inside", 8, false},
		{"at max", 64, false},
		{"below", 0, true},
		{"above", 65, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := NewConfigValidator("cone").RangeInt("workers", tt.value, 1, 64)
			if cv.HasErrors() != tt.expectErr {
				t.Errorf("RangeInt(%d): HasErrors() = %v, want %v", tt.value, cv.HasErrors(), tt.expectErr)
			}
		})
	}
}

func TestConfigValidator_OneOf(t *testing.T) {
	allowed := []string{"latex", "table", "json"}

	if NewConfigValidator("report").OneOf("format", "table", allowed).HasErrors() {
		t.Error("Expected table to be accepted")
	}

	cv := NewConfigValidator("report").OneOf("format", "csv", allowed)
	if !cv.HasErrors() {
		t.Fatal("Expected csv to be rejected")
	}
	if !strings.Contains(cv.Validate().Error(), "report.format") {
		t.Errorf("error should name the field: %v", cv.Validate())
	}
}

func TestConfigValidator_FileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "as-rel.txt")
	if err := os.WriteFile(file, []byte("1|2|-1\n"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	tests := []struct {
		name      string
		path      string
		expectErr bool
	}{
		{"existing file", file, false},
		{"empty path skipped", "", false},
		{"missing file", filepath.Join(dir, "nope.txt"), true},
		{"directory", dir, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := NewConfigValidator("inputs").FileExists("relationships", tt.path)
			if cv.HasErrors() != tt.expectErr {
				t.Errorf("HasErrors() = %v, want %v (%v)", cv.HasErrors(), tt.expectErr, cv.Errors())
			}
		})
	}
}

func TestConfigValidator_Custom(t *testing.T) {
	sentinel := errors.New("bucket without key")

	cv := NewConfigValidator("export").Custom("s3", func() error { return sentinel })
	if !errors.Is(cv.Validate(), sentinel) {
		t.Errorf("Expected wrapped sentinel, got %v", cv.Validate())
	}
}

func TestConfigValidator_When(t *testing.T) {
	cv := NewConfigValidator("export").When(false, func(v *ConfigValidator) {
		v.Required("path", "")
	})
	if cv.HasErrors() {
		t.Error("When(false) should not apply validations")
	}

	cv.When(true, func(v *ConfigValidator) {
		v.Required("path", "")
	})
	if !cv.HasErrors() {
		t.Error("When(true) should apply validations")
	}
}

func TestConfigValidator_CollectsAll(t *testing.T) {
	cv := NewConfigValidator("cfg").
		Required("a", "").
		Positive("b", 0).
		OneOf("c", "x", []string{"y"})

	if len(cv.Errors()) != 3 {
		t.Fatalf("Expected 3 errors, got %d", len(cv.Errors()))
	}

	err := cv.Validate()
	for _, field := range []string{"cfg.a", "cfg.b", "cfg.c"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("joined error missing %s: %v", field, err)
		}
	}
}

func TestConfigValidator_NoErrors(t *testing.T) {
	if err := NewConfigValidator("cfg").Positive("n", 3).Validate(); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}

func TestDefaultOr(t *testing.T) {
	if got := DefaultOr("", "latex"); got != "latex" {
		t.Errorf("DefaultOr empty = %q", got)
	}
	if got := DefaultOr("json", "latex"); got != "json" {
		t.Errorf("DefaultOr set = %q", got)
	}
	if got := DefaultOrInt(0, 15); got != 15 {
		t.Errorf("DefaultOrInt(0) = %d", got)
	}
	if got := DefaultOrInt(-2, 15); got != 15 {
		t.Errorf("DefaultOrInt(-2) = %d", got)
	}
	if got := DefaultOrInt(20, 15); got != 20 {
		t.Errorf("DefaultOrInt(20) = %d", got)
	}
}
