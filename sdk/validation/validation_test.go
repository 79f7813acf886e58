package validation_test

import (
	"testing"
	"time"

	"github.com/jrazmi/artplanner/sdk/validation"
)

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"My Sketch (1).PNG":    "my-sketch-1.png",
		"../../etc/passwd":     "passwd",
		`C:\art\portrait.jpeg`: "portrait.jpeg",
		"Étude.jpg":            "etude.jpg",
		".png":                 "upload.png",
		"noext":                "noext",
	}

	for in, want := range cases {
		if got := validation.SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseFlexibleDate(t *testing.T) {
	got, err := validation.ParseFlexibleDate("2026-03-14T09:30:00.000Z")
	if err != nil {
		t.Fatalf("ParseFlexibleDate failed: %v", err)
	}
	if got.Year() != 2026 || got.Month() != time.March || got.Day() != 14 {
		t.Errorf("Unexpected date %v", got)
	}

	got, err = validation.ParseFlexibleDate("2026-12-01")
	if err != nil {
		t.Fatalf("ParseFlexibleDate failed: %v", err)
	}
	if got.Month() != time.December || got.Day() != 1 {
		t.Errorf("Unexpected date %v", got)
	}

	if _, err := validation.ParseFlexibleDate("next tuesday"); err == nil {
		t.Error("Expected error for unparseable date")
	}
}
