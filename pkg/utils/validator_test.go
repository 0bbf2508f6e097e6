package utils

import (
	"strings"
	"testing"
)

type sampleRequest struct {
	Email  string `validate:"required,email"`
	Guests int    `validate:"min=1,max=10"`
	Date   string `validate:"required,datetime=2006-01-02"`
}

func TestValidateStruct(t *testing.T) {
	errs := ValidateStruct(sampleRequest{Email: "nope", Guests: 0, Date: "19-10-2026"})

	if len(errs) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %v", len(errs), errs)
	}
	if errs["Email"] != "Invalid email format" {
		t.Errorf("Email: got %q", errs["Email"])
	}
	if errs["Guests"] != "Minimum is 1" {
		t.Errorf("Guests: got %q", errs["Guests"])
	}
	if !strings.Contains(errs["Date"], "2006-01-02") {
		t.Errorf("Date: got %q", errs["Date"])
	}

	if errs := ValidateStruct(sampleRequest{Email: "a@b.co", Guests: 2, Date: "2026-10-19"}); errs != nil {
		t.Errorf("valid struct reported errors: %v", errs)
	}
}

func TestValidateStructPositiveAmount(t *testing.T) {
	type amount struct {
		Cents int64 `validate:"gt=0"`
	}

	if got := ValidateStruct(amount{Cents: 0})["Cents"]; got != "Must be greater than 0" {
		t.Errorf("zero amount: got %q", got)
	}
	if errs := ValidateStruct(amount{Cents: 1}); errs != nil {
		t.Errorf("positive amount reported errors: %v", errs)
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 7},
		{"3", 3},
		{"-1", 7},
		{"x", 7},
	}
	for _, tt := range tests {
		if got := ParseInt(tt.in, 7); got != tt.want {
			t.Errorf("ParseInt(%q): got %d, want %d", tt.in, got, tt.want)
		}
	}
}
