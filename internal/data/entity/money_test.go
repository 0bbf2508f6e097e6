package entity

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want Money
	}{
		{"100", 10000},
		{"100.00", 10000},
		{"99.5", 9950},
		{"0.01", 1},
		{".75", 75},
		{"10.004", 1000},
		{"10.005", 1001},
		{"10.999", 1100},
		{"-3.20", -320},
		{" 42.10 ", 4210},
	}

	for _, tt := range tests {
		got, err := ParseMoney(tt.in)
		if err != nil {
			t.Errorf("ParseMoney(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMoney(%q): got %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseMoneyRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "1.2.3", "1e5", ".", "12,50"} {
		if _, err := ParseMoney(in); !errors.Is(err, ErrInvalidMoney) {
			t.Errorf("ParseMoney(%q): got %v, want ErrInvalidMoney", in, err)
		}
	}

	for _, in := range []string{
		"999999999999999999999",
		"92233720368547758.08",
		"-92233720368547758.50",
		"92233720368547758.075",
	} {
		if got, err := ParseMoney(in); !errors.Is(err, ErrMoneyOverflow) {
			t.Errorf("ParseMoney(%q) = %d, %v; want ErrMoneyOverflow", in, got, err)
		}
	}
}

func TestParseMoneyLimits(t *testing.T) {
	tests := []struct {
		in   string
		want Money
	}{
		{"92233720368547758.07", math.MaxInt64},
		{"-92233720368547758.07", -math.MaxInt64},
		{"92233720368547758.064", math.MaxInt64 - 1},
		{"92233720368547758.065", math.MaxInt64},
	}

	for _, tt := range tests {
		got, err := ParseMoney(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseMoney(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestMoneyString(t *testing.T) {
	if got := Money(30000).String(); got != "300.00" {
		t.Errorf("got %q, want 300.00", got)
	}
	if got := Money(5).String(); got != "0.05" {
		t.Errorf("got %q, want 0.05", got)
	}
	if got := Money(-1250).String(); got != "-12.50" {
		t.Errorf("got %q, want -12.50", got)
	}
	if got := Money(math.MinInt64).String(); got != "-92233720368547758.08" {
		t.Errorf("got %q, want -92233720368547758.08", got)
	}
}

func TestMoneyJSON(t *testing.T) {
	var payload struct {
		Amount Money `json:"amount"`
	}

	if err := json.Unmarshal([]byte(`{"amount": 150.5}`), &payload); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if payload.Amount != 15050 {
		t.Errorf("number: got %d, want 15050", payload.Amount)
	}

	if err := json.Unmarshal([]byte(`{"amount": "20.00"}`), &payload); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if payload.Amount != 2000 {
		t.Errorf("string: got %d, want 2000", payload.Amount)
	}

	out, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"amount":20.00}` {
		t.Errorf("marshal: got %s", out)
	}
}

func TestMoneyMulIntOverflow(t *testing.T) {
	if _, err := Money(1 << 62).MulInt(4); !errors.Is(err, ErrMoneyOverflow) {
		t.Errorf("expected overflow, got %v", err)
	}

	got, err := Money(12345).MulInt(3)
	if err != nil || got != 37035 {
		t.Errorf("got %d, %v; want 37035", got, err)
	}
}

func TestNightsBetween(t *testing.T) {
	in := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	out := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	if got := NightsBetween(in, out); got != 3 {
		t.Errorf("got %d nights, want 3", got)
	}
	if got := NightsBetween(out, in); got != -3 {
		t.Errorf("got %d nights, want -3", got)
	}
}

func TestNewBookingReference(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	a := NewBookingReference(now)
	b := NewBookingReference(now)

	if a == b {
		t.Fatalf("references must differ: %s", a)
	}
	if len(a) != len("BKG-20261019-ABCDEF12") || a[:13] != "BKG-20261019-" {
		t.Errorf("unexpected reference format %q", a)
	}
}
