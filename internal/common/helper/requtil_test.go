package helper

import (
	"strings"
	"testing"
)

func TestIsValidRoundID(t *testing.T) {
	good := []string{"R1", "round_2026-01", "abc-DEF_123", strings.Repeat("a", 64)}
	for _, id := range good {
		if !IsValidRoundID(id) {
			t.Fatalf("%q should be valid", id)
		}
	}
	bad := []string{"", "round 1", "round#1", "中文", strings.Repeat("a", 65)}
	for _, id := range bad {
		if IsValidRoundID(id) {
			t.Fatalf("%q should be invalid", id)
		}
	}
}

func TestValidateRoundEligible(t *testing.T) {
	base := RoundEligibleParsed{RoundID: "R1", ProductID: "P1", TargetSize: 10, WinnerCount: 1}
	if ok, msg := ValidateRoundEligible(&base); !ok {
		t.Fatalf("base input should pass: %s", msg)
	}

	cases := []RoundEligibleParsed{
		{RoundID: "", ProductID: "P1", TargetSize: 10, WinnerCount: 1},
		{RoundID: "R1", ProductID: "", TargetSize: 10, WinnerCount: 1},
		{RoundID: "R1", ProductID: "P1", TargetSize: 1, WinnerCount: 1},
		{RoundID: "R1", ProductID: "P1", TargetSize: 10, WinnerCount: 0},
		{RoundID: "R1", ProductID: "P1", TargetSize: 10, WinnerCount: 10},
		{RoundID: "R1", ProductID: "P1", TargetSize: 10, WinnerCount: 11},
	}
	for i, c := range cases {
		if ok, _ := ValidateRoundEligible(&c); ok {
			t.Fatalf("case %d should be rejected: %+v", i, c)
		}
	}
}

func TestParseRoundEligibleFromJSON(t *testing.T) {
	in := `{"round_id":"R1","product_id":"P1","target_size":10,"winner_count":2,"event_time":1700000000000}`
	out, ok, msg := ParseRoundEligibleFromJSON(strings.NewReader(in))
	if !ok {
		t.Fatalf("parse failed: %s", msg)
	}
	if out.RoundID != "R1" || out.ProductID != "P1" || out.TargetSize != 10 || out.WinnerCount != 2 {
		t.Fatalf("unexpected parse result: %+v", out)
	}

	if _, ok, _ := ParseRoundEligibleFromJSON(strings.NewReader("{not json")); ok {
		t.Fatalf("broken json should fail")
	}
}

func TestIsJSONContentType(t *testing.T) {
	yes := []string{"application/json", "application/json; charset=utf-8", " Application/JSON "}
	for _, ct := range yes {
		if !IsJSONContentType(ct) {
			t.Fatalf("%q should be json", ct)
		}
	}
	no := []string{"", "application/x-www-form-urlencoded", "text/plain"}
	for _, ct := range no {
		if IsJSONContentType(ct) {
			t.Fatalf("%q should not be json", ct)
		}
	}
}
