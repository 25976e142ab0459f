package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyRoundsToTwoDecimals(t *testing.T) {
	m := NewMoneyFromDecimal(decimal.RequireFromString("199.999"))
	if m.String() != "200.00" {
		t.Fatalf("want 200.00 got %s", m.String())
	}
	if NewMoneyFromInt(30000).String() != "30000.00" {
		t.Fatalf("integer amounts should render with 2 decimals")
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := NewMoneyFromInt(250000)
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(out) != `"250000.00"` {
		t.Fatalf("unexpected json: %s", out)
	}

	var fromString Money
	if err := json.Unmarshal([]byte(`"1234.567"`), &fromString); err != nil {
		t.Fatalf("unmarshal string error: %v", err)
	}
	if fromString.String() != "1234.57" {
		t.Fatalf("want 1234.57 got %s", fromString.String())
	}

	var fromNumber Money
	if err := json.Unmarshal([]byte(`99.9`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number error: %v", err)
	}
	if fromNumber.String() != "99.90" {
		t.Fatalf("want 99.90 got %s", fromNumber.String())
	}
}
