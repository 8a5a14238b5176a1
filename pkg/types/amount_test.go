package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAmountMarshalsAsNumber(t *testing.T) {
	payload, err := json.Marshal(map[string]Amount{"price": NewAmount(decimal.RequireFromString("12.50"))})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != `{"price":12.5}` {
		t.Fatalf("unexpected payload %s", payload)
	}
}

func TestAmountUnmarshalAcceptsNumbersStringsAndNull(t *testing.T) {
	var body struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":10,"b":"4.25","c":null}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body.A.Equal(decimal.NewFromInt(10)) || !body.B.Equal(decimal.RequireFromString("4.25")) || !body.C.IsZero() {
		t.Fatalf("unexpected values %+v", body)
	}

	if err := json.Unmarshal([]byte(`{"a":"ten"}`), &body); err == nil {
		t.Fatal("expected error for non-numeric amount")
	}
}
