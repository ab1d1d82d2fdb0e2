package ports

import (
	"encoding/json"
	"testing"
)

func TestFieldDistinguishesAbsentNullAndValue(t *testing.T) {
	type payload struct {
		Name  Field[string]  `json:"name"`
		Price Field[float64] `json:"price"`
	}

	var absent payload
	if err := json.Unmarshal([]byte(`{}`), &absent); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if absent.Name.Set || absent.Price.Set {
		t.Fatalf("expected absent keys to stay unset: %+v", absent)
	}

	var null payload
	if err := json.Unmarshal([]byte(`{"price":null}`), &null); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !null.Price.Set || null.Price.Valid {
		t.Fatalf("expected explicit null to be set-but-invalid: %+v", null.Price)
	}

	var value payload
	if err := json.Unmarshal([]byte(`{"name":"drop","price":1.5}`), &value); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !value.Name.Set || !value.Name.Valid || value.Name.Value != "drop" {
		t.Fatalf("expected name to carry value: %+v", value.Name)
	}
	if !value.Price.Set || !value.Price.Valid || value.Price.Value != 1.5 {
		t.Fatalf("expected price to carry value: %+v", value.Price)
	}
}

func TestFieldRejectsTypeMismatch(t *testing.T) {
	var field Field[float64]
	if err := json.Unmarshal([]byte(`"not a number"`), &field); err == nil {
		t.Fatalf("expected unmarshal error for type mismatch")
	}
}
