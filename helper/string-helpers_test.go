package helper

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestTokensToOrderedMap(t *testing.T) {
	om := TokensToOrderedMap("artwork_id:id, title:name")
	v, ok := om.Get("artwork_id")
	if !ok || v.(string) != "id" {
		t.Fatal("expected key artwork_id with value id")
	}
	v, ok = om.Get("title")
	if !ok || v.(string) != "name" {
		t.Fatal("expected key title with value name")
	}
}

func TestOrderedMapKeysToStringSlice(t *testing.T) {
	log := logrus.New()
	om := TokensToOrderedMap("a:1,b:2,c:3")
	out := make([]string, 3)
	idx := 0
	OrderedMapKeysToStringSlice(log, om, &out, &idx)
	if idx != 3 {
		t.Fatalf("expected idx 3, got %v", idx)
	}
	expected := []string{"a", "b", "c"}
	for i := range expected {
		if out[i] != expected[i] {
			t.Fatalf("expected %v at position %v, got %v", expected[i], i, out[i])
		}
	}
}

func TestGenerateStringOfBindPlaceholders(t *testing.T) {
	if got := GenerateStringOfBindPlaceholders(3); got != "?,?,?" {
		t.Fatalf("expected ?,?,? got %q", got)
	}
	if got := GenerateStringOfBindPlaceholders(0); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestGenerateStringOfColsEqualsBinds(t *testing.T) {
	got := GenerateStringOfColsEqualsBinds([]string{"artwork_id", "exhibition_id"}, " and ")
	if got != "artwork_id = ? and exhibition_id = ?" {
		t.Fatalf("unexpected SQL snippet %q", got)
	}
}
