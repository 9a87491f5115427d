package formser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tomasbasham/formser"
)

func TestAdditionalData(t *testing.T) {
	t.Parallel()

	a := formser.NewAdditionalData()
	a.Set("b", 1)
	a.Set("a", "x")
	a.Set("c", true)
	a.Set("b", 2)

	if diff := cmp.Diff(a.Keys(), []string{"b", "a", "c"}); diff != "" {
		t.Errorf("keys mismatch (-got +want):\n%s", diff)
	}
	if v, ok := a.Get("b"); !ok || v != 2 {
		t.Errorf("expected replaced value 2, got %v", v)
	}

	a.Delete("a")
	a.Delete("missing")
	if diff := cmp.Diff(a.Keys(), []string{"b", "c"}); diff != "" {
		t.Errorf("keys mismatch after delete (-got +want):\n%s", diff)
	}
	if a.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", a.Len())
	}

	var visited []string
	a.Range(func(key string, _ interface{}) bool {
		visited = append(visited, key)
		return false
	})
	if diff := cmp.Diff(visited, []string{"b"}); diff != "" {
		t.Errorf("range did not stop (-got +want):\n%s", diff)
	}
}

func TestAdditionalData_Nil(t *testing.T) {
	t.Parallel()

	var a *formser.AdditionalData
	if a.Len() != 0 || a.Keys() != nil {
		t.Error("expected empty nil bag")
	}
	if _, ok := a.Get("x"); ok {
		t.Error("expected missing key")
	}

	w := formser.NewWriter()
	if err := w.WriteAdditionalData(a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.String() != "" {
		t.Errorf("expected no output, got %q", w.String())
	}
}

func TestAdditionalData_ZeroValue(t *testing.T) {
	t.Parallel()

	var a formser.AdditionalData
	a.Set("key", "value")
	if v, ok := a.Get("key"); !ok || v != "value" {
		t.Errorf("expected value, got %v", v)
	}
}
