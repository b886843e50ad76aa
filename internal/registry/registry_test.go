package registry

import "testing"

func TestNewAndLookup(t *testing.T) {
	r, err := New([]Entry{
		{ID: "a", FileName: "a.bin", URL: "http://x/a"},
		{ID: " b ", Name: "Bee", FileName: "b.bin"},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	e, ok := r.Lookup("a")
	if !ok || e.FileName != "a.bin" || e.Name != "a" {
		t.Fatalf("unexpected entry: %+v ok=%v", e, ok)
	}
	if e, ok := r.Lookup("b"); !ok || e.Name != "Bee" {
		t.Fatalf("expected trimmed id lookup, got %+v ok=%v", e, ok)
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Fatalf("unexpected hit")
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	r, err := New([]Entry{{ID: "a", FileName: "a.bin"}, {ID: "b", FileName: "b.bin"}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out := r.Entries()
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "b" {
		t.Fatalf("unexpected order: %+v", out)
	}
	// mutate returned slice and ensure internal catalog remains intact
	out[0].ID = "z"
	if r.Entries()[0].ID != "a" {
		t.Fatalf("catalog mutated via returned slice")
	}
}

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name    string
		entries []Entry
	}{
		{"missing id", []Entry{{FileName: "a.bin"}}},
		{"missing file", []Entry{{ID: "a"}}},
		{"duplicate", []Entry{{ID: "a", FileName: "a.bin"}, {ID: "a", FileName: "b.bin"}}},
	}
	for _, c := range cases {
		if _, err := New(c.entries); err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
	}
}

func TestDefaultCatalog(t *testing.T) {
	r, err := New(Default())
	if err != nil {
		t.Fatalf("default catalog invalid: %v", err)
	}
	e, ok := r.Lookup("tiny-garden-270m")
	if !ok || e.FileName != "tiny_garden.litertlm" || e.URL == "" {
		t.Fatalf("unexpected default entry: %+v", e)
	}
}

func TestNilRegistry(t *testing.T) {
	var r *Registry
	if r.Entries() != nil {
		t.Fatalf("expected nil entries")
	}
	if _, ok := r.Lookup("a"); ok {
		t.Fatalf("unexpected hit on nil registry")
	}
}
