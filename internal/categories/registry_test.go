package categories

import (
	"reflect"
	"strings"
	"testing"
)

func TestResolveName(t *testing.T) {
	tests := []struct {
		name     string
		expected int
		found    bool
	}{
		{"Brute-Force", 18, true},
		{"brute-force", 18, true},
		{"bruteforce", 18, true},
		{"brute", 18, true},
		{"ddos", 4, true},
		{"DDoS-Attack", 4, true},
		{"  phishing  ", 7, true},
		{"SQLi", 16, true},
		{"iot", 23, true},
		{"port scan", 14, true},
		{"ssh", 22, true},
		{"nonexistent-category", 0, false},
		{"", 0, false},
	}

	for _, test := range tests {
		id, ok := ResolveName(test.name)
		if ok != test.found {
			t.Errorf("ResolveName(%q): expected found=%v, got %v", test.name, test.found, ok)
			continue
		}
		if id != test.expected {
			t.Errorf("ResolveName(%q): expected %d, got %d", test.name, test.expected, id)
		}
	}
}

func TestResolveNameCanonicalVariants(t *testing.T) {
	for _, c := range All() {
		variants := []string{
			c.Name,
			strings.ToUpper(c.Name),
			strings.Title(c.Name),
			strings.ReplaceAll(c.Name, "-", ""),
			strings.ReplaceAll(c.Name, "-", " "),
			"\t" + c.Name + "  ",
			" " + strings.ToUpper(strings.ReplaceAll(c.Name, "-", "")) + " ",
		}
		for _, v := range variants {
			id, ok := ResolveName(v)
			if !ok || id != c.ID {
				t.Errorf("ResolveName(%q): expected %d, got %d (found=%v)", v, c.ID, id, ok)
			}
		}
	}
}

func TestAliasesPointToCanonicalIDs(t *testing.T) {
	for alias, id := range aliases {
		if _, ok := ResolveID(id); !ok {
			t.Errorf("alias %q resolves to unknown id %d", alias, id)
		}
	}
}

func TestResolveID(t *testing.T) {
	if name, ok := ResolveID(18); !ok || name != "brute-force" {
		t.Errorf("ResolveID(18): got %q, %v", name, ok)
	}
	if _, ok := ResolveID(0); ok {
		t.Error("ResolveID(0) should not resolve")
	}
	if _, ok := ResolveID(24); ok {
		t.Error("ResolveID(24) should not resolve")
	}
}

func TestAll(t *testing.T) {
	all := All()
	if len(all) != 23 {
		t.Fatalf("expected 23 categories, got %d", len(all))
	}
	for i, c := range all {
		if c.ID != i+1 {
			t.Errorf("position %d: expected id %d, got %d", i, i+1, c.ID)
		}
	}
}

func TestValidateBatch(t *testing.T) {
	ok, ids, unresolved := ValidateBatch([]string{"ssh", "bogus", "Brute-Force", "nope", "ddos"})
	if ok {
		t.Error("batch with unknown names should not be valid")
	}
	if !reflect.DeepEqual(ids, []int{22, 18, 4}) {
		t.Errorf("unexpected ids: %v", ids)
	}
	if !reflect.DeepEqual(unresolved, []string{"bogus", "nope"}) {
		t.Errorf("unexpected unresolved names: %v", unresolved)
	}

	ok, ids, unresolved = ValidateBatch([]string{"phishing", "web-spam"})
	if !ok || len(unresolved) != 0 {
		t.Errorf("expected valid batch, got ok=%v unresolved=%v", ok, unresolved)
	}
	if !reflect.DeepEqual(ids, []int{7, 10}) {
		t.Errorf("unexpected ids: %v", ids)
	}
}

func TestSplitNames(t *testing.T) {
	got := SplitNames(" bruteforce, ssh ,,port-scan ")
	if !reflect.DeepEqual(got, []string{"bruteforce", "ssh", "port-scan"}) {
		t.Errorf("unexpected split: %v", got)
	}
	if got := SplitNames(" , "); len(got) != 0 {
		t.Errorf("expected no names, got %v", got)
	}
}

func TestParseIDs(t *testing.T) {
	ids, unknown, err := ParseIDs("18, 22,99")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(ids, []int{18, 22}) {
		t.Errorf("unexpected ids: %v", ids)
	}
	if !reflect.DeepEqual(unknown, []int{99}) {
		t.Errorf("unexpected unknown ids: %v", unknown)
	}

	if _, _, err := ParseIDs("18,ssh"); err == nil {
		t.Error("expected error for non-numeric id")
	}
	if _, _, err := ParseIDs(""); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList("18, ssh ,99,Port Scan")
	want := []string{"brute-force", "ssh", "99", "Port Scan"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	ok, ids, unresolved := ValidateBatch(got)
	if ok || !reflect.DeepEqual(ids, []int{18, 22, 14}) || !reflect.DeepEqual(unresolved, []string{"99"}) {
		t.Errorf("unexpected batch result %v %v %v", ok, ids, unresolved)
	}
}
