package input

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	data := `# blocklist
192.0.2.1, 192.0.2.2;192.0.2.3
2001:db8::1	not-an-ip
192.0.2.1 # repeated

300.1.1.1
`
	list, err := Read(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"192.0.2.1", "192.0.2.2", "192.0.2.3", "2001:db8::1"}
	if !reflect.DeepEqual(list.IPs, want) {
		t.Errorf("expected %v, got %v", want, list.IPs)
	}
	if !reflect.DeepEqual(list.Invalid, []string{"not-an-ip", "300.1.1.1"}) {
		t.Errorf("unexpected invalid tokens %v", list.Invalid)
	}
	if list.Duplicates != 1 {
		t.Errorf("expected 1 duplicate, got %d", list.Duplicates)
	}
}

func TestReadEmpty(t *testing.T) {
	list, err := Read(strings.NewReader("\n\n# nothing\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list.IPs) != 0 || len(list.Invalid) != 0 {
		t.Errorf("expected an empty list, got %+v", list)
	}
}

func TestReadFileOrStdin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ips.txt")
	if err := os.WriteFile(path, []byte("198.51.100.7\r\n198.51.100.8\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	list, err := ReadFileOrStdin(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(list.IPs, []string{"198.51.100.7", "198.51.100.8"}) {
		t.Errorf("unexpected IPs %v", list.IPs)
	}

	if _, err := ReadFileOrStdin(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestSplit(t *testing.T) {
	got := Split(" a,b;; c\td ")
	if !reflect.DeepEqual(got, []string{"a", "b", "c", "d"}) {
		t.Errorf("unexpected split %v", got)
	}
}
