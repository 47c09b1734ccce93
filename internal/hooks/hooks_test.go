package hooks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trunkrel/trunkrel/internal/logging"
)

func TestRunPassesEnvironment(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")
	r := &Runner{Dir: dir, Log: logging.Discard()}

	err := r.Run(
		[]string{`printf '%s' "$TRUNKREL_TAG" > out.txt`},
		map[string]string{"TRUNKREL_TAG": "v1.2.3"},
	)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "v1.2.3" {
		t.Fatalf("hook output = %q, want %q", data, "v1.2.3")
	}
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()
	r := &Runner{Dir: dir, Log: logging.Discard()}

	err := r.Run([]string{"false", "touch after.txt"}, nil)
	if err == nil {
		t.Fatal("expected failure from first command")
	}
	if !strings.Contains(err.Error(), `"false"`) {
		t.Fatalf("error does not name the command: %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "after.txt")); !os.IsNotExist(statErr) {
		t.Fatal("second command ran after failure")
	}
}
