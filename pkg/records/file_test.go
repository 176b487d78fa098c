package records

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/dd0wney/cluso-astopo/pkg/topology"
)

// TestOpenFile tests reading a mapped dataset end to end
func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rel.txt")
	if err := os.WriteFile(path, []byte("# header\n1|2|-1\n2|3|0\n"), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer f.Close()

	if f.Path() != path {
		t.Errorf("Path() = %q, want %q", f.Path(), path)
	}

	count := 0
	if _, err := ScanRelationships(f, Options{}, func(topology.RelationshipRecord) { count++ }); err != nil {
		t.Fatalf("ScanRelationships failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 records, got %d", count)
	}
}

// TestOpenFile_Empty tests that an empty file yields no data
func TestOpenFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("Expected empty read, got %d bytes", len(data))
	}
}

// TestOpenFile_Missing tests that a missing source is an error
func TestOpenFile_Missing(t *testing.T) {
	if _, err := OpenFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("Expected error for missing file")
	}
}
