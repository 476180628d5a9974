package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDisabledIsNoOp(t *testing.T) {
	if err := Initialize("", false, "info"); err != nil {
		t.Fatalf("Initialize(disabled) failed: %v", err)
	}
	// Must not panic or create files.
	Goal("goal %s", "x")
	Cluster("k=%d", 3)
	l := Get(CategoryPersona)
	l.Error("still a no-op: %v", os.ErrNotExist)
	CloseAll()
}

func TestWritesCategoryFiles(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(dir, true, "debug"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer func() {
		CloseAll()
		debugMode = false
		logsDir = ""
	}()

	Audience("filtered %d users", 1234)
	AudienceDebug("predicate %s", "age_range")

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	var found bool
	for _, e := range entries {
		if strings.Contains(e.Name(), "audience") {
			found = true
			data, err := os.ReadFile(filepath.Join(dir, "logs", e.Name()))
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}
			if !strings.Contains(string(data), "filtered 1234 users") {
				t.Errorf("audience log missing info line: %s", data)
			}
			if !strings.Contains(string(data), "[DEBUG]") {
				t.Errorf("audience log missing debug line at debug level: %s", data)
			}
		}
	}
	if !found {
		t.Error("no audience log file written")
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(dir, true, "warn"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer func() {
		CloseAll()
		debugMode = false
		logsDir = ""
	}()

	l := Get(CategoryCluster)
	l.Info("should be filtered")
	l.Warn("should appear")

	entries, _ := os.ReadDir(filepath.Join(dir, "logs"))
	for _, e := range entries {
		if !strings.Contains(e.Name(), "cluster") {
			continue
		}
		data, _ := os.ReadFile(filepath.Join(dir, "logs", e.Name()))
		if strings.Contains(string(data), "should be filtered") {
			t.Error("info line written at warn level")
		}
		if !strings.Contains(string(data), "should appear") {
			t.Error("warn line missing")
		}
	}
}
