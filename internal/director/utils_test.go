package director

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGenerateScenePath(t *testing.T) {
	path := GenerateScenePath()

	if !strings.Contains(path, "scene_") {
		t.Errorf("Path should contain 'scene_': %s", path)
	}
	if !strings.HasPrefix(path, ScenesDir) {
		t.Errorf("Path should be in %s: %s", ScenesDir, path)
	}
	if filepath.Ext(path) != ".yaml" {
		t.Errorf("Path should end in .yaml: %s", path)
	}

	t.Logf("Generated path: %s", path)
}

func TestFindLatestScene(t *testing.T) {
	testDir := t.TempDir()

	files := []string{
		filepath.Join(testDir, "scene_2026-02-12_10-00-00.yaml"),
		filepath.Join(testDir, "scene_2026-02-13_01-00-00.yml"),
		filepath.Join(testDir, "scene_2026-02-11_15-30-00.yaml"),
	}

	for i, f := range files {
		if err := os.WriteFile(f, []byte("version: \"1.0\"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		if err := os.Chtimes(f, modTime, modTime); err != nil {
			t.Fatal(err)
		}
	}
	// Newer, but not a scene
	other := filepath.Join(testDir, "notes.txt")
	os.WriteFile(other, []byte("x"), 0644)
	future := time.Now().Add(24 * time.Hour)
	os.Chtimes(other, future, future)

	latest, err := FindLatestScene(testDir)
	if err != nil {
		t.Fatalf("FindLatestScene failed: %v", err)
	}

	t.Logf("Latest scene: %s", latest)

	if latest != files[len(files)-1] {
		t.Errorf("Expected latest to be %s, got %s", files[len(files)-1], latest)
	}
}

func TestFindLatestSceneEmpty(t *testing.T) {
	if _, err := FindLatestScene(t.TempDir()); err == nil {
		t.Error("Expected error for a directory without scenes")
	}
}
