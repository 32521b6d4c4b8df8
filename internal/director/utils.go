package director

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ivlev/scroll2video/internal/system"
)

// ScenesDir is where generated scenes are stored
var ScenesDir = filepath.Join("input", "scenes")

// GenerateScenePath creates a timestamped scene filename
func GenerateScenePath() string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(ScenesDir, fmt.Sprintf("scene_%s.yaml", timestamp))
}

// FindLatestScene finds the most recently modified scene file in dir
func FindLatestScene(dir string) (string, error) {
	return system.FindLatest(dir, ".yaml", ".yml")
}
