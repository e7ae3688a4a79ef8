package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveLogFilePathDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("get wd failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWD) })
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}

	got, err := resolveLogFilePath(Options{})
	if err != nil {
		t.Fatalf("resolve default log path failed: %v", err)
	}
	if filepath.Base(got) != defaultLogFilename {
		t.Fatalf("filename want %s got %s", defaultLogFilename, filepath.Base(got))
	}
	if filepath.Base(filepath.Dir(got)) != defaultLogDirName {
		t.Fatalf("dir want %s got %s", defaultLogDirName, filepath.Dir(got))
	}
	if _, err := os.Stat(got); err != nil {
		t.Fatalf("log file should be touched on resolve: %v", err)
	}
}

func TestResolveLogFilePathExplicit(t *testing.T) {
	tmpDir := t.TempDir()
	got, err := resolveLogFilePath(Options{Dir: tmpDir, Filename: "api.log"})
	if err != nil {
		t.Fatalf("resolve explicit log path failed: %v", err)
	}
	if got != filepath.Join(tmpDir, "api.log") {
		t.Fatalf("unexpected path %s", got)
	}
}

func TestReleaseModeWritesJSONToFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Dir: tmpDir, Filename: "release.log"})
	log.Info("release-log-probe")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "release.log"))
	if err != nil {
		t.Fatalf("read release log failed: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "release-log-probe") {
		t.Fatalf("log should contain message, got %s", text)
	}
	if !strings.Contains(text, `"message"`) {
		t.Fatalf("release log should be JSON encoded, got %s", text)
	}
}

func TestDebugModeStaysOffDisk(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("debug", Options{Dir: tmpDir, Filename: "debug.log"})
	log.Debug("debug-log-probe")
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(tmpDir, "debug.log")); !os.IsNotExist(err) {
		t.Fatalf("debug mode must not create a log file")
	}
}

func TestPositiveOr(t *testing.T) {
	if got := positiveOr(0, 7); got != 7 {
		t.Fatalf("zero should fall back, got %d", got)
	}
	if got := positiveOr(-3, 7); got != 7 {
		t.Fatalf("negative should fall back, got %d", got)
	}
	if got := positiveOr(5, 7); got != 5 {
		t.Fatalf("positive should pass through, got %d", got)
	}
}
