package logging

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveLogDir(t *testing.T) {
	t.Setenv("LOGS_FOLDER", "")
	t.Setenv("DATA_PATH", "")

	if got := ResolveLogDir("/opt/app/issue-lifecycle", nil); got != filepath.Join("/opt/app", "logs") {
		t.Errorf("binary-relative dir = %q", got)
	}
	if got := ResolveLogDir("", errors.New("no executable")); got != "logs" {
		t.Errorf("fallback dir = %q", got)
	}

	t.Setenv("DATA_PATH", "/data")
	if got := ResolveLogDir("/opt/app/issue-lifecycle", nil); got != filepath.Join("/data", "logs") {
		t.Errorf("data dir = %q", got)
	}

	t.Setenv("LOGS_FOLDER", "/var/log/lifecycle")
	if got := ResolveLogDir("/opt/app/issue-lifecycle", nil); got != "/var/log/lifecycle" {
		t.Errorf("explicit dir = %q", got)
	}
}

func TestNewFileWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	w, err := newFileWriter(dir)
	if err != nil {
		t.Fatalf("newFileWriter() error = %v", err)
	}
	defer w.Close()

	if w.Filename != filepath.Join(dir, LogFileName) {
		t.Errorf("Filename = %q", w.Filename)
	}
	if _, err := os.Stat(filepath.Join(dir, ".write-test")); !os.IsNotExist(err) {
		t.Error("write test file was not removed")
	}
}
