package op

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/nickyhof/TypedSQL/core"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		raw      string
		expected location
	}{
		{"s3://backups/2024/users.csv", location{kind: s3Location, bucket: "backups", key: "2024/users.csv"}},
		{"S3://backups/users.csv", location{kind: s3Location, bucket: "backups", key: "users.csv"}},
		{"https://example.com/a.csv", location{kind: httpLocation, path: "https://example.com/a.csv"}},
		{"http://example.com/a.csv", location{kind: httpLocation, path: "http://example.com/a.csv"}},
		{"file:///tmp/a.csv", location{kind: localLocation, path: "/tmp/a.csv"}},
		{"/tmp/a.csv", location{kind: localLocation, path: "/tmp/a.csv"}},
		{"a.csv", location{kind: localLocation, path: "a.csv"}},
	}
	for _, tt := range tests {
		got, err := parseLocation(tt.raw)
		if err != nil {
			t.Errorf("parseLocation(%q) failed: %v", tt.raw, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("parseLocation(%q): expected %+v, got %+v", tt.raw, tt.expected, got)
		}
	}

	for _, bad := range []string{"s3://bucket", "s3:///key", "s3://bucket/", "ftp://host/a.csv"} {
		if _, err := parseLocation(bad); !errors.Is(err, core.ErrInvalidArgument) {
			t.Errorf("Expected invalid argument for %q, got %v", bad, err)
		}
	}
}

func TestOpenLocalMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.csv")
	if _, err := openReader(missing, nil); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
	if _, err := openReader("file://"+missing, nil); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected not found for file URL, got %v", err)
	}
}

func TestSpoolWriter(t *testing.T) {
	var uploaded []byte
	w, err := newSpoolWriter(func(body io.ReadSeeker) error {
		var err error
		uploaded, err = io.ReadAll(body)
		return err
	})
	if err != nil {
		t.Fatalf("Failed to create spool: %v", err)
	}
	spool := w.file.Name()

	io.WriteString(w, "id,name\n")
	io.WriteString(w, "1,bob\n")
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if string(uploaded) != "id,name\n1,bob\n" {
		t.Errorf("Expected the whole stream to be uploaded, got %q", uploaded)
	}
	if _, err := os.Stat(spool); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected spool file to be removed, got %v", err)
	}
	if _, err := w.Write([]byte("late")); !errors.Is(err, os.ErrClosed) {
		t.Errorf("Expected write after close to fail, got %v", err)
	}

	failing, _ := newSpoolWriter(func(io.ReadSeeker) error { return core.ErrStore })
	if err := failing.Close(); !errors.Is(err, core.ErrStore) {
		t.Errorf("Expected upload failure to surface, got %v", err)
	}
}
