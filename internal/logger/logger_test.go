package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"DEBUG", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"ERROR", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"verbose", logrus.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitializeWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	Initialize("INFO", path)
	t.Cleanup(func() { Logger = nil })

	WithError(errors.New("boom"), "test").Error("something failed")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "something failed") || !strings.Contains(string(data), "boom") {
		t.Fatalf("expected error entry in log file, got %q", data)
	}
}

func TestContextHelpersCarryFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	Initialize("INFO", path)
	t.Cleanup(func() { Logger = nil })

	WithUser("u-42", "auth").Info("Session issued")
	WithContext(map[string]interface{}{"request_id": "req-7"}).Info("request")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	for _, want := range []string{"user_id=u-42", "component=auth", "request_id=req-7"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log output, got %q", want, out)
		}
	}
}
