package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	log, err := NewLogger(dir, true)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %s", log.GetLevel())
	}

	log.Info("hello")
	if _, err := os.Stat(filepath.Join(dir, "app.log")); err != nil {
		t.Errorf("expected log file to be created: %v", err)
	}

	prod, err := NewLogger(dir, false)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if _, ok := prod.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("expected JSON formatter in production mode")
	}
}
