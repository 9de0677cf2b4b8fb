package power

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestSysfsSource(t *testing.T) {
	root := t.TempDir()
	batDir := filepath.Join(root, "BAT0")
	if err := os.MkdirAll(batDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(batDir, "capacity"), []byte("87\n"), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := NewSysfsSourceAt(root)
	if err != nil {
		t.Fatalf("NewSysfsSourceAt: %v", err)
	}

	percent, err := src.Percent()
	if err != nil {
		t.Fatalf("Percent: %v", err)
	}
	if percent != 87 {
		t.Errorf("Percent = %d, want 87", percent)
	}
}

func TestSysfsSourceNoBattery(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "AC"), 0755); err != nil {
		t.Fatal(err)
	}

	_, err := NewSysfsSourceAt(root)
	if !errors.Is(err, ErrNoBattery) {
		t.Errorf("err = %v, want ErrNoBattery", err)
	}
}

func TestSysfsSourceClampsValue(t *testing.T) {
	root := t.TempDir()
	batDir := filepath.Join(root, "BAT0")
	if err := os.MkdirAll(batDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(batDir, "capacity"), []byte("104\n"), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := NewSysfsSourceAt(root)
	if err != nil {
		t.Fatal(err)
	}
	percent, err := src.Percent()
	if err != nil {
		t.Fatal(err)
	}
	if percent != 100 {
		t.Errorf("Percent = %d, want clamp to 100", percent)
	}
}

func TestHTTPSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"percent": 42, "charging": false}`))
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL)
	percent, err := src.Percent()
	if err != nil {
		t.Fatalf("Percent: %v", err)
	}
	if percent != 42 {
		t.Errorf("Percent = %d, want 42", percent)
	}
}

func TestHTTPSourceBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if _, err := NewHTTPSource(server.URL).Percent(); err == nil {
		t.Error("expected error for non-200 status")
	}
}
