package store

import (
	"path/filepath"
	"testing"

	"playerd/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetAndGetSetting(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetSetting("theme", "dark"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	val, err := s.GetSetting("theme")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if val != "dark" {
		t.Fatalf("expected dark, got %s", val)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)

	val, err := s.GetSetting("nonexistent")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if val != "" {
		t.Fatalf("expected empty string, got %s", val)
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetSetting("key", "v1"); err != nil {
		t.Fatalf("SetSetting v1: %v", err)
	}
	if err := s.SetSetting("key", "v2"); err != nil {
		t.Fatalf("SetSetting v2: %v", err)
	}
	val, err := s.GetSetting("key")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if val != "v2" {
		t.Fatalf("expected v2, got %s", val)
	}
}

func TestPlayerSettingsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if _, ok, err := s.PlayerSettings(); err != nil || ok {
		t.Fatalf("fresh store: ok=%v err=%v, want ok=false err=nil", ok, err)
	}

	want := model.PlayerSettings{Volume: 0.35, Muted: true, Rate: 1.25}
	if err := s.SavePlayerSettings(want); err != nil {
		t.Fatalf("SavePlayerSettings: %v", err)
	}

	got, ok, err := s.PlayerSettings()
	if err != nil {
		t.Fatalf("PlayerSettings: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted settings")
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestSavePlayerSettingsOverwrites(t *testing.T) {
	s := newTestStore(t)

	if err := s.SavePlayerSettings(model.PlayerSettings{Volume: 1, Rate: 1}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := s.SavePlayerSettings(model.PlayerSettings{Volume: 0.5, Muted: true, Rate: 2}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, _, err := s.PlayerSettings()
	if err != nil {
		t.Fatalf("PlayerSettings: %v", err)
	}
	if got.Volume != 0.5 || !got.Muted || got.Rate != 2 {
		t.Fatalf("got %+v, want the second save", got)
	}
}
