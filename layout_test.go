package main

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSettingsRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if v := db.GetSetting("missing"); v != "" {
		t.Errorf("absent key should read empty, got %q", v)
	}
	if err := db.SetSetting("k", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v := db.GetSetting("k"); v != "v1" {
		t.Errorf("expected v1, got %q", v)
	}
	// Upsert overwrites
	if err := db.SetSetting("k", "v2"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if v := db.GetSetting("k"); v != "v2" {
		t.Errorf("expected v2 after upsert, got %q", v)
	}
}

func TestLayoutDefaultsWhenAbsent(t *testing.T) {
	db := openTestDB(t)

	layout := LoadLayout(db)
	def := DefaultLayout()
	if len(layout) != len(def) {
		t.Fatalf("expected %d controls, got %d", len(def), len(layout))
	}
	for name, rect := range def {
		if layout[name] != rect {
			t.Errorf("control %q: expected %+v, got %+v", name, rect, layout[name])
		}
	}
	if !layout.Complete() {
		t.Error("default layout must be complete")
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	db := openTestDB(t)

	custom := DefaultLayout()
	custom["fire"] = ControlRect{X: -80, Y: -120, Size: 110}
	if err := SaveLayout(db, custom); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := LoadLayout(db)
	for name, rect := range custom {
		if loaded[name] != rect {
			t.Errorf("control %q: expected %+v, got %+v", name, rect, loaded[name])
		}
	}
}

func TestLayoutRejectsIncomplete(t *testing.T) {
	db := openTestDB(t)

	// A layout missing controls persists but is discarded on load
	partial := ControlLayout{"stick": {X: 1, Y: 2, Size: 3}}
	if err := SaveLayout(db, partial); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded := LoadLayout(db)
	if loaded["stick"] == partial["stick"] {
		t.Error("incomplete stored layout must fall back to defaults")
	}
	if !loaded.Complete() {
		t.Error("fallback layout must be complete")
	}
}

func TestLayoutRejectsGarbage(t *testing.T) {
	db := openTestDB(t)

	if err := db.SetSetting(layoutKey, "not json"); err != nil {
		t.Fatalf("set: %v", err)
	}
	loaded := LoadLayout(db)
	if !loaded.Complete() {
		t.Error("unparsable stored layout must fall back to defaults")
	}
}

func TestLayoutNilDB(t *testing.T) {
	layout := LoadLayout(nil)
	if !layout.Complete() {
		t.Error("nil store should yield the defaults")
	}
}
