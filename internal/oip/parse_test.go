package oip

import (
	"errors"
	"testing"
)

func TestParse_Simple(t *testing.T) {
	snap, err := Parse("progress;3/10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.State() != StateProgress {
		t.Errorf("expected progress, got %s", snap.State())
	}
	if snap.Label() != "" {
		t.Errorf("expected empty label, got %q", snap.Label())
	}
	if cur, ok := snap.Current(); !ok || cur != 3 {
		t.Errorf("expected current 3, got %d (%t)", cur, ok)
	}
	if end, ok := snap.End(); !ok || end != 10 {
		t.Errorf("expected end 10, got %d (%t)", end, ok)
	}
}

func TestParse_Tree(t *testing.T) {
	snap, err := Parse("install|progress(download|success;5/5)(extract|progress;2(file|waiting))(clean|waiting)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Label() != "install" {
		t.Errorf("expected install, got %q", snap.Label())
	}
	if len(snap.Children()) != 3 {
		t.Fatalf("expected 3 children, got %d", len(snap.Children()))
	}

	extract := snap.Child(1)
	if extract.Label() != "extract" || extract.State() != StateProgress {
		t.Errorf("unexpected child %q %s", extract.Label(), extract.State())
	}
	if cur, ok := extract.Current(); !ok || cur != 2 {
		t.Errorf("expected current 2, got %d", cur)
	}
	if _, ok := extract.End(); ok {
		t.Error("extract should have no end")
	}
	if len(extract.Children()) != 1 || extract.Child(0).Label() != "file" {
		t.Error("extract should have child file")
	}

	// Таблица строится по разобранному дереву
	if n := len(Flatten(snap)); n != 10 {
		t.Errorf("expected 10 specs, got %d", n)
	}
}

func TestParse_Malformed(t *testing.T) {
	inputs := []string{
		"",
		"running",
		"progress;x",
		"progress;1/y",
		"progress(success",
		"progress)",
		"progress(success)x",
	}

	for _, in := range inputs {
		if _, err := Parse(in); !errors.Is(err, ErrMalformedStatus) {
			t.Errorf("Parse(%q): expected ErrMalformedStatus, got %v", in, err)
		}
	}
}
