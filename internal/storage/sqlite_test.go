package storage

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestMigrationsIdempotent runs Open twice on the same database and verifies
// the schema_version count stays correct (migration not re-applied).
func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}

	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}

	if len(v1) != len(v2) {
		t.Errorf("migration count changed: %d -> %d", len(v1), len(v2))
	}
}

// TestMigrationsOrdered verifies migrations are applied in ascending numeric order.
func TestMigrationsOrdered(t *testing.T) {
	s := openTestStore(t)

	versions, err := s.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}

	if len(versions) == 0 {
		t.Fatal("expected at least one applied migration")
	}

	for i := 1; i < len(versions); i++ {
		if versions[i] <= versions[i-1] {
			t.Errorf("migrations not in ascending order: %v", versions)
			break
		}
	}
}

// TestIndexesExist verifies that indexes are created by the migrations.
func TestIndexesExist(t *testing.T) {
	s := openTestStore(t)

	for _, idx := range []string{"idx_sessions_updated"} {
		var count int
		err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&count)
		if err != nil {
			t.Fatalf("querying index %s: %v", idx, err)
		}
		if count != 1 {
			t.Errorf("index %s not found", idx)
		}
	}
}

func newSession(id string) Session {
	return Session{
		ID:     id,
		Prompt: "A modern resume for a backend engineer",
		Markup: `<div class="resume"><h1>Your Name</h1></div>`,
		Style:  "h1 { color: #111; }",
	}
}

func TestCreateAndGetSession(t *testing.T) {
	s := openTestStore(t)

	if err := s.CreateSession(newSession("s1")); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := s.GetSession("s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Revision != 1 {
		t.Errorf("Revision = %d, want 1", got.Revision)
	}
	if got.Markup != newSession("s1").Markup || got.Style != newSession("s1").Style {
		t.Errorf("design mismatch: %+v", got)
	}
	if got.CreatedAt.IsZero() || !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Errorf("timestamps: created %v updated %v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestCreateSession_DuplicateID(t *testing.T) {
	s := openTestStore(t)

	if err := s.CreateSession(newSession("dup")); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := s.CreateSession(newSession("dup")); err == nil {
		t.Fatal("expected error for duplicate id")
	}

	revs, err := s.ListRevisions("dup")
	if err != nil {
		t.Fatalf("ListRevisions: %v", err)
	}
	if len(revs) != 1 {
		t.Errorf("got %d revisions, want 1 (failed insert must roll back)", len(revs))
	}
}

func TestGetSession_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetSession("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveRevision(t *testing.T) {
	s := openTestStore(t)
	if err := s.CreateSession(newSession("s1")); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	edited, err := s.SaveRevision("s1", Revision{Source: SourceEdit, Markup: "<div>edited</div>", Style: "div{}"})
	if err != nil {
		t.Fatalf("SaveRevision(edit): %v", err)
	}
	if edited.Revision != 2 || edited.Markup != "<div>edited</div>" {
		t.Errorf("after edit: %+v", edited)
	}

	refined, err := s.SaveRevision("s1", Revision{Source: SourceRefine, Feedback: "Change colors to blue", Markup: "<div>edited</div>", Style: "div{color:blue}"})
	if err != nil {
		t.Fatalf("SaveRevision(refine): %v", err)
	}
	if refined.Revision != 3 {
		t.Errorf("Revision = %d, want 3", refined.Revision)
	}

	got, err := s.GetSession("s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Style != "div{color:blue}" || got.Revision != 3 {
		t.Errorf("stored session = %+v", got)
	}
	if got.Prompt != newSession("s1").Prompt {
		t.Errorf("prompt changed: %q", got.Prompt)
	}

	revs, err := s.ListRevisions("s1")
	if err != nil {
		t.Fatalf("ListRevisions: %v", err)
	}
	if len(revs) != 3 {
		t.Fatalf("got %d revisions, want 3", len(revs))
	}
	wantSources := []string{SourceGenerate, SourceEdit, SourceRefine}
	for i, r := range revs {
		if r.Number != i+1 || r.Source != wantSources[i] {
			t.Errorf("revision[%d] = %d/%s, want %d/%s", i, r.Number, r.Source, i+1, wantSources[i])
		}
	}
	if revs[2].Feedback != "Change colors to blue" {
		t.Errorf("feedback = %q", revs[2].Feedback)
	}
}

func TestSaveRevision_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.SaveRevision("missing", Revision{Source: SourceEdit})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListSessions(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range 5 {
		sess := newSession(fmt.Sprintf("s%d", i))
		sess.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := s.CreateSession(sess); err != nil {
			t.Fatalf("CreateSession(%d): %v", i, err)
		}
	}

	got, err := s.ListSessions(3)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d sessions, want 3", len(got))
	}
	if got[0].ID != "s4" || got[2].ID != "s2" {
		t.Errorf("order = %s,%s,%s, want s4,s3,s2", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestDeleteSession(t *testing.T) {
	s := openTestStore(t)
	if err := s.CreateSession(newSession("s1")); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if err := s.DeleteSession("s1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := s.GetSession("s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSession after delete: %v", err)
	}
	revs, _ := s.ListRevisions("s1")
	if len(revs) != 0 {
		t.Errorf("revisions left after delete: %d", len(revs))
	}
	if err := s.DeleteSession("s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}
