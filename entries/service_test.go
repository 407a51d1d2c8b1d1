package entries

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pongsapak26/Bullet-Journal/domain"
	"github.com/pongsapak26/Bullet-Journal/journal"
	"github.com/pongsapak26/Bullet-Journal/persistence"
	"github.com/pongsapak26/Bullet-Journal/session"
)

func newService(t *testing.T) *Service {
	t.Helper()
	store, err := persistence.NewStorage("sqlite", filepath.Join(t.TempDir(), "entries_test.db"), nil, true)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return NewService(store)
}

func owner() *session.Claims {
	return &session.Claims{UserID: uuid.NewString(), Email: "a@x.com"}
}

func TestServiceRequiresSession(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	if _, err := s.List(ctx, nil, domain.Period{}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("List without session = %v, want ErrUnauthorized", err)
	}
	if _, err := s.Create(ctx, &session.Claims{}, CreateInput{Title: "x"}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Create with empty session = %v, want ErrUnauthorized", err)
	}
	if err := s.Delete(ctx, nil, "some-id"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Delete without session = %v, want ErrUnauthorized", err)
	}
}

func TestServiceCreateDefaults(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	sess := owner()

	entry, err := s.Create(ctx, sess, CreateInput{Title: "no year"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if entry.Year != time.Now().Year() {
		t.Errorf("year = %d, want current calendar year", entry.Year)
	}
	if entry.Status != journal.StatusTodo {
		t.Errorf("status = %q, want todo default", entry.Status)
	}
	if entry.UserID != sess.UserID {
		t.Errorf("owner = %q, want session account", entry.UserID)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	sess := owner()

	if _, err := s.Create(ctx, sess, CreateInput{Status: "sortOf"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bad status = %v, want ErrValidation", err)
	}
	bad := 13
	if _, err := s.Create(ctx, sess, CreateInput{Month: &bad}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bad month = %v, want ErrValidation", err)
	}
}

func TestServiceOwnershipDenialShape(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	alice := owner()
	mallory := &session.Claims{UserID: uuid.NewString(), Email: "m@x.com"}

	entry, err := s.Create(ctx, alice, CreateInput{Title: "private"})
	if err != nil {
		t.Fatal(err)
	}

	// Non-owner access reports the same ErrNotFound as a non-existent id, so
	// the existence of another user's record is never confirmed.
	_, otherErr := s.Get(ctx, mallory, entry.ID)
	_, missingErr := s.Get(ctx, mallory, uuid.NewString())
	if !errors.Is(otherErr, domain.ErrNotFound) || !errors.Is(missingErr, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for both, got %v and %v", otherErr, missingErr)
	}

	if _, err := s.Update(ctx, mallory, entry.ID, UpdateInput{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("non-owner update = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, mallory, entry.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("non-owner delete = %v, want ErrNotFound", err)
	}
}

func TestServicePeriodScenario(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	sess := owner()

	month := 3
	entry, err := s.Create(ctx, sess, CreateInput{Title: "march", Year: 2024, Month: &month})
	if err != nil {
		t.Fatal(err)
	}

	listed, err := s.List(ctx, sess, domain.Period{Year: 2024, Month: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || listed[0].ID != entry.ID {
		t.Fatalf("entry should appear in (2024, 3), got %d entries", len(listed))
	}

	if err := s.Delete(ctx, sess, entry.ID); err != nil {
		t.Fatal(err)
	}

	listed, err = s.List(ctx, sess, domain.Period{Year: 2024, Month: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 0 {
		t.Errorf("entry should be absent after soft delete, got %d entries", len(listed))
	}
	if _, err := s.Get(ctx, sess, entry.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get after soft delete = %v, want ErrNotFound", err)
	}
}

func TestServiceUpdate(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	sess := owner()

	day, month := 5, 3
	entry, err := s.Create(ctx, sess, CreateInput{Title: "before", Year: 2024, Month: &month, Day: &day})
	if err != nil {
		t.Fatal(err)
	}

	title := "after"
	status := journal.StatusDone
	updated, err := s.Update(ctx, sess, entry.ID, UpdateInput{
		Title:    &title,
		Status:   &status,
		ClearDay: true,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "after" || updated.Status != journal.StatusDone {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.Day != nil {
		t.Error("ClearDay should drop the day")
	}
	if updated.Month == nil || *updated.Month != 3 {
		t.Error("untouched month should survive")
	}

	bad := journal.Status("nope")
	if _, err := s.Update(ctx, sess, entry.ID, UpdateInput{Status: &bad}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bad status update = %v, want ErrValidation", err)
	}
}

func TestServiceImages(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	sess := owner()

	entry, err := s.Create(ctx, sess, CreateInput{Title: "with images"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.AddImages(ctx, sess, entry.ID, nil); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty batch = %v, want ErrValidation", err)
	}
	if _, err := s.AddImages(ctx, sess, entry.ID, []ImageInput{{Data: ""}}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("payload-less image = %v, want ErrValidation", err)
	}

	images, err := s.AddImages(ctx, sess, entry.ID, []ImageInput{
		{Data: "aaa", Filename: "a.png"},
		{Data: "bbb", Filename: "b.png"},
	})
	if err != nil {
		t.Fatalf("AddImages failed: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("images = %d, want 2", len(images))
	}

	got, err := s.Get(ctx, sess, entry.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Images) != 2 {
		t.Fatalf("loaded images = %d, want 2", len(got.Images))
	}

	if err := s.DeleteImage(ctx, sess, images[0].ID); err != nil {
		t.Fatalf("DeleteImage failed: %v", err)
	}
	got, err = s.Get(ctx, sess, entry.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Images) != 1 {
		t.Errorf("images after delete = %d, want 1", len(got.Images))
	}

	mallory := &session.Claims{UserID: uuid.NewString(), Email: "m@x.com"}
	if _, err := s.AddImages(ctx, mallory, entry.ID, []ImageInput{{Data: "x"}}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("non-owner AddImages = %v, want ErrNotFound", err)
	}
}

func TestServiceStats(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	sess := owner()

	for _, st := range []journal.Status{journal.StatusDone, journal.StatusDone, journal.StatusInProgress} {
		if _, err := s.Create(ctx, sess, CreateInput{Title: "e", Status: st}); err != nil {
			t.Fatal(err)
		}
	}

	counts, err := s.Stats(ctx, sess)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if counts[journal.StatusDone] != 2 || counts[journal.StatusInProgress] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
	// Absent statuses are reported as explicit zeros.
	if v, ok := counts[journal.StatusCancelled]; !ok || v != 0 {
		t.Errorf("cancelled = %v (present=%v), want explicit 0", v, ok)
	}
}
