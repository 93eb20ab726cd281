package pipeline

import (
	"sort"
	"strings"
	"testing"
	"time"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("a.ps", "", []byte("hello world"))
	if job.DocID != "b94d27b9934d3e08" {
		t.Errorf("expected doc id from content hash prefix, got %q", job.DocID)
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if len(job.ID) != 26 {
		t.Errorf("expected 26-char job id, got %q", job.ID)
	}
	if string(job.FileData()) != "hello world" {
		t.Errorf("expected file data to be kept, got %q", job.FileData())
	}
}

func TestJobIDs_SortByCreation(t *testing.T) {
	var ids []string
	for range 50 {
		ids = append(ids, newJobID())
	}
	if !sort.StringsAreSorted(ids) {
		t.Errorf("expected ids to sort in creation order: %v", ids)
	}
	for _, id := range ids {
		if strings.Trim(id, crockford) != "" {
			t.Errorf("expected Crockford alphabet only, got %q", id)
		}
		if id[0] > '7' {
			t.Errorf("expected first character to carry 3 bits, got %q", id)
		}
	}
}

func TestEncodeCrockford(t *testing.T) {
	var b [16]byte
	if got := encodeCrockford(b); got != strings.Repeat("0", 26) {
		t.Errorf("expected all zeros, got %q", got)
	}
	for i := range b {
		b[i] = 0xff
	}
	if got, want := encodeCrockford(b), "7"+strings.Repeat("Z", 25); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusStoring, "storing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("store a: boom")
	job.AddError("store b: boom")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "store a: boom" {
		t.Errorf("expected first error %q, got %q", "store a: boom", snap.Progress.Errors[0])
	}
}

func TestJob_SetParsedAndStored(t *testing.T) {
	job := &Job{ID: "progress-test", UpdatedAt: time.Now()}
	job.SetParsed(4, 3, 5, 12*time.Millisecond)
	job.AddStored(2, 1)
	job.AddStored(1, 1)

	p := job.Snapshot().Progress
	if p.Pages != 4 || p.Links != 3 || p.Resources != 5 || p.ParseMs != 12 {
		t.Errorf("unexpected parse progress: %+v", p)
	}
	if p.NodesStored != 3 || p.LinksStored != 2 {
		t.Errorf("expected 3 nodes / 2 links stored, got %d / %d", p.NodesStored, p.LinksStored)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestDocumentStore_ListNewestFirst(t *testing.T) {
	s := NewDocumentStore()
	now := time.Now()
	s.Put(&StoredDocument{ID: "a", ParsedAt: now.Add(-time.Minute)})
	s.Put(&StoredDocument{ID: "b", ParsedAt: now})

	list := s.List()
	if len(list) != 2 || list[0].ID != "b" || list[1].ID != "a" {
		t.Errorf("expected [b a], got %v", list)
	}
	if !s.Delete("a") || s.Delete("a") {
		t.Error("expected first delete to report true and second false")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 document left, got %d", s.Len())
	}
}
