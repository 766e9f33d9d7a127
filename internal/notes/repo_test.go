package notes

import (
	"context"
	"fmt"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/skillsenselab/medscribe/internal/database"
	"github.com/skillsenselab/medscribe/internal/errors"
	"github.com/skillsenselab/medscribe/internal/logger"
	"github.com/skillsenselab/medscribe/internal/observability"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.Open(fmt.Sprintf("file:%s/notes.db", t.TempDir()), 1, 1, logger.NewDefault("test"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	repo := NewRepository(db, logger.NewDefault("test"))
	if err := repo.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo
}

func saveNote(t *testing.T, repo *Repository, userID, content string) *Note {
	t.Helper()
	note := &Note{
		UserID:        userID,
		Content:       content,
		ProcedureType: "Colonoscopy",
		Tags:          []string{"screening"},
		Transcript:    "raw transcript for " + content,
		Language:      "en",
	}
	if err := repo.Save(context.Background(), note); err != nil {
		t.Fatalf("save: %v", err)
	}
	return note
}

func TestRepositorySaveAndGet(t *testing.T) {
	repo := newTestRepo(t)
	note := saveNote(t, repo, "user-1", "note content")

	got, err := repo.Get(context.Background(), "user-1", note.ID.String())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Content != "note content" {
		t.Errorf("content = %q", got.Content)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "screening" {
		t.Errorf("tags = %v", got.Tags)
	}
}

func TestRepositorySaveRequiresUser(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.Save(context.Background(), &Note{Content: "orphan"})
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestRepositoryCrossUserReadsAsNotFound(t *testing.T) {
	repo := newTestRepo(t)
	note := saveNote(t, repo, "user-1", "private note")

	_, err := repo.Get(context.Background(), "user-2", note.ID.String())
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}

	err = repo.Delete(context.Background(), "user-2", note.ID.String())
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Errorf("delete error = %v, want NOT_FOUND", err)
	}

	// The owner still sees it.
	if _, err := repo.Get(context.Background(), "user-1", note.ID.String()); err != nil {
		t.Errorf("owner Get: %v", err)
	}
}

func TestRepositoryListPagination(t *testing.T) {
	repo := newTestRepo(t)
	for i := 0; i < 5; i++ {
		saveNote(t, repo, "user-1", fmt.Sprintf("note %d", i))
	}
	saveNote(t, repo, "user-2", "someone else's note")

	page1, err := repo.List(context.Background(), "user-1", 1, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page1.Items) != 2 || !page1.HasMore {
		t.Errorf("page 1: items=%d hasMore=%v", len(page1.Items), page1.HasMore)
	}

	page3, err := repo.List(context.Background(), "user-1", 3, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page3.Items) != 1 || page3.HasMore {
		t.Errorf("page 3: items=%d hasMore=%v", len(page3.Items), page3.HasMore)
	}

	for _, item := range append(page1.Items, page3.Items...) {
		if item.UserID != "user-1" {
			t.Errorf("listing leaked note of %q", item.UserID)
		}
	}
}

func TestRepositorySearch(t *testing.T) {
	repo := newTestRepo(t)
	saveNote(t, repo, "user-1", "follow-up for hypertension management")
	saveNote(t, repo, "user-1", "routine physical exam")
	saveNote(t, repo, "user-2", "hypertension note of another user")

	results, err := repo.Search(context.Background(), "user-1", "hypertension")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].UserID != "user-1" {
		t.Error("search leaked another user's note")
	}

	_, err = repo.Search(context.Background(), "user-1", "  ")
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestRepositoryDelete(t *testing.T) {
	repo := newTestRepo(t)
	note := saveNote(t, repo, "user-1", "to be deleted")

	if err := repo.Delete(context.Background(), "user-1", note.ID.String()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err := repo.Get(context.Background(), "user-1", note.ID.String())
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Errorf("error after delete = %v, want NOT_FOUND", err)
	}
	err = repo.Delete(context.Background(), "user-1", note.ID.String())
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Errorf("second delete = %v, want NOT_FOUND", err)
	}
}

func TestRepositoryEmitsQuerySpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	repo := newTestRepo(t)
	saveNote(t, repo, "clinician-1", "first")
	if _, err := repo.List(context.Background(), "clinician-1", 1, 10); err != nil {
		t.Fatalf("list: %v", err)
	}

	var ops []string
	for _, span := range recorder.Ended() {
		if span.Name() != observability.SpanDBQuery {
			continue
		}
		for _, attr := range span.Attributes() {
			if string(attr.Key) == "db.operation" {
				ops = append(ops, attr.Value.AsString())
			}
		}
	}
	var sawSave, sawList bool
	for _, op := range ops {
		switch op {
		case "save":
			sawSave = true
		case "list":
			sawList = true
		}
	}
	if !sawSave || !sawList {
		t.Errorf("query spans = %v, want save and list", ops)
	}
}
