package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/medscribe/internal/database"
	"github.com/skillsenselab/medscribe/internal/logger"
	"github.com/skillsenselab/medscribe/internal/server/middleware"
)

func newTestRouter(t *testing.T, repo *Repository, compiler *Compiler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// Stand-in for the auth middleware: a fixed authenticated user.
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, "clinician-1")
		c.Next()
	})
	NewHandler(repo, compiler).Register(r)
	return r
}

func newHandlerRepo(t *testing.T) *Repository {
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

func TestHandlerCreate(t *testing.T) {
	srv := generationServer(t, "## Subjective\nRoutine screening.\n\n## Assessment\nProcedure: Colonoscopy.\n\nTags: screening")
	defer srv.Close()

	repo := newHandlerRepo(t)
	router := newTestRouter(t, repo, newTestCompiler(t, srv.URL))

	body, _ := json.Marshal(map[string]any{
		"transcript":  "patient here for routine colonoscopy screening",
		"audioDigest": "abc123",
		"language":    "en",
		"durationSec": 42.5,
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/notes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var got Note
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.UserID != "clinician-1" {
		t.Errorf("user id = %q", got.UserID)
	}
	if got.ProcedureType != "Colonoscopy" {
		t.Errorf("procedure type = %q, want Colonoscopy", got.ProcedureType)
	}
	if got.AudioDigest != "abc123" || got.DurationSec != 42.5 {
		t.Errorf("capture metadata lost: %+v", got)
	}

	stored, err := repo.Get(context.Background(), "clinician-1", got.ID.String())
	if err != nil {
		t.Fatalf("note not persisted: %v", err)
	}
	if stored.Transcript != "patient here for routine colonoscopy screening" {
		t.Errorf("transcript = %q", stored.Transcript)
	}
}

func TestHandlerCreateMissingTranscript(t *testing.T) {
	repo := newHandlerRepo(t)
	router := newTestRouter(t, repo, newTestCompiler(t, "http://unused.example.com"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/notes", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandlerListAndDelete(t *testing.T) {
	repo := newHandlerRepo(t)
	router := newTestRouter(t, repo, nil)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		note := &Note{UserID: "clinician-1", Content: fmt.Sprintf("note %d", i), Transcript: "t"}
		if err := repo.Save(ctx, note); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	// Another user's note must never appear.
	if err := repo.Save(ctx, &Note{UserID: "clinician-2", Content: "other", Transcript: "t"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notes?page=1&pageSize=2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var page Page
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Items) != 2 || !page.HasMore {
		t.Errorf("page = %d items, hasMore %v; want 2 items with more", len(page.Items), page.HasMore)
	}

	target := page.Items[0].ID.String()
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/notes/"+target, nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notes/"+target, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
}

func TestHandlerSearch(t *testing.T) {
	repo := newHandlerRepo(t)
	router := newTestRouter(t, repo, nil)

	ctx := context.Background()
	if err := repo.Save(ctx, &Note{UserID: "clinician-1", Content: "biopsy of the lesion", Transcript: "t"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Save(ctx, &Note{UserID: "clinician-1", Content: "routine follow-up", Transcript: "t"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notes/search?q=biopsy", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d", w.Code)
	}
	var items []Note
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("search returned %d notes, want 1", len(items))
	}
}

func TestHandlerGetOtherUsersNote(t *testing.T) {
	repo := newHandlerRepo(t)
	router := newTestRouter(t, repo, nil)

	other := &Note{UserID: "clinician-2", Content: "private", Transcript: "t"}
	if err := repo.Save(context.Background(), other); err != nil {
		t.Fatalf("save: %v", err)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notes/"+other.ID.String(), nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
