package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/snippetbin/internal/apperror"
	"github.com/sakif/snippetbin/internal/model"
	"github.com/sakif/snippetbin/internal/repository"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()

	user := &model.User{Username: username}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%q) error = %v", username, err)
	}
	return user
}

func createTestSnippet(t *testing.T, db *DB, ownerID, code string) *model.Snippet {
	t.Helper()

	snippet := &model.Snippet{
		Code:        code,
		Language:    "python",
		Style:       "friendly",
		Highlighted: "<html>rendered</html>",
		OwnerID:     ownerID,
	}
	if err := db.Create(context.Background(), snippet); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return snippet
}

func TestSnippetCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "alice")

	snippet := &model.Snippet{
		Title:       "fib",
		Code:        "def fib(n): ...",
		LineNumbers: true,
		Language:    "python",
		Style:       "monokai",
		Highlighted: "<html>x</html>",
		OwnerID:     user.ID,
	}
	if err := db.Create(ctx, snippet); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if snippet.ID == 0 {
		t.Fatal("Create() did not assign an id")
	}

	got, err := db.GetByID(ctx, snippet.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "fib" || got.Code != "def fib(n): ..." {
		t.Errorf("got Title=%q Code=%q", got.Title, got.Code)
	}
	if !got.LineNumbers {
		t.Error("LineNumbers = false, want true")
	}
	if got.Style != "monokai" {
		t.Errorf("Style = %q, want %q", got.Style, "monokai")
	}
	if got.Highlighted != "<html>x</html>" {
		t.Errorf("Highlighted = %q", got.Highlighted)
	}
	if got.Owner != "alice" {
		t.Errorf("Owner = %q, want username %q", got.Owner, "alice")
	}
	if got.Created.IsZero() {
		t.Error("Created is zero")
	}
}

func TestSnippetGetMissing(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), 12345)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestSnippetIDsAreNeverReused(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "alice")

	first := createTestSnippet(t, db, user.ID, "a")
	if err := db.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	second := createTestSnippet(t, db, user.ID, "b")
	if second.ID <= first.ID {
		t.Errorf("new id %d not greater than deleted id %d", second.ID, first.ID)
	}
}

func TestSnippetListCreationOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "alice")

	for _, code := range []string{"first", "second", "third"} {
		createTestSnippet(t, db, user.ID, code)
	}

	snippets, err := db.List(ctx, repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(snippets) != 3 {
		t.Fatalf("List() returned %d snippets, want 3", len(snippets))
	}
	for i, want := range []string{"first", "second", "third"} {
		if snippets[i].Code != want {
			t.Errorf("snippets[%d].Code = %q, want %q", i, snippets[i].Code, want)
		}
	}
	if snippets[0].Owner != "alice" {
		t.Errorf("Owner = %q, want %q", snippets[0].Owner, "alice")
	}
}

func TestSnippetListPagination(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")

	for _, code := range []string{"a", "b", "c", "d"} {
		createTestSnippet(t, db, user.ID, code)
	}

	page, err := db.List(context.Background(), repository.ListOptions{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("List() returned %d snippets, want 2", len(page))
	}
	if page[0].Code != "b" || page[1].Code != "c" {
		t.Errorf("page = [%q %q], want [b c]", page[0].Code, page[1].Code)
	}
}

func TestSnippetListIDsByOwner(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	s1 := createTestSnippet(t, db, alice.ID, "a1")
	createTestSnippet(t, db, bob.ID, "b1")
	s2 := createTestSnippet(t, db, alice.ID, "a2")

	ids, err := db.ListIDsByOwner(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListIDsByOwner() error = %v", err)
	}
	if len(ids) != 2 || ids[0] != s1.ID || ids[1] != s2.ID {
		t.Errorf("ids = %v, want [%d %d]", ids, s1.ID, s2.ID)
	}

	empty, err := db.ListIDsByOwner(ctx, "no-such-user")
	if err != nil {
		t.Fatalf("ListIDsByOwner() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("ids for unknown owner = %v, want empty", empty)
	}
}

func TestSnippetUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "alice")
	snippet := createTestSnippet(t, db, user.ID, "before")

	snippet.Code = "after"
	snippet.Title = "renamed"
	snippet.LineNumbers = true
	snippet.Highlighted = "<html>after</html>"
	if err := db.Update(ctx, snippet); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := db.GetByID(ctx, snippet.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Code != "after" || got.Title != "renamed" || !got.LineNumbers {
		t.Errorf("got Code=%q Title=%q LineNumbers=%v", got.Code, got.Title, got.LineNumbers)
	}
	if got.Highlighted != "<html>after</html>" {
		t.Errorf("Highlighted = %q", got.Highlighted)
	}
}

func TestSnippetUpdateMissing(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")

	err := db.Update(context.Background(), &model.Snippet{ID: 999, OwnerID: user.ID})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestSnippetDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "alice")
	snippet := createTestSnippet(t, db, user.ID, "x")

	if err := db.Delete(ctx, snippet.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := db.GetByID(ctx, snippet.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetByID() after delete error = %v, want ErrNotFound", err)
	}

	if err := db.Delete(ctx, snippet.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("second Delete() error = %v, want ErrNotFound", err)
	}
}
