package search

import (
	"context"
	"errors"
	"os"
	"testing"

	coreconfig "github.com/m3rciful/pixbot/core/config"
	"github.com/m3rciful/pixbot/core/logger"
	"github.com/m3rciful/pixbot/internal/models"
	"github.com/m3rciful/pixbot/internal/session"
	"github.com/m3rciful/pixbot/internal/storage"
)

func TestMain(m *testing.M) {
	_ = logger.InitLogger(&coreconfig.Config{Logging: coreconfig.LoggingConfig{Level: "error"}})
	os.Exit(m.Run())
}

type fakeProvider struct {
	results []models.Result
	err     error
}

func (f fakeProvider) Search(ctx context.Context, query string, category models.Category) ([]models.Result, error) {
	return f.results, f.err
}

func newSvc(t *testing.T, p Provider) (*Service, *storage.MemoryStorage, *session.Service) {
	t.Helper()
	store := storage.NewMemoryStorage()
	sessions := session.NewService(store)
	return NewService(store, sessions, p), store, sessions
}

func TestRunSuccess(t *testing.T) {
	ctx := context.Background()
	hits := []models.Result{
		{Tags: "a", ImageURL: "https://img/1"},
		{Tags: "b", ImageURL: "https://img/2"},
		{Tags: "c", ImageURL: "https://img/3"},
	}
	svc, store, sessions := newSvc(t, fakeProvider{results: hits})
	_ = store.UpsertUser(ctx, &models.User{ID: 1})

	out := svc.Run(ctx, 1, "cats", models.CategoryPhoto)
	if out.Kind != OutcomeSuccess {
		t.Fatalf("kind = %v, expected success", out.Kind)
	}
	if len(out.Results) != 3 {
		t.Fatalf("results = %d, expected 3", len(out.Results))
	}

	sess, err := sessions.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess == nil || sess.Index != 0 || len(sess.Results) != 3 || sess.Query != "cats" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	hist := store.History()
	if len(hist) != 1 || hist[0].ResultCount != 3 || hist[0].Category != models.CategoryPhoto {
		t.Fatalf("unexpected history: %+v", hist)
	}

	u, _ := store.GetUser(ctx, 1)
	if u.SearchCount != 1 {
		t.Fatalf("search count = %d, expected 1", u.SearchCount)
	}
}

func TestRunEmptyMutatesNothing(t *testing.T) {
	ctx := context.Background()
	svc, store, sessions := newSvc(t, fakeProvider{})
	_ = store.UpsertUser(ctx, &models.User{ID: 1})
	if err := sessions.Replace(ctx, 1, "old", models.CategoryPhoto, []models.Result{{Tags: "x"}}); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	out := svc.Run(ctx, 1, "nothing", models.CategoryPhoto)
	if out.Kind != OutcomeEmpty {
		t.Fatalf("kind = %v, expected empty", out.Kind)
	}

	sess, _ := sessions.Get(ctx, 1)
	if sess.Query != "old" || len(sess.Results) != 1 {
		t.Fatalf("session mutated on empty search: %+v", sess)
	}
	if len(store.History()) != 0 {
		t.Fatal("history written on empty search")
	}
	u, _ := store.GetUser(ctx, 1)
	if u.SearchCount != 0 {
		t.Fatalf("counter incremented on empty search: %d", u.SearchCount)
	}
}

func TestRunProviderFailure(t *testing.T) {
	ctx := context.Background()
	svc, store, sessions := newSvc(t, fakeProvider{err: errors.New("boom")})
	_ = store.UpsertUser(ctx, &models.User{ID: 1})

	out := svc.Run(ctx, 1, "cats", models.CategoryVideo)
	if out.Kind != OutcomeFailure {
		t.Fatalf("kind = %v, expected failure", out.Kind)
	}
	if out.Err == nil {
		t.Fatal("expected error in outcome")
	}

	sess, _ := sessions.Get(ctx, 1)
	if sess != nil {
		t.Fatalf("session created on failure: %+v", sess)
	}
	if len(store.History()) != 0 {
		t.Fatal("history written on failure")
	}
}
