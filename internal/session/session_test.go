package session

import (
	"context"
	"os"
	"testing"

	coreconfig "github.com/m3rciful/pixbot/core/config"
	"github.com/m3rciful/pixbot/core/logger"
	"github.com/m3rciful/pixbot/internal/models"
	"github.com/m3rciful/pixbot/internal/storage"
)

func TestMain(m *testing.M) {
	_ = logger.InitLogger(&coreconfig.Config{Logging: coreconfig.LoggingConfig{Level: "error"}})
	os.Exit(m.Run())
}

func results(n int) []models.Result {
	out := make([]models.Result, n)
	for i := range out {
		out[i] = models.Result{Tags: "t", ImageURL: "https://img"}
	}
	return out
}

func newSvc(t *testing.T) (*Service, *storage.MemoryStorage) {
	t.Helper()
	store := storage.NewMemoryStorage()
	return NewService(store), store
}

func TestReplaceResetsIndex(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSvc(t)

	if err := svc.Replace(ctx, 1, "cats", models.CategoryPhoto, results(5)); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if _, moved, err := svc.Next(ctx, 1); err != nil || !moved {
		t.Fatalf("next: moved=%v err=%v", moved, err)
	}

	if err := svc.Replace(ctx, 1, "dogs", models.CategoryPhoto, results(3)); err != nil {
		t.Fatalf("replace: %v", err)
	}
	sess, err := svc.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sess.Index != 0 || sess.Query != "dogs" || len(sess.Results) != 3 {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestPagerClampAtEdges(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSvc(t)

	if err := svc.Replace(ctx, 1, "q", models.CategoryPhoto, results(3)); err != nil {
		t.Fatalf("replace: %v", err)
	}

	// At the first result Prev must not move or write.
	sess, moved, err := svc.Prev(ctx, 1)
	if err != nil {
		t.Fatalf("prev: %v", err)
	}
	if moved || sess.Index != 0 {
		t.Fatalf("prev at edge: moved=%v index=%d", moved, sess.Index)
	}

	for i := 0; i < 2; i++ {
		if _, moved, err := svc.Next(ctx, 1); err != nil || !moved {
			t.Fatalf("next %d: moved=%v err=%v", i, moved, err)
		}
	}

	// At the last result Next must clamp.
	sess, moved, err = svc.Next(ctx, 1)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if moved || sess.Index != 2 {
		t.Fatalf("next at edge: moved=%v index=%d", moved, sess.Index)
	}

	sess, moved, err = svc.Prev(ctx, 1)
	if err != nil || !moved || sess.Index != 1 {
		t.Fatalf("prev: moved=%v index=%d err=%v", moved, sess.Index, err)
	}
}

func TestPagerWithoutSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSvc(t)

	sess, moved, err := svc.Next(ctx, 42)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if moved || sess != nil {
		t.Fatalf("expected no-op, got moved=%v sess=%+v", moved, sess)
	}
}

func TestPagerEmptyResults(t *testing.T) {
	ctx := context.Background()
	svc, store := newSvc(t)

	if err := store.PutSession(ctx, &models.Session{UserID: 1}); err != nil {
		t.Fatalf("put: %v", err)
	}
	_, moved, err := svc.Next(ctx, 1)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if moved {
		t.Fatal("expected clamp on empty results")
	}
}

func TestSetCategoryKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSvc(t)

	if err := svc.Replace(ctx, 1, "q", models.CategoryPhoto, results(2)); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := svc.SetCategory(ctx, 1, models.CategoryVideo); err != nil {
		t.Fatalf("set category: %v", err)
	}

	sess, err := svc.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sess.Category != models.CategoryVideo || sess.Query != "q" || len(sess.Results) != 2 {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestSetCategoryWithoutSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSvc(t)

	if err := svc.SetCategory(ctx, 9, models.CategoryMusic); err != nil {
		t.Fatalf("set category: %v", err)
	}
	sess, err := svc.Get(ctx, 9)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sess == nil || sess.Category != models.CategoryMusic {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestFlowLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSvc(t)

	flow, err := svc.Flow(ctx, 1)
	if err != nil {
		t.Fatalf("flow: %v", err)
	}
	if flow != models.FlowNone {
		t.Fatalf("expected no flow, got %q", flow)
	}

	if err := svc.SetFlow(ctx, 1, models.FlowAwaitingBan); err != nil {
		t.Fatalf("set flow: %v", err)
	}
	// A later SetFlow overwrites, no queueing.
	if err := svc.SetFlow(ctx, 1, models.FlowAwaitingBroadcast); err != nil {
		t.Fatalf("set flow: %v", err)
	}
	flow, _ = svc.Flow(ctx, 1)
	if flow != models.FlowAwaitingBroadcast {
		t.Fatalf("flow = %q, expected awaiting_broadcast", flow)
	}

	if err := svc.ClearFlow(ctx, 1); err != nil {
		t.Fatalf("clear flow: %v", err)
	}
	flow, _ = svc.Flow(ctx, 1)
	if flow != models.FlowNone {
		t.Fatalf("flow = %q, expected cleared", flow)
	}
}

func TestConsumeFlowSingleWinner(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSvc(t)

	if err := svc.SetFlow(ctx, 1, models.FlowAwaitingQuery); err != nil {
		t.Fatalf("set flow: %v", err)
	}

	wins := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func() {
			won, err := svc.ConsumeFlow(ctx, 1, models.FlowAwaitingQuery)
			if err != nil {
				t.Errorf("consume: %v", err)
			}
			wins <- won
		}()
	}

	total := 0
	for i := 0; i < 10; i++ {
		if <-wins {
			total++
		}
	}
	if total != 1 {
		t.Fatalf("winners = %d, expected exactly 1", total)
	}

	flow, _ := svc.Flow(ctx, 1)
	if flow != models.FlowNone {
		t.Fatalf("flow = %q, expected cleared", flow)
	}
}

func TestConsumeFlowMismatchLeavesState(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSvc(t)

	if err := svc.SetFlow(ctx, 1, models.FlowAwaitingBan); err != nil {
		t.Fatalf("set flow: %v", err)
	}
	won, err := svc.ConsumeFlow(ctx, 1, models.FlowAwaitingQuery)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if won {
		t.Fatal("consumed a mismatched expectation")
	}
	flow, _ := svc.Flow(ctx, 1)
	if flow != models.FlowAwaitingBan {
		t.Fatalf("flow = %q, expected untouched", flow)
	}
}

func TestConcurrentStepsStaySerialized(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSvc(t)

	if err := svc.Replace(ctx, 1, "q", models.CategoryPhoto, results(50)); err != nil {
		t.Fatalf("replace: %v", err)
	}

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, _, _ = svc.Next(ctx, 1)
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	sess, err := svc.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sess.Index != 10 {
		t.Fatalf("index = %d, expected 10 after 10 serialized steps", sess.Index)
	}
}
