package gate

import (
	"context"
	"errors"
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

type fakeChecker struct {
	statuses map[int64]string
	errs     map[int64]error
}

func (f fakeChecker) MemberStatus(ctx context.Context, channelID int64, userID int64) (string, error) {
	if err, ok := f.errs[channelID]; ok {
		return "", err
	}
	if st, ok := f.statuses[channelID]; ok {
		return st, nil
	}
	return "left", nil
}

func seedChannels(t *testing.T, store *storage.MemoryStorage, ids ...int64) {
	t.Helper()
	for i, id := range ids {
		if err := store.AddChannel(context.Background(), &models.Channel{
			ID:     id,
			Handle: string(rune('a' + i)),
		}); err != nil {
			t.Fatalf("seed channel %d: %v", id, err)
		}
	}
}

func TestCheckNoChannels(t *testing.T) {
	store := storage.NewMemoryStorage()
	svc := NewService(store)

	ok, pending, err := svc.Check(context.Background(), fakeChecker{}, 1)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !ok || pending != nil {
		t.Fatalf("expected pass with no channels, got ok=%v pending=%v", ok, pending)
	}
}

func TestCheckAllSubscribed(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedChannels(t, store, -1, -2, -3)
	svc := NewService(store)

	checker := fakeChecker{statuses: map[int64]string{
		-1: StatusMember,
		-2: StatusAdministrator,
		-3: StatusCreator,
	}}
	ok, pending, err := svc.Check(context.Background(), checker, 1)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !ok || len(pending) != 0 {
		t.Fatalf("expected pass, got ok=%v pending=%v", ok, pending)
	}
}

func TestCheckPendingPreservesOrder(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedChannels(t, store, -1, -2, -3, -4)
	svc := NewService(store)

	checker := fakeChecker{statuses: map[int64]string{
		-2: StatusMember,
	}}
	ok, pending, err := svc.Check(context.Background(), checker, 1)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if ok {
		t.Fatal("expected gate to block")
	}
	if len(pending) != 3 || pending[0].ID != -1 || pending[1].ID != -3 || pending[2].ID != -4 {
		t.Fatalf("pending order wrong: %+v", pending)
	}
}

func TestCheckLookupErrorFailsClosed(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedChannels(t, store, -1, -2)
	svc := NewService(store)

	checker := fakeChecker{
		statuses: map[int64]string{-1: StatusMember},
		errs:     map[int64]error{-2: errors.New("chat not found")},
	}
	ok, pending, err := svc.Check(context.Background(), checker, 1)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if ok {
		t.Fatal("unreachable channel must count as pending")
	}
	if len(pending) != 1 || pending[0].ID != -2 {
		t.Fatalf("unexpected pending: %+v", pending)
	}
}

func TestCheckRestrictedAndLeftBlock(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedChannels(t, store, -1, -2)
	svc := NewService(store)

	checker := fakeChecker{statuses: map[int64]string{
		-1: "restricted",
		-2: "kicked",
	}}
	ok, pending, err := svc.Check(context.Background(), checker, 1)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if ok || len(pending) != 2 {
		t.Fatalf("expected both pending, got ok=%v pending=%v", ok, pending)
	}
}
