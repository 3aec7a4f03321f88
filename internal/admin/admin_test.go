package admin

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

const adminID int64 = 777

func TestMain(m *testing.M) {
	_ = logger.InitLogger(&coreconfig.Config{Logging: coreconfig.LoggingConfig{Level: "error"}})
	os.Exit(m.Run())
}

type fakeResolver struct {
	ids map[string]int64
	err error
}

func (f fakeResolver) ResolveChannel(ctx context.Context, handle string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	id, ok := f.ids[handle]
	if !ok {
		return 0, errors.New("chat not found")
	}
	return id, nil
}

func newSvc(t *testing.T) (*Service, *storage.MemoryStorage, *session.Service) {
	t.Helper()
	store := storage.NewMemoryStorage()
	sessions := session.NewService(store)
	return NewService(store, sessions), store, sessions
}

func mustFlow(t *testing.T, sessions *session.Service, want models.FlowState) {
	t.Helper()
	flow, err := sessions.Flow(context.Background(), adminID)
	if err != nil {
		t.Fatalf("flow: %v", err)
	}
	if flow != want {
		t.Fatalf("flow = %q, expected %q", flow, want)
	}
}

func TestBanFlow(t *testing.T) {
	ctx := context.Background()
	svc, store, sessions := newSvc(t)

	if err := svc.Begin(ctx, adminID, models.FlowAwaitingBan); err != nil {
		t.Fatalf("begin: %v", err)
	}
	mustFlow(t, sessions, models.FlowAwaitingBan)

	res, err := svc.HandleInput(ctx, fakeResolver{}, adminID, "12345")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.Status != StatusApplied || res.TargetID != 12345 {
		t.Fatalf("unexpected result: %+v", res)
	}
	mustFlow(t, sessions, models.FlowNone)

	banned, _ := store.IsBanned(ctx, 12345)
	if !banned {
		t.Fatal("target not banned")
	}
}

func TestUnbanFlow(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newSvc(t)
	_ = store.SetBanned(ctx, 5, true)

	if err := svc.Begin(ctx, adminID, models.FlowAwaitingUnban); err != nil {
		t.Fatalf("begin: %v", err)
	}
	res, err := svc.HandleInput(ctx, fakeResolver{}, adminID, "5")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.Status != StatusApplied {
		t.Fatalf("unexpected result: %+v", res)
	}
	banned, _ := store.IsBanned(ctx, 5)
	if banned {
		t.Fatal("target still banned")
	}
}

func TestInvalidInputClearsFlow(t *testing.T) {
	ctx := context.Background()
	svc, _, sessions := newSvc(t)

	if err := svc.Begin(ctx, adminID, models.FlowAwaitingBan); err != nil {
		t.Fatalf("begin: %v", err)
	}
	res, err := svc.HandleInput(ctx, fakeResolver{}, adminID, "@not-a-number")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.Status != StatusInvalid {
		t.Fatalf("status = %v, expected invalid", res.Status)
	}
	// One shot: the expectation is gone even after a bad input.
	mustFlow(t, sessions, models.FlowNone)
}

func TestAddChannel(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newSvc(t)

	if err := svc.Begin(ctx, adminID, models.FlowAwaitingAddChannel); err != nil {
		t.Fatalf("begin: %v", err)
	}
	resolver := fakeResolver{ids: map[string]int64{"news": -100123}}
	res, err := svc.HandleInput(ctx, resolver, adminID, "@news")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.Status != StatusApplied || res.Channel == nil || res.Channel.Handle != "news" {
		t.Fatalf("unexpected result: %+v", res)
	}

	channels, _ := store.ListChannels(ctx)
	if len(channels) != 1 || channels[0].ID != -100123 || channels[0].AddedBy != adminID {
		t.Fatalf("unexpected channels: %+v", channels)
	}
}

func TestAddChannelRequiresAtPrefix(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSvc(t)

	_ = svc.Begin(ctx, adminID, models.FlowAwaitingAddChannel)
	res, err := svc.HandleInput(ctx, fakeResolver{}, adminID, "news")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.Status != StatusInvalid {
		t.Fatalf("status = %v, expected invalid", res.Status)
	}
}

func TestAddChannelUnreachable(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newSvc(t)

	_ = svc.Begin(ctx, adminID, models.FlowAwaitingAddChannel)
	res, err := svc.HandleInput(ctx, fakeResolver{err: errors.New("forbidden")}, adminID, "@hidden")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.Status != StatusUnreachable {
		t.Fatalf("status = %v, expected unreachable", res.Status)
	}
	channels, _ := store.ListChannels(ctx)
	if len(channels) != 0 {
		t.Fatalf("channel added despite failure: %+v", channels)
	}
}

func TestRemoveChannelByHandle(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newSvc(t)
	_ = store.AddChannel(ctx, &models.Channel{ID: -1, Handle: "news"})

	_ = svc.Begin(ctx, adminID, models.FlowAwaitingRemoveChannel)
	res, err := svc.HandleInput(ctx, fakeResolver{}, adminID, "@news")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.Status != StatusApplied {
		t.Fatalf("status = %v, expected applied", res.Status)
	}
	channels, _ := store.ListChannels(ctx)
	if len(channels) != 0 {
		t.Fatalf("channel not removed: %+v", channels)
	}
}

func TestRemoveChannelByID(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newSvc(t)
	_ = store.AddChannel(ctx, &models.Channel{ID: -42, Handle: "x"})

	_ = svc.Begin(ctx, adminID, models.FlowAwaitingRemoveChannel)
	res, err := svc.HandleInput(ctx, fakeResolver{}, adminID, "-42")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.Status != StatusApplied {
		t.Fatalf("status = %v, expected applied", res.Status)
	}
	channels, _ := store.ListChannels(ctx)
	if len(channels) != 0 {
		t.Fatalf("channel not removed: %+v", channels)
	}
}

func TestRemoveChannelUnknownHandle(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSvc(t)

	_ = svc.Begin(ctx, adminID, models.FlowAwaitingRemoveChannel)
	res, err := svc.HandleInput(ctx, fakeResolver{}, adminID, "@ghost")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.Status != StatusNotFound {
		t.Fatalf("status = %v, expected not found", res.Status)
	}
}

func TestBroadcastPassThrough(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSvc(t)

	_ = svc.Begin(ctx, adminID, models.FlowAwaitingBroadcast)
	res, err := svc.HandleInput(ctx, fakeResolver{}, adminID, "  hello everyone  ")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.Status != StatusApplied || res.BroadcastText != "hello everyone" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestBeginOverwritesPending(t *testing.T) {
	ctx := context.Background()
	svc, _, sessions := newSvc(t)

	_ = svc.Begin(ctx, adminID, models.FlowAwaitingBan)
	_ = svc.Begin(ctx, adminID, models.FlowAwaitingBroadcast)
	mustFlow(t, sessions, models.FlowAwaitingBroadcast)

	res, err := svc.HandleInput(ctx, fakeResolver{}, adminID, "hi")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.Kind != models.FlowAwaitingBroadcast || res.BroadcastText != "hi" {
		t.Fatalf("unexpected result: %+v", res)
	}
}
