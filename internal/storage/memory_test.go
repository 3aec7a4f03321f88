package storage

import (
	"context"
	"testing"

	"github.com/m3rciful/pixbot/internal/models"
)

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	in := &models.Session{
		UserID:   7,
		Query:    "sunset",
		Category: models.CategoryPhoto,
		Results: []models.Result{
			{Tags: "sunset, sky", Views: 100, ImageURL: "https://img/1"},
			{Tags: "beach", Views: 50, ImageURL: "https://img/2"},
		},
		Index: 1,
	}
	if err := store.PutSession(ctx, in); err != nil {
		t.Fatalf("put session: %v", err)
	}

	out, err := store.GetSession(ctx, 7)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if out == nil {
		t.Fatal("expected session")
	}
	if out.Query != "sunset" || out.Category != models.CategoryPhoto || out.Index != 1 {
		t.Fatalf("unexpected session: %+v", out)
	}
	if len(out.Results) != 2 || out.Results[0].Tags != "sunset, sky" {
		t.Fatalf("unexpected results: %+v", out.Results)
	}

	// Mutating the returned copy must not leak into the store.
	out.Results[0].Tags = "changed"
	again, _ := store.GetSession(ctx, 7)
	if again.Results[0].Tags != "sunset, sky" {
		t.Fatalf("store leaked a mutable snapshot: %q", again.Results[0].Tags)
	}
}

func TestGetSessionMissing(t *testing.T) {
	store := NewMemoryStorage()
	sess, err := store.GetSession(context.Background(), 1)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess != nil {
		t.Fatalf("expected nil session, got %+v", sess)
	}
}

func TestFlowIndependentOfSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	if err := store.SetFlow(ctx, 7, models.FlowAwaitingQuery); err != nil {
		t.Fatalf("set flow: %v", err)
	}
	if err := store.PutSession(ctx, &models.Session{UserID: 7, Query: "cats"}); err != nil {
		t.Fatalf("put session: %v", err)
	}

	flow, err := store.GetFlow(ctx, 7)
	if err != nil {
		t.Fatalf("get flow: %v", err)
	}
	if flow != models.FlowAwaitingQuery {
		t.Fatalf("flow = %q, expected awaiting_query", flow)
	}
}

func TestSetBannedCreatesUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	if err := store.SetBanned(ctx, 99, true); err != nil {
		t.Fatalf("set banned: %v", err)
	}
	banned, err := store.IsBanned(ctx, 99)
	if err != nil {
		t.Fatalf("is banned: %v", err)
	}
	if !banned {
		t.Fatal("expected user to be banned")
	}
}

func TestUpsertUserPreservesBanAndCounter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	if err := store.UpsertUser(ctx, &models.User{ID: 5, Username: "a"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.SetBanned(ctx, 5, true); err != nil {
		t.Fatalf("set banned: %v", err)
	}
	if err := store.IncrementSearchCount(ctx, 5); err != nil {
		t.Fatalf("increment: %v", err)
	}

	if err := store.UpsertUser(ctx, &models.User{ID: 5, Username: "b"}); err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	u, err := store.GetUser(ctx, 5)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.Username != "b" {
		t.Fatalf("username = %q, expected b", u.Username)
	}
	if !u.Banned || u.SearchCount != 1 {
		t.Fatalf("ban/counter not preserved: %+v", u)
	}
}

func TestUserIDsExcludesBanned(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	for id := int64(1); id <= 3; id++ {
		if err := store.UpsertUser(ctx, &models.User{ID: id}); err != nil {
			t.Fatalf("upsert %d: %v", id, err)
		}
	}
	if err := store.SetBanned(ctx, 2, true); err != nil {
		t.Fatalf("set banned: %v", err)
	}

	ids, err := store.UserIDs(ctx, true)
	if err != nil {
		t.Fatalf("user ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Fatalf("ids = %v, expected [1 3]", ids)
	}

	all, err := store.UserIDs(ctx, false)
	if err != nil {
		t.Fatalf("user ids: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all ids = %v, expected 3 entries", all)
	}
}

func TestChannelAddRemove(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	if err := store.AddChannel(ctx, &models.Channel{ID: -100, Handle: "news", AddedBy: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.AddChannel(ctx, &models.Channel{ID: -200, Handle: "deals", AddedBy: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	// Re-adding the same id updates in place, keeping position.
	if err := store.AddChannel(ctx, &models.Channel{ID: -100, Handle: "newsv2", AddedBy: 1}); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	channels, err := store.ListChannels(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(channels) != 2 || channels[0].Handle != "newsv2" || channels[1].Handle != "deals" {
		t.Fatalf("unexpected channels: %+v", channels)
	}

	if err := store.RemoveChannel(ctx, -100); err != nil {
		t.Fatalf("remove: %v", err)
	}
	channels, _ = store.ListChannels(ctx)
	if len(channels) != 1 || channels[0].ID != -200 {
		t.Fatalf("unexpected channels after remove: %+v", channels)
	}
}

func TestStatistics(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	for id := int64(1); id <= 4; id++ {
		_ = store.UpsertUser(ctx, &models.User{ID: id})
	}
	_ = store.SetBanned(ctx, 4, true)
	_ = store.IncrementSearchCount(ctx, 1)
	_ = store.IncrementSearchCount(ctx, 1)
	_ = store.IncrementSearchCount(ctx, 2)
	_ = store.AddChannel(ctx, &models.Channel{ID: -1, Handle: "a"})

	stats, err := store.Statistics(ctx)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.TotalUsers != 4 || stats.TotalSearches != 3 || stats.Channels != 1 || stats.BannedUsers != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
