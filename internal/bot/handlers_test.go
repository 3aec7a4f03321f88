package bot

import (
	"context"
	"os"
	"testing"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/pixbot/core/config"
	"github.com/m3rciful/pixbot/core/logger"
	"github.com/m3rciful/pixbot/internal/admin"
	"github.com/m3rciful/pixbot/internal/broadcast"
	"github.com/m3rciful/pixbot/internal/gate"
	"github.com/m3rciful/pixbot/internal/models"
	"github.com/m3rciful/pixbot/internal/search"
	"github.com/m3rciful/pixbot/internal/session"
	"github.com/m3rciful/pixbot/internal/storage"
)

const testAdminID int64 = 900

func TestMain(m *testing.M) {
	_ = logger.InitLogger(&coreconfig.Config{Logging: coreconfig.LoggingConfig{Level: "error"}})
	os.Exit(m.Run())
}

// fakeContext records outgoing payloads. Methods the handlers never touch
// stay on the embedded interface and panic loudly if a test reaches them.
type fakeContext struct {
	tele.Context
	user *tele.User
	text string

	vals map[string]any
	out  []any
}

func newFakeContext(userID int64, text string) *fakeContext {
	return &fakeContext{
		user: &tele.User{ID: userID},
		text: text,
		vals: map[string]any{},
	}
}

func (f *fakeContext) Bot() tele.API { return nil }

func (f *fakeContext) Update() tele.Update { return tele.Update{} }

func (f *fakeContext) Sender() *tele.User { return f.user }

func (f *fakeContext) Chat() *tele.Chat { return nil }

func (f *fakeContext) Text() string { return f.text }

func (f *fakeContext) Get(key string) any { return f.vals[key] }

func (f *fakeContext) Set(key string, v any) { f.vals[key] = v }

func (f *fakeContext) Delete() error { return nil }

func (f *fakeContext) Send(what any, _ ...any) error {
	f.out = append(f.out, what)
	return nil
}

func (f *fakeContext) EditOrSend(what any, _ ...any) error {
	f.out = append(f.out, what)
	return nil
}

func (f *fakeContext) lastText(t *testing.T) string {
	t.Helper()
	if len(f.out) == 0 {
		t.Fatal("nothing was sent")
	}
	s, ok := f.out[len(f.out)-1].(string)
	if !ok {
		t.Fatalf("last payload is %T, expected string", f.out[len(f.out)-1])
	}
	return s
}

type fixedProvider struct {
	results []models.Result
}

func (p fixedProvider) Search(ctx context.Context, query string, category models.Category) ([]models.Result, error) {
	return p.results, nil
}

func newBot(t *testing.T, provider search.Provider) (*Bot, *storage.MemoryStorage, *session.Service) {
	t.Helper()
	store := storage.NewMemoryStorage()
	sessions := session.NewService(store)
	b := New(
		store,
		sessions,
		gate.NewService(store),
		search.NewService(store, sessions, provider),
		admin.NewService(store, sessions),
		broadcast.NewExecutor(store, 1),
		testAdminID,
	)
	return b, store, sessions
}

func TestStartWithoutChannelsShowsMenu(t *testing.T) {
	b, store, _ := newBot(t, fixedProvider{})
	c := newFakeContext(1, "/start")

	if err := b.HandleStart(c); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := c.lastText(t); got != textWelcome {
		t.Fatalf("reply = %q, expected welcome", got)
	}
	user, err := store.GetUser(context.Background(), 1)
	if err != nil || user == nil {
		t.Fatalf("user not registered: %+v err=%v", user, err)
	}
}

func TestStartBannedUserDenied(t *testing.T) {
	b, store, _ := newBot(t, fixedProvider{})
	_ = store.SetBanned(context.Background(), 1, true)
	c := newFakeContext(1, "/start")

	if err := b.HandleStart(c); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := c.lastText(t); got != textBanned {
		t.Fatalf("reply = %q, expected ban notice", got)
	}
}

func TestBannedCallbackDroppedSilently(t *testing.T) {
	b, store, _ := newBot(t, fixedProvider{})
	_ = store.SetBanned(context.Background(), 1, true)
	c := newFakeContext(1, "")

	if err := b.DispatchCallback(c, string(ActionMenu), ""); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(c.out) != 0 {
		t.Fatalf("expected silence, got %v", c.out)
	}
}

func TestPrivilegedCallbackFromNonAdminDropped(t *testing.T) {
	b, _, sessions := newBot(t, fixedProvider{})
	c := newFakeContext(1, "")

	if err := b.DispatchCallback(c, string(ActionAdminBroadcast), ""); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(c.out) != 0 {
		t.Fatalf("expected silence, got %v", c.out)
	}
	flow, _ := sessions.Flow(context.Background(), 1)
	if flow != models.FlowNone {
		t.Fatalf("flow = %q, expected none", flow)
	}
}

func TestUnknownCallbackIsNoOp(t *testing.T) {
	b, _, _ := newBot(t, fixedProvider{})
	c := newFakeContext(1, "")

	if err := b.DispatchCallback(c, "bogus_action", ""); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(c.out) != 0 {
		t.Fatalf("expected silence, got %v", c.out)
	}
}

func TestSearchInCategoryArmsQueryFlow(t *testing.T) {
	b, _, sessions := newBot(t, fixedProvider{})
	c := newFakeContext(1, "")

	if err := b.DispatchCallback(c, string(ActionSearchIn), string(models.CategoryVideo)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got := c.lastText(t); got != textAskQuery {
		t.Fatalf("reply = %q, expected query prompt", got)
	}

	ctx := context.Background()
	flow, _ := sessions.Flow(ctx, 1)
	if flow != models.FlowAwaitingQuery {
		t.Fatalf("flow = %q, expected awaiting_query", flow)
	}
	sess, _ := sessions.Get(ctx, 1)
	if sess == nil || sess.Category != models.CategoryVideo {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestRouteBannedUserGetsDenial(t *testing.T) {
	b, store, sessions := newBot(t, fixedProvider{})
	ctx := context.Background()
	_ = store.SetBanned(ctx, 1, true)
	_ = sessions.SetFlow(ctx, 1, models.FlowAwaitingQuery)
	c := newFakeContext(1, "cats")

	handled, err := b.Route(c)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if !handled {
		t.Fatal("expected the flow to claim the update")
	}
	if got := c.lastText(t); got != textBanned {
		t.Fatalf("reply = %q, expected ban notice", got)
	}
}

func TestRouteWithoutFlowFallsThrough(t *testing.T) {
	b, _, _ := newBot(t, fixedProvider{})
	c := newFakeContext(1, "hello")

	handled, err := b.Route(c)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if handled || len(c.out) != 0 {
		t.Fatalf("expected fall-through, handled=%v out=%v", handled, c.out)
	}
}

func TestQueryFlowConsumedOnce(t *testing.T) {
	provider := fixedProvider{results: []models.Result{{Tags: "cat", ImageURL: "https://img"}}}
	b, store, sessions := newBot(t, provider)
	ctx := context.Background()
	_ = store.UpsertUser(ctx, &models.User{ID: 1})
	_ = sessions.SetFlow(ctx, 1, models.FlowAwaitingQuery)

	c := newFakeContext(1, "cats")
	handled, err := b.Route(c)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if !handled {
		t.Fatal("expected the flow to claim the first message")
	}

	// The expectation is gone; a duplicate falls through to commands.
	dup := newFakeContext(1, "cats")
	handled, err = b.Route(dup)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if handled {
		t.Fatal("duplicate message claimed a consumed flow")
	}

	user, _ := store.GetUser(ctx, 1)
	if user.SearchCount != 1 {
		t.Fatalf("search_count = %d, expected exactly 1", user.SearchCount)
	}
}

func TestStalePrivilegedFlowClearedForNonAdmin(t *testing.T) {
	b, _, sessions := newBot(t, fixedProvider{})
	ctx := context.Background()
	_ = sessions.SetFlow(ctx, 1, models.FlowAwaitingBroadcast)
	c := newFakeContext(1, "hi all")

	handled, err := b.Route(c)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if handled || len(c.out) != 0 {
		t.Fatalf("expected silent fall-through, handled=%v out=%v", handled, c.out)
	}
	flow, _ := sessions.Flow(ctx, 1)
	if flow != models.FlowNone {
		t.Fatalf("flow = %q, expected cleared", flow)
	}
}
