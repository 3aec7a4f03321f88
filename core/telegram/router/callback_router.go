package router

import (
	"time"

	tg "github.com/m3rciful/pixbot/core/telegram"
	"github.com/m3rciful/pixbot/core/telegram/middleware"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions wires the application's callback dispatcher.
type CallbackOptions struct {
	// Dispatch receives every callback with its decoded action key and
	// payload. The dispatcher owns the full action set; unknown keys are
	// its responsibility.
	Dispatch func(c tele.Context, key, payload string) error
}

// CallbackRoute returns a handler that decodes callbacks and hands them to
// the dispatcher.
func CallbackRoute(opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}

		key, payload := parseCallback(c.Callback())
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		_ = c.Respond()

		if opts.Dispatch == nil {
			logHandlerSummary(c, name, start, "skip", "ok", nil, extras...)
			return nil
		}

		return handleWithSummary(c, name, start, "", "", func() error {
			return opts.Dispatch(c, key, payload)
		}, extras...)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
