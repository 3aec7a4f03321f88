// Package app assembles the bot: configuration, infrastructure bootstrap,
// service construction, and the Telegram run options.
package app

import (
	"context"
	"time"

	"github.com/m3rciful/pixbot/core/bootstrap"
	coretelegram "github.com/m3rciful/pixbot/core/telegram"
	"github.com/m3rciful/pixbot/core/telegram/commands"
	"github.com/m3rciful/pixbot/core/telegram/middleware"
	"github.com/m3rciful/pixbot/core/telegram/router"
	"github.com/m3rciful/pixbot/internal/admin"
	"github.com/m3rciful/pixbot/internal/bot"
	"github.com/m3rciful/pixbot/internal/broadcast"
	"github.com/m3rciful/pixbot/internal/gate"
	"github.com/m3rciful/pixbot/internal/health"
	"github.com/m3rciful/pixbot/internal/pixabay"
	"github.com/m3rciful/pixbot/internal/search"
	"github.com/m3rciful/pixbot/internal/session"
	"github.com/m3rciful/pixbot/internal/storage"
)

// App holds initialized services ready to serve Telegram updates.
type App struct {
	cfg    *Config
	store  storage.Storage
	bot    *bot.Bot
	health *health.Server
}

// Bootstrap initializes the logger, the database with migrations, and
// every service.
func Bootstrap(cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	store := storage.NewPostgresStorage(res.DB)
	sessions := session.NewService(store)
	gateSvc := gate.NewService(store)
	provider := pixabay.NewClient(cfg.Pixabay)
	searchSvc := search.NewService(store, sessions, provider)
	adminSvc := admin.NewService(store, sessions)
	bcast := broadcast.NewExecutor(store, cfg.Broadcast.Workers)

	adminID := cfg.Core.Telegram.AdminID
	b := bot.New(store, sessions, gateSvc, searchSvc, adminSvc, bcast, adminID)

	return &App{
		cfg:    cfg,
		store:  store,
		bot:    b,
		health: health.NewServer(cfg.Health.Listen, res.DB),
	}, nil
}

// TelegramRunOptions builds the route table and runtime hooks.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := a.cfg.CoreConfig()

	reg := coretelegram.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.bot.HandleStart,
		Description: "Start the bot",
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     a.bot.HandleAdmin,
		Description: "Admin panel",
		AdminOnly:   true,
		Hidden:      true,
	})
	reg.SetTextFallback(a.bot.HandleUnknown)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: core.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(router.CallbackOptions{
		Dispatch: a.bot.DispatchCallback,
	}))
	routes = append(routes, router.TextRoutes(a.bot, reg, router.TextOptions{
		UnknownText: a.bot.HandleUnknown,
	})...)

	middlewares := []coretelegram.Middleware{
		{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	}
	if core.RateLimit.IntervalMS > 0 {
		exclude := make(map[string]struct{}, len(core.RateLimit.ExcludeUpdates))
		for _, v := range core.RateLimit.ExcludeUpdates {
			exclude[v] = struct{}{}
		}
		middlewares = append(middlewares, coretelegram.Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval: time.Duration(core.RateLimit.IntervalMS) * time.Millisecond,
				Exclude:  exclude,
			}),
		})
	}

	return coretelegram.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: middlewares,
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.health.Start()
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			healthErr := a.health.Shutdown(shutdownCtx)
			if err := a.store.Close(); err != nil {
				return err
			}
			return healthErr
		},
	}, nil
}
