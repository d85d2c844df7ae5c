package system

import (
	"fmt"

	"github.com/julianstephens/habitlog/internal/auth"
	"github.com/julianstephens/habitlog/internal/cli"
	"github.com/julianstephens/habitlog/internal/logger"
	"github.com/julianstephens/habitlog/internal/session"
	"github.com/julianstephens/habitlog/internal/web"
)

// ServeCmd runs the web application until interrupted
type ServeCmd struct {
	Addr string `help:"Listen address (overrides HABITLOG_HTTP_ADDR)."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer ctx.Store.Close()

	sessions, closeSessions, err := openSessionStore(ctx)
	if err != nil {
		return err
	}
	defer closeSessions()

	authSvc := auth.NewService(ctx.Store, sessions, auth.WithSessionTTL(ctx.Config.SessionTTL))
	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.HTTPAddr
	}

	srv, err := web.New(ctx.Store, authSvc, ctx.HabitService(), ctx.StatsService(), web.Options{
		Addr:          addr,
		SecureCookies: ctx.Config.SecureCookies,
		RateLimit:     ctx.Config.RateLimit,
		RateBurst:     ctx.Config.RateBurst,
	})
	if err != nil {
		return err
	}

	logger.Info("Starting habitlog", "addr", addr, "storage", ctx.Store.GetConfigPath())
	ctx.Printf("habitlog listening on http://%s\n", addr)
	return srv.Run(ctx)
}

// openSessionStore uses Redis when HABITLOG_REDIS_URL is set and the
// database otherwise
func openSessionStore(ctx *cli.Context) (session.Store, func(), error) {
	if ctx.Config.RedisURL == "" {
		return session.NewSQLStore(ctx.Store), func() {}, nil
	}

	rs, err := session.NewRedisStore(ctx, ctx.Config.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("Using redis session store")
	return rs, func() {
		if err := rs.Close(); err != nil {
			logger.Warn("Failed to close redis client", "error", err)
		}
	}, nil
}
