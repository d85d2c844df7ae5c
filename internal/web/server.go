// Package web serves the habitlog pages and JSON API over echo.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/julianstephens/habitlog/internal/auth"
	"github.com/julianstephens/habitlog/internal/constants"
	"github.com/julianstephens/habitlog/internal/habits"
	"github.com/julianstephens/habitlog/internal/logger"
	"github.com/julianstephens/habitlog/internal/stats"
	"github.com/julianstephens/habitlog/internal/storage"
)

// Options configures the HTTP layer. RateLimit and RateBurst bound
// POST /login and POST /register per client IP.
type Options struct {
	Addr          string
	SecureCookies bool
	RateLimit     float64
	RateBurst     int
}

type Server struct {
	echo   *echo.Echo
	opts   Options
	store  storage.Provider
	auth   *auth.Service
	habits *habits.Service
	stats  *stats.Service
}

func New(store storage.Provider, authSvc *auth.Service, habitSvc *habits.Service, statsSvc *stats.Service, opts Options) (*Server, error) {
	if opts.Addr == "" {
		opts.Addr = constants.DefaultHTTPAddr
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = constants.DefaultRateLimit
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = constants.DefaultRateBurst
	}

	renderer, err := newRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	s := &Server{
		echo:   e,
		opts:   opts,
		store:  store,
		auth:   authSvc,
		habits: habitSvc,
		stats:  statsSvc,
	}
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(requestLogger())
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(s.loadIdentity)

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	e := s.echo
	limiter := s.rateLimiter()

	e.GET("/healthz", s.healthz)

	e.GET("/", s.index)
	e.GET("/register", s.registerForm)
	e.POST("/register", s.register, limiter)
	e.GET("/login", s.loginForm)
	e.POST("/login", s.login, limiter)
	e.GET("/logout", s.logout)

	e.GET("/dashboard", s.dashboard, requirePageLogin)
	e.GET("/habits", s.habitList, requirePageLogin)
	e.GET("/habits/new", s.newHabitForm, requirePageLogin)
	e.POST("/habits/new", s.createHabit, requirePageLogin)
	e.GET("/habits/:id/log", s.logHabitForm, requirePageLogin)
	e.POST("/habits/:id/log", s.logHabit, requirePageLogin)

	api := e.Group("/api", requireAPILogin)
	api.GET("/habits/:id/progress", s.habitProgress)
	api.GET("/dashboard/stats", s.dashboardStats)
}

func (s *Server) rateLimiter() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(s.opts.RateLimit),
				Burst:     s.opts.RateBurst,
				ExpiresIn: constants.RateLimiterExpiresIn,
			}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logger.Warn("Rate limiter could not identify client", "path", c.Path(), "error", err)
			return limitedForm(c)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			logger.Warn("Rate limit exceeded", "client", identifier, "path", c.Path())
			return limitedForm(c)
		},
	})
}

// limitedForms maps the rate limited routes to the form they re-render
var limitedForms = map[string]struct{ template, title string }{
	"/login":    {"login.html", "Login"},
	"/register": {"register.html", "Register"},
}

// limitedForm answers a throttled form post with the same form and a 429
func limitedForm(c echo.Context) error {
	form, ok := limitedForms[c.Path()]
	if !ok {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
	}
	p := newPage(c, form.title)
	p.Form["username"] = c.FormValue("username")
	p.Form["email"] = c.FormValue("email")
	p.Error = "Too many attempts, please try again later"
	return c.Render(http.StatusTooManyRequests, form.template, p)
}

// requestLogger forwards one line per request to the application logger
func requestLogger() echo.MiddlewareFunc {
	httpLog := logger.With("component", "http")
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				httpLog.Error("request", "method", v.Method, "uri", v.URI, "status", v.Status,
					"latency", v.Latency, "remote_ip", v.RemoteIP, "error", v.Error)
				return nil
			}
			httpLog.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status,
				"latency", v.Latency, "remote_ip", v.RemoteIP)
			return nil
		},
	})
}

func (s *Server) handleError(err error, c echo.Context) {
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code >= http.StatusInternalServerError {
		logger.Error("Request failed", "path", c.Path(), "error", err)
	}
	s.echo.DefaultHTTPErrorHandler(err, c)
}

func (s *Server) healthz(c echo.Context) error {
	if err := s.store.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ServeHTTP lets the server be mounted or driven by httptest
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", s.opts.Addr)
		if err := s.echo.Start(s.opts.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) setSessionCookie(c echo.Context, id string, expires time.Time) {
	writeSessionCookie(c, id, expires, s.opts.SecureCookies)
}
