package web

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/julianstephens/habitlog/internal/errors"
	"github.com/julianstephens/habitlog/internal/models"
)

const identityKey = "habitlog.identity"

// loadIdentity resolves the session cookie once per request. Stale cookies
// are cleared and the request continues anonymously.
func (s *Server) loadIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := readSessionCookie(c)
		if !ok {
			return next(c)
		}

		sess, err := s.auth.Authenticate(c.Request().Context(), id)
		switch {
		case err == nil:
			c.Set(identityKey, sess)
		case errors.Is(err, apperrors.ErrUnauthenticated):
			clearSessionCookie(c, s.opts.SecureCookies)
		default:
			return err
		}
		return next(c)
	}
}

// identity returns the signed-in session for the request
func identity(c echo.Context) (models.Session, bool) {
	sess, ok := c.Get(identityKey).(models.Session)
	return sess, ok
}

func requirePageLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := identity(c); !ok {
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		return next(c)
	}
}

func requireAPILogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := identity(c); !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		}
		return next(c)
	}
}
