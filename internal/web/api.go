package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "github.com/julianstephens/habitlog/internal/errors"
)

func (s *Server) habitProgress(c echo.Context) error {
	sess, _ := identity(c)
	habitID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid habit id"})
	}

	series, err := s.stats.ProgressSeries(c.Request().Context(), sess.UserID, habitID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccessDenied) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Access denied"})
		}
		return err
	}
	return c.JSON(http.StatusOK, series)
}

func (s *Server) dashboardStats(c echo.Context) error {
	sess, _ := identity(c)
	stats, err := s.stats.DashboardStats(c.Request().Context(), sess.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
