package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "github.com/julianstephens/habitlog/internal/errors"
	"github.com/julianstephens/habitlog/internal/habits"
	"github.com/julianstephens/habitlog/internal/logger"
)

const accessDeniedRedirect = "/habits?error=access-denied"

// notices maps query flags set by redirects to the message shown after them
var notices = map[string]string{
	"registered": "Registration successful! Please login.",
	"created":    "Habit created successfully!",
	"logged":     "Habit logged successfully!",
}

func newPage(c echo.Context, title string) pageData {
	p := pageData{Title: title, Form: map[string]string{}}
	if sess, ok := identity(c); ok {
		p.Username = sess.Username
	}
	for flag, msg := range notices {
		if c.QueryParam(flag) != "" {
			p.Notice = msg
		}
	}
	if c.QueryParam("error") == "access-denied" {
		p.Error = "Access denied"
	}
	return p
}

// formError re-renders a form with the message for err and the status it maps to
func formError(c echo.Context, template string, p pageData, err error) error {
	status := http.StatusUnprocessableEntity
	switch {
	case apperrors.IsValidation(err):
		p.Error = err.Error()
	case errors.Is(err, apperrors.ErrDuplicateUsername):
		p.Error = "Username already exists"
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrDuplicateEmail):
		p.Error = "Email already registered"
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		p.Error = "Invalid username or password"
		status = http.StatusUnauthorized
	default:
		return err
	}
	return c.Render(status, template, p)
}

func (s *Server) index(c echo.Context) error {
	if _, ok := identity(c); ok {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (s *Server) registerForm(c echo.Context) error {
	return c.Render(http.StatusOK, "register.html", newPage(c, "Register"))
}

func (s *Server) register(c echo.Context) error {
	p := newPage(c, "Register")
	p.Form["username"] = c.FormValue("username")
	p.Form["email"] = c.FormValue("email")

	_, err := s.auth.Register(c.Request().Context(), p.Form["username"], p.Form["email"], c.FormValue("password"))
	if err != nil {
		return formError(c, "register.html", p, err)
	}
	return c.Redirect(http.StatusSeeOther, "/login?registered=1")
}

func (s *Server) loginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", newPage(c, "Login"))
}

func (s *Server) login(c echo.Context) error {
	p := newPage(c, "Login")
	p.Form["username"] = c.FormValue("username")

	sess, err := s.auth.Login(c.Request().Context(), p.Form["username"], c.FormValue("password"))
	if err != nil {
		return formError(c, "login.html", p, err)
	}

	s.setSessionCookie(c, sess.ID, sess.ExpiresAt)
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *Server) logout(c echo.Context) error {
	if id, ok := readSessionCookie(c); ok {
		if err := s.auth.Logout(c.Request().Context(), id); err != nil {
			logger.Warn("Logout failed", "error", err)
		}
	}
	clearSessionCookie(c, s.opts.SecureCookies)
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (s *Server) dashboard(c echo.Context) error {
	sess, _ := identity(c)
	ctx := c.Request().Context()

	summaries, err := s.stats.RecentSummary(ctx, sess.UserID)
	if err != nil {
		return err
	}
	stats, err := s.stats.DashboardStats(ctx, sess.UserID)
	if err != nil {
		return err
	}

	p := newPage(c, "Dashboard")
	p.Summaries = summaries
	p.Stats = stats
	return c.Render(http.StatusOK, "dashboard.html", p)
}

func (s *Server) habitList(c echo.Context) error {
	sess, _ := identity(c)
	list, err := s.habits.ListHabits(c.Request().Context(), sess.UserID)
	if err != nil {
		return err
	}

	p := newPage(c, "Habits")
	p.Habits = list
	return c.Render(http.StatusOK, "habits.html", p)
}

func (s *Server) newHabitForm(c echo.Context) error {
	return c.Render(http.StatusOK, "new_habit.html", newPage(c, "New habit"))
}

func (s *Server) createHabit(c echo.Context) error {
	sess, _ := identity(c)
	p := newPage(c, "New habit")
	in := habits.HabitInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		TargetHours: c.FormValue("target_hours"),
		Category:    c.FormValue("category"),
	}
	p.Form["name"] = in.Name
	p.Form["description"] = in.Description
	p.Form["target_hours"] = in.TargetHours
	p.Form["category"] = in.Category

	if _, err := s.habits.CreateHabit(c.Request().Context(), sess.UserID, in); err != nil {
		return formError(c, "new_habit.html", p, err)
	}
	return c.Redirect(http.StatusSeeOther, "/habits?created=1")
}

func (s *Server) logHabitForm(c echo.Context) error {
	sess, _ := identity(c)
	habitID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, accessDeniedRedirect)
	}

	habit, err := s.habits.GetHabit(c.Request().Context(), sess.UserID, habitID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccessDenied) {
			return c.Redirect(http.StatusSeeOther, accessDeniedRedirect)
		}
		return err
	}

	p := newPage(c, "Log "+habit.Name)
	p.Habit = habit
	p.Today = s.habits.Today()
	return c.Render(http.StatusOK, "log_habit.html", p)
}

func (s *Server) logHabit(c echo.Context) error {
	sess, _ := identity(c)
	ctx := c.Request().Context()
	habitID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, accessDeniedRedirect)
	}

	in := habits.LogInput{
		Date:  c.FormValue("date"),
		Hours: c.FormValue("hours"),
		Notes: c.FormValue("notes"),
	}
	_, err = s.habits.LogHabit(ctx, sess.UserID, habitID, in)
	switch {
	case err == nil:
		return c.Redirect(http.StatusSeeOther, "/habits?logged=1")
	case errors.Is(err, apperrors.ErrAccessDenied):
		return c.Redirect(http.StatusSeeOther, accessDeniedRedirect)
	case !apperrors.IsValidation(err):
		return err
	}

	habit, getErr := s.habits.GetHabit(ctx, sess.UserID, habitID)
	if getErr != nil {
		return getErr
	}
	p := newPage(c, "Log "+habit.Name)
	p.Habit = habit
	p.Today = s.habits.Today()
	p.Form["date"] = in.Date
	p.Form["hours"] = in.Hours
	p.Form["notes"] = in.Notes
	return formError(c, "log_habit.html", p, err)
}
