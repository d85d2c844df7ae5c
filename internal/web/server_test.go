package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitlog/internal/auth"
	"github.com/julianstephens/habitlog/internal/constants"
	"github.com/julianstephens/habitlog/internal/habits"
	"github.com/julianstephens/habitlog/internal/models"
	"github.com/julianstephens/habitlog/internal/session"
	"github.com/julianstephens/habitlog/internal/stats"
	"github.com/julianstephens/habitlog/internal/storage/sqlite"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type harness struct {
	srv   *Server
	store *sqlite.Store
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, store.Init(context.Background()))
	t.Cleanup(func() { store.Close() })

	clock := func() time.Time { return testNow }
	authSvc := auth.NewService(store, session.NewSQLStore(store), auth.WithClock(clock))
	habitSvc := habits.NewService(store, habits.WithClock(clock), habits.WithLocation(time.UTC))
	statsSvc := stats.NewService(store, stats.WithClock(clock), stats.WithLocation(time.UTC))

	srv, err := New(store, authSvc, habitSvc, statsSvc, opts)
	require.NoError(t, err)
	return &harness{srv: srv, store: store}
}

func (h *harness) do(method, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.srv.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == constants.SessionCookieName {
			return c
		}
	}
	return nil
}

// signUp registers and logs in username, returning the session cookie
func (h *harness) signUp(t *testing.T, username string) *http.Cookie {
	t.Helper()
	rec := h.do(http.MethodPost, "/register", url.Values{
		"username": {username},
		"email":    {username + "@example.com"},
		"password": {"secret1"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	rec = h.do(http.MethodPost, "/login", url.Values{
		"username": {username},
		"password": {"secret1"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	return cookie
}

func (h *harness) createHabit(t *testing.T, cookie *http.Cookie, name, target string) models.Habit {
	t.Helper()
	rec := h.do(http.MethodPost, "/habits/new", url.Values{
		"name":         {name},
		"description":  {"daily practice"},
		"target_hours": {target},
	}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	sess, err := h.store.GetSession(context.Background(), cookie.Value)
	require.NoError(t, err)
	list, err := h.store.ListHabits(context.Background(), sess.UserID)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	return list[len(list)-1]
}

func TestHealthz(t *testing.T) {
	h := newHarness(t, Options{})
	rec := h.do(http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestIndexRedirects(t *testing.T) {
	h := newHarness(t, Options{})

	rec := h.do(http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	cookie := h.signUp(t, "alice")
	rec = h.do(http.MethodGet, "/", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))
}

func TestPagesRequireLogin(t *testing.T) {
	h := newHarness(t, Options{})

	for _, path := range []string{"/dashboard", "/habits", "/habits/new", "/habits/1/log"} {
		t.Run(path, func(t *testing.T) {
			rec := h.do(http.MethodGet, path, nil, nil)
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
		})
	}
}

func TestAPIRequiresLogin(t *testing.T) {
	h := newHarness(t, Options{})

	for _, path := range []string{"/api/dashboard/stats", "/api/habits/1/progress"} {
		t.Run(path, func(t *testing.T) {
			rec := h.do(http.MethodGet, path, nil, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"Not authenticated"}`, rec.Body.String())
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	h := newHarness(t, Options{})

	form := url.Values{"username": {"alice"}, "email": {"alice@example.com"}, "password": {"secret1"}}
	rec := h.do(http.MethodPost, "/register", form, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?registered=1", rec.Header().Get(echo.HeaderLocation))

	rec = h.do(http.MethodGet, "/login?registered=1", nil, nil)
	assert.Contains(t, rec.Body.String(), "Registration successful")

	t.Run("duplicate username", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/register", form, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "Username already exists")
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := url.Values{"username": {"alice2"}, "email": {"alice@example.com"}, "password": {"secret1"}}
		rec := h.do(http.MethodPost, "/register", dup, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "Email already registered")
	})

	t.Run("validation error keeps input", func(t *testing.T) {
		bad := url.Values{"username": {"carol"}, "email": {"not-an-email"}, "password": {"secret1"}}
		rec := h.do(http.MethodPost, "/register", bad, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), `value="carol"`)
	})

	t.Run("password longer than bcrypt accepts", func(t *testing.T) {
		long := url.Values{"username": {"dave"}, "email": {"dave@example.com"}, "password": {strings.Repeat("x", 80)}}
		rec := h.do(http.MethodPost, "/register", long, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "must be at most 72 bytes")
		assert.Contains(t, rec.Body.String(), `value="dave"`)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"nope-nope"}}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid username or password")
		assert.Nil(t, sessionCookie(rec))
	})

	t.Run("success sets cookie", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"secret1"}}, nil)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))

		cookie := sessionCookie(rec)
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

		page := h.do(http.MethodGet, "/dashboard", nil, cookie)
		assert.Equal(t, http.StatusOK, page.Code)
		assert.Contains(t, page.Body.String(), "Signed in as alice")
	})
}

func TestLogout(t *testing.T) {
	h := newHarness(t, Options{})
	cookie := h.signUp(t, "alice")

	rec := h.do(http.MethodGet, "/logout", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	cleared := sessionCookie(rec)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	rec = h.do(http.MethodGet, "/dashboard", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = h.do(http.MethodGet, "/logout", nil, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestStaleCookieIsCleared(t *testing.T) {
	h := newHarness(t, Options{})
	rec := h.do(http.MethodGet, "/dashboard", nil, &http.Cookie{Name: constants.SessionCookieName, Value: "bogus"})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	cleared := sessionCookie(rec)
	require.NotNil(t, cleared)
	assert.True(t, cleared.MaxAge < 0)
}

func TestHabitLifecycle(t *testing.T) {
	h := newHarness(t, Options{})
	cookie := h.signUp(t, "alice")

	habit := h.createHabit(t, cookie, "Reading", "1.0")
	assert.Equal(t, 1.0, habit.TargetHours)
	assert.Equal(t, constants.DefaultCategory, habit.Category)

	rec := h.do(http.MethodGet, "/habits?created=1", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Reading")
	assert.Contains(t, rec.Body.String(), "Habit created successfully!")

	logPath := fmt.Sprintf("/habits/%d/log", habit.ID)
	rec = h.do(http.MethodGet, logPath, nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="2024-03-10"`)

	for _, hours := range []string{"0.5", "1.0"} {
		rec = h.do(http.MethodPost, logPath, url.Values{"date": {"2024-03-10"}, "hours": {hours}, "notes": {"chapter"}}, cookie)
		require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
		assert.Equal(t, "/habits?logged=1", rec.Header().Get(echo.HeaderLocation))
	}

	logs, err := h.store.ListHabitLogs(context.Background(), habit.ID, "2024-03-10", "2024-03-10")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 1.0, logs[0].Hours)

	rec = h.do(http.MethodGet, "/api/dashboard/stats", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"total_habits":1,"today_hours":1,"week_hours":1,"completed_today":1,"total_target":1}`,
		rec.Body.String())

	rec = h.do(http.MethodGet, fmt.Sprintf("/api/habits/%d/progress", habit.ID), nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var series struct {
		Labels []string  `json:"labels"`
		Hours  []float64 `json:"hours"`
		Target float64   `json:"target"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &series))
	require.Len(t, series.Labels, 30)
	require.Len(t, series.Hours, 30)
	assert.Equal(t, "02/10", series.Labels[0])
	assert.Equal(t, "03/10", series.Labels[29])
	assert.Equal(t, 1.0, series.Hours[29])
	assert.Equal(t, 1.0, series.Target)

	rec = h.do(http.MethodGet, "/dashboard", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Reading")
}

func TestCreateHabitValidation(t *testing.T) {
	h := newHarness(t, Options{})
	cookie := h.signUp(t, "alice")

	rec := h.do(http.MethodPost, "/habits/new", url.Values{"name": {""}, "target_hours": {"2"}}, cookie)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "name")

	rec = h.do(http.MethodPost, "/habits/new", url.Values{"name": {"Reading"}, "target_hours": {"lots"}}, cookie)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Reading"`)
}

func TestLogHabitValidation(t *testing.T) {
	h := newHarness(t, Options{})
	cookie := h.signUp(t, "alice")
	habit := h.createHabit(t, cookie, "Reading", "1")
	logPath := fmt.Sprintf("/habits/%d/log", habit.ID)

	tests := []struct {
		name string
		form url.Values
	}{
		{name: "bad date", form: url.Values{"date": {"03/10/2024"}, "hours": {"1"}}},
		{name: "bad hours", form: url.Values{"date": {"2024-03-10"}, "hours": {"abc"}}},
		{name: "negative hours", form: url.Values{"date": {"2024-03-10"}, "hours": {"-2"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(http.MethodPost, logPath, tt.form, cookie)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), "Log Reading")
		})
	}

	logs, err := h.store.ListHabitLogs(context.Background(), habit.ID, "2024-01-01", "2024-12-31")
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestAccessDenied(t *testing.T) {
	h := newHarness(t, Options{})
	alice := h.signUp(t, "alice")
	bob := h.signUp(t, "bob")
	habit := h.createHabit(t, alice, "Reading", "1")
	logPath := fmt.Sprintf("/habits/%d/log", habit.ID)

	rec := h.do(http.MethodGet, logPath, nil, bob)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, accessDeniedRedirect, rec.Header().Get(echo.HeaderLocation))

	rec = h.do(http.MethodPost, logPath, url.Values{"date": {"2024-03-10"}, "hours": {"3"}}, bob)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, accessDeniedRedirect, rec.Header().Get(echo.HeaderLocation))

	rec = h.do(http.MethodGet, accessDeniedRedirect, nil, bob)
	assert.Contains(t, rec.Body.String(), "Access denied")

	rec = h.do(http.MethodGet, "/habits/9999/log", nil, alice)
	assert.Equal(t, accessDeniedRedirect, rec.Header().Get(echo.HeaderLocation))

	rec = h.do(http.MethodGet, fmt.Sprintf("/api/habits/%d/progress", habit.ID), nil, bob)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Access denied"}`, rec.Body.String())

	rec = h.do(http.MethodGet, "/api/habits/abc/progress", nil, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	logs, err := h.store.ListHabitLogs(context.Background(), habit.ID, "2024-01-01", "2024-12-31")
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestLoginRateLimit(t *testing.T) {
	h := newHarness(t, Options{RateLimit: 0.001, RateBurst: 1})
	form := url.Values{"username": {"ghost"}, "password": {"whatever"}}

	rec := h.do(http.MethodPost, "/login", form, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(http.MethodPost, "/login", form, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML)
	assert.Contains(t, rec.Body.String(), "Too many attempts")
	assert.Contains(t, rec.Body.String(), `value="ghost"`)

	rec = h.do(http.MethodGet, "/login", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
