package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ra-leaderboard-service/api/controllers"
	"ra-leaderboard-service/service/cache"
	"ra-leaderboard-service/service/event"
	"ra-leaderboard-service/service/leaderboard"
	"ra-leaderboard-service/service/monitoring"
	"ra-leaderboard-service/service/period"
	"ra-leaderboard-service/service/rate_limiter"
	"ra-leaderboard-service/service/score_store"
	"ra-leaderboard-service/service/scoring"
	"ra-leaderboard-service/service/session"
	"ra-leaderboard-service/testutil"
)

const testPassword = "hfd2025"

type apiFixture struct {
	router  http.Handler
	fetcher *testutil.FakeFeedFetcher
	helper  *testutil.HTTPTestHelper
}

func newAPIFixture(t *testing.T, withFetcher bool) *apiFixture {
	t.Helper()
	dir := t.TempDir()

	fetcher := &testutil.FakeFeedFetcher{
		Feeds: testutil.NewFeedBuilder().
			Interviews("Amina", 10, 10, 15).
			Interviews("Bongani", 10, 7, 20).
			Interviews("Chipo", 10, 9, 14).
			Build(),
	}
	deps := leaderboard.Dependencies{
		Cache:    cache.NewMetricsCache(dir),
		Scores:   score_store.NewFileStore(filepath.Join(dir, "manual_scores.json")),
		Resolver: period.NewResolver(testutil.FixedClock(2025, time.February, 12)),
	}
	if withFetcher {
		deps.Fetcher = fetcher
	}

	auth, err := session.NewAuthenticator(testPassword, "")
	require.NoError(t, err)
	rubric, err := scoring.LoadRubric()
	require.NoError(t, err)
	metrics := monitoring.NewMetricsCollector(prometheus.NewRegistry())

	r := chi.NewRouter()
	InitRoute(r, Dependencies{
		Leaderboard:  leaderboard.NewService(deps),
		Sessions:     session.NewManager(session.NewMemoryStore(), auth, time.Hour),
		Rubric:       rubric,
		Health:       monitoring.NewHealthChecker(time.Second),
		Metrics:      metrics,
		Hub:          event.NewHub(4),
		LoginLimiter: rate_limiter.NewLocalRateLimiter(rate_limiter.Rule{Rate: 100, Burst: 100}),
	})

	return &apiFixture{router: r, fetcher: fetcher, helper: testutil.NewHTTPTestHelper()}
}

func (f *apiFixture) do(t *testing.T, method, url, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req, err := f.helper.CreateJSONRequest(method, url, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) login(t *testing.T) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/admin/login", "", map[string]string{"password": testPassword})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status int                       `json:"status"`
		Data   controllers.LoginResponse `json:"data"`
	}
	f.helper.DecodeJSON(t, w, &resp)
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func decodeLeaderboard(t *testing.T, w *httptest.ResponseRecorder) leaderboard.Leaderboard {
	t.Helper()
	var resp struct {
		Status int                     `json:"status"`
		Data   leaderboard.Leaderboard `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Status)
	return resp.Data
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t, false)

	w := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ready"`)
}

func TestPeriodAndRubric(t *testing.T) {
	f := newAPIFixture(t, false)

	w := f.do(t, http.MethodGet, "/period?month=2&year=2025", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data leaderboard.PeriodInfo `json:"data"`
	}
	f.helper.DecodeJSON(t, w, &resp)
	assert.Equal(t, "2025-02-01", resp.Data.StartDate)
	assert.Equal(t, "2025-02-12", resp.Data.EndDate)
	assert.True(t, resp.Data.InProgress)

	w = f.do(t, http.MethodGet, "/period?month=13&year=2025", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/period?month=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/rubric", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"max_score":30`)
}

func TestLeaderboard_NoCache(t *testing.T) {
	f := newAPIFixture(t, false)

	w := f.do(t, http.MethodGet, "/leaderboard?month=1&year=2025", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp controllers.APIResponse
	f.helper.DecodeJSON(t, w, &resp)
	assert.Equal(t, http.StatusNotFound, resp.Status)

	w = f.do(t, http.MethodGet, "/export.csv?month=1&year=2025", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmin_RequiresSession(t *testing.T) {
	f := newAPIFixture(t, true)

	w := f.do(t, http.MethodPost, "/admin/refresh", "", map[string]int{"month": 1, "year": 2025})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, "/admin/login", "", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, "/admin/login", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	token := f.login(t)
	w = f.do(t, http.MethodPost, "/admin/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/admin/scores", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdmin_RefreshDisabled(t *testing.T) {
	f := newAPIFixture(t, false)
	token := f.login(t)

	w := f.do(t, http.MethodPost, "/admin/refresh", token, map[string]int{"month": 1, "year": 2025})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdmin_FullFlow(t *testing.T) {
	f := newAPIFixture(t, true)
	token := f.login(t)

	w := f.do(t, http.MethodPost, "/admin/refresh", token, map[string]int{"month": 1, "year": 2025})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, f.fetcher.Calls())

	w = f.do(t, http.MethodGet, "/leaderboard?month=1&year=2025", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	lb := decodeLeaderboard(t, w)
	require.Len(t, lb.Entries, 3)
	assert.Equal(t, "amina", lb.Entries[0].RAName)
	assert.Equal(t, leaderboard.WinnerTitlePending, lb.Winner.Title)

	// 超出范围的评分被拒绝
	w = f.do(t, http.MethodPut, "/admin/scores", token, map[string]interface{}{
		"month": 1, "year": 2025, "ra_name": "bongani", "journal": 6,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPut, "/admin/scores", token, map[string]interface{}{
		"month": 1, "year": 2025, "ra_name": "bongani", "journal": 5, "feedback": 5, "team": 5,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/admin/scores/batch", token, map[string]interface{}{
		"month": 1, "year": 2025,
		"scores": map[string]interface{}{
			"amina": map[string]int{"journal": 1, "feedback": 1, "team": 1},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/leaderboard?month=1&year=2025", "", nil)
	lb = decodeLeaderboard(t, w)
	assert.Equal(t, "bongani", lb.Entries[0].RAName)
	assert.Equal(t, 24, lb.Entries[0].TotalScore)
	assert.Equal(t, leaderboard.WinnerTitleFinal, lb.Winner.Title)

	w = f.do(t, http.MethodGet, "/admin/scores?month=1&year=2025", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bongani"`)

	w = f.do(t, http.MethodGet, "/export.csv?month=1&year=2025", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ra_leaderboard_2025_01.csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "1,bongani,24"))

	w = f.do(t, http.MethodDelete, "/admin/scores?month=1&year=2025", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/leaderboard?month=1&year=2025", "", nil)
	lb = decodeLeaderboard(t, w)
	assert.Equal(t, "amina", lb.Entries[0].RAName)

	w = f.do(t, http.MethodGet, "/periods", "", nil)
	assert.Contains(t, w.Body.String(), "2025_01")

	w = f.do(t, http.MethodDelete, "/admin/cache?month=1&year=2025", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = f.do(t, http.MethodGet, "/leaderboard?month=1&year=2025", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmin_RefreshDefaultsToCurrentPeriod(t *testing.T) {
	f := newAPIFixture(t, true)
	token := f.login(t)

	w := f.do(t, http.MethodPost, "/admin/refresh", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, f.fetcher.Windows, 1)
	assert.Equal(t, "2025_02", f.fetcher.Windows[0].Key())
}
