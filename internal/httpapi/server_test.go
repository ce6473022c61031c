package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"momentum/internal/engine"
	"momentum/internal/storage"
)

type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time { return c.t }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()

	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := &fixedClock{t: time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)}
	svc := engine.NewService(db, engine.WithClock(clock))
	return NewServer(DefaultConfig(), svc, nil)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rec, body := doJSON(t, srv.Handler(), http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestCreateAndCompleteTask(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	rec, created := doJSON(t, h, http.MethodPost, "/api/tasks", map[string]any{
		"title":    "write report",
		"category": "deep_work",
		"priority": 1,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(37), created["xp_value"])
	assert.Equal(t, "todo", created["status"])

	id := created["id"].(string)
	rec, res := doJSON(t, h, http.MethodPost, "/api/tasks/"+id+"/complete", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(37), res["xp_awarded"])
	assert.Equal(t, float64(1), res["current_streak"])

	unlocked := res["new_achievements"].([]any)
	keys := make([]string, 0, len(unlocked))
	for _, a := range unlocked {
		keys = append(keys, a.(map[string]any)["key"].(string))
	}
	assert.Equal(t, []string{"first_task", "early_bird"}, keys)

	rec, profile := doJSON(t, h, http.MethodGet, "/api/profile", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(37), profile["total_xp"])
	assert.Equal(t, float64(1), profile["current_level"])
}

func TestCreateTaskValidation(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	rec, body := doJSON(t, h, http.MethodPost, "/api/tasks", map[string]any{
		"title":    "mystery",
		"category": "chores",
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invalid_category", body["error"])
}

func TestCompleteUnknownTask(t *testing.T) {
	srv := newTestServer(t)
	rec, body := doJSON(t, srv.Handler(), http.MethodPost, "/api/tasks/nope/complete", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["error"])
}

func TestArchiveConflict(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	_, created := doJSON(t, h, http.MethodPost, "/api/tasks", map[string]any{
		"title":    "old idea",
		"category": "quick_win",
	}, nil)
	id := created["id"].(string)

	rec, _ := doJSON(t, h, http.MethodPost, "/api/tasks/"+id+"/archive", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, h, http.MethodPost, "/api/tasks/"+id+"/complete", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_archived", body["error"])

	rec, _ = doJSON(t, h, http.MethodPost, "/api/tasks/"+id+"/restore", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserHeaderScopesData(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()
	alice := map[string]string{"X-User-ID": "alice"}

	_, created := doJSON(t, h, http.MethodPost, "/api/tasks", map[string]any{
		"title":    "alice task",
		"category": "quick_win",
	}, alice)
	id := created["id"].(string)

	// The default user cannot reach alice's task.
	rec, _ := doJSON(t, h, http.MethodPost, "/api/tasks/"+id+"/complete", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, h, http.MethodPost, "/api/tasks/"+id+"/complete", nil, alice)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, tasks := doJSON(t, h, http.MethodGet, "/api/tasks", nil, nil)
	assert.Equal(t, float64(0), tasks["count"])
}

func TestBacklogAndStats(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	for _, title := range []string{"alpha", "beta", "gamma"} {
		_, created := doJSON(t, h, http.MethodPost, "/api/tasks", map[string]any{
			"title":    title,
			"category": "quick_win",
		}, nil)
		id := created["id"].(string)
		rec, _ := doJSON(t, h, http.MethodPost, "/api/tasks/"+id+"/complete", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, backlog := doJSON(t, h, http.MethodGet, "/api/backlog?limit=2", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), backlog["count"])
	assert.Equal(t, float64(2), backlog["total_pages"])

	rec, filtered := doJSON(t, h, http.MethodGet, "/api/backlog?search=alpha", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), filtered["count"])

	rec, stats := doJSON(t, h, http.MethodGet, "/api/stats?period=week", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), stats["total_tasks"])
	assert.Equal(t, float64(30), stats["total_xp"])
	assert.Equal(t, float64(100), stats["completion_rate"])

	rec, _ = doJSON(t, h, http.MethodGet, "/api/stats?period=decade", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAchievementsView(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	_, created := doJSON(t, h, http.MethodPost, "/api/tasks", map[string]any{
		"title":    "one",
		"category": "quick_win",
	}, nil)
	id := created["id"].(string)
	rec, _ := doJSON(t, h, http.MethodPost, "/api/tasks/"+id+"/complete", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, h, http.MethodGet, "/api/achievements", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	unlocked := body["unlocked"].([]any)
	locked := body["locked_with_progress"].([]any)
	assert.Len(t, unlocked, 2)
	assert.Len(t, locked, 11)
}
