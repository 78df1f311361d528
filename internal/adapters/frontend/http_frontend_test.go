package frontend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikey/news-credibility/internal/adapters/builtin"
	"github.com/mikey/news-credibility/internal/adapters/cache"
	"github.com/mikey/news-credibility/internal/adapters/store"
	"github.com/mikey/news-credibility/internal/analysis"
	"github.com/mikey/news-credibility/internal/core"
	"github.com/mikey/news-credibility/internal/ratelimit"
	"github.com/mikey/news-credibility/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const clickbait = "SHOCKING! Unbelievable and terrible news! Experts hate this amazing trick!!!"

type builtinOnly struct {
	analyzer *builtin.Analyzer
}

func (b builtinOnly) AnalyzerFor(core.ModelInfo) (core.Analyzer, error) {
	return b.analyzer, nil
}

func newService(t *testing.T) *core.CredibilityService {
	t.Helper()
	logger := zap.NewNop()
	engine := analysis.NewEngine()
	c := cache.NewMemoryCache(logger, 0)
	t.Cleanup(c.Stop)

	return core.NewCredibilityService(
		engine,
		builtinOnly{analyzer: builtin.NewAnalyzer(engine)},
		store.NewMemoryStore(logger),
		c,
		utils.NewTextProcessor(logger),
		logger,
		core.ServiceOptions{CacheEnabled: true, CacheTTL: time.Minute},
	)
}

func newTestFrontend(t *testing.T, limiter *ratelimit.Limiter) *HTTPFrontend {
	gin.SetMode(gin.TestMode)
	return NewHTTPFrontend(newService(t), limiter, zap.NewNop(), "127.0.0.1:0", time.Second)
}

func do(t *testing.T, f *HTTPFrontend, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(UserIDHeader, user)
	}

	rec := httptest.NewRecorder()
	f.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHTTP_Health(t *testing.T) {
	f := newTestFrontend(t, nil)
	rec := do(t, f, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTP_RequiresUser(t *testing.T) {
	f := newTestFrontend(t, nil)
	rec := do(t, f, http.MethodPost, "/api/analyze", "", map[string]string{"text": clickbait})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHTTP_Analyze(t *testing.T) {
	f := newTestFrontend(t, nil)

	rec := do(t, f, http.MethodPost, "/api/analyze", "alice", map[string]string{"title": "Wow", "text": clickbait})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	outcome := decode[core.AnalysisOutcome](t, rec)
	assert.Equal(t, analysis.PredictionFake, outcome.Verdict.Prediction)
	assert.Equal(t, core.ModelBuiltIn, outcome.Model.Type)
	assert.NotEmpty(t, outcome.HistoryID)

	rec = do(t, f, http.MethodGet, "/api/history?page=0&limit=5&search=wow", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[core.HistoryPage](t, rec)
	assert.Equal(t, 1, page.TotalCount)
	assert.False(t, page.HasMore)
}

func TestHTTP_AnalyzeValidation(t *testing.T) {
	f := newTestFrontend(t, nil)

	rec := do(t, f, http.MethodPost, "/api/analyze", "alice", map[string]string{"text": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "text", body["field"])

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewBufferString("{not json"))
	req.Header.Set(UserIDHeader, "alice")
	raw := httptest.NewRecorder()
	f.Handler().ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)

	rec = do(t, f, http.MethodGet, "/api/history?page=-2", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTP_HistoryHugePage(t *testing.T) {
	f := newTestFrontend(t, nil)

	rec := do(t, f, http.MethodPost, "/api/analyze", "alice", map[string]string{"title": "Wow", "text": clickbait})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, path := range []string{
		"/api/history?page=9223372036854775807&limit=2",
		"/api/history?page=4611686018427387904&limit=4",
	} {
		rec = do(t, f, http.MethodGet, path, "alice", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Equal(t, "page", decode[map[string]string](t, rec)["field"], path)
	}

	rec = do(t, f, http.MethodGet, "/api/history?page=0&limit=100000", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[core.HistoryPage](t, rec).Data, 1)
}

func TestHTTP_Feedback(t *testing.T) {
	f := newTestFrontend(t, nil)

	rec := do(t, f, http.MethodPost, "/api/feedback", "alice", map[string]any{
		"articleText":     clickbait,
		"modelPrediction": "fake",
		"confidenceScore": 88,
		"userRating":      5,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	outcome := decode[core.FeedbackOutcome](t, rec)
	require.NotNil(t, outcome.TrainingRecord)
	assert.Equal(t, analysis.AccuracyGood, outcome.TrainingRecord.PredictionAccuracy)

	rec = do(t, f, http.MethodGet, "/api/feedback/stats", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[core.FeedbackStats](t, rec)
	assert.Equal(t, 1, stats.TotalFeedback)

	rec = do(t, f, http.MethodGet, "/api/training/insights", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	insights := decode[analysis.Insights](t, rec)
	assert.Equal(t, 1, insights.TotalFeedback)

	rec = do(t, f, http.MethodPost, "/api/feedback", "alice", map[string]any{
		"articleText":     clickbait,
		"modelPrediction": "fake",
		"userRating":      9,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTP_DeleteHistory(t *testing.T) {
	f := newTestFrontend(t, nil)

	rec := do(t, f, http.MethodPost, "/api/analyze", "alice", map[string]string{"text": clickbait})
	require.Equal(t, http.StatusOK, rec.Code)
	id := decode[core.AnalysisOutcome](t, rec).HistoryID

	rec = do(t, f, http.MethodDelete, "/api/history", "bob", map[string][]string{"ids": {id}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[map[string]int](t, rec)["deleted"])

	rec = do(t, f, http.MethodDelete, "/api/history", "alice", map[string][]string{"ids": {id}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[map[string]int](t, rec)["deleted"])
}

func TestHTTP_Settings(t *testing.T) {
	f := newTestFrontend(t, nil)

	rec := do(t, f, http.MethodGet, "/api/settings", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "built-in", decode[map[string]any](t, rec)["ai_model_type"])

	rec = do(t, f, http.MethodPut, "/api/settings", "alice", map[string]string{
		"user_id":         "mallory",
		"ai_model_type":   "custom",
		"custom_endpoint": "https://models.example.com/v1",
		"api_key":         "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[map[string]any](t, rec)
	assert.Equal(t, "alice", view["user_id"])
	assert.Equal(t, true, view["has_api_key"])
	assert.NotContains(t, view, "api_key")

	rec = do(t, f, http.MethodPut, "/api/settings", "alice", map[string]string{"ai_model_type": "quantum"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTP_RateLimit(t *testing.T) {
	f := newTestFrontend(t, ratelimit.NewLimiter(2, time.Hour, zap.NewNop()))
	article := map[string]string{"text": clickbait}

	for i := 0; i < 2; i++ {
		rec := do(t, f, http.MethodPost, "/api/analyze", "alice", article)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(t, f, http.MethodPost, "/api/analyze", "alice", article)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))

	// limits are per user and per endpoint
	rec = do(t, f, http.MethodPost, "/api/analyze", "bob", article)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, f, http.MethodGet, "/api/history", "alice", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTP_StartStop(t *testing.T) {
	f := newTestFrontend(t, nil)
	require.NoError(t, f.Start())
	assert.NoError(t, f.Stop())

	outcome, err := f.ProcessArticle(context.Background(), "alice", &analysis.ArticleInput{Text: clickbait})
	require.NoError(t, err)
	assert.Equal(t, analysis.PredictionFake, outcome.Verdict.Prediction)
}
