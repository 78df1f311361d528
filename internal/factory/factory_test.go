package factory

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/news-credibility/internal/adapters/builtin"
	"github.com/mikey/news-credibility/internal/adapters/cache"
	"github.com/mikey/news-credibility/internal/adapters/frontend"
	"github.com/mikey/news-credibility/internal/adapters/simulated"
	"github.com/mikey/news-credibility/internal/adapters/store"
	"github.com/mikey/news-credibility/internal/analysis"
	"github.com/mikey/news-credibility/internal/config"
	"github.com/mikey/news-credibility/internal/core"
	"github.com/mikey/news-credibility/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(set map[string]any) *config.Config {
	v := config.NewEmptyViper()
	for k, val := range set {
		v.Set(k, val)
	}
	return config.NewFromViper(v)
}

func TestStoreFactory(t *testing.T) {
	logger := zap.NewNop()

	repo, err := NewStoreFactory(testConfig(nil), logger).CreateRepository()
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryStore{}, repo)

	path := filepath.Join(t.TempDir(), "nested", "credibility.db")
	repo, err = NewStoreFactory(testConfig(map[string]any{
		"store.type":        "sqlite",
		"store.sqlite_path": path,
	}), logger).CreateRepository()
	require.NoError(t, err)
	defer repo.Close()
	assert.IsType(t, &store.SQLiteStore{}, repo)

	_, err = NewStoreFactory(testConfig(map[string]any{"store.type": "postgres"}), logger).CreateRepository()
	assert.ErrorContains(t, err, "unsupported store type")
}

func TestCacheFactory(t *testing.T) {
	f := NewCacheFactory(testConfig(map[string]any{
		"cache.enabled":              false,
		"cache.ttl":                  "90s",
		"limits.history_text_chars":  42,
		"limits.feedback_text_chars": 21,
	}), zap.NewNop())

	rc, err := f.CreateResultCache()
	require.NoError(t, err)
	mc, ok := rc.(*cache.MemoryCache)
	require.True(t, ok)
	mc.Stop()

	opts, err := f.ServiceOptions()
	require.NoError(t, err)
	assert.False(t, opts.CacheEnabled)
	assert.Equal(t, 90*time.Second, opts.CacheTTL)
	assert.Equal(t, 42, opts.HistoryTextChars)
	assert.Equal(t, 21, opts.FeedbackTextChars)
	assert.Equal(t, 100, opts.InsightWindow)

	_, err = NewCacheFactory(testConfig(map[string]any{"cache.ttl": "never"}), zap.NewNop()).ServiceOptions()
	assert.Error(t, err)
}

func TestAnalyzerFactory(t *testing.T) {
	f, err := NewAnalyzerFactory(testConfig(nil), zap.NewNop(), analysis.NewEngine())
	require.NoError(t, err)

	a, err := f.AnalyzerFor(core.BuiltInModel())
	require.NoError(t, err)
	assert.IsType(t, &builtin.Analyzer{}, a)

	a, err = f.AnalyzerFor(core.ModelInfo{Type: core.ModelTransformers, Name: "m", ModelID: "m"})
	require.NoError(t, err)
	assert.IsType(t, &simulated.Analyzer{}, a)

	a, err = f.AnalyzerFor(core.ModelInfo{Type: core.ModelCustom, Name: core.CustomModelName, ModelID: "https://x"})
	require.NoError(t, err)
	assert.IsType(t, &simulated.Analyzer{}, a)

	_, err = f.AnalyzerFor(core.ModelInfo{Type: core.ModelCustom})
	assert.Error(t, err)
	_, err = f.AnalyzerFor(core.ModelInfo{Type: "oracle"})
	assert.Error(t, err)
}

func TestFrontendFactory(t *testing.T) {
	logger := zap.NewNop()
	engine := analysis.NewEngine()
	service := core.NewCredibilityService(engine, nil, store.NewMemoryStore(logger), nil, utils.NewTextProcessor(logger), logger, core.ServiceOptions{})

	fe, err := NewFrontendFactory(testConfig(nil), logger, service, nil).CreateArticleFrontend()
	require.NoError(t, err)
	assert.IsType(t, &frontend.HTTPFrontend{}, fe)

	fe, err = NewFrontendFactory(testConfig(map[string]any{"server.frontend": "cli"}), logger, service, nil).CreateArticleFrontend()
	require.NoError(t, err)
	assert.IsType(t, &frontend.CliFrontend{}, fe)

	_, err = NewFrontendFactory(testConfig(map[string]any{"server.frontend": "milter"}), logger, service, nil).CreateArticleFrontend()
	assert.ErrorContains(t, err, "unsupported frontend type")
}

func TestCreateLimiter(t *testing.T) {
	limiter, err := CreateLimiter(testConfig(nil), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, limiter)
	assert.Equal(t, 99, limiter.Allow("u", "analyze").Remaining)

	limiter, err = CreateLimiter(testConfig(map[string]any{"ratelimit.enabled": false}), zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, limiter)

	_, err = CreateLimiter(testConfig(map[string]any{"ratelimit.max_requests": -5}), zap.NewNop())
	assert.ErrorContains(t, err, "invalid rate limit configuration")
}

func TestCreateExporter(t *testing.T) {
	logger := zap.NewNop()
	service := core.NewCredibilityService(analysis.NewEngine(), nil, store.NewMemoryStore(logger), nil, utils.NewTextProcessor(logger), logger, core.ServiceOptions{})

	exporter, err := CreateExporter(testConfig(nil), logger, service)
	require.NoError(t, err)
	assert.Nil(t, exporter)

	exporter, err = CreateExporter(testConfig(map[string]any{
		"training.export_enabled": true,
		"training.export_dir":     t.TempDir(),
	}), logger, service)
	require.NoError(t, err)
	assert.NotNil(t, exporter)

	_, err = CreateExporter(testConfig(map[string]any{
		"training.export_enabled":  true,
		"training.export_schedule": "whenever",
	}), logger, service)
	assert.Error(t, err)
}

