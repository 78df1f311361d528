package frontend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikey/news-credibility/internal/analysis"
	"github.com/mikey/news-credibility/internal/core"
	"github.com/mikey/news-credibility/internal/ratelimit"
	"go.uber.org/zap"
)

// UserIDHeader carries the authenticated user id, set by the fronting auth proxy
const UserIDHeader = "X-User-ID"

const userIDKey = "user_id"

// HTTPFrontend serves the credibility API over HTTP
type HTTPFrontend struct {
	service         *core.CredibilityService
	limiter         *ratelimit.Limiter
	logger          *zap.Logger
	listenAddr      string
	shutdownTimeout time.Duration
	router          *gin.Engine
	server          *http.Server
}

// NewHTTPFrontend creates the HTTP frontend. A nil limiter disables rate limiting.
func NewHTTPFrontend(
	service *core.CredibilityService,
	limiter *ratelimit.Limiter,
	logger *zap.Logger,
	listenAddr string,
	shutdownTimeout time.Duration,
) *HTTPFrontend {
	f := &HTTPFrontend{
		service:         service,
		limiter:         limiter,
		logger:          logger,
		listenAddr:      listenAddr,
		shutdownTimeout: shutdownTimeout,
	}
	f.router = f.routes()
	return f
}

func (f *HTTPFrontend) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(f.logger), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", f.requireUser)
	{
		api.POST("/analyze", f.rateLimit("analyze"), f.analyze)
		api.POST("/feedback", f.rateLimit("feedback"), f.submitFeedback)
		api.GET("/feedback/stats", f.feedbackStats)
		api.GET("/training/insights", f.trainingInsights)
		api.GET("/history", f.history)
		api.DELETE("/history", f.deleteHistory)
		api.GET("/settings", f.settings)
		api.PUT("/settings", f.saveSettings)
	}

	return r
}

// Handler exposes the router for embedding and tests
func (f *HTTPFrontend) Handler() http.Handler {
	return f.router
}

// Start binds the listen address and serves in the background
func (f *HTTPFrontend) Start() error {
	ln, err := net.Listen("tcp", f.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.listenAddr, err)
	}

	f.server = &http.Server{
		Handler:           f.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	f.logger.Info("HTTP frontend starting", zap.String("address", ln.Addr().String()))

	go func() {
		if err := f.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			f.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts the server down
func (f *HTTPFrontend) Stop() error {
	if f.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.shutdownTimeout)
	defer cancel()

	if err := f.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

// ProcessArticle analyzes an article directly, bypassing HTTP
func (f *HTTPFrontend) ProcessArticle(ctx context.Context, userID string, article *analysis.ArticleInput) (*core.AnalysisOutcome, error) {
	return f.service.Analyze(ctx, userID, article)
}

// requestLogger logs each request through zap
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if userID := c.GetString(userIDKey); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("HTTP request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("HTTP request", fields...)
		default:
			logger.Debug("HTTP request", fields...)
		}
	}
}

func (f *HTTPFrontend) requireUser(c *gin.Context) {
	userID := c.GetHeader(UserIDHeader)
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": core.ErrMissingUser.Error()})
		return
	}
	c.Set(userIDKey, userID)
	c.Next()
}

func (f *HTTPFrontend) rateLimit(endpoint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if f.limiter == nil {
			c.Next()
			return
		}

		result := f.limiter.Allow(c.GetString(userIDKey), endpoint)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime.Unix(), 10))
		if !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "rate limit exceeded",
				"reset_time": result.ResetTime,
			})
			return
		}
		c.Next()
	}
}

// writeError maps service errors to HTTP statuses
func (f *HTTPFrontend) writeError(c *gin.Context, err error) {
	var invalid *analysis.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error(), "field": invalid.Field})
	case errors.Is(err, analysis.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrMissingUser):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
	default:
		f.logger.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}

func (f *HTTPFrontend) analyze(c *gin.Context) {
	var article analysis.ArticleInput
	if err := c.ShouldBindJSON(&article); err != nil {
		badRequest(c, err)
		return
	}

	outcome, err := f.service.Analyze(c.Request.Context(), c.GetString(userIDKey), &article)
	if err != nil {
		f.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (f *HTTPFrontend) submitFeedback(c *gin.Context) {
	var in analysis.FeedbackInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	outcome, err := f.service.SubmitFeedback(c.Request.Context(), c.GetString(userIDKey), in)
	if err != nil {
		f.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, outcome)
}

func (f *HTTPFrontend) feedbackStats(c *gin.Context) {
	stats, err := f.service.FeedbackStats(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		f.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (f *HTTPFrontend) trainingInsights(c *gin.Context) {
	insights, err := f.service.TrainingInsights(c.Request.Context())
	if err != nil {
		f.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, insights)
}

// queryInt reads a non-negative integer query parameter
func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, &analysis.InvalidInputError{Field: name, Reason: "must be a non-negative integer"}
	}
	return v, nil
}

func (f *HTTPFrontend) history(c *gin.Context) {
	page, err := queryInt(c, "page", 0)
	if err != nil {
		f.writeError(c, err)
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		f.writeError(c, err)
		return
	}

	result, err := f.service.History(c.Request.Context(), c.GetString(userIDKey), page, limit, c.Query("search"))
	if err != nil {
		f.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type deleteRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

func (f *HTTPFrontend) deleteHistory(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	deleted, err := f.service.DeleteAnalyses(c.Request.Context(), c.GetString(userIDKey), req.IDs)
	if err != nil {
		f.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// settingsView hides the stored API key
type settingsView struct {
	core.UserSettings
	APIKey    string `json:"api_key,omitempty"`
	HasAPIKey bool   `json:"has_api_key"`
}

func viewSettings(s *core.UserSettings) settingsView {
	return settingsView{UserSettings: *s, HasAPIKey: s.APIKey != ""}
}

func (f *HTTPFrontend) settings(c *gin.Context) {
	settings, err := f.service.Settings(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		f.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewSettings(settings))
}

func (f *HTTPFrontend) saveSettings(c *gin.Context) {
	var settings core.UserSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		badRequest(c, err)
		return
	}
	settings.UserID = c.GetString(userIDKey)

	if err := f.service.SaveSettings(c.Request.Context(), &settings); err != nil {
		f.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewSettings(&settings))
}
