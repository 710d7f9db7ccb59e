package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ifuryst/reelcheck/internal/config"
	"github.com/ifuryst/reelcheck/internal/models"
	"github.com/ifuryst/reelcheck/internal/service"
	"github.com/ifuryst/reelcheck/internal/service/audit"
	"github.com/ifuryst/reelcheck/internal/service/review"
	rt "github.com/ifuryst/reelcheck/internal/service/review/reviewtest"
)

type fixture struct {
	srv     *Server
	posts   *rt.Table
	webhook *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zaptest.NewLogger(t)
	cfg := &config.Config{}
	cfg.SetDefaults()
	cfg.Metrics.Enabled = true
	cfg.Audit.Cooldown = "1h"

	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	cfg.Audit.WebhookURL = webhook.URL

	posts := rt.NewTable(
		rt.Record("p1", models.Fields{"PostID": "P-1", "InfluencerName": "Doe, Alex", "PostQuality": "All Correct", "PostLink": "https://v/1"}),
	)
	tables := review.Tables{
		Influencers: rt.NewTable(rt.Record("i1", models.Fields{"Name": "Doe, Alex", "Active": "YES", "TiktokLink": "@alex"})),
		Posts:       posts,
		Errors:      rt.NewTable(),
		Campaigns:   rt.NewTable(rt.Record("recC1", models.Fields{"CampaignID": "C1", "campaignName": "Summer Launch"})),
	}
	reviewService := service.NewReviewService(tables, &cfg.Review, logger)

	srv := New(cfg, Services{
		Review:          reviewService,
		Outreach:        service.NewOutreachService(nil, &cfg.Outreach, logger),
		Audits:          audit.NewTrigger(&cfg.Audit, audit.NewRegistry(), reviewService.Resolver(), logger),
		Probe:           service.NewStoreProbe(&cfg.Probe, logger, tables.Influencers),
		StoreConfigured: true,
	}, logger)

	t.Cleanup(func() {
		require.NoError(t, srv.Shutdown(context.Background()))
		webhook.Close()
	})
	return &fixture{srv: srv, posts: posts, webhook: webhook}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
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
	w := httptest.NewRecorder()
	f.srv.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	w = f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reelcheck_active_audits")
}

func TestCampaignsAndSummary(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/campaigns", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{map[string]any{"id": "recC1", "name": "Summer Launch"}}, decode(t, w)["campaigns"])

	w = f.do(t, http.MethodGet, "/api/v1/summary?campaign_id=recC1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode(t, w)
	assert.Equal(t, float64(1), summary["number_of_influencers"])
	assert.Equal(t, float64(1), summary["videos_with_no_issues"])
	assert.Equal(t, float64(1), summary["videos_not_loaded_yet"])
}

func TestSummaryDegradesOnStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.posts.Err = errors.New("unreachable")

	w := f.do(t, http.MethodGet, "/api/v1/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["number_of_influencers"])
}

func TestReviewQueue(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/review?type=combined&campaign_id=recC1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []models.ReviewItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].PostID)
	assert.Equal(t, "NO", items[0].ApprovedStatus)

	w = f.do(t, http.MethodGet, "/api/v1/review?type=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid review type", decode(t, w)["error"])

	f.posts.Err = errors.New("unreachable")
	w = f.do(t, http.MethodGet, "/api/v1/review?type=manual_review", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestReviewRequiresConfiguredStore(t *testing.T) {
	f := newFixture(t)
	f.srv.StoreConfigured = false

	w := f.do(t, http.MethodGet, "/api/v1/review?type=issues", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestPostWrites(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/posts/rating", map[string]any{"postId": "p1", "rating": 4})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Rating saved successfully", decode(t, w)["message"])
	assert.Equal(t, 4, f.posts.Updates["p1"]["manualRating"])

	w = f.do(t, http.MethodPost, "/api/v1/posts/rating", map[string]any{"postId": "p1", "rating": 7})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "rating must be at most 5", body["error"])
	assert.Equal(t, map[string]any{"rating": "max"}, body["fields"])

	w = f.do(t, http.MethodPost, "/api/v1/posts/reviewed", map[string]any{"postId": "p1", "reviewed": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, f.posts.Updates["p1"]["reviewed"])

	w = f.do(t, http.MethodPost, "/api/v1/posts/approval", map[string]any{"postId": "p1", "status": "YES"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/posts/flag", map[string]any{"postId": "missing", "flag": "Video Ok"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "error", decode(t, w)["status"])

	w = f.do(t, http.MethodPost, "/api/v1/posts/comment", map[string]any{"postId": "p1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMessages(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/messages/send", map[string]any{
		"postId": "p1", "message": "Hi", "contactNumber": "+1 650 253 0000",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "+16502530000", decode(t, w)["contactNumber"])

	w = f.do(t, http.MethodPost, "/api/v1/messages/send", map[string]any{"postId": "p1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing data", decode(t, w)["error"])

	w = f.do(t, http.MethodPost, "/api/v1/messages/log", map[string]any{"message": "Hi", "influencerName": "Doe, Alex"})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAudits(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/audits", map[string]any{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing campaign_id", decode(t, w)["error"])

	w = f.do(t, http.MethodPost, "/api/v1/audits", map[string]any{"campaign_id": "recC1"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Audit started for campaign: Summer Launch", body["message"])
	assert.NotEmpty(t, body["task_id"])

	w = f.do(t, http.MethodGet, "/api/v1/audits", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"recC1"}, decode(t, w)["active_audits"])
}

type memoryHistory struct {
	runs       []models.AuditRun
	campaignID string
	limit      int
}

func (h *memoryHistory) RecentRuns(_ context.Context, campaignID string, limit int) ([]models.AuditRun, error) {
	h.campaignID, h.limit = campaignID, limit
	return h.runs, nil
}

func TestAuditHistory(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/audits/history", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	history := &memoryHistory{runs: []models.AuditRun{{TaskID: "t1", CampaignID: "recC1", State: "completed"}}}
	f.srv.History = history

	w = f.do(t, http.MethodGet, "/api/v1/audits/history?campaign_id=recC1&limit=500", nil)
	require.Equal(t, http.StatusOK, w.Code)
	runs := decode(t, w)["runs"].([]any)
	require.Len(t, runs, 1)
	assert.Equal(t, "t1", runs[0].(map[string]any)["task_id"])
	assert.Equal(t, "recC1", history.campaignID)
	assert.Equal(t, maxHistoryLimit, history.limit)

	w = f.do(t, http.MethodGet, "/api/v1/audits/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultHistoryLimit, history.limit)

	w = f.do(t, http.MethodGet, "/api/v1/audits/history?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	history.runs = nil
	w = f.do(t, http.MethodGet, "/api/v1/audits/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decode(t, w)["runs"])
}

func TestAuthGuardsAPI(t *testing.T) {
	f := newFixture(t)
	f.srv.Config.Auth = config.AuthConfig{Enabled: true, TOTPSecret: "JBSWY3DPEHPK3PXP", SessionTTL: "1h"}
	f.srv.Auth = service.NewAuthService(&f.srv.Config.Auth, zaptest.NewLogger(t))
	f.srv.Router = gin.New()
	f.srv.setupMiddleware()
	f.srv.setupRoutes()

	w := f.do(t, http.MethodGet, "/api/v1/campaigns", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/auth/login", map[string]any{"code": "not-a-code"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestShutdownCancelsAudits(t *testing.T) {
	f := newFixture(t)

	task, err := f.srv.Audits.Start(context.Background(), "recC1")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return task.State() == audit.StateCooling }, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, f.srv.Shutdown(context.Background()))
	assert.Equal(t, audit.StateCancelled, task.State())
	assert.Empty(t, f.srv.Audits.Status())
}
