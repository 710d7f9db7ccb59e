package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ifuryst/reelcheck/internal/config"
	"github.com/ifuryst/reelcheck/internal/models"
)

func TestSlackNotifierPostsOutcome(t *testing.T) {
	var channel, text string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat.postMessage", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		channel = r.PostForm.Get("channel")
		text = r.PostForm.Get("text")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1700000000.000100"}`))
	}))
	defer srv.Close()

	n := NewSlackNotifier(&config.SlackConfig{Token: "xoxb-test", Channel: "C123"}, zaptest.NewLogger(t),
		slack.OptionAPIURL(srv.URL+"/"))

	finished := time.Now()
	err := n.AuditFinished(context.Background(), models.AuditRun{
		TaskID:       "t1",
		CampaignName: "Summer Launch",
		State:        "completed",
		StatusCode:   200,
		FinishedAt:   &finished,
	})
	require.NoError(t, err)
	assert.Equal(t, "C123", channel)
	assert.Equal(t, "Audit for Summer Launch triggered (status 200, completed)", text)
}

func TestSlackNotifierAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer srv.Close()

	n := NewSlackNotifier(&config.SlackConfig{Token: "xoxb-test", Channel: "nope"}, zaptest.NewLogger(t),
		slack.OptionAPIURL(srv.URL+"/"))

	err := n.AuditFinished(context.Background(), models.AuditRun{CampaignName: "X", State: "cancelled", Error: "timeout"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}

func TestAuditText(t *testing.T) {
	assert.Equal(t, "Audit for X failed (completed): boom",
		auditText(models.AuditRun{CampaignName: "X", State: "completed", Error: "boom"}))
}
