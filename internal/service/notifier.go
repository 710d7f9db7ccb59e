package service

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/ifuryst/reelcheck/internal/config"
	"github.com/ifuryst/reelcheck/internal/models"
	"github.com/ifuryst/reelcheck/internal/service/audit"
)

var _ audit.Notifier = (*SlackNotifier)(nil)

// SlackNotifier posts audit outcomes to a channel.
type SlackNotifier struct {
	api     *slack.Client
	channel string
	logger  *zap.Logger
}

func NewSlackNotifier(cfg *config.SlackConfig, logger *zap.Logger, opts ...slack.Option) *SlackNotifier {
	return &SlackNotifier{
		api:     slack.New(cfg.Token, opts...),
		channel: cfg.Channel,
		logger:  logger,
	}
}

func (n *SlackNotifier) AuditFinished(ctx context.Context, run models.AuditRun) error {
	_, _, err := n.api.PostMessageContext(ctx, n.channel, slack.MsgOptionText(auditText(run), false))
	if err != nil {
		return fmt.Errorf("failed to post audit notification: %w", err)
	}

	n.logger.Debug("Audit notification sent",
		zap.String("task_id", run.TaskID),
		zap.String("channel", n.channel))
	return nil
}

func auditText(run models.AuditRun) string {
	switch {
	case run.Error != "":
		return fmt.Sprintf("Audit for %s failed (%s): %s", run.CampaignName, run.State, run.Error)
	default:
		return fmt.Sprintf("Audit for %s triggered (status %d, %s)", run.CampaignName, run.StatusCode, run.State)
	}
}
