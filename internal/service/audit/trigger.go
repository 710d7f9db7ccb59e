// Package audit starts the external content audit workflow for a campaign
// and tracks which campaigns are currently being audited.
package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ifuryst/reelcheck/internal/config"
	"github.com/ifuryst/reelcheck/internal/metrics"
	"github.com/ifuryst/reelcheck/internal/models"
)

var (
	ErrMissingCampaign = errors.New("campaign id is required")
	ErrTriggerClosed   = errors.New("audit trigger is shutting down")
)

const (
	defaultTimeout  = 30 * time.Second
	defaultCooldown = 10 * time.Second
)

// NameResolver maps a campaign record id to the name the workflow expects.
type NameResolver interface {
	DisplayNameByRecordID(ctx context.Context, recordID string) string
}

// Notifier is told about every finished webhook call.
type Notifier interface {
	AuditFinished(ctx context.Context, run models.AuditRun) error
}

// RunRecorder persists task history. SaveRun is called once when the task
// starts and again when it finishes.
type RunRecorder interface {
	SaveRun(ctx context.Context, run *models.AuditRun) error
}

type Option func(*Trigger)

func WithNotifier(n Notifier) Option {
	return func(t *Trigger) { t.notifier = n }
}

func WithRecorder(r RunRecorder) Option {
	return func(t *Trigger) { t.recorder = r }
}

// Trigger launches audit tasks. Each task runs detached from the request
// that started it and ends when the trigger is shut down at the latest.
type Trigger struct {
	registry *Registry
	resolver NameResolver
	webhook  *Webhook
	cooldown time.Duration
	logger   *zap.Logger
	notifier Notifier
	recorder RunRecorder

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu orders Start's wg.Add against Shutdown closing the trigger.
	mu     sync.Mutex
	closed bool
}

func NewTrigger(cfg *config.AuditConfig, registry *Registry, resolver NameResolver, logger *zap.Logger, opts ...Option) *Trigger {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Trigger{
		registry: registry,
		resolver: resolver,
		webhook:  NewWebhook(cfg.WebhookURL, config.Duration(cfg.Timeout, defaultTimeout)),
		cooldown: config.Duration(cfg.Cooldown, defaultCooldown),
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start marks the campaign active and runs the webhook in the background.
// The returned task is already acquired in the registry.
func (t *Trigger) Start(ctx context.Context, campaignID string) (*Task, error) {
	if campaignID == "" {
		return nil, ErrMissingCampaign
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrTriggerClosed
	}
	t.wg.Add(1)
	t.mu.Unlock()

	name := t.resolver.DisplayNameByRecordID(ctx, campaignID)
	task := newTask(uuid.NewString(), campaignID, name)

	if first := t.registry.Acquire(campaignID); !first {
		t.logger.Info("Audit already running for campaign, starting another",
			zap.String("campaign_id", campaignID))
	}
	metrics.AuditsStarted.Inc()

	t.logger.Info("Starting audit",
		zap.String("task_id", task.ID),
		zap.String("campaign_id", campaignID),
		zap.String("campaign_name", name))

	go t.run(task)

	return task, nil
}

// Status returns the campaigns currently being audited.
func (t *Trigger) Status() []string {
	return t.registry.Active()
}

// Shutdown cancels running tasks and waits for them to finish or for ctx to end.
// Once it returns, Start fails with ErrTriggerClosed.
func (t *Trigger) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	t.cancel()
	defer t.webhook.close()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Audit trigger shutdown completed")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Trigger) run(task *Task) {
	defer t.wg.Done()
	defer t.registry.Release(task.CampaignID)

	run := &models.AuditRun{
		TaskID:       task.ID,
		CampaignID:   task.CampaignID,
		CampaignName: task.CampaignName,
		State:        string(StateRunning),
		StartedAt:    task.StartedAt,
	}
	task.setState(StateRunning)
	t.saveRun(run)

	status, err := t.webhook.Trigger(t.ctx, task.CampaignName)
	result := Result{StatusCode: status, Success: err == nil, Err: err}
	task.setResult(result)
	t.logOutcome(task, result)

	task.setState(StateCooling)
	final := t.cool()

	finished := time.Now()
	run.State = string(final)
	run.StatusCode = status
	run.FinishedAt = &finished
	if err != nil {
		run.Error = err.Error()
	}
	t.saveRun(run)
	t.notify(*run)

	task.finish(final)
}

// cool keeps the campaign active for the cooldown period.
func (t *Trigger) cool() State {
	timer := time.NewTimer(t.cooldown)
	defer timer.Stop()

	select {
	case <-timer.C:
		return StateCompleted
	case <-t.ctx.Done():
		return StateCancelled
	}
}

func (t *Trigger) logOutcome(task *Task, result Result) {
	fields := []zap.Field{
		zap.String("task_id", task.ID),
		zap.String("campaign_name", task.CampaignName),
		zap.Int("status_code", result.StatusCode),
	}

	switch {
	case result.Success:
		metrics.AuditOutcomes.WithLabelValues("success").Inc()
		t.logger.Info("Audit webhook accepted", fields...)
	case result.StatusCode != 0:
		metrics.AuditOutcomes.WithLabelValues("rejected").Inc()
		t.logger.Error("Audit webhook rejected", append(fields, zap.Error(result.Err))...)
	default:
		metrics.AuditOutcomes.WithLabelValues("error").Inc()
		t.logger.Error("Audit webhook failed", append(fields, zap.Error(result.Err))...)
	}
}

func (t *Trigger) saveRun(run *models.AuditRun) {
	if t.recorder == nil {
		return
	}
	if err := t.recorder.SaveRun(context.WithoutCancel(t.ctx), run); err != nil {
		t.logger.Warn("Failed to record audit run", zap.String("task_id", run.TaskID), zap.Error(err))
	}
}

func (t *Trigger) notify(run models.AuditRun) {
	if t.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(t.ctx), 10*time.Second)
	defer cancel()
	if err := t.notifier.AuditFinished(ctx, run); err != nil {
		t.logger.Warn("Failed to send audit notification", zap.String("task_id", run.TaskID), zap.Error(err))
	}
}
