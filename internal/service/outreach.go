package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"
	"go.uber.org/zap"

	"github.com/ifuryst/reelcheck/internal/config"
	"github.com/ifuryst/reelcheck/internal/metrics"
	"github.com/ifuryst/reelcheck/internal/models"
)

const (
	OutreachSent   = "sent"
	OutreachLogged = "logged"
)

type SendMessageRequest struct {
	PostID        string `json:"postId" validate:"required"`
	Message       string `json:"message" validate:"required"`
	ContactNumber string `json:"contactNumber"`
}

type LogMessageRequest struct {
	ContactNumber  string `json:"contactNumber"`
	InfluencerName string `json:"influencerName"`
	Message        string `json:"message" validate:"required"`
}

// OutreachRepository stores outreach history. A nil repository means
// messages are only logged.
type OutreachRepository interface {
	SaveMessage(ctx context.Context, msg *models.OutreachMessage) error
}

type OutreachService struct {
	repo     OutreachRepository
	region   string
	validate *validator.Validate
	logger   *zap.Logger
}

func NewOutreachService(repo OutreachRepository, cfg *config.OutreachConfig, logger *zap.Logger) *OutreachService {
	return &OutreachService{
		repo:     repo,
		region:   strings.ToUpper(cfg.DefaultRegion),
		validate: newValidator(),
		logger:   logger,
	}
}

// Send records a message composed for a post's influencer.
func (s *OutreachService) Send(ctx context.Context, req SendMessageRequest) (*models.OutreachMessage, error) {
	if err := validateStruct(s.validate, req); err != nil {
		s.logger.Info("Message did not send", zap.String("reason", err.Error()))
		return nil, err
	}

	msg := &models.OutreachMessage{
		Kind:          OutreachSent,
		PostID:        req.PostID,
		ContactNumber: req.ContactNumber,
		NormalizedTo:  s.NormalizeNumber(req.ContactNumber),
		Message:       req.Message,
	}
	s.logger.Info("Message sent",
		zap.String("post_id", req.PostID),
		zap.String("contact_number", msg.NormalizedTo),
		zap.String("message", req.Message))

	return msg, s.save(ctx, msg)
}

// Log records message activity reported by the dashboard.
func (s *OutreachService) Log(ctx context.Context, req LogMessageRequest) (*models.OutreachMessage, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	msg := &models.OutreachMessage{
		Kind:           OutreachLogged,
		InfluencerName: req.InfluencerName,
		ContactNumber:  req.ContactNumber,
		NormalizedTo:   s.NormalizeNumber(req.ContactNumber),
		Message:        req.Message,
	}
	s.logger.Info("Message logged",
		zap.String("contact_number", msg.NormalizedTo),
		zap.String("influencer_name", req.InfluencerName),
		zap.String("message", req.Message))

	return msg, s.save(ctx, msg)
}

// NormalizeNumber formats a contact number as E.164. Numbers that do not
// parse as a valid number are returned trimmed but otherwise untouched.
func (s *OutreachService) NormalizeNumber(number string) string {
	number = strings.TrimSpace(number)
	if number == "" {
		return ""
	}

	p, err := libphonenumber.Parse(number, s.region)
	if err != nil || !libphonenumber.IsValidNumber(p) {
		return number
	}
	return libphonenumber.Format(p, libphonenumber.E164)
}

func (s *OutreachService) save(ctx context.Context, msg *models.OutreachMessage) error {
	metrics.OutreachMessages.WithLabelValues(msg.Kind).Inc()
	if s.repo == nil {
		return nil
	}
	if err := s.repo.SaveMessage(ctx, msg); err != nil {
		return fmt.Errorf("failed to save outreach message: %w", err)
	}
	return nil
}
