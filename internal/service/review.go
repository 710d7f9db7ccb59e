package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ifuryst/reelcheck/internal/config"
	"github.com/ifuryst/reelcheck/internal/metrics"
	"github.com/ifuryst/reelcheck/internal/models"
	"github.com/ifuryst/reelcheck/internal/service/airtable"
	"github.com/ifuryst/reelcheck/internal/service/review"
)

type QueueKind string

const (
	QueueCombined     QueueKind = "combined"
	QueueIssues       QueueKind = "issues"
	QueueNotUploaded  QueueKind = "not_uploaded"
	QueueManualReview QueueKind = "manual_review"
)

var ErrInvalidQueueKind = errors.New("invalid review type")

const approvedDefault = "NO"

// Write requests. Each persists one field of a post record.
type (
	FlagRequest struct {
		PostID string `json:"postId" validate:"required"`
		Flag   string `json:"flag" validate:"required"`
	}

	RatingRequest struct {
		PostID string `json:"postId" validate:"required"`
		Rating int    `json:"rating" validate:"required,min=1,max=5"`
	}

	ReviewedRequest struct {
		PostID   string `json:"postId" validate:"required"`
		Reviewed *bool  `json:"reviewed" validate:"required"`
	}

	ApprovalRequest struct {
		PostID string `json:"postId" validate:"required"`
		Status string `json:"status" validate:"required,oneof=YES NO"`
	}

	CommentRequest struct {
		PostID  string `json:"postId" validate:"required"`
		Comment string `json:"comment" validate:"required"`
	}
)

// ReviewService reads campaign snapshots from the record store and turns
// them into summaries and review queues. Read paths never fail: store errors
// are logged and degrade to zeroed or empty results.
type ReviewService struct {
	tables         review.Tables
	resolver       *review.Resolver
	validate       *validator.Validate
	logger         *zap.Logger
	requireAudited bool
}

func NewReviewService(tables review.Tables, cfg *config.ReviewConfig, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		tables:         tables,
		resolver:       review.NewResolver(tables.Campaigns, logger),
		validate:       newValidator(),
		logger:         logger,
		requireAudited: cfg.RequireAudited,
	}
}

func (s *ReviewService) Resolver() *review.Resolver {
	return s.resolver
}

// Campaigns lists campaigns for selection.
func (s *ReviewService) Campaigns(ctx context.Context) ([]models.CampaignOption, error) {
	options, err := s.resolver.Options(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return options, nil
}

// Summary computes headline counts for a campaign. An empty campaign id
// summarises every post.
func (s *ReviewService) Summary(ctx context.Context, campaignID string) models.SummaryMetrics {
	start := time.Now()
	businessID := s.resolver.BusinessIDByRecordID(ctx, campaignID)

	influencers, err := s.tables.Influencers.List(ctx, airtable.ListOptions{
		Formula: airtable.Eq(models.FieldInfluencerActive, "YES"),
	})
	if err != nil {
		s.logger.Error("Error getting active influencers", zap.String("campaign_id", campaignID), zap.Error(err))
		return models.SummaryMetrics{}
	}

	posts, err := s.campaignPosts(ctx, businessID)
	if err != nil {
		s.logger.Error("Error computing summary data", zap.String("campaign_id", campaignID), zap.Error(err))
		return models.SummaryMetrics{}
	}

	summary := review.Snapshot{Influencers: influencers, Posts: posts}.Summary()
	metrics.ObserveQueueBuild("summary", start, len(posts))
	return summary
}

// Queue builds one review queue for a campaign.
func (s *ReviewService) Queue(ctx context.Context, kind QueueKind, campaignID string) ([]models.ReviewItem, error) {
	start := time.Now()
	businessID := s.resolver.BusinessIDByRecordID(ctx, campaignID)

	var items []models.ReviewItem
	switch kind {
	case QueueCombined:
		items = s.combined(ctx, businessID)
	case QueueIssues:
		items = s.issues(ctx, businessID)
	case QueueNotUploaded:
		items = s.notUploaded(ctx, businessID, campaignID)
	case QueueManualReview:
		items = s.manualReview(ctx, businessID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidQueueKind, kind)
	}

	metrics.ObserveQueueBuild(string(kind), start, len(items))
	return items, nil
}

func (s *ReviewService) campaignPosts(ctx context.Context, businessID string) ([]models.Record, error) {
	opts := airtable.ListOptions{}
	if businessID != "" {
		opts.Formula = airtable.Eq(models.FieldPostCampaign, businessID)
	}
	posts, err := s.tables.Posts.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign posts: %w", err)
	}
	return posts, nil
}

// errorLogMode says whether a snapshot reads the content error log.
type errorLogMode int

const (
	skipErrorLog errorLogMode = iota
	requireErrorLog
	// optionalErrorLog reads the log but leaves Errors empty when it fails.
	optionalErrorLog
)

// snapshot reads every influencer and the campaign's posts, plus the error
// log when mode asks for it. The tables are fetched concurrently.
func (s *ReviewService) snapshot(ctx context.Context, businessID string, mode errorLogMode) (review.Snapshot, error) {
	var snap review.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		influencers, err := s.tables.Influencers.List(gctx, airtable.ListOptions{})
		if err != nil {
			return fmt.Errorf("failed to get influencers: %w", err)
		}
		snap.Influencers = influencers
		return nil
	})
	g.Go(func() error {
		posts, err := s.campaignPosts(gctx, businessID)
		if err != nil {
			return err
		}
		snap.Posts = posts
		return nil
	})
	if mode != skipErrorLog {
		g.Go(func() error {
			errorLog, err := s.tables.Errors.List(gctx, airtable.ListOptions{})
			if err == nil {
				snap.Errors = errorLog
				return nil
			}
			if mode == optionalErrorLog {
				s.logger.Warn("Error log unavailable, listing posts without issues",
					zap.String("campaign", businessID), zap.Error(err))
				return nil
			}
			return fmt.Errorf("failed to get error log: %w", err)
		})
	}

	if err := g.Wait(); err != nil {
		return review.Snapshot{}, err
	}
	return snap, nil
}

func (s *ReviewService) issues(ctx context.Context, businessID string) []models.ReviewItem {
	snap, err := s.snapshot(ctx, businessID, requireErrorLog)
	if err != nil {
		s.logger.Error("Error getting posts with issues", zap.String("campaign", businessID), zap.Error(err))
		return []models.ReviewItem{}
	}
	return snap.IssueQueue(s.resolver.DisplayNameByBusinessID(ctx, businessID))
}

// combined lists posts with issues first, then clean posts, each annotated
// with its current review state and the campaign name. Without the error log
// only the clean posts are listed.
func (s *ReviewService) combined(ctx context.Context, businessID string) []models.ReviewItem {
	snap, err := s.snapshot(ctx, businessID, optionalErrorLog)
	if err != nil {
		s.logger.Error("Error getting combined posts", zap.String("campaign", businessID), zap.Error(err))
		return []models.ReviewItem{}
	}

	campaignName := s.resolver.DisplayNameByBusinessID(ctx, businessID)
	issues := snap.IssueQueue(campaignName)
	items := append(issues, snap.CleanQueue(campaignName, issues)...)

	for i := range items {
		items[i].CampaignName = campaignName

		post, err := s.tables.Posts.Get(ctx, items[i].PostID)
		if err != nil {
			s.logger.Warn("Failed to refresh post review state", zap.String("post_id", items[i].PostID), zap.Error(err))
			continue
		}
		reviewed := post.Fields.Bool(models.FieldPostReviewed)
		items[i].Reviewed = &reviewed
		items[i].ApprovedStatus = post.Fields.StringOr(models.FieldPostApproved, approvedDefault)
	}
	return items
}

func (s *ReviewService) notUploaded(ctx context.Context, businessID, campaignID string) []models.ReviewItem {
	snap, err := s.snapshot(ctx, businessID, skipErrorLog)
	if err != nil {
		s.logger.Error("Error processing not uploaded", zap.String("campaign", businessID), zap.Error(err))
		return []models.ReviewItem{}
	}
	campaignName := s.resolver.CampaignName(ctx, businessID, campaignID)
	return snap.NotUploaded(campaignName, s.requireAudited)
}

func (s *ReviewService) manualReview(ctx context.Context, businessID string) []models.ReviewItem {
	formula := airtable.Eq(models.FieldPostQuality, models.QualityManualReview)
	if businessID != "" {
		formula = airtable.And(formula, airtable.Eq(models.FieldPostCampaign, businessID))
	}

	posts, err := s.tables.Posts.List(ctx, airtable.ListOptions{Formula: formula})
	if err != nil {
		s.logger.Error("Error processing manual review", zap.String("campaign", businessID), zap.Error(err))
		return []models.ReviewItem{}
	}
	return review.ManualReviewQueue(posts)
}

func (s *ReviewService) SaveFlag(ctx context.Context, req FlagRequest) error {
	if err := validateStruct(s.validate, req); err != nil {
		return err
	}
	return s.updatePost(ctx, req.PostID, models.FieldPostManualFlag, req.Flag)
}

func (s *ReviewService) SaveRating(ctx context.Context, req RatingRequest) error {
	if err := validateStruct(s.validate, req); err != nil {
		return err
	}
	return s.updatePost(ctx, req.PostID, models.FieldPostRating, req.Rating)
}

func (s *ReviewService) MarkReviewed(ctx context.Context, req ReviewedRequest) error {
	if err := validateStruct(s.validate, req); err != nil {
		return err
	}
	return s.updatePost(ctx, req.PostID, models.FieldPostReviewed, *req.Reviewed)
}

func (s *ReviewService) ApprovePost(ctx context.Context, req ApprovalRequest) error {
	if err := validateStruct(s.validate, req); err != nil {
		return err
	}
	return s.updatePost(ctx, req.PostID, models.FieldPostApproved, req.Status)
}

func (s *ReviewService) SaveComment(ctx context.Context, req CommentRequest) error {
	if err := validateStruct(s.validate, req); err != nil {
		return err
	}
	return s.updatePost(ctx, req.PostID, models.FieldPostComment, req.Comment)
}

func (s *ReviewService) updatePost(ctx context.Context, postID, field string, value any) error {
	if _, err := s.tables.Posts.Update(ctx, postID, map[string]any{field: value}); err != nil {
		return fmt.Errorf("failed to save %s: %w", field, err)
	}

	s.logger.Info("Post updated",
		zap.String("post_id", postID),
		zap.String("field", field),
		zap.Any("value", value))
	return nil
}
