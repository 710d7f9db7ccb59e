package review

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ifuryst/reelcheck/internal/models"
	"github.com/ifuryst/reelcheck/internal/service/airtable"
)

// Candidate field names, in probing order. The campaign and post schemas
// have drifted across data-entry conventions, so the first match wins.
var (
	CampaignIDFields   = []string{"CampaignID", "ID", "Campaign_ID", "campaign_id", "campaignId"}
	CampaignNameFields = []string{"campaignName", "name", "Name", "campaign_name", "CampaignName"}
	PostIDFields       = []string{"PostID", "ID", "Post_ID", "post_id", "postId", "id"}
)

const (
	NoCampaignSelected  = "No Campaign Selected"
	placeholderPrefix   = "Campaign "
	unnamedCampaignName = "Unnamed Campaign"
)

// FirstPresent returns the value of the first candidate field present in fields.
func FirstPresent(fields models.Fields, candidates []string) (any, bool) {
	for _, name := range candidates {
		if v, ok := fields.Value(name); ok {
			return v, true
		}
	}
	return nil, false
}

// FirstNonEmpty is FirstPresent that also skips empty values.
func FirstNonEmpty(fields models.Fields, candidates []string) (string, bool) {
	for _, name := range candidates {
		if !fields.IsEmpty(name) {
			return fields.String(name), true
		}
	}
	return "", false
}

// BusinessID returns the campaign's business identifier, falling back to the
// record id when no candidate field is present.
func BusinessID(campaign models.Record) string {
	if v, ok := FirstPresent(campaign.Fields, CampaignIDFields); ok {
		return models.Stringify(v)
	}
	return campaign.ID
}

// PostKey returns the business post id used by the error log, if any.
func PostKey(post models.Record) (string, bool) {
	return FirstNonEmpty(post.Fields, PostIDFields)
}

// IsPlaceholderName reports whether name is a synthesized fallback rather
// than a real campaign name.
func IsPlaceholderName(name string) bool {
	return name == "" || name == NoCampaignSelected || strings.HasPrefix(name, placeholderPrefix)
}

// Resolver maps between campaign record ids, business ids and display names.
// Lookup failures never surface: they degrade to placeholders.
type Resolver struct {
	campaigns Table
	logger    *zap.Logger
}

func NewResolver(campaigns Table, logger *zap.Logger) *Resolver {
	return &Resolver{campaigns: campaigns, logger: logger}
}

// BusinessIDByRecordID loads the campaign record and resolves its business id.
// A missing record resolves to the record id itself.
func (r *Resolver) BusinessIDByRecordID(ctx context.Context, recordID string) string {
	if recordID == "" {
		return ""
	}

	campaign, err := r.campaigns.Get(ctx, recordID)
	if err != nil {
		r.logger.Warn("Failed to load campaign record, using record id as key",
			zap.String("campaign_id", recordID), zap.Error(err))
		return recordID
	}
	return BusinessID(*campaign)
}

// DisplayNameByRecordID loads the campaign record and returns its name.
func (r *Resolver) DisplayNameByRecordID(ctx context.Context, recordID string) string {
	if recordID == "" {
		return NoCampaignSelected
	}

	campaign, err := r.campaigns.Get(ctx, recordID)
	if err != nil {
		r.logger.Warn("Failed to load campaign record", zap.String("campaign_id", recordID), zap.Error(err))
		return placeholderPrefix + recordID
	}
	if name, ok := FirstNonEmpty(campaign.Fields, CampaignNameFields); ok {
		return name
	}
	return placeholderPrefix + recordID
}

// DisplayNameByBusinessID queries each candidate id field in turn until one
// matches, then returns the first non-empty candidate name field.
func (r *Resolver) DisplayNameByBusinessID(ctx context.Context, businessID string) string {
	if businessID == "" {
		return NoCampaignSelected
	}

	for _, field := range CampaignIDFields {
		campaigns, err := r.campaigns.List(ctx, airtable.ListOptions{Formula: airtable.Eq(field, businessID)})
		if err != nil {
			r.logger.Debug("Campaign lookup by field failed",
				zap.String("field", field), zap.String("business_id", businessID), zap.Error(err))
			continue
		}
		if len(campaigns) == 0 {
			continue
		}
		if name, ok := FirstNonEmpty(campaigns[0].Fields, CampaignNameFields); ok {
			return name
		}
	}

	return placeholderPrefix + businessID
}

// CampaignName resolves a display name from the business id first and falls
// back to the record id when that only yields a placeholder.
func (r *Resolver) CampaignName(ctx context.Context, businessID, recordID string) string {
	name := r.DisplayNameByBusinessID(ctx, businessID)
	if IsPlaceholderName(name) && recordID != "" {
		return r.DisplayNameByRecordID(ctx, recordID)
	}
	return name
}

// Options lists every campaign for selection.
func (r *Resolver) Options(ctx context.Context) ([]models.CampaignOption, error) {
	campaigns, err := r.campaigns.List(ctx, airtable.ListOptions{})
	if err != nil {
		return nil, err
	}

	options := make([]models.CampaignOption, 0, len(campaigns))
	for _, c := range campaigns {
		name := c.Fields.String("campaignName")
		if name == "" {
			name = unnamedCampaignName
		}
		options = append(options, models.CampaignOption{ID: c.ID, Name: name})
	}
	return options, nil
}
