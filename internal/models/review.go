package models

// Airtable field names used across the review tables.
const (
	FieldInfluencerName    = "Name"
	FieldInfluencerActive  = "Active"
	FieldInfluencerAudited = "Audited"
	FieldContactNumber     = "ContactNumber"
	FieldInfluencerTiktok  = "TiktokLink"
	FieldInstagramLink     = "InstagramLink"

	FieldPostCampaign      = "CampaignId"
	FieldPostInfluencer    = "InfluencerName"
	FieldPostProfileLink   = "TikTokLink"
	FieldPostQuality       = "PostQuality"
	FieldPostManualFlag    = "ManualFlag"
	FieldPostReviewFlag    = "reviewFlag"
	FieldPostRating        = "manualRating"
	FieldPostApproved      = "approved_Status"
	FieldPostReviewed      = "reviewed"
	FieldPostComment       = "managerComment"
	FieldPostLink          = "PostLink"
	FieldPostTranscription = "VideoTranscription"

	FieldErrorPostID      = "postId"
	FieldErrorDescription = "errorDescription"
)

// Post quality classifications set by the upstream content audit.
const (
	QualityAllCorrect   = "All Correct"
	QualityPartial      = "Partially Correct/Incorrect"
	QualityManualReview = "Manual Review"
)

type ItemKind string

const (
	ItemIssues       ItemKind = "issues"
	ItemNoIssues     ItemKind = "no_issues"
	ItemNotUploaded  ItemKind = "not_uploaded"
	ItemManualReview ItemKind = "manual_review"
)

// SummaryMetrics are the campaign headline counts.
type SummaryMetrics struct {
	NumberOfInfluencers   int `json:"number_of_influencers"`
	VideosWithNoIssues    int `json:"videos_with_no_issues"`
	VideosWithIssues      int `json:"videos_with_issues"`
	VideosNotLoadedYet    int `json:"videos_not_loaded_yet"`
	VideosForManualReview int `json:"videos_for_manual_review"`
}

// ReviewItem is one derived entry of a review queue. Which fields are set
// depends on Kind.
type ReviewItem struct {
	Kind             ItemKind `json:"kind"`
	PostID           string   `json:"postId,omitempty"`
	InfluencerID     string   `json:"influencerId,omitempty"`
	InfluencerName   string   `json:"influencerName"`
	VideoLink        string   `json:"videoLink,omitempty"`
	TiktokLink       string   `json:"tiktokLink,omitempty"`
	InstagramLink    string   `json:"instagramLink,omitempty"`
	IssueCaption     string   `json:"issueCaption,omitempty"`
	MissingHashtags  []string `json:"missingHashtags,omitempty"`
	MissingTags      []string `json:"missingTags,omitempty"`
	SuggestedMessage string   `json:"suggestedMessage,omitempty"`
	HasIssues        bool     `json:"hasIssues"`
	CurrentRating    float64  `json:"currentRating"`
	CurrentFlag      string   `json:"currentFlag,omitempty"`
	Transcript       string   `json:"transcript,omitempty"`
	ContactNumber    string   `json:"contactNumber"`

	// Set on the combined view only.
	Reviewed       *bool  `json:"reviewed,omitempty"`
	ApprovedStatus string `json:"approved_Status,omitempty"`
	CampaignName   string `json:"campaignName,omitempty"`
}

// CampaignOption is a campaign as offered in the selection list.
type CampaignOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
