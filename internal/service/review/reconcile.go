package review

import (
	"strings"

	"github.com/ifuryst/reelcheck/internal/models"
)

const (
	yes                   = "YES"
	unknownInfluencer     = "Unknown Influencer"
	unknownError          = "Unknown error"
	missingLink           = "#"
	noTranscript          = "No transcript available"
	defaultIssueCaption   = "Please review your post"
	issueCaptionSeparator = "; "
)

// Snapshot is one full read of the record sets a review is computed from.
// Nothing derived from it is cached; every request builds a fresh one.
type Snapshot struct {
	Influencers []models.Record // every influencer, active or not
	Posts       []models.Record // posts of the campaign under review
	Errors      []models.Record // the whole content error log
}

// ProfileIndex is the set of active influencers keyed by profile link, in
// first-seen order. A later record with the same link replaces the earlier one.
type ProfileIndex struct {
	links  []string
	byLink map[string]models.Record
}

func (p *ProfileIndex) Len() int {
	return len(p.links)
}

func (p *ProfileIndex) Links() []string {
	return append([]string(nil), p.links...)
}

func isActive(influencer models.Record) bool {
	return influencer.Fields.Trimmed(models.FieldInfluencerActive) == yes
}

func isAudited(influencer models.Record) bool {
	return influencer.Fields.Trimmed(models.FieldInfluencerAudited) == yes
}

// ActiveProfiles indexes active influencers that have a profile link.
func (s Snapshot) ActiveProfiles() *ProfileIndex {
	idx := &ProfileIndex{byLink: make(map[string]models.Record)}
	for _, inf := range s.Influencers {
		if !isActive(inf) {
			continue
		}
		link := inf.Fields.Trimmed(models.FieldInfluencerTiktok)
		if link == "" {
			continue
		}
		if _, seen := idx.byLink[link]; !seen {
			idx.links = append(idx.links, link)
		}
		idx.byLink[link] = inf
	}
	return idx
}

// PostedProfileLinks is the set of profile links appearing on the campaign's posts.
func (s Snapshot) PostedProfileLinks() map[string]struct{} {
	posted := make(stringSet)
	for _, post := range s.Posts {
		if link := post.Fields.Trimmed(models.FieldPostProfileLink); link != "" {
			posted.add(link)
		}
	}
	return posted
}

// Contacts maps influencer display names to contact numbers.
func (s Snapshot) Contacts() map[string]string {
	contacts := make(map[string]string, len(s.Influencers))
	for _, inf := range s.Influencers {
		name := inf.Fields.String(models.FieldInfluencerName)
		if name == "" {
			continue
		}
		contacts[name] = inf.Fields.String(models.FieldContactNumber)
	}
	return contacts
}

// Summary computes the campaign headline counts. The manual review count is
// driven by an empty ManualFlag, not by the "Manual Review" quality value.
func (s Snapshot) Summary() models.SummaryMetrics {
	active := s.ActiveProfiles()
	posted := stringSet(s.PostedProfileLinks())

	metrics := models.SummaryMetrics{NumberOfInfluencers: active.Len()}
	for _, post := range s.Posts {
		switch post.Fields.Trimmed(models.FieldPostQuality) {
		case models.QualityAllCorrect:
			metrics.VideosWithNoIssues++
		case models.QualityPartial:
			metrics.VideosWithIssues++
		}
		if post.Fields.IsEmpty(models.FieldPostManualFlag) {
			metrics.VideosForManualReview++
		}
	}

	for _, link := range active.links {
		if !posted.has(link) {
			metrics.VideosNotLoadedYet++
		}
	}
	return metrics
}

// errorsByPostKey groups error descriptions by referenced post key, keeping
// keys in first-seen order.
func (s Snapshot) errorsByPostKey() ([]string, map[string][]string) {
	var order []string
	grouped := make(map[string][]string)
	for _, entry := range s.Errors {
		desc := entry.Fields.StringOr(models.FieldErrorDescription, unknownError)
		ref, _ := entry.Fields.Value(models.FieldErrorPostID)
		for _, pid := range models.EnsureList(ref) {
			key := models.Stringify(pid)
			if _, seen := grouped[key]; !seen {
				order = append(order, key)
			}
			grouped[key] = append(grouped[key], desc)
		}
	}
	return order, grouped
}

func (s Snapshot) postsByKey() map[string]models.Record {
	byKey := make(map[string]models.Record, len(s.Posts))
	for _, post := range s.Posts {
		if key, ok := PostKey(post); ok {
			byKey[key] = post
		}
	}
	return byKey
}

// IssueQueue joins the error log to the campaign's posts. Each post link is
// emitted once, carrying the union of deficiencies from every description
// that references it. References to posts outside the campaign are dropped.
func (s Snapshot) IssueQueue(campaignName string) []models.ReviewItem {
	order, descriptions := s.errorsByPostKey()
	posts := s.postsByKey()
	contacts := s.Contacts()

	items := make([]models.ReviewItem, 0)
	emitted := make(stringSet)
	for _, key := range order {
		post, ok := posts[key]
		if !ok {
			continue
		}

		link := post.Fields.String(models.FieldPostLink)
		if emitted.has(link) {
			continue
		}
		emitted.add(link)

		hashtags, tags := make(stringSet), make(stringSet)
		for _, desc := range descriptions[key] {
			h, t := ParseErrorDescription(desc)
			hashtags.add(h...)
			tags.add(t...)
		}
		missingHashtags, missingTags := hashtags.sorted(), tags.sorted()

		parts := IssueParts(missingHashtags, missingTags)
		caption := strings.Join(parts, issueCaptionSeparator)
		if caption == "" {
			caption = defaultIssueCaption
			parts = []string{defaultIssueCaption}
		}

		fullName := post.Fields.StringOr(models.FieldPostInfluencer, unknownInfluencer)
		items = append(items, models.ReviewItem{
			Kind:            models.ItemIssues,
			PostID:          post.ID,
			InfluencerName:  fullName,
			VideoLink:       orDefault(link, missingLink),
			IssueCaption:    caption,
			MissingHashtags: missingHashtags,
			MissingTags:     missingTags,
			SuggestedMessage: FormatMessage(MessageInput{
				FirstName:    FirstName(fullName),
				CampaignName: campaignName,
				ErrorParts:   parts,
				PostLink:     link,
			}),
			HasIssues:     true,
			CurrentRating: post.Fields.Number(models.FieldPostRating),
			CurrentFlag:   post.Fields.String(models.FieldPostReviewFlag),
			ContactNumber: contacts[fullName],
		})
	}
	return items
}

// CleanQueue lists "All Correct" posts with a link, skipping any post record
// already present in issues.
func (s Snapshot) CleanQueue(campaignName string, issues []models.ReviewItem) []models.ReviewItem {
	flagged := make(stringSet, len(issues))
	for _, item := range issues {
		flagged.add(item.PostID)
	}
	contacts := s.Contacts()

	items := make([]models.ReviewItem, 0)
	for _, post := range s.Posts {
		if flagged.has(post.ID) {
			continue
		}
		link := post.Fields.String(models.FieldPostLink)
		if post.Fields.Trimmed(models.FieldPostQuality) != models.QualityAllCorrect || link == "" {
			continue
		}

		fullName := post.Fields.StringOr(models.FieldPostInfluencer, unknownInfluencer)
		items = append(items, models.ReviewItem{
			Kind:           models.ItemNoIssues,
			PostID:         post.ID,
			InfluencerName: fullName,
			VideoLink:      link,
			SuggestedMessage: FormatMessage(MessageInput{
				FirstName:    FirstName(fullName),
				CampaignName: campaignName,
				PostLink:     link,
			}),
			CurrentRating: post.Fields.Number(models.FieldPostRating),
			CurrentFlag:   post.Fields.String(models.FieldPostReviewFlag),
			ContactNumber: contacts[fullName],
		})
	}
	return items
}

// NotUploaded lists active influencers whose profile link appears on none of
// the campaign's posts. With requireAudited only audited influencers qualify.
func (s Snapshot) NotUploaded(campaignName string, requireAudited bool) []models.ReviewItem {
	active := s.ActiveProfiles()
	posted := stringSet(s.PostedProfileLinks())

	items := make([]models.ReviewItem, 0)
	for _, link := range active.links {
		if posted.has(link) {
			continue
		}
		inf := active.byLink[link]
		if requireAudited && !isAudited(inf) {
			continue
		}

		fullName := inf.Fields.StringOr(models.FieldInfluencerName, unknownInfluencer)
		items = append(items, models.ReviewItem{
			Kind:             models.ItemNotUploaded,
			InfluencerID:     inf.ID,
			InfluencerName:   fullName,
			TiktokLink:       link,
			InstagramLink:    inf.Fields.StringOr(models.FieldInstagramLink, missingLink),
			SuggestedMessage: NotUploadedMessage(FirstName(fullName), campaignName),
			ContactNumber:    inf.Fields.String(models.FieldContactNumber),
		})
	}
	return items
}

// ManualReviewQueue surfaces posts already filtered to the "Manual Review"
// quality, with their transcript and current flag.
func ManualReviewQueue(posts []models.Record) []models.ReviewItem {
	items := make([]models.ReviewItem, 0, len(posts))
	for _, post := range posts {
		items = append(items, models.ReviewItem{
			Kind:           models.ItemManualReview,
			PostID:         post.ID,
			InfluencerName: post.Fields.StringOr(models.FieldPostInfluencer, unknownInfluencer),
			VideoLink:      post.Fields.StringOr(models.FieldPostLink, missingLink),
			Transcript:     post.Fields.StringOr(models.FieldPostTranscription, noTranscript),
			CurrentFlag:    post.Fields.String(models.FieldPostReviewFlag),
		})
	}
	return items
}
