package review

import (
	"fmt"
	"strings"
)

// Manual review flags that change the outreach template.
const (
	FlagTakeDown = "Take Down Video"
	FlagVideoOK  = "Video Ok"
)

const (
	defaultCampaignName = "the campaign"
	defaultPostLink     = "your post"
	unknownFirstName    = "Unknown"
)

type MessageInput struct {
	FirstName    string
	CampaignName string
	ErrorParts   []string
	Flag         string
	PostLink     string
}

// FormatMessage builds the plain-text outreach message for one post.
// A takedown flag wins over an ok flag, which wins over listed issues;
// with none of those the message is a positive confirmation.
func FormatMessage(in MessageInput) string {
	campaign := orDefault(in.CampaignName, defaultCampaignName)
	link := orDefault(in.PostLink, defaultPostLink)
	greeting := fmt.Sprintf("Hi %s,", in.FirstName)

	var lines []string
	switch {
	case in.Flag == FlagTakeDown:
		lines = append(lines, greeting,
			fmt.Sprintf("We are issuing a takedown notice for your recent post for %s:", campaign))
		lines = append(lines, in.ErrorParts...)
		lines = append(lines,
			"View it here: "+link,
			"Please take it down promptly.",
			"Thanks!")
	case in.Flag == FlagVideoOK:
		lines = append(lines, greeting,
			fmt.Sprintf("We are confirming that your recent post for %s is approved:", campaign),
			"View it here: "+link,
			"It can remain online.",
			"Thanks!")
	case len(in.ErrorParts) > 0:
		lines = append(lines, greeting,
			fmt.Sprintf("We noticed issues with your recent post for %s:", campaign))
		lines = append(lines, in.ErrorParts...)
		lines = append(lines,
			"View it here: "+link,
			"Please review and update.",
			"Thanks!")
	default:
		lines = append(lines, greeting,
			fmt.Sprintf("Great job on your recent post for %s!", campaign),
			"View it here: "+link,
			"Your content looks perfect and meets all requirements.",
			"Thank you for your excellent work!",
			"Keep it up!")
	}

	return strings.Join(lines, "\n")
}

// NotUploadedMessage reminds an influencer that no post was found for the campaign.
func NotUploadedMessage(firstName, campaignName string) string {
	return strings.Join([]string{
		fmt.Sprintf("Hi %s,", firstName),
		fmt.Sprintf("We noticed you haven't uploaded your video for %s yet.", campaignName),
		"Please upload it as soon as possible.",
		"Thanks!",
	}, "\n")
}

// IssueParts renders the structured deficiency lines used in captions and messages.
func IssueParts(hashtags, tags []string) []string {
	var parts []string
	if len(hashtags) > 0 {
		parts = append(parts, "Missing Hashtags: "+strings.Join(hashtags, ", "))
	}
	if len(tags) > 0 {
		parts = append(parts, "Missing Tags: "+strings.Join(tags, ", "))
	}
	return parts
}

// FirstName picks the given name out of a "Surname, First Name" display name,
// so "Doe, Alex" greets Alex rather than Doe. Names without a comma are
// returned trimmed.
func FirstName(fullName string) string {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return unknownFirstName
	}

	surname, given, found := strings.Cut(fullName, ",")
	if !found {
		return fullName
	}
	if given = strings.TrimSpace(given); given != "" {
		return given
	}
	return strings.TrimSpace(surname)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
