package review

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMessageIssues(t *testing.T) {
	msg := FormatMessage(MessageInput{
		FirstName:    "Alex",
		CampaignName: "Summer Launch",
		ErrorParts:   []string{"Missing Hashtags: #a"},
	})

	lines := strings.Split(msg, "\n")
	assert.Equal(t, "Hi Alex,", lines[0])
	assert.Contains(t, lines, "Missing Hashtags: #a")
	assert.Contains(t, msg, "We noticed issues with your recent post for Summer Launch:")
	assert.Contains(t, msg, "View it here: your post")
	assert.True(t, strings.HasSuffix(msg, "Thanks!"))
}

func TestFormatMessagePrecedence(t *testing.T) {
	parts := []string{"Missing Tags: @c"}

	takedown := FormatMessage(MessageInput{FirstName: "A", Flag: FlagTakeDown, ErrorParts: parts, PostLink: "https://t/1"})
	assert.Contains(t, takedown, "takedown notice for your recent post for the campaign:")
	assert.Contains(t, takedown, "Missing Tags: @c")
	assert.Contains(t, takedown, "View it here: https://t/1")
	assert.True(t, strings.HasSuffix(takedown, "Thanks!"))

	ok := FormatMessage(MessageInput{FirstName: "A", CampaignName: "X", Flag: FlagVideoOK, ErrorParts: parts})
	assert.Contains(t, ok, "is approved:")
	assert.NotContains(t, ok, "Missing Tags")

	positive := FormatMessage(MessageInput{FirstName: "A", CampaignName: "X"})
	assert.Contains(t, positive, "Great job on your recent post for X!")
	assert.True(t, strings.HasSuffix(positive, "Keep it up!"))
}

func TestNotUploadedMessage(t *testing.T) {
	msg := NotUploadedMessage("Sam", "Winter Drop")
	assert.Equal(t, "Hi Sam,\nWe noticed you haven't uploaded your video for Winter Drop yet.\nPlease upload it as soon as possible.\nThanks!", msg)
}

func TestIssueParts(t *testing.T) {
	assert.Nil(t, IssueParts(nil, nil))
	assert.Equal(t,
		[]string{"Missing Hashtags: #a, #b", "Missing Tags: @c"},
		IssueParts([]string{"#a", "#b"}, []string{"@c"}))
}

func TestFirstName(t *testing.T) {
	assert.Equal(t, "Alex", FirstName("Doe, Alex"))
	assert.Equal(t, "Alex", FirstName("  Alex  "))
	assert.Equal(t, "Doe", FirstName("Doe,"))
	assert.Equal(t, "Unknown", FirstName(""))
}

func TestOutreachGreetsGivenName(t *testing.T) {
	msg := NotUploadedMessage(FirstName("Doe, Alex"), "Summer Launch")
	assert.True(t, strings.HasPrefix(msg, "Hi Alex,\n"), msg)
	assert.NotContains(t, msg, "Doe")
}
