package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseErrorDescription(t *testing.T) {
	hashtags, tags := ParseErrorDescription("Partially Correct/Incorrect - Missing Hashtags: #a, #b - Missing Tags: @c")

	assert.Equal(t, []string{"#a", "#b"}, hashtags)
	assert.Equal(t, []string{"@c"}, tags)
}

func TestParseErrorDescriptionStackedBlocks(t *testing.T) {
	desc := "Partially Correct/Incorrect - Missing Hashtags: #summer, #launch" +
		"Partially Correct/Incorrect - Missing Hashtags: #launch, #ad - Missing Tags: @brand" +
		"Partially Correct/Incorrect - Missing Tags: @brand, @store"

	hashtags, tags := ParseErrorDescription(desc)

	assert.ElementsMatch(t, []string{"#summer", "#launch", "#ad"}, hashtags)
	assert.ElementsMatch(t, []string{"@brand", "@store"}, tags)
}

func TestParseErrorDescriptionIgnoresNoise(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"blank":          "   ",
		"unknown clause": "Partially Correct/Incorrect - Wrong Audio - Late Post",
		"wrong case":     "Partially Correct/Incorrect - missing hashtags: #a",
		"empty lists":    "Partially Correct/Incorrect - Missing Hashtags: , ,  - Missing Tags:",
	}
	for name, desc := range cases {
		t.Run(name, func(t *testing.T) {
			hashtags, tags := ParseErrorDescription(desc)
			assert.Empty(t, hashtags)
			assert.Empty(t, tags)
		})
	}
}

func TestParseErrorDescriptionWithoutMarker(t *testing.T) {
	hashtags, _ := ParseErrorDescription("Missing Hashtags: #solo")
	assert.Equal(t, []string{"#solo"}, hashtags)
}
