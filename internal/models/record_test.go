package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsLooseTyping(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "rec1",
		"fields": {
			"CampaignID": 42,
			"Ratio": 1.5,
			"Name": "  Doe, Alex ",
			"reviewed": true,
			"Active": "YES",
			"postId": ["p1", "p2"]
		}
	}`), &rec))

	assert.Equal(t, "42", rec.Fields.String("CampaignID"))
	assert.Equal(t, "1.5", rec.Fields.String("Ratio"))
	assert.Equal(t, "Doe, Alex", rec.Fields.Trimmed("Name"))
	assert.True(t, rec.Fields.Bool("reviewed"))
	assert.True(t, rec.Fields.Bool("Active"))
	assert.False(t, rec.Fields.Bool("Missing"))
	assert.Equal(t, float64(42), rec.Fields.Number("CampaignID"))
	assert.Equal(t, "", rec.Fields.String("Missing"))
	assert.Equal(t, "fallback", rec.Fields.StringOr("Missing", "fallback"))
	assert.Len(t, EnsureList(rec.Fields["postId"]), 2)
}

func TestIsEmpty(t *testing.T) {
	f := Fields{"a": "", "b": "x", "c": false, "d": []any{}, "e": 0.0, "f": nil}
	for _, name := range []string{"a", "c", "d", "e", "f", "missing"} {
		assert.True(t, f.IsEmpty(name), name)
	}
	assert.False(t, f.IsEmpty("b"))
}

func TestEnsureList(t *testing.T) {
	assert.Equal(t, []any{}, EnsureList(nil))
	assert.Equal(t, []any{"p1"}, EnsureList("p1"))
	assert.Equal(t, []any{float64(7)}, EnsureList(float64(7)))
	assert.Equal(t, []any{"a", "b"}, EnsureList([]any{"a", "b"}))
	assert.Equal(t, []any{"a"}, EnsureList([]string{"a"}))
}
