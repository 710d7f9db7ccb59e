package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ifuryst/reelcheck/internal/config"
	"github.com/ifuryst/reelcheck/internal/models"
)

type memoryOutreach struct {
	mu       sync.Mutex
	messages []models.OutreachMessage
	err      error
}

func (m *memoryOutreach) SaveMessage(_ context.Context, msg *models.OutreachMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	msg.ID = uint(len(m.messages) + 1)
	m.messages = append(m.messages, *msg)
	return nil
}

func newOutreach(t *testing.T, repo OutreachRepository) *OutreachService {
	return NewOutreachService(repo, &config.OutreachConfig{DefaultRegion: "us"}, zaptest.NewLogger(t))
}

func TestNormalizeNumber(t *testing.T) {
	svc := newOutreach(t, nil)

	cases := map[string]string{
		"+1 650-253-0000":  "+16502530000",
		"(650) 253-0000":   "+16502530000",
		"+44 20 7031 3000": "+442070313000",
		"  12 ":            "12",
		"not a number":     "not a number",
		"":                 "",
	}
	for in, want := range cases {
		assert.Equal(t, want, svc.NormalizeNumber(in), in)
	}
}

func TestOutreachSend(t *testing.T) {
	repo := &memoryOutreach{}
	svc := newOutreach(t, repo)

	msg, err := svc.Send(context.Background(), SendMessageRequest{
		PostID:        "recP1",
		Message:       "Hi Alex",
		ContactNumber: "(650) 253-0000",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), msg.ID)

	require.Len(t, repo.messages, 1)
	saved := repo.messages[0]
	assert.Equal(t, OutreachSent, saved.Kind)
	assert.Equal(t, "recP1", saved.PostID)
	assert.Equal(t, "(650) 253-0000", saved.ContactNumber)
	assert.Equal(t, "+16502530000", saved.NormalizedTo)
}

func TestOutreachSendRequiresPostAndMessage(t *testing.T) {
	repo := &memoryOutreach{}
	svc := newOutreach(t, repo)

	_, err := svc.Send(context.Background(), SendMessageRequest{Message: "Hi"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "required", verr.Fields["postId"])

	_, err = svc.Send(context.Background(), SendMessageRequest{PostID: "recP1"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "required", verr.Fields["message"])

	assert.Empty(t, repo.messages)
}

func TestOutreachLogWithoutRepository(t *testing.T) {
	svc := newOutreach(t, nil)

	msg, err := svc.Log(context.Background(), LogMessageRequest{
		ContactNumber:  "+1 650 253 0000",
		InfluencerName: "Doe, Alex",
		Message:        "Thanks!",
	})
	require.NoError(t, err)
	assert.Equal(t, OutreachLogged, msg.Kind)
	assert.Equal(t, "+16502530000", msg.NormalizedTo)
}

func TestOutreachRepositoryFailure(t *testing.T) {
	svc := newOutreach(t, &memoryOutreach{err: errors.New("db down")})

	_, err := svc.Log(context.Background(), LogMessageRequest{Message: "x"})
	require.Error(t, err)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
	assert.Contains(t, err.Error(), "db down")
}
