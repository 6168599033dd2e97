package utils

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweepStore struct {
	cutoff  time.Time
	cleared int64
	err     error
}

func (f *fakeSweepStore) ClearStaleGenerations(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.cleared, f.err
}

func TestSweepStaleGenerations(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeSweepStore{cleared: 2}

	cleared, err := SweepStaleGenerations(context.Background(), store, 30*time.Minute, now)

	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)
	assert.Equal(t, now.Add(-30*time.Minute), store.cutoff)

	store.err = errors.New("db down")
	_, err = SweepStaleGenerations(context.Background(), store, time.Minute, now)
	assert.Error(t, err)
}

func TestInitializeGenerationSweeperRejectsBadSchedule(t *testing.T) {
	_, err := InitializeGenerationSweeper(&fakeSweepStore{}, "every now and then", time.Minute)
	assert.Error(t, err)

	c, err := InitializeGenerationSweeper(&fakeSweepStore{}, "*/5 * * * *", time.Minute)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
	c.Stop()
}

func TestMailerSendEmail(t *testing.T) {
	var got struct {
		auth string
		body map[string]interface{}
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		got.auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got.body))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := NewMailer("SG.test", "noreply@quizgen.dev")
	m.host = srv.URL

	err := m.SendEmail(context.Background(), "alice@example.com", "alice", "Welcome to Quizgen", "<p>hi</p>")
	require.NoError(t, err)
	assert.Equal(t, "Bearer SG.test", got.auth)
	assert.Equal(t, "Welcome to Quizgen", got.body["subject"])
	from := got.body["from"].(map[string]interface{})
	assert.Equal(t, "noreply@quizgen.dev", from["email"])
}

func TestMailerSendEmailFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	m := NewMailer("SG.bad", "noreply@quizgen.dev")
	m.host = srv.URL

	err := m.SendEmail(context.Background(), "alice@example.com", "alice", "subject", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestMailerDisabled(t *testing.T) {
	m := NewMailer("", "noreply@quizgen.dev")
	assert.False(t, m.Enabled())
	assert.Error(t, m.SendEmail(context.Background(), "a@b.c", "a", "s", "b"))
	m.SendWelcomeEmail("a@b.c", "a")
}
