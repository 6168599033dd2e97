package quiz

import (
	"context"
	"strings"
	"testing"
	"time"

	"quizgen/apperr"
	"quizgen/database"
	"quizgen/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newTestStore(t *testing.T) *database.GormStore {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return database.NewStore(db)
}

func seed(t *testing.T, store *database.GormStore, uid, topic string, questions ...models.Question) []models.Question {
	t.Helper()
	saved, err := store.SaveQuestions(context.Background(), uid, topic, questions)
	require.NoError(t, err)
	return saved
}

func TestApplyRating(t *testing.T) {
	q := question("q", "a", "a", "b", "c", "d")

	ApplyRating(&q, "u1", 2)
	ApplyRating(&q, "u2", 5)
	ApplyRating(&q, "u1", 4)

	assert.Equal(t, []models.Rating{{UserID: "u1", Rate: 4}, {UserID: "u2", Rate: 5}}, []models.Rating(q.Rating))
	assert.Equal(t, 4.5, q.AverageRating)
	assert.True(t, q.HasCorrectChoice())
}

func TestAverageRatingEmpty(t *testing.T) {
	assert.Equal(t, 0.0, AverageRating(nil))
}

func TestServiceRateTwiceKeepsOneEntry(t *testing.T) {
	store := newTestStore(t)
	svc := NewService(store)
	ctx := context.Background()
	saved := seed(t, store, "owner", "sky", question("What color is the sky?", "blue", "red", "blue", "green", "grey"))
	id := saved[0].ID

	_, err := svc.Rate(ctx, "owner", "sky", id, "u1", 2)
	require.NoError(t, err)
	_, err = svc.Rate(ctx, "owner", "sky", id, "u2", 3)
	require.NoError(t, err)
	updated, err := svc.Rate(ctx, "owner", "sky", id, "u1", 5)
	require.NoError(t, err)

	assert.Equal(t, []models.Rating{{UserID: "u1", Rate: 5}, {UserID: "u2", Rate: 3}}, []models.Rating(updated.Rating))
	assert.Equal(t, 4.0, updated.AverageRating)
	assert.Equal(t, 4, updated.Version)

	stored, err := store.GetQuestion(ctx, "owner", "sky", id)
	require.NoError(t, err)
	assert.Equal(t, []models.Rating(updated.Rating), []models.Rating(stored.Rating))
	assert.Equal(t, 4.0, stored.AverageRating)
	assert.True(t, stored.HasCorrectChoice())
}

func TestServiceRateValidation(t *testing.T) {
	store := newTestStore(t)
	svc := NewService(store)
	ctx := context.Background()
	saved := seed(t, store, "owner", "sky", question("q", "a", "a", "b", "c", "d"))

	_, err := svc.Rate(ctx, "owner", "sky", saved[0].ID, "", 3)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Rate(ctx, "owner", "sky", "missing", "u1", 3)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = svc.Rate(ctx, "owner", "other-topic", saved[0].ID, "u1", 3)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestServiceRateAcceptsAnyInteger(t *testing.T) {
	store := newTestStore(t)
	svc := NewService(store)
	ctx := context.Background()
	saved := seed(t, store, "owner", "sky", question("q", "a", "a", "b", "c", "d"))

	_, err := svc.Rate(ctx, "owner", "sky", saved[0].ID, "u1", 0)
	require.NoError(t, err)
	_, err = svc.Rate(ctx, "owner", "sky", saved[0].ID, "u2", 9)
	require.NoError(t, err)
	updated, err := svc.Rate(ctx, "owner", "sky", saved[0].ID, "u3", -3)
	require.NoError(t, err)

	assert.Equal(t, []models.Rating{{UserID: "u1", Rate: 0}, {UserID: "u2", Rate: 9}, {UserID: "u3", Rate: -3}}, []models.Rating(updated.Rating))
	assert.Equal(t, 2.0, updated.AverageRating)
}

// racingStore lets another writer update the question before each of the
// first `races` version-checked writes.
type racingStore struct {
	*database.GormStore
	races int
}

func (r *racingStore) UpdateQuestion(ctx context.Context, questionID string, version int, fields map[string]interface{}) error {
	if r.races > 0 {
		r.races--
		if err := r.GormStore.UpdateQuestion(ctx, questionID, version, map[string]interface{}{
			"rating":         datatypes.JSONSlice[models.Rating]{{UserID: "racer", Rate: 1}},
			"average_rating": 1.0,
		}); err != nil {
			return err
		}
	}
	return r.GormStore.UpdateQuestion(ctx, questionID, version, fields)
}

func TestServiceRateRetriesOnConflict(t *testing.T) {
	base := newTestStore(t)
	saved := seed(t, base, "owner", "sky", question("q", "a", "a", "b", "c", "d"))
	store := &racingStore{GormStore: base, races: 1}
	svc := NewService(store)

	updated, err := svc.Rate(context.Background(), "owner", "sky", saved[0].ID, "u1", 5)
	require.NoError(t, err)

	assert.Equal(t, []models.Rating{{UserID: "racer", Rate: 1}, {UserID: "u1", Rate: 5}}, []models.Rating(updated.Rating))
	assert.Equal(t, 3.0, updated.AverageRating)
}

func TestServiceRateGivesUpAfterRepeatedConflicts(t *testing.T) {
	base := newTestStore(t)
	saved := seed(t, base, "owner", "sky", question("q", "a", "a", "b", "c", "d"))
	store := &racingStore{GormStore: base, races: maxUpdateAttempts}
	svc := NewService(store)

	_, err := svc.Rate(context.Background(), "owner", "sky", saved[0].ID, "u1", 5)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestAppendComment(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	q := question("q", "a", "a", "b", "c", "d")
	AppendComment(&q, "u1", "first", t0)
	first := q.Comments[0]

	AppendComment(&q, "u2", "second", t0.Add(time.Minute))
	AppendComment(&q, "u3", "clock went back", t0)

	require.Len(t, q.Comments, 3)
	assert.Equal(t, first, q.Comments[0])
	assert.Equal(t, models.Comment{UserID: "u2", Text: "second", Time: t0.Add(time.Minute)}, q.Comments[1])
	assert.Equal(t, t0.Add(time.Minute), q.Comments[2].Time)
}

func TestServiceComment(t *testing.T) {
	store := newTestStore(t)
	svc := NewService(store)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }
	saved := seed(t, store, "owner", "sky", question("q", "a", "a", "b", "c", "d"))
	id := saved[0].ID

	_, err := svc.Comment(ctx, "owner", "sky", id, "u1", "nice one")
	require.NoError(t, err)
	svc.now = func() time.Time { return t0.Add(time.Hour) }
	updated, err := svc.Comment(ctx, "owner", "sky", id, "u2", "too easy")
	require.NoError(t, err)

	require.Len(t, updated.Comments, 2)
	assert.Equal(t, "nice one", updated.Comments[0].Text)
	assert.Equal(t, "u2", updated.Comments[1].UserID)

	stored, err := store.GetQuestion(ctx, "owner", "sky", id)
	require.NoError(t, err)
	require.Len(t, stored.Comments, 2)
	assert.Equal(t, "u1", stored.Comments[0].UserID)
	assert.True(t, stored.Comments[0].Time.Equal(t0))
	assert.True(t, stored.Comments[1].Time.Equal(t0.Add(time.Hour)))
	assert.True(t, stored.HasCorrectChoice())

	_, err = svc.Comment(ctx, "owner", "sky", id, "u1", "   ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestServiceSearch(t *testing.T) {
	store := newTestStore(t)
	svc := NewService(store)
	ctx := context.Background()
	seed(t, store, "bob", "weather", question("What colour is the SKY at noon?", "blue", "blue", "red", "green", "grey"))
	seed(t, store, "alice", "space", question("Why is the sky dark at night?", "no sun", "no sun", "clouds", "moon", "stars"))
	rated := seed(t, store, "alice", "art", question("Paint the Sky", "blue", "blue", "pink", "gold", "teal"))
	seed(t, store, "alice", "art", question("Unrelated", "a", "a", "b", "c", "d"))

	_, err := svc.Rate(ctx, "alice", "art", rated[0].ID, "bob", 4)
	require.NoError(t, err)

	results, err := svc.Search(ctx, "sKy")
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, []string{"alice/art", "alice/space", "bob/weather"}, []string{
		results[0].UserID + "/" + results[0].TopicName,
		results[1].UserID + "/" + results[1].TopicName,
		results[2].UserID + "/" + results[2].TopicName,
	})
	assert.Equal(t, rated[0].ID, results[0].QuestionID)
	assert.Equal(t, []models.Rating{{UserID: "bob", Rate: 4}}, results[0].Rating)
	assert.Nil(t, results[1].Rating)
	for _, r := range results {
		assert.True(t, strings.Contains(strings.ToLower(r.Text), "sky"))
		assert.Contains(t, r.Choices, r.CorrectChoice)
	}

	results, err = svc.Search(ctx, "nothing matches this")
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = svc.Search(ctx, " ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestServiceDeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	svc := NewService(store)
	ctx := context.Background()
	saved := seed(t, store, "owner", "sky",
		question("q1", "a", "a", "b", "c", "d"),
		question("q2", "a", "a", "b", "c", "d"))

	require.NoError(t, svc.Delete(ctx, "owner", "sky", saved[0].ID))
	require.NoError(t, svc.Delete(ctx, "owner", "sky", saved[0].ID))

	remaining, err := svc.Questions(ctx, "owner", "sky")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, saved[1].ID, remaining[0].ID)
}
