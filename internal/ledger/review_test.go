package ledger

import (
	"testing"
	"time"

	"github.com/example/studybot/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveReviewEntry(t *testing.T) {
	t.Parallel()
	l := newMathLedger(t)
	require.NoError(t, l.AddTopic("Math", "Geometry"))

	register := func(topic string, correct int, at time.Time) {
		_, added, err := l.RegisterResult("Math", topic, correct, 10, at)
		require.NoError(t, err)
		require.True(t, added)
	}
	register("Algebra", 5, t1)
	register("Algebra", 6, t1) // same composite key as the first entry
	register("Algebra", 2, t2)
	register("Geometry", 3, t1)

	assert.Zero(t, l.RemoveReviewEntry("Math", "Algebra", t1.Add(time.Hour)))
	assert.Zero(t, l.RemoveReviewEntry("History", "Algebra", t1))
	assert.Len(t, l.ReviewEntries(), 4)

	assert.Equal(t, 2, l.RemoveReviewEntry("Math", "Algebra", t1))
	remaining := l.ReviewEntries()
	require.Len(t, remaining, 2)
	assert.Equal(t, 2, remaining[0].Correct)
	assert.Equal(t, "Geometry", remaining[1].Topic)

	assert.Zero(t, l.RemoveReviewEntry("Math", "Algebra", t1))
}

func TestRemoveReviewEntryByID(t *testing.T) {
	t.Parallel()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	next := 0
	l := New(WithIDGenerator(func() uuid.UUID {
		id := ids[next]
		next++
		return id
	}))
	require.NoError(t, l.AddSubject("Math"))
	require.NoError(t, l.AddTopic("Math", "Algebra"))
	for _, at := range []time.Time{t1, t1, t2} {
		_, _, err := l.RegisterResult("Math", "Algebra", 1, 10, at)
		require.NoError(t, err)
	}

	assert.Zero(t, l.RemoveReviewEntryByID(uuid.New()))
	assert.Equal(t, 2, l.RemoveReviewEntryByID(ids[1]))

	remaining := l.ReviewEntries()
	require.Len(t, remaining, 1)
	assert.Equal(t, ids[2], remaining[0].ID)
}

func TestReviewEntriesIsCopy(t *testing.T) {
	t.Parallel()
	l := newMathLedger(t)
	_, _, err := l.RegisterResult("Math", "Algebra", 1, 10, t1)
	require.NoError(t, err)

	entries := l.ReviewEntries()
	entries[0].Subject = "changed"
	assert.Equal(t, "Math", l.ReviewEntries()[0].Subject)
}

func TestReviewLabel(t *testing.T) {
	t.Parallel()
	entry := models.ReviewEntry{Subject: "Direito - Penal", Topic: "Crimes (parte geral)", Timestamp: t2}

	label := ReviewLabel(entry)
	assert.Equal(t, "Direito - Penal - Crimes (parte geral) (2024-03-02 18:05:12)", label)

	subject, topic, at, err := ParseReviewLabel("Math - Algebra (2024-03-02 18:05:12)")
	require.NoError(t, err)
	assert.Equal(t, "Math", subject)
	assert.Equal(t, "Algebra", topic)
	assert.True(t, at.Equal(t2))

	subject, topic, _, err = ParseReviewLabel(label)
	require.NoError(t, err)
	assert.Equal(t, "Direito", subject)
	assert.Equal(t, "Penal - Crimes (parte geral)", topic)

	for _, bad := range []string{
		"",
		"Math - Algebra",
		"Math - Algebra (yesterday)",
		"Algebra (2024-03-02 18:05:12)",
		" - Algebra (2024-03-02 18:05:12)",
	} {
		_, _, _, err := ParseReviewLabel(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}
