package ledger

import (
	"testing"

	"github.com/example/studybot/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()
	l := newMathLedger(t)
	l.SetLoggedIn(true)
	require.NoError(t, l.AddSubject("History"))
	require.NoError(t, l.AddTopic("History", "Rome"))
	require.NoError(t, l.AddTopic("Math", "Geometry"))
	_, _, err := l.RegisterResult("History", "Rome", 2, 4, t1)
	require.NoError(t, err)
	_, _, err = l.RegisterResult("Math", "Algebra", 9, 10, t2)
	require.NoError(t, err)

	snap := l.Snapshot()
	restored, err := FromSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, snap, restored.Snapshot())
	assert.True(t, restored.LoggedIn())
	assert.Equal(t, []string{"Math", "History"}, restored.Subjects())
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	t.Parallel()
	l := newMathLedger(t)
	_, _, err := l.RegisterResult("Math", "Algebra", 9, 10, t1)
	require.NoError(t, err)

	snap := l.Snapshot()
	snap.Subjects[0].Topics[0].Records[0].Correct = 0
	snap.Subjects[0].Name = "Other"

	records, err := l.Records("Math", "Algebra")
	require.NoError(t, err)
	assert.Equal(t, 9, records[0].Correct)
	assert.Equal(t, []string{"Math"}, l.Subjects())
	_, err = l.Records("Math", "Geometry")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFromSnapshotAssignsReviewIDs(t *testing.T) {
	t.Parallel()
	snap := models.Snapshot{
		ReviewList: []models.ReviewEntry{{Subject: "Math", Topic: "Algebra", Correct: 1, Total: 4, Timestamp: t1}},
		Notes:      "keep",
	}

	l, err := FromSnapshot(snap)
	require.NoError(t, err)
	entries := l.ReviewEntries()
	require.Len(t, entries, 1)
	assert.NotEqual(t, uuid.Nil, entries[0].ID)
	assert.InDelta(t, 0.25, entries[0].Ratio, 1e-9)
	assert.Equal(t, "keep", l.Notes())
}

func TestFromSnapshotRejectsInvalidState(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		snap    models.Snapshot
		wantErr error
	}{
		{
			name:    "duplicate subject",
			snap:    models.Snapshot{Subjects: []models.Subject{{Name: "Math"}, {Name: "Math"}}},
			wantErr: ErrDuplicateKey,
		},
		{
			name: "duplicate topic",
			snap: models.Snapshot{Subjects: []models.Subject{{Name: "Math", Topics: []models.Topic{
				{Name: "Algebra"}, {Name: "Algebra"},
			}}}},
			wantErr: ErrDuplicateKey,
		},
		{
			name: "record with zero total",
			snap: models.Snapshot{Subjects: []models.Subject{{Name: "Math", Topics: []models.Topic{
				{Name: "Algebra", Records: []models.PerformanceRecord{{Correct: 0, Total: 0, Timestamp: t1}}},
			}}}},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "review entry above total",
			snap:    models.Snapshot{ReviewList: []models.ReviewEntry{{Subject: "Math", Topic: "Algebra", Correct: 5, Total: 4}}},
			wantErr: ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromSnapshot(tt.snap)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFromSnapshotSkipsInvalidResultsWithHandler(t *testing.T) {
	t.Parallel()
	snap := models.Snapshot{
		Subjects: []models.Subject{{Name: "Math", Topics: []models.Topic{{Name: "Algebra", Records: []models.PerformanceRecord{
			{Correct: 12, Total: 10, Timestamp: t1},
			{Correct: 7, Total: 10, Timestamp: t2},
		}}}}},
		ReviewList: []models.ReviewEntry{
			{Subject: "Math", Topic: "Algebra", Correct: 5, Total: 4, Timestamp: t1},
			{Subject: "Math", Topic: "Algebra", Correct: 7, Total: 10, Timestamp: t2},
		},
	}

	_, err := FromSnapshot(snap)
	require.ErrorIs(t, err, ErrInvalidInput)

	var skipped []error
	l, err := FromSnapshot(snap, WithInvalidRecordHandler(func(err error) {
		skipped = append(skipped, err)
	}))
	require.NoError(t, err)
	require.Len(t, skipped, 2)
	for _, err := range skipped {
		assert.ErrorIs(t, err, ErrInvalidInput)
	}

	records, err := l.Records("Math", "Algebra")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 7, records[0].Correct)
	entries := l.ReviewEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, 7, entries[0].Correct)
}

func TestFromSnapshotHandlerKeepsDuplicatesFatal(t *testing.T) {
	t.Parallel()
	snap := models.Snapshot{Subjects: []models.Subject{{Name: "Math"}, {Name: "Math"}}}
	_, err := FromSnapshot(snap, WithInvalidRecordHandler(func(error) {}))
	assert.ErrorIs(t, err, ErrDuplicateKey)
}
