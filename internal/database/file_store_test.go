package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/studybot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t1 = time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)
	t2 = time.Date(2024, 3, 2, 18, 5, 12, 0, time.Local)
)

func sampleSnapshot() models.Snapshot {
	return models.Snapshot{
		LoggedIn: true,
		Notes:    "revise on sunday",
		Subjects: []models.Subject{
			{Name: "Português", Topics: []models.Topic{
				{Name: "Crase", Records: []models.PerformanceRecord{
					{Correct: 7, Total: 10, Timestamp: t1},
					{Correct: 9, Total: 10, Timestamp: t2},
				}},
				{Name: "Acentuação"},
			}},
			{Name: "Direito", Topics: []models.Topic{
				{Name: "Penal", Records: []models.PerformanceRecord{{Correct: 1, Total: 3, Timestamp: t2}}},
			}},
			{Name: "Empty"},
		},
		ReviewList: []models.ReviewEntry{
			{Subject: "Português", Topic: "Crase", Correct: 7, Total: 10, Ratio: 0.7, Timestamp: t1},
			{Subject: "Direito", Topic: "Penal", Correct: 1, Total: 3, Ratio: 1.0 / 3, Timestamp: t2},
		},
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	t.Parallel()
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Snapshot{}, snap)
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "data.json"))
	ctx := context.Background()
	want := sampleSnapshot()

	require.NoError(t, store.Save(ctx, want))
	got, err := store.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, want.LoggedIn, got.LoggedIn)
	assert.Equal(t, want.Notes, got.Notes)
	require.Len(t, got.Subjects, 3)
	assert.Equal(t, "Português", got.Subjects[0].Name)
	assert.Equal(t, "Direito", got.Subjects[1].Name)
	assert.Equal(t, "Empty", got.Subjects[2].Name)
	assert.Empty(t, got.Subjects[2].Topics)
	require.Len(t, got.Subjects[0].Topics, 2)
	assert.Equal(t, "Crase", got.Subjects[0].Topics[0].Name)
	assert.Equal(t, "Acentuação", got.Subjects[0].Topics[1].Name)
	assert.Equal(t, want.Subjects[0].Topics[0].Records, got.Subjects[0].Topics[0].Records)
	require.Len(t, got.ReviewList, 2)
	assert.Equal(t, "Penal", got.ReviewList[1].Topic)
	assert.True(t, got.ReviewList[1].Timestamp.Equal(t2))
	assert.InDelta(t, 1.0/3, got.ReviewList[1].Ratio, 1e-9)
	assert.Equal(t, want.RecordCount(), got.RecordCount())
}

func TestFileStoreWritesLegacyLayout(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "data.json")
	store := NewFileStore(path)
	snap := models.Snapshot{
		Subjects: []models.Subject{{Name: "Math", Topics: []models.Topic{
			{Name: "Algebra", Records: []models.PerformanceRecord{{Correct: 7, Total: 10, Timestamp: t1}}},
		}}},
		ReviewList: []models.ReviewEntry{{Subject: "Math", Topic: "Algebra", Correct: 7, Total: 10, Ratio: 0.7, Timestamp: t1}},
	}
	require.NoError(t, store.Save(context.Background(), snap))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"logged_in": false,
		"subjects": {"Math": {"Algebra": [{"acertos": 7, "total": 10, "data": "2024-03-01 09:30:00"}]}},
		"notes": "",
		"revisao": [{"materia": "Math", "assunto": "Algebra", "acertos": 7, "total": 10, "% Acerto": "70.00%", "data": "2024-03-01 09:30:00"}]
	}`, string(data))
	assert.Contains(t, string(data), "\n    \"logged_in\"")
}

func TestFileStoreLoadsLegacyDocument(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "data.json")
	doc := `{
    "logged_in": true,
    "subjects": {
        "Zoologia": {"Aves": [{"acertos": 3, "total": 4, "data": "2024-03-01 09:30:00"}]},
        "Anatomia": {}
    },
    "notes": "",
    "revisao": [
        {"materia": "Zoologia", "assunto": "Aves", "acertos": 3, "total": 4, "% Acerto": "75.00%", "data": "2024-03-01 09:30:00"}
    ]
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	snap, err := NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.LoggedIn)
	require.Len(t, snap.Subjects, 2)
	assert.Equal(t, "Zoologia", snap.Subjects[0].Name, "document order is kept")
	assert.Equal(t, "Anatomia", snap.Subjects[1].Name)
	require.Len(t, snap.ReviewList, 1)
	assert.InDelta(t, 0.75, snap.ReviewList[0].Ratio, 1e-9)
	assert.True(t, snap.ReviewList[0].Timestamp.Equal(t1))
}

func TestFileStoreLoadsPartialDocument(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"logged_in": true}`), 0o644))

	snap, err := NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.LoggedIn)
	assert.Empty(t, snap.Subjects)
	assert.Empty(t, snap.ReviewList)
}

func TestFileStoreLoadErrors(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"not json":            `{"logged_in":`,
		"subjects not object": `{"subjects": []}`,
		"bad record date":     `{"subjects": {"Math": {"Algebra": [{"acertos": 1, "total": 2, "data": "yesterday"}]}}}`,
		"bad review date":     `{"revisao": [{"materia": "Math", "assunto": "Algebra", "acertos": 1, "total": 2, "data": ""}]}`,
	}
	for name, doc := range tests {
		path := filepath.Join(t.TempDir(), "data.json")
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

		_, err := NewFileStore(path).Load(context.Background())
		assert.Error(t, err, name)
	}
}
