package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/mine_safety_dashboard/internal/models"
	"github.com/shenikar/mine_safety_dashboard/pkg/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestTranscriptRepository подключается к базе из TEST_DATABASE_URL.
// Без переменной тест пропускается.
func newTestTranscriptRepository(t *testing.T) *TranscriptRepository {
	t.Helper()
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	migrationsDir, err := filepath.Abs(filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(databaseURL, migrationsDir))

	pool, err := postgres.NewPostgresDB(context.Background(), databaseURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewTranscriptRepository(pool)
}

func TestTranscriptRepository_ListReturnsLatestInOrder(t *testing.T) {
	// Подготовка
	repo := newTestTranscriptRepository(t)
	ctx := context.Background()
	sessionID := uuid.New()
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	texts := []string{"m1", "m2", "m3", "m4", "m5"}
	for i, text := range texts {
		msg := models.ChatMessage{
			ID:        uuid.New(),
			Sender:    models.SenderUser,
			Text:      text,
			Timestamp: start.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, repo.Record(ctx, sessionID, msg))
	}
	report := models.ChatMessage{
		ID:        uuid.New(),
		Sender:    models.SenderBot,
		Text:      "report",
		Timestamp: start.Add(time.Minute),
		Artifact:  &models.ArtifactRef{ID: uuid.New(), FileName: "Audit_Report.pdf", MimeType: "application/pdf"},
	}
	require.NoError(t, repo.Record(ctx, sessionID, report))

	// Действие
	got, err := repo.ListBySession(ctx, sessionID, 3)

	// Проверки
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "m4", got[0].Text)
	assert.Equal(t, "m5", got[1].Text)
	assert.Equal(t, "report", got[2].Text)
	require.NotNil(t, got[2].Artifact)
	assert.Equal(t, report.Artifact.ID, got[2].Artifact.ID)
	assert.Equal(t, "Audit_Report.pdf", got[2].Artifact.FileName)
	assert.Nil(t, got[0].Artifact)
}
