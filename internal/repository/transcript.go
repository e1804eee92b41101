package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/mine_safety_dashboard/internal/artifact"
	"github.com/shenikar/mine_safety_dashboard/internal/models"
)

// TranscriptRepository хранит журнал сообщений чата в Postgres
type TranscriptRepository struct {
	db *pgxpool.Pool
}

func NewTranscriptRepository(db *pgxpool.Pool) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

// Record сохраняет сообщение сессии
func (r *TranscriptRepository) Record(ctx context.Context, sessionID uuid.UUID, msg models.ChatMessage) error {
	query := `
		INSERT INTO chat_transcripts (id, session_id, sender, text, artifact_id, artifact_name, artifact_mime_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	var (
		artifactID   uuid.NullUUID
		artifactName *string
		artifactMime *string
	)
	if msg.Artifact != nil {
		artifactID = uuid.NullUUID{UUID: msg.Artifact.ID, Valid: true}
		artifactName = &msg.Artifact.FileName
		artifactMime = &msg.Artifact.MimeType
	}

	_, err := r.db.Exec(ctx, query,
		msg.ID,
		sessionID,
		string(msg.Sender),
		msg.Text,
		artifactID,
		artifactName,
		artifactMime,
		msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to record chat message: %w", err)
	}
	return nil
}

// ListBySession возвращает последние limit сообщений сессии в порядке добавления
func (r *TranscriptRepository) ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	query := `
		SELECT id, sender, text, artifact_id, artifact_name, artifact_mime_type, created_at
		FROM (
			SELECT
				seq,
				id,
				sender,
				text,
				artifact_id,
				artifact_name,
				artifact_mime_type,
				created_at
			FROM chat_transcripts
			WHERE session_id = $1
			ORDER BY created_at DESC, seq DESC
			LIMIT $2
		) latest
		ORDER BY created_at ASC, seq ASC;
	`
	rows, err := r.db.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat transcript: %w", err)
	}
	defer rows.Close()

	messages := make([]models.ChatMessage, 0)
	for rows.Next() {
		var (
			msg          models.ChatMessage
			sender       string
			artifactID   uuid.NullUUID
			artifactName *string
			artifactMime *string
		)
		err := rows.Scan(
			&msg.ID,
			&sender,
			&msg.Text,
			&artifactID,
			&artifactName,
			&artifactMime,
			&msg.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat transcript row: %w", err)
		}
		msg.Sender = models.Sender(sender)
		if artifactID.Valid {
			msg.Artifact = &models.ArtifactRef{
				ID:  artifactID.UUID,
				URL: artifact.DownloadURL(artifactID.UUID),
			}
			if artifactName != nil {
				msg.Artifact.FileName = *artifactName
			}
			if artifactMime != nil {
				msg.Artifact.MimeType = *artifactMime
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error transcript iteration: %w", err)
	}
	return messages, nil
}
