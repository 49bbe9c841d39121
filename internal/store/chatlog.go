package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/modelhub-api/apiserver/types"
)

// ChatLogRepository handles persistence for chatbot history.
type ChatLogRepository struct {
	db *sql.DB
}

func NewChatLogRepository(db *sql.DB) *ChatLogRepository {
	return &ChatLogRepository{db: db}
}

func (r *ChatLogRepository) Create(ctx context.Context, log types.ChatLog) (types.ChatLog, error) {
	log.ID = uuid.NewString()
	log.CreatedAt = time.Now()

	const query = `
		INSERT INTO chat_logs (id, user_id, message, response, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, log.ID, log.UserID, log.Message, log.Response, log.CreatedAt)
	if err != nil {
		return types.ChatLog{}, err
	}
	return log, nil
}

// ListByUser returns the user's most recent exchanges, newest first.
func (r *ChatLogRepository) ListByUser(ctx context.Context, userID string, limit int) ([]types.ChatLog, error) {
	if limit < 1 {
		limit = 10
	}

	const query = `
		SELECT id, user_id, message, response, created_at
		FROM chat_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]types.ChatLog, 0, limit)
	for rows.Next() {
		var log types.ChatLog
		if err := rows.Scan(&log.ID, &log.UserID, &log.Message, &log.Response, &log.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// DeleteOlderThan reclaims chat logs created before the cutoff and
// returns the number of rows removed.
func (r *ChatLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM chat_logs WHERE created_at < $1`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
