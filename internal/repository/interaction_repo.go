package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"caira-engine/internal/model"
)

// InteractionRepository persists the per-request interaction log.
type InteractionRepository struct {
	db *pgxpool.Pool
}

func NewInteractionRepository(db *pgxpool.Pool) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// Record inserts one interaction row.
func (r *InteractionRepository) Record(ctx context.Context, in model.Interaction) error {
	query := `
        INSERT INTO engine_interactions
            (session_id, user_id, kind, command_text, action_type, error_code, latency_ms, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `

	_, err := r.db.Exec(ctx, query,
		in.SessionID,
		in.UserID,
		in.Kind,
		in.CommandText,
		string(in.ActionType),
		in.ErrorCode,
		in.LatencyMS,
		in.CreatedAt,
	)
	return err
}

// RecentBySession returns the latest interactions for a session, newest first.
func (r *InteractionRepository) RecentBySession(ctx context.Context, sessionID string, limit int) ([]model.Interaction, error) {
	query := `
        SELECT id, session_id, user_id, kind, command_text, action_type, error_code, latency_ms, created_at
        FROM engine_interactions
        WHERE session_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `

	rows, err := r.db.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	interactions := []model.Interaction{}
	for rows.Next() {
		var in model.Interaction
		var actionType string
		if err := rows.Scan(
			&in.ID,
			&in.SessionID,
			&in.UserID,
			&in.Kind,
			&in.CommandText,
			&actionType,
			&in.ErrorCode,
			&in.LatencyMS,
			&in.CreatedAt,
		); err != nil {
			return nil, err
		}
		in.ActionType = model.ActionType(actionType)
		interactions = append(interactions, in)
	}

	return interactions, rows.Err()
}
