package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"caira-engine/internal/model"
)

const (
	// historyLimit caps stored entries per session (6 turns of user+ai).
	historyLimit = 12
	historyTTL   = 24 * time.Hour
)

// HistoryStore keeps conversation history in Redis so the process itself
// stays stateless. Keys expire; the list is trimmed to the newest entries.
type HistoryStore struct {
	rdb *redis.Client
}

func NewHistoryStore(rdb *redis.Client) *HistoryStore {
	return &HistoryStore{rdb: rdb}
}

func historyKey(sessionID string) string {
	return fmt.Sprintf("history:%s", sessionID)
}

// Append pushes entries onto the session's history, trimming to the cap.
func (s *HistoryStore) Append(ctx context.Context, sessionID string, entries ...model.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	key := historyKey(sessionID)

	values := make([]any, 0, len(entries))
	for _, entry := range entries {
		b, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		values = append(values, b)
	}

	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, -historyLimit, -1)
	pipe.Expire(ctx, key, historyTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns the session's history, oldest first.
func (s *HistoryStore) List(ctx context.Context, sessionID string) ([]model.HistoryEntry, error) {
	raw, err := s.rdb.LRange(ctx, historyKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]model.HistoryEntry, 0, len(raw))
	for _, item := range raw {
		var entry model.HistoryEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Clear deletes the session's history, reporting whether anything existed.
func (s *HistoryStore) Clear(ctx context.Context, sessionID string) (bool, error) {
	deleted, err := s.rdb.Del(ctx, historyKey(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}
