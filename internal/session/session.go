// Package session persists game sessions in Redis so the game server can
// survive restarts and serve many concurrent games.
//
// Each session is stored as a Redis hash at sweeper:session:{id} with an
// optional TTL, plus membership in the sweeper:sessions index set. The store
// is safe for concurrent use.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sweeplab/sweeper/internal/board"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Session is one persisted game: a board snapshot plus bookkeeping.
type Session struct {
	ID          string          `json:"id"`            // UUID
	CreatedAtMs int64           `json:"created_at_ms"` // Unix milliseconds
	Board       *board.Snapshot `json:"board"`
}

// Validate checks structural integrity before a session is written.
func (s *Session) Validate() error {
	if _, err := uuid.Parse(s.ID); err != nil {
		return fmt.Errorf("invalid session ID: %w", err)
	}
	if s.Board == nil {
		return fmt.Errorf("session has no board")
	}
	if s.Board.Height <= 0 || s.Board.Width <= 0 {
		return fmt.Errorf("board dimensions must be positive, got %dx%d",
			s.Board.Height, s.Board.Width)
	}
	return nil
}

// SessionKey returns the Redis key for a session hash.
// Pattern: sweeper:session:{session_id}
func SessionKey(sessionID string) string {
	return fmt.Sprintf("sweeper:session:%s", sessionID)
}

// IndexKey returns the Redis key of the set holding all session IDs.
func IndexKey() string {
	return "sweeper:sessions"
}

// Store provides session CRUD over Redis. A zero TTL means sessions never
// expire.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore creates a store over the given Redis options.
func NewStore(redisOpts *redis.Options, ttl time.Duration) *Store {
	return &Store{rdb: redis.NewClient(redisOpts), ttl: ttl}
}

// Close closes the Redis connection. Implements io.Closer.
func (st *Store) Close() error {
	return st.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
func (st *Store) Ping(ctx context.Context) error {
	return st.rdb.Ping(ctx).Err()
}

// Create persists a fresh session for the given board and returns it.
func (st *Store) Create(ctx context.Context, b *board.Board) (*Session, error) {
	session := &Session{
		ID:          uuid.New().String(),
		CreatedAtMs: time.Now().UnixMilli(),
		Board:       b.Snapshot(),
	}
	if err := st.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Save writes a session hash and registers it in the index. Saving the same
// session again overwrites the stored board, which is how moves persist.
func (st *Store) Save(ctx context.Context, session *Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("invalid session: %w", err)
	}

	hash, err := sessionToHash(session)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	key := SessionKey(session.ID)
	if err := st.rdb.HSet(ctx, key, hash).Err(); err != nil {
		return fmt.Errorf("failed to write session to Redis: %w", err)
	}
	if st.ttl > 0 {
		if err := st.rdb.Expire(ctx, key, st.ttl).Err(); err != nil {
			return fmt.Errorf("failed to set session TTL: %w", err)
		}
	}
	if err := st.rdb.SAdd(ctx, IndexKey(), session.ID).Err(); err != nil {
		return fmt.Errorf("failed to index session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID. Returns ErrNotFound when it does not exist.
func (st *Store) Get(ctx context.Context, sessionID string) (*Session, error) {
	hashData, err := st.rdb.HGetAll(ctx, SessionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session from Redis: %w", err)
	}
	// HGetAll returns an empty map for missing keys.
	if len(hashData) == 0 {
		return nil, ErrNotFound
	}

	session, err := hashToSession(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize session: %w", err)
	}
	return session, nil
}

// Delete removes a session and its index entry. Deleting a missing session
// is not an error.
func (st *Store) Delete(ctx context.Context, sessionID string) error {
	if err := st.rdb.Del(ctx, SessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if err := st.rdb.SRem(ctx, IndexKey(), sessionID).Err(); err != nil {
		return fmt.Errorf("failed to unindex session: %w", err)
	}
	return nil
}

// List returns the IDs of live sessions. Expired sessions are pruned from
// the index as they are discovered.
func (st *Store) List(ctx context.Context) ([]string, error) {
	ids, err := st.rdb.SMembers(ctx, IndexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	live := make([]string, 0, len(ids))
	for _, id := range ids {
		exists, err := st.rdb.Exists(ctx, SessionKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check session %s: %w", id, err)
		}
		if exists == 0 {
			// TTL reaped the hash; drop the stale index entry.
			_ = st.rdb.SRem(ctx, IndexKey(), id).Err()
			continue
		}
		live = append(live, id)
	}
	return live, nil
}

// sessionToHash converts a session to Redis hash fields. The board travels
// as a single JSON field; the scalar fields stay queryable on their own.
func sessionToHash(session *Session) (map[string]any, error) {
	boardJSON, err := json.Marshal(session.Board)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board: %w", err)
	}
	return map[string]any{
		"id":            session.ID,
		"created_at_ms": strconv.FormatInt(session.CreatedAtMs, 10),
		"board":         string(boardJSON),
	}, nil
}

// hashToSession is the inverse of sessionToHash.
func hashToSession(hash map[string]string) (*Session, error) {
	createdAt, err := strconv.ParseInt(hash["created_at_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at_ms: %w", err)
	}

	var snapshot board.Snapshot
	if err := json.Unmarshal([]byte(hash["board"]), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board: %w", err)
	}

	session := &Session{
		ID:          hash["id"],
		CreatedAtMs: createdAt,
		Board:       &snapshot,
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}
	return session, nil
}
