package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver registration.

	"snappword/internal/model"
	"snappword/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// GetOrCreateUser finds a user by platform id, creating the record on first
// contact and backfilling a missing display name.
func (s *SQLite) GetOrCreateUser(ctx context.Context, lineUserID, displayName string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, line_user_id, display_name, is_premium, tier, created_at
		 FROM users WHERE line_user_id = ?`, lineUserID,
	)
	u, err := scanUser(row)
	switch {
	case err == nil:
		if displayName != "" && u.DisplayName == "" {
			if _, err := s.db.ExecContext(ctx,
				`UPDATE users SET display_name = ? WHERE id = ?`, displayName, u.ID,
			); err != nil {
				return nil, fmt.Errorf("backfill display name: %w", err)
			}
			u.DisplayName = displayName
		}
		return u, nil
	case errors.Is(err, sql.ErrNoRows):
		// fall through to create
	default:
		return nil, fmt.Errorf("query user: %w", err)
	}

	u = &model.User{
		ID:          uuid.NewString(),
		LineUserID:  lineUserID,
		DisplayName: displayName,
		Tier:        model.TierFree,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, line_user_id, display_name, is_premium, tier, created_at)
		 VALUES (?, ?, ?, 0, ?, ?)`,
		u.ID, u.LineUserID, u.DisplayName, string(u.Tier), u.CreatedAt.Format(timeLayout),
	); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// CountEvents counts log events of one type for a user since the given time.
func (s *SQLite) CountEvents(ctx context.Context, userID, eventType string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM api_logs
		 WHERE user_id = ? AND event_type = ? AND created_at >= ?`,
		userID, eventType, since.UTC().Format(timeLayout),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

// InsertCards persists cards in bulk, assigning IDs and timestamps.
func (s *SQLite) InsertCards(ctx context.Context, cards []model.VocabCard) error {
	if len(cards) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for i := range cards {
		c := &cards[i]
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		c.CreatedAt = now
		c.UpdatedAt = now

		tags, err := json.Marshal(c.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vocab_cards
			   (id, user_id, word, translation, pronunciation, sentence, sentence_trans,
			    ai_example, image_url, source_app, target_lang, tags, review_status,
			    created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.UserID, c.Word, c.Translation, c.Pronunciation, c.Sentence, c.SentenceTrans,
			c.AIExample, c.ImageURL, c.SourceApp, c.TargetLang, string(tags), int(c.ReviewStatus),
			now.Format(timeLayout), now.Format(timeLayout),
		); err != nil {
			return fmt.Errorf("insert card: %w", err)
		}
	}
	return tx.Commit()
}

// UpdateCardStatus sets the review status of a card owned by userID.
// Matching both card id and user id in one predicate is the ownership check;
// zero affected rows means unknown id or someone else's card.
func (s *SQLite) UpdateCardStatus(ctx context.Context, cardID, userID string, status model.ReviewStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE vocab_cards SET review_status = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		int(status), time.Now().UTC().Format(timeLayout), cardID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("update card status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// GetCard returns a single card by its ID.
func (s *SQLite) GetCard(ctx context.Context, cardID string) (*model.VocabCard, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, word, translation, pronunciation, sentence, sentence_trans,
		        ai_example, image_url, source_app, target_lang, tags, review_status,
		        created_at, updated_at
		 FROM vocab_cards WHERE id = ?`, cardID,
	)
	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query card: %w", err)
	}
	return c, nil
}

// LogEvent appends an operational log entry.
func (s *SQLite) LogEvent(ctx context.Context, ev *model.LogEvent) error {
	var payload *string
	if ev.Payload != nil {
		raw, err := json.Marshal(ev.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		v := string(raw)
		payload = &v
	}

	var userID *string
	if ev.UserID != "" {
		userID = &ev.UserID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO api_logs (user_id, event_type, latency_ms, token_count, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, ev.EventType, ev.LatencyMS, ev.TokenCount, payload,
		time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert log event: %w", err)
	}
	return nil
}

// CreateUpgradeRequest inserts a new waiting_image upgrade request.
func (s *SQLite) CreateUpgradeRequest(ctx context.Context, userID string) (*model.UpgradeRequest, error) {
	req := &model.UpgradeRequest{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    model.UpgradeWaitingImage,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO upgrade_requests (id, user_id, status, created_at) VALUES (?, ?, ?, ?)`,
		req.ID, req.UserID, string(req.Status), req.CreatedAt.Format(timeLayout),
	); err != nil {
		return nil, fmt.Errorf("insert upgrade request: %w", err)
	}
	return req, nil
}

// ActiveUpgradeRequest returns the most recent waiting_image request created
// at or after since, or nil when none exists. Older rows stay untouched.
func (s *SQLite) ActiveUpgradeRequest(ctx context.Context, userID string, since time.Time) (*model.UpgradeRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, status, proof_image_url, created_at
		 FROM upgrade_requests
		 WHERE user_id = ? AND status = ? AND created_at >= ?
		 ORDER BY created_at DESC LIMIT 1`,
		userID, string(model.UpgradeWaitingImage), since.UTC().Format(timeLayout),
	)
	var req model.UpgradeRequest
	var status, created string
	err := row.Scan(&req.ID, &req.UserID, &status, &req.ProofImageURL, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query upgrade request: %w", err)
	}
	req.Status = model.UpgradeRequestStatus(status)
	req.CreatedAt, _ = time.Parse(timeLayout, created)
	return &req, nil
}

// CompleteUpgradeRequest finalizes a request with its payment proof URL.
func (s *SQLite) CompleteUpgradeRequest(ctx context.Context, requestID, proofURL string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE upgrade_requests SET status = ?, proof_image_url = ? WHERE id = ?`,
		string(model.UpgradePending), proofURL, requestID,
	)
	if err != nil {
		return fmt.Errorf("complete upgrade request: %w", err)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanUser(row scannable) (*model.User, error) {
	var u model.User
	var isPremium int
	var tier, created string
	if err := row.Scan(&u.ID, &u.LineUserID, &u.DisplayName, &isPremium, &tier, &created); err != nil {
		return nil, err
	}
	u.IsPremium = isPremium == 1
	u.Tier = model.Tier(tier)
	u.CreatedAt, _ = time.Parse(timeLayout, created)
	return &u, nil
}

func scanCard(row scannable) (*model.VocabCard, error) {
	var c model.VocabCard
	var tags string
	var status int
	var created, updated string
	err := row.Scan(&c.ID, &c.UserID, &c.Word, &c.Translation, &c.Pronunciation,
		&c.Sentence, &c.SentenceTrans, &c.AIExample, &c.ImageURL, &c.SourceApp,
		&c.TargetLang, &tags, &status, &created, &updated)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(tags), &c.Tags)
	c.ReviewStatus = model.ReviewStatus(status)
	c.CreatedAt, _ = time.Parse(timeLayout, created)
	c.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return &c, nil
}
