// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"time"

	"snappword/internal/model"
)

// Storage is the interface for all persistence operations.
type Storage interface {
	// GetOrCreateUser looks a user up by platform id, creating the record
	// on first contact. A non-empty displayName backfills a missing one.
	GetOrCreateUser(ctx context.Context, lineUserID, displayName string) (*model.User, error)

	// CountEvents counts operational log events of one type for a user
	// created at or after since.
	CountEvents(ctx context.Context, userID, eventType string, since time.Time) (int, error)

	// InsertCards persists cards in bulk, assigning each an ID.
	InsertCards(ctx context.Context, cards []model.VocabCard) error

	// UpdateCardStatus sets the review status of a card owned by userID.
	// Returns false when no row matched both predicates.
	UpdateCardStatus(ctx context.Context, cardID, userID string, status model.ReviewStatus) (bool, error)

	// GetCard returns a single card by its ID.
	GetCard(ctx context.Context, cardID string) (*model.VocabCard, error)

	// LogEvent appends an operational log entry.
	LogEvent(ctx context.Context, ev *model.LogEvent) error

	CreateUpgradeRequest(ctx context.Context, userID string) (*model.UpgradeRequest, error)

	// ActiveUpgradeRequest returns the most recent waiting_image request
	// created at or after since, or nil when none exists.
	ActiveUpgradeRequest(ctx context.Context, userID string, since time.Time) (*model.UpgradeRequest, error)

	// CompleteUpgradeRequest finalizes a request with its payment proof.
	CompleteUpgradeRequest(ctx context.Context, requestID, proofURL string) error

	Close() error
}
