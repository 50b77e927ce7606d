// Package model defines the domain types used across the application.
package model

import "time"

// Tier is a user's subscription level.
type Tier string

// Supported subscription tiers.
const (
	TierFree   Tier = "free"
	TierSprout Tier = "sprout"
	TierBloom  Tier = "bloom"
)

// User is a chat-platform user, created lazily on first contact.
type User struct {
	ID          string
	LineUserID  string
	DisplayName string
	IsPremium   bool
	Tier        Tier
	CreatedAt   time.Time
}

// EffectiveTier returns the tier used for quota lookup.
// Free users carrying the legacy is_premium flag are billed as sprout.
func (u *User) EffectiveTier() Tier {
	if u.Tier == TierFree && u.IsPremium {
		return TierSprout
	}
	if u.Tier == "" {
		return TierFree
	}
	return u.Tier
}

// ReviewStatus is the review state of a vocab card.
type ReviewStatus int

// Review states. Cards start as New and move to Learning on an explicit
// save action; Mastered is set by the review flow outside this service.
const (
	StatusNew ReviewStatus = iota
	StatusLearning
	StatusMastered
)

// VocabCard is a persisted vocabulary word with provenance.
type VocabCard struct {
	ID            string
	UserID        string
	Word          string
	Translation   string
	Pronunciation string
	Sentence      string
	SentenceTrans string
	AIExample     string
	ImageURL      string
	SourceApp     string
	TargetLang    string
	Tags          []string
	ReviewStatus  ReviewStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UpgradeRequestStatus is the state of an upgrade request.
type UpgradeRequestStatus string

// Upgrade request states. A waiting_image request older than the activity
// window is inert; pending requests are reviewed manually downstream.
const (
	UpgradeWaitingImage UpgradeRequestStatus = "waiting_image"
	UpgradePending      UpgradeRequestStatus = "pending"
)

// UpgradeRequest tracks a user's manual tier upgrade flow.
type UpgradeRequest struct {
	ID            string
	UserID        string
	Status        UpgradeRequestStatus
	ProofImageURL string
	CreatedAt     time.Time
}

// Operational log event types. EventParseSuccess is the only type quota
// accounting reads.
const (
	EventImageReceived = "image_received"
	EventGeminiCall    = "gemini_call"
	EventParseSuccess  = "parse_success"
	EventParseFail     = "parse_fail"
)

// LogEvent is an append-only operational fact record.
type LogEvent struct {
	UserID     string
	EventType  string
	LatencyMS  int64
	TokenCount int64
	Payload    map[string]any
	CreatedAt  time.Time
}

// ParsedWord is one vocabulary item extracted from a screenshot.
type ParsedWord struct {
	Word          string   `json:"word"`
	Pronunciation string   `json:"pronunciation"`
	Translation   string   `json:"translation"`
	Sentence      string   `json:"context_sentence"`
	SentenceTrans string   `json:"context_trans"`
	Tags          []string `json:"tags"`
	AIExample     string   `json:"ai_example"`
}

// ParseResult is the analyzer's structured output for one screenshot.
type ParseResult struct {
	SourceApp  string       `json:"source_app"`
	TargetLang string       `json:"target_lang"`
	SourceLang string       `json:"source_lang"`
	Words      []ParsedWord `json:"words"`
}
