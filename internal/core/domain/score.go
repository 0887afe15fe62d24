package domain

import "time"

// ScoreSource records how a compatibility score was produced.
type ScoreSource string

const (
	ScoreSourceJudge    ScoreSource = "judge"
	ScoreSourceFallback ScoreSource = "fallback"
	ScoreSourcePending  ScoreSource = "pending"
)

const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// CompatibilityScore is the current evaluation of one (rfp, vendor) pair.
// Exactly one row exists per pair; rescoring replaces it.
type CompatibilityScore struct {
	RFPID            string             `json:"rfp_id"`
	VendorID         string             `json:"vendor_id"`
	Score            int                `json:"score"`
	Rationale        string             `json:"rationale"`
	Factors          map[string]float64 `json:"factors,omitempty"`
	WinProbability   *int               `json:"win_probability,omitempty"`
	RiskLevel        string             `json:"risk_level,omitempty"`
	CompetitionLevel string             `json:"competition_level,omitempty"`
	EstimatedCost    string             `json:"estimated_cost,omitempty"`
	Reasons          []string           `json:"reasons,omitempty"`
	Source           ScoreSource        `json:"source"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// Notification is a stored match alert for a vendor user.
type Notification struct {
	ID        string         `json:"id"`
	UserType  string         `json:"user_type"`
	UserID    string         `json:"user_id"`
	RFPID     string         `json:"rfp_id,omitempty"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
}

// BatchReport aggregates the per-vendor outcomes of one scoring run. It is
// the only place swallowed per-vendor failures become visible.
type BatchReport struct {
	RFPID                string        `json:"rfp_id"`
	VendorCount          int           `json:"vendor_count"`
	JudgeScored          int           `json:"judge_scored"`
	FallbackScored       int           `json:"fallback_scored"`
	Persisted            int           `json:"persisted"`
	PersistFailures      int           `json:"persist_failures"`
	NotificationsSent    int           `json:"notifications_sent"`
	NotificationFailures int           `json:"notification_failures"`
	Elapsed              time.Duration `json:"elapsed"`
}
